package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/api/middleware"
	"reviewhub/internal/cache"
	"reviewhub/internal/services"
	"reviewhub/internal/utils"
)

type ReviewHandler struct {
	reviewService     *services.ReviewService
	engagementService *services.EngagementService
	moderationService *services.ModerationService
	cache             *cache.Cache
}

func NewReviewHandler(reviewService *services.ReviewService, engagementService *services.EngagementService, moderationService *services.ModerationService, c *cache.Cache) *ReviewHandler {
	return &ReviewHandler{
		reviewService:     reviewService,
		engagementService: engagementService,
		moderationService: moderationService,
		cache:             c,
	}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request data")
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "review submitted and pending approval", review)
}

func (h *ReviewHandler) List(c *gin.Context) {
	var filter services.ReviewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendValidationError(c, "invalid filter parameters")
		return
	}

	reviews, err := h.reviewService.List(c.Request.Context(), middleware.Actor(c), filter)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "reviews retrieved successfully", reviews)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	review, err := h.reviewService.Get(c.Request.Context(), middleware.Actor(c), reviewID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "review retrieved successfully", review)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request data")
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), middleware.Actor(c), reviewID, req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "review updated successfully", review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), middleware.Actor(c), reviewID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ReviewHandler) Approve(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	review, err := h.reviewService.Approve(c.Request.Context(), middleware.Actor(c), reviewID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	// Approval changes what the analytics aggregates see.
	h.cache.Invalidate(c.Request.Context(), "analytics:general",
		fmt.Sprintf("analytics:product:%d", review.ProductID))

	utils.SendSuccess(c, "review approved and author notified", review)
}

func (h *ReviewHandler) React(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	var req services.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request data")
		return
	}

	interaction, err := h.engagementService.React(c.Request.Context(), middleware.Actor(c), reviewID, req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	// New likes can change the most-liked review.
	h.cache.Invalidate(c.Request.Context(), "analytics:general")

	utils.SendCreated(c, "reaction saved successfully", interaction)
}

func (h *ReviewHandler) Report(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	var req services.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "report reason is required")
		return
	}

	report, err := h.moderationService.Report(c.Request.Context(), middleware.Actor(c), reviewID, req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "report submitted successfully", report)
}

func (h *ReviewHandler) ListComments(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	comments, err := h.engagementService.ListComments(c.Request.Context(), reviewID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "comments retrieved successfully", comments)
}

func (h *ReviewHandler) AddComment(c *gin.Context) {
	reviewID, ok := paramUint(c, "review_id")
	if !ok {
		utils.SendValidationError(c, "invalid review ID")
		return
	}

	var req services.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "comment text is required")
		return
	}

	comment, err := h.engagementService.AddComment(c.Request.Context(), middleware.Actor(c), reviewID, req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "comment added successfully", comment)
}
