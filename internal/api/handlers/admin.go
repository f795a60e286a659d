package handlers

import (
	"github.com/gin-gonic/gin"

	"reviewhub/internal/api/middleware"
	"reviewhub/internal/services"
	"reviewhub/internal/utils"
)

type AdminHandler struct {
	moderationService *services.ModerationService
	analyticsService  *services.AnalyticsService
}

func NewAdminHandler(moderationService *services.ModerationService, analyticsService *services.AnalyticsService) *AdminHandler {
	return &AdminHandler{
		moderationService: moderationService,
		analyticsService:  analyticsService,
	}
}

func (h *AdminHandler) Reports(c *gin.Context) {
	summary, err := h.moderationService.Summary(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "moderation summary retrieved successfully", summary)
}

func (h *AdminHandler) GeneralAnalytics(c *gin.Context) {
	analytics, err := h.analyticsService.General(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "analytics retrieved successfully", analytics)
}

func (h *AdminHandler) ProductAnalytics(c *gin.Context) {
	productID, ok := paramUint(c, "product_id")
	if !ok {
		utils.SendValidationError(c, "invalid product ID")
		return
	}

	analytics, err := h.analyticsService.Product(c.Request.Context(), middleware.Actor(c), productID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "product analytics retrieved successfully", analytics)
}
