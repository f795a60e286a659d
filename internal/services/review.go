package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
	"reviewhub/internal/permissions"
	"reviewhub/internal/utils"
	"reviewhub/pkg/logger"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type ReviewService struct {
	db            *gorm.DB
	notifications *NotificationService
	email         *EmailService
}

func NewReviewService(db *gorm.DB, notifications *NotificationService, email *EmailService) *ReviewService {
	return &ReviewService{db: db, notifications: notifications, email: email}
}

type CreateReviewRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	Rating     int    `json:"rating" binding:"required"`
	ReviewText string `json:"review_text"`
}

type UpdateReviewRequest struct {
	Rating     *int    `json:"rating,omitempty"`
	ReviewText *string `json:"review_text,omitempty"`
}

type ReviewFilter struct {
	ProductID uint `form:"product_id"`
	Rating    int  `form:"rating"`
	Page      int  `form:"page"`
	Limit     int  `form:"limit"`
}

// ReviewDetail is a review with its computed engagement fields.
type ReviewDetail struct {
	ID               uint      `json:"id"`
	ProductID        uint      `json:"product_id"`
	User             string    `json:"user"`
	Rating           int       `json:"rating"`
	ReviewText       string    `json:"review_text"`
	IsVisible        bool      `json:"is_visible"`
	CreatedAt        time.Time `json:"created_at"`
	ViewsCount       uint      `json:"views_count"`
	LikesCount       int64     `json:"likes_count"`
	DislikesCount    int64     `json:"dislikes_count"`
	UserReaction     *string   `json:"user_reaction"`
	IsReportedByUser bool      `json:"is_reported_by_user"`
}

func (f *ReviewFilter) normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
}

// Create stores a new review. Reviews always start invisible; a user may
// review the same product more than once.
func (s *ReviewService) Create(ctx context.Context, actor permissions.Actor, req CreateReviewRequest) (*models.Review, error) {
	if !utils.IsValidRating(req.Rating) {
		return nil, apperrors.ValidationFields("invalid review", map[string]string{
			"rating": "rating must be between 1 and 5",
		})
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, req.ProductID).Error; err != nil {
		return nil, apperrors.ValidationFields("invalid review", map[string]string{
			"product_id": "product does not exist",
		})
	}

	review := models.Review{
		ProductID:  req.ProductID,
		UserID:     actor.ID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
		IsVisible:  false,
		ViewsCount: 0,
	}

	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		return nil, apperrors.Internal("failed to create review", err)
	}

	return &review, nil
}

// Get returns one review and counts the read: views_count is bumped with a
// single atomic UPDATE on every successful retrieval, whoever the requester.
func (s *ReviewService) Get(ctx context.Context, actor permissions.Actor, reviewID uint) (*ReviewDetail, error) {
	result := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", reviewID).
		UpdateColumn("views_count", gorm.Expr("views_count + ?", 1))
	if result.Error != nil {
		return nil, apperrors.Internal("failed to fetch review", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("review not found")
	}

	var review models.Review
	if err := s.db.WithContext(ctx).Preload("User").First(&review, reviewID).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch review", err)
	}

	details, err := s.withEngagement(ctx, actor, []models.Review{review})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// List returns reviews filtered by product and/or rating, newest first.
func (s *ReviewService) List(ctx context.Context, actor permissions.Actor, filter ReviewFilter) ([]ReviewDetail, error) {
	filter.normalize()
	if filter.Rating != 0 && (filter.Rating < 1 || filter.Rating > 5) {
		return nil, apperrors.Validation("rating filter must be between 1 and 5")
	}

	query := s.db.WithContext(ctx).Model(&models.Review{}).Preload("User")
	if filter.ProductID != 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Rating != 0 {
		query = query.Where("rating = ?", filter.Rating)
	}

	var reviews []models.Review
	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&reviews).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch reviews", err)
	}

	return s.withEngagement(ctx, actor, reviews)
}

// Update edits rating/text. Only the author may mutate a review.
func (s *ReviewService) Update(ctx context.Context, actor permissions.Actor, reviewID uint, req UpdateReviewRequest) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		return nil, apperrors.NotFound("review not found")
	}

	if err := permissions.Check(permissions.OpReviewUpdate, actor, &review); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Rating != nil {
		if !utils.IsValidRating(*req.Rating) {
			return nil, apperrors.ValidationFields("invalid review", map[string]string{
				"rating": "rating must be between 1 and 5",
			})
		}
		updates["rating"] = *req.Rating
	}
	if req.ReviewText != nil {
		updates["review_text"] = *req.ReviewText
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&review).Updates(updates).Error; err != nil {
			return nil, apperrors.Internal("failed to update review", err)
		}
	}

	return &review, nil
}

// Delete removes the review and everything it owns. Children go first inside
// the transaction so the cascade holds even where FK enforcement is off.
func (s *ReviewService) Delete(ctx context.Context, actor permissions.Actor, reviewID uint) error {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		return apperrors.NotFound("review not found")
	}

	if err := permissions.Check(permissions.OpReviewDelete, actor, &review); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.ReviewComment{}, &models.Interaction{}, &models.Report{}} {
			if err := tx.Where("review_id = ?", reviewID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&review).Error
	})
	if err != nil {
		return apperrors.Internal("failed to delete review", err)
	}
	return nil
}

// Approve flips is_visible to true. The transition is one-way: there is no
// reject or un-approve. The author gets exactly one notification per call.
func (s *ReviewService) Approve(ctx context.Context, actor permissions.Actor, reviewID uint) (*models.Review, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).Preload("Product").Preload("User").First(&review, reviewID).Error; err != nil {
		return nil, apperrors.NotFound("review not found")
	}

	if err := permissions.Check(permissions.OpReviewApprove, actor, &review); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&review).Update("is_visible", true).Error; err != nil {
		return nil, apperrors.Internal("failed to approve review", err)
	}
	review.IsVisible = true

	message := fmt.Sprintf("Your review for the product '%s' has been approved.", review.Product.Name)
	if err := s.notifications.Notify(ctx, review.UserID, message); err != nil {
		return nil, err
	}

	if s.email != nil && review.User.Email != "" {
		if err := s.email.SendReviewApprovedEmail(review.User.Email, review.Product.Name); err != nil {
			logger.Warn("approval email not sent: ", err)
		}
	}

	return &review, nil
}

// AverageRating is the mean rating over visible reviews of a product, 0.0
// when none exist, rounded to two decimals.
func (s *ReviewService) AverageRating(ctx context.Context, productID uint) (float64, error) {
	return visibleAverageRating(s.db.WithContext(ctx), productID, time.Time{})
}

func visibleAverageRating(db *gorm.DB, productID uint, since time.Time) (float64, error) {
	var avg *float64
	query := db.Model(&models.Review{}).
		Where("product_id = ? AND is_visible = ?", productID, true)
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}
	if err := query.Select("AVG(rating)").Scan(&avg).Error; err != nil {
		return 0, err
	}
	if avg == nil {
		return 0.0, nil
	}
	return round2(*avg), nil
}

// withEngagement loads like/dislike counts and the requester's own reaction
// and report flags for a batch of reviews in three grouped queries.
func (s *ReviewService) withEngagement(ctx context.Context, actor permissions.Actor, reviews []models.Review) ([]ReviewDetail, error) {
	details := make([]ReviewDetail, 0, len(reviews))
	if len(reviews) == 0 {
		return details, nil
	}

	ids := make([]uint, len(reviews))
	for i, r := range reviews {
		ids[i] = r.ID
	}

	type reactionCount struct {
		ReviewID uint
		Reaction string
		Count    int64
	}
	var counts []reactionCount
	if err := s.db.WithContext(ctx).Model(&models.Interaction{}).
		Select("review_id, reaction, COUNT(*) as count").
		Where("review_id IN ?", ids).
		Group("review_id, reaction").
		Scan(&counts).Error; err != nil {
		return nil, apperrors.Internal("failed to count reactions", err)
	}

	likes := make(map[uint]int64)
	dislikes := make(map[uint]int64)
	for _, c := range counts {
		if c.Reaction == models.ReactionLike {
			likes[c.ReviewID] = c.Count
		} else {
			dislikes[c.ReviewID] = c.Count
		}
	}

	ownReactions := make(map[uint]string)
	reported := make(map[uint]bool)
	if !actor.Anonymous() {
		var own []models.Interaction
		if err := s.db.WithContext(ctx).
			Where("review_id IN ? AND user_id = ?", ids, actor.ID).
			Find(&own).Error; err != nil {
			return nil, apperrors.Internal("failed to load reactions", err)
		}
		for _, i := range own {
			ownReactions[i.ReviewID] = i.Reaction
		}

		var ownReports []models.Report
		if err := s.db.WithContext(ctx).
			Where("review_id IN ? AND user_id = ?", ids, actor.ID).
			Find(&ownReports).Error; err != nil {
			return nil, apperrors.Internal("failed to load reports", err)
		}
		for _, r := range ownReports {
			reported[r.ReviewID] = true
		}
	}

	for _, r := range reviews {
		detail := ReviewDetail{
			ID:               r.ID,
			ProductID:        r.ProductID,
			User:             r.User.Username,
			Rating:           r.Rating,
			ReviewText:       r.ReviewText,
			IsVisible:        r.IsVisible,
			CreatedAt:        r.CreatedAt,
			ViewsCount:       r.ViewsCount,
			LikesCount:       likes[r.ID],
			DislikesCount:    dislikes[r.ID],
			IsReportedByUser: reported[r.ID],
		}
		if reaction, ok := ownReactions[r.ID]; ok {
			reaction := reaction
			detail.UserReaction = &reaction
		}
		details = append(details, detail)
	}

	return details, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
