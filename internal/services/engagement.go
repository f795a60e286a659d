package services

import (
	"context"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
	"reviewhub/internal/permissions"
	"reviewhub/internal/utils"
)

type EngagementService struct {
	db *gorm.DB
}

func NewEngagementService(db *gorm.DB) *EngagementService {
	return &EngagementService{db: db}
}

type ReactRequest struct {
	Reaction string `json:"reaction" binding:"required"`
}

type AddCommentRequest struct {
	CommentText string `json:"comment_text" binding:"required"`
}

type CommentResponse struct {
	ID          uint   `json:"id"`
	ReviewID    uint   `json:"review_id"`
	User        string `json:"user"`
	CommentText string `json:"comment_text"`
	CreatedAt   string `json:"created_at"`
}

// React records a like or dislike. A reaction is write-once: resubmitting,
// even with the opposite reaction, is rejected rather than replaced.
func (s *EngagementService) React(ctx context.Context, actor permissions.Actor, reviewID uint, req ReactRequest) (*models.Interaction, error) {
	if !utils.IsValidReaction(req.Reaction) {
		return nil, apperrors.ValidationFields("invalid reaction", map[string]string{
			"reaction": "must be 'like' or 'dislike'",
		})
	}

	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		return nil, apperrors.NotFound("review not found")
	}

	// Friendly pre-check; the unique index settles concurrent submissions.
	var count int64
	s.db.WithContext(ctx).Model(&models.Interaction{}).
		Where("review_id = ? AND user_id = ?", reviewID, actor.ID).
		Count(&count)
	if count > 0 {
		return nil, apperrors.Conflict("you have already reacted to this review")
	}

	interaction := models.Interaction{
		ReviewID: reviewID,
		UserID:   actor.ID,
		Reaction: req.Reaction,
	}
	if err := s.db.WithContext(ctx).Create(&interaction).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("you have already reacted to this review")
		}
		return nil, apperrors.Internal("failed to save reaction", err)
	}

	return &interaction, nil
}

// AddComment is open to any authenticated user; author and timestamp are
// server-assigned.
func (s *EngagementService) AddComment(ctx context.Context, actor permissions.Actor, reviewID uint, req AddCommentRequest) (*models.ReviewComment, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		return nil, apperrors.NotFound("review not found")
	}

	comment := models.ReviewComment{
		ReviewID:    reviewID,
		UserID:      actor.ID,
		CommentText: req.CommentText,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, apperrors.Internal("failed to add comment", err)
	}

	s.db.WithContext(ctx).Preload("User").First(&comment, comment.ID)
	return &comment, nil
}

// ListComments returns a review's comments newest first.
func (s *EngagementService) ListComments(ctx context.Context, reviewID uint) ([]CommentResponse, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		return nil, apperrors.NotFound("review not found")
	}

	var comments []models.ReviewComment
	if err := s.db.WithContext(ctx).Preload("User").
		Where("review_id = ?", reviewID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, apperrors.Internal("failed to fetch comments", err)
	}

	response := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		response = append(response, CommentResponse{
			ID:          c.ID,
			ReviewID:    c.ReviewID,
			User:        c.User.Username,
			CommentText: c.CommentText,
			CreatedAt:   c.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return response, nil
}
