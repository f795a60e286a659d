package services

import (
	"context"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
	"reviewhub/internal/moderation"
	"reviewhub/internal/permissions"
)

type ModerationService struct {
	db      *gorm.DB
	matcher moderation.Matcher
}

func NewModerationService(db *gorm.DB, matcher moderation.Matcher) *ModerationService {
	return &ModerationService{db: db, matcher: matcher}
}

type ReportRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminSummary holds three independent counters over current state.
type AdminSummary struct {
	NotApprovedReviews int64 `json:"not_approved_reviews"`
	LowRatedReviews    int64 `json:"low_rated_reviews"`
	OffensiveReviews   int64 `json:"offensive_reviews"`
}

// Report files a concern against a review, at most once per user per review.
func (s *ModerationService) Report(ctx context.Context, actor permissions.Actor, reviewID uint, req ReportRequest) (*models.Report, error) {
	var review models.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		return nil, apperrors.NotFound("review not found")
	}

	var count int64
	s.db.WithContext(ctx).Model(&models.Report{}).
		Where("review_id = ? AND user_id = ?", reviewID, actor.ID).
		Count(&count)
	if count > 0 {
		return nil, apperrors.Conflict("you have already reported this review")
	}

	report := models.Report{
		ReviewID: reviewID,
		UserID:   actor.ID,
		Reason:   req.Reason,
	}
	if err := s.db.WithContext(ctx).Create(&report).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperrors.Conflict("you have already reported this review")
		}
		return nil, apperrors.Internal("failed to submit report", err)
	}

	return &report, nil
}

// Summary computes the staff moderation counters: reviews pending approval,
// visible low-rated reviews, and visible reviews the keyword matcher flags.
func (s *ModerationService) Summary(ctx context.Context, actor permissions.Actor) (*AdminSummary, error) {
	if err := permissions.Check(permissions.OpAdminSummary, actor, nil); err != nil {
		return nil, err
	}

	var summary AdminSummary

	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("is_visible = ?", false).
		Count(&summary.NotApprovedReviews).Error; err != nil {
		return nil, apperrors.Internal("failed to compute summary", err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("is_visible = ? AND rating IN ?", true, []int{1, 2}).
		Count(&summary.LowRatedReviews).Error; err != nil {
		return nil, apperrors.Internal("failed to compute summary", err)
	}

	// Matching runs in process so the matcher stays swappable and is not
	// tied to one SQL dialect's regex support.
	var texts []string
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("is_visible = ?", true).
		Pluck("review_text", &texts).Error; err != nil {
		return nil, apperrors.Internal("failed to compute summary", err)
	}
	for _, text := range texts {
		if s.matcher.Match(text) {
			summary.OffensiveReviews++
		}
	}

	return &summary, nil
}
