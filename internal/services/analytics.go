package services

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/cache"
	"reviewhub/internal/models"
	"reviewhub/internal/permissions"
)

// analyticsWindow is the fixed trailing period every aggregate uses.
const analyticsWindow = 30 * 24 * time.Hour

const analyticsCacheTTL = 60 * time.Second

type AnalyticsService struct {
	db      *gorm.DB
	reviews *ReviewService
	cache   *cache.Cache
	now     func() time.Time
}

func NewAnalyticsService(db *gorm.DB, reviews *ReviewService, c *cache.Cache) *AnalyticsService {
	return &AnalyticsService{db: db, reviews: reviews, cache: c, now: time.Now}
}

type TopReviewer struct {
	Username    string `json:"username"`
	ReviewCount int64  `json:"review_count"`
}

type TopRatedProduct struct {
	ProductID     uint    `json:"product_id"`
	ProductName   string  `json:"product_name"`
	AverageRating float64 `json:"average_rating"`
}

type TopReview struct {
	ReviewDetail
	LikeCount int64 `json:"like_count"`
}

type GeneralAnalytics struct {
	TopReviewers     []TopReviewer     `json:"top_reviewers_last_30_days"`
	TopRatedProducts []TopRatedProduct `json:"top_rated_products_last_30_days"`
	TopReviewByLikes *TopReview        `json:"top_review_by_likes"`
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type ProductAnalytics struct {
	AverageRatingLast30Days float64     `json:"average_rating_last_30_days"`
	ReviewCountLast30Days   int64       `json:"review_count_last_30_days"`
	TopRecentRating         *int        `json:"top_recent_rating"`
	CommonWords             []WordCount `json:"common_words"`
}

// General computes the staff-wide 30-day aggregates: top reviewers, top rated
// products (visible reviews only, zero-review products excluded), and the
// single most-liked visible review created inside the window.
func (s *AnalyticsService) General(ctx context.Context, actor permissions.Actor) (*GeneralAnalytics, error) {
	if err := permissions.Check(permissions.OpAnalyticsGeneral, actor, nil); err != nil {
		return nil, err
	}

	var cached GeneralAnalytics
	if s.cache.Get(ctx, "analytics:general", &cached) {
		return &cached, nil
	}

	since := s.now().Add(-analyticsWindow)
	result := &GeneralAnalytics{
		TopReviewers:     []TopReviewer{},
		TopRatedProducts: []TopRatedProduct{},
	}

	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("users.username, COUNT(reviews.id) as review_count").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.created_at >= ?", since).
		Group("users.id, users.username").
		Order("review_count DESC").
		Limit(5).
		Scan(&result.TopReviewers).Error; err != nil {
		return nil, apperrors.Internal("failed to compute top reviewers", err)
	}

	type productAvg struct {
		ProductID   uint
		ProductName string
		AvgRating   float64
	}
	var topProducts []productAvg
	if err := s.db.WithContext(ctx).Model(&models.Review{}).
		Select("products.id as product_id, products.name as product_name, AVG(reviews.rating) as avg_rating").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("reviews.created_at >= ? AND reviews.is_visible = ?", since, true).
		Group("products.id, products.name").
		Order("avg_rating DESC").
		Limit(5).
		Scan(&topProducts).Error; err != nil {
		return nil, apperrors.Internal("failed to compute top products", err)
	}
	for _, p := range topProducts {
		result.TopRatedProducts = append(result.TopRatedProducts, TopRatedProduct{
			ProductID:     p.ProductID,
			ProductName:   p.ProductName,
			AverageRating: round2(p.AvgRating),
		})
	}

	topReview, err := s.mostLikedReview(ctx, actor, since)
	if err != nil {
		return nil, err
	}
	result.TopReviewByLikes = topReview

	s.cache.Set(ctx, "analytics:general", result, analyticsCacheTTL)
	return result, nil
}

// Product computes one product's 30-day aggregates over its visible reviews,
// including the five most frequent words of their text.
func (s *AnalyticsService) Product(ctx context.Context, actor permissions.Actor, productID uint) (*ProductAnalytics, error) {
	if err := permissions.Check(permissions.OpAnalyticsProduct, actor, nil); err != nil {
		return nil, err
	}

	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, productID).Error; err != nil {
		return nil, apperrors.NotFound("product not found")
	}

	cacheKey := fmt.Sprintf("analytics:product:%d", productID)
	var cached ProductAnalytics
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	since := s.now().Add(-analyticsWindow)

	avg, err := visibleAverageRating(s.db.WithContext(ctx), productID, since)
	if err != nil {
		return nil, apperrors.Internal("failed to compute product analytics", err)
	}

	windowQuery := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Review{}).
			Where("product_id = ? AND is_visible = ? AND created_at >= ?", productID, true, since)
	}

	var count int64
	if err := windowQuery().Count(&count).Error; err != nil {
		return nil, apperrors.Internal("failed to compute product analytics", err)
	}

	result := &ProductAnalytics{
		AverageRatingLast30Days: avg,
		ReviewCountLast30Days:   count,
		CommonWords:             []WordCount{},
	}

	if count > 0 {
		var topRating int
		if err := windowQuery().Select("MAX(rating)").Scan(&topRating).Error; err != nil {
			return nil, apperrors.Internal("failed to compute product analytics", err)
		}
		result.TopRecentRating = &topRating

		var texts []string
		if err := windowQuery().Order("created_at ASC, id ASC").
			Pluck("review_text", &texts).Error; err != nil {
			return nil, apperrors.Internal("failed to compute product analytics", err)
		}
		result.CommonWords = mostCommonWords(texts, 5)
	}

	s.cache.Set(ctx, cacheKey, result, analyticsCacheTTL)
	return result, nil
}

func (s *AnalyticsService) mostLikedReview(ctx context.Context, actor permissions.Actor, since time.Time) (*TopReview, error) {
	type likeRow struct {
		ReviewID  uint
		LikeCount int64
	}
	var top likeRow
	err := s.db.WithContext(ctx).Model(&models.Interaction{}).
		Select("interactions.review_id, COUNT(interactions.id) as like_count").
		Joins("JOIN reviews ON reviews.id = interactions.review_id").
		Where("interactions.reaction = ? AND reviews.created_at >= ? AND reviews.is_visible = ?",
			models.ReactionLike, since, true).
		Group("interactions.review_id").
		Order("like_count DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, apperrors.Internal("failed to compute top review", err)
	}
	if top.ReviewID == 0 {
		return nil, nil
	}

	var review models.Review
	if err := s.db.WithContext(ctx).Preload("User").First(&review, top.ReviewID).Error; err != nil {
		return nil, apperrors.Internal("failed to load top review", err)
	}
	details, err := s.reviews.withEngagement(ctx, actor, []models.Review{review})
	if err != nil {
		return nil, err
	}

	return &TopReview{ReviewDetail: details[0], LikeCount: top.LikeCount}, nil
}

// Unicode letters and digits, not just ASCII \w; review text is not
// English-only.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// mostCommonWords tokenizes lower-cased texts on word boundaries and returns
// the n most frequent words; ties keep first-encountered order.
func mostCommonWords(texts []string, n int) []WordCount {
	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
			if counts[word] == 0 {
				order = append(order, word)
			}
			counts[word]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > n {
		order = order[:n]
	}
	result := make([]WordCount, 0, len(order))
	for _, word := range order {
		result = append(result, WordCount{Word: word, Count: counts[word]})
	}
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
