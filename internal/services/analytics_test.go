package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
)

func backdate(t *testing.T, db *gorm.DB, reviewID uint, age time.Duration) {
	t.Helper()
	when := time.Now().Add(-age)
	if err := db.Model(&models.Review{}).Where("id = ?", reviewID).
		UpdateColumn("created_at", when).Error; err != nil {
		t.Fatalf("backdate review %d: %v", reviewID, err)
	}
}

func TestGeneralAnalyticsStaffOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db, NewReviewService(db, NewNotificationService(db), nil), nil)

	user := createUser(t, db, "plain", false)

	if _, err := svc.General(context.Background(), actorFor(user)); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Fatalf("non-staff: expected permission error, got %v", err)
	}
	if _, err := svc.Product(context.Background(), actorFor(user), 1); apperrors.KindOf(err) != apperrors.KindPermission {
		t.Fatalf("non-staff product analytics: expected permission error, got %v", err)
	}
}

func TestGeneralAnalyticsWindow(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db, NewReviewService(db, NewNotificationService(db), nil), nil)
	ctx := context.Background()

	staff := createUser(t, db, "moderator", true)
	alice := createUser(t, db, "alice", false)
	bob := createUser(t, db, "bob", false)
	fan := createUser(t, db, "fan", false)
	gadget := createProduct(t, db, "Gadget")
	widget := createProduct(t, db, "Widget")

	// Inside the window: alice writes two reviews, bob one.
	r1 := createReview(t, db, gadget.ID, alice.ID, 5, "great", true)
	createReview(t, db, gadget.ID, alice.ID, 4, "good", true)
	createReview(t, db, widget.ID, bob.ID, 3, "okay", true)

	// Outside the window: heavily reviewed but forty days old.
	old := createReview(t, db, widget.ID, bob.ID, 1, "old gripe", true)
	backdate(t, db, old.ID, 40*24*time.Hour)

	db.Create(&models.Interaction{ReviewID: r1.ID, UserID: fan.ID, Reaction: models.ReactionLike})
	db.Create(&models.Interaction{ReviewID: r1.ID, UserID: bob.ID, Reaction: models.ReactionLike})
	db.Create(&models.Interaction{ReviewID: old.ID, UserID: alice.ID, Reaction: models.ReactionLike})

	result, err := svc.General(ctx, actorFor(staff))
	if err != nil {
		t.Fatalf("general analytics: %v", err)
	}

	if len(result.TopReviewers) == 0 || result.TopReviewers[0].Username != "alice" {
		t.Fatalf("expected alice as top reviewer, got %+v", result.TopReviewers)
	}
	if result.TopReviewers[0].ReviewCount != 2 {
		t.Errorf("alice review_count = %d, want 2", result.TopReviewers[0].ReviewCount)
	}
	for _, r := range result.TopReviewers {
		if r.Username == "bob" && r.ReviewCount != 1 {
			t.Errorf("bob review_count = %d, want 1 (old review excluded)", r.ReviewCount)
		}
	}

	// Gadget averages (5+4)/2 = 4.5; widget's in-window average is 3.0, the
	// forty-day-old 1-star must not drag it down.
	avgs := make(map[string]float64)
	for _, p := range result.TopRatedProducts {
		avgs[p.ProductName] = p.AverageRating
	}
	if avgs["Gadget"] != 4.5 {
		t.Errorf("Gadget average = %v, want 4.5", avgs["Gadget"])
	}
	if avgs["Widget"] != 3.0 {
		t.Errorf("Widget average = %v, want 3.0", avgs["Widget"])
	}

	if result.TopReviewByLikes == nil {
		t.Fatal("expected a most-liked review")
	}
	if result.TopReviewByLikes.ID != r1.ID {
		t.Errorf("most-liked review = %d, want %d (old review excluded)", result.TopReviewByLikes.ID, r1.ID)
	}
	if result.TopReviewByLikes.LikeCount != 2 {
		t.Errorf("like_count = %d, want 2", result.TopReviewByLikes.LikeCount)
	}
}

func TestGeneralAnalyticsNoLikes(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db, NewReviewService(db, NewNotificationService(db), nil), nil)

	staff := createUser(t, db, "moderator", true)

	result, err := svc.General(context.Background(), actorFor(staff))
	if err != nil {
		t.Fatalf("general analytics on empty data: %v", err)
	}
	if result.TopReviewByLikes != nil {
		t.Error("expected nil most-liked review when nothing is liked")
	}
	if len(result.TopReviewers) != 0 || len(result.TopRatedProducts) != 0 {
		t.Errorf("expected empty lists, got %+v", result)
	}
}

func TestTopRatedProductsVisibleOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db, NewReviewService(db, NewNotificationService(db), nil), nil)
	ctx := context.Background()

	staff := createUser(t, db, "moderator", true)
	author := createUser(t, db, "author", false)
	rated := createProduct(t, db, "Rated")
	createProduct(t, db, "Unrated")
	hiddenOnly := createProduct(t, db, "HiddenOnly")

	createReview(t, db, rated.ID, author.ID, 4, "", true)
	createReview(t, db, rated.ID, author.ID, 5, "", true)
	createReview(t, db, rated.ID, author.ID, 1, "hidden", false)
	createReview(t, db, hiddenOnly.ID, author.ID, 5, "hidden", false)

	result, err := svc.General(ctx, actorFor(staff))
	if err != nil {
		t.Fatalf("general analytics: %v", err)
	}
	if len(result.TopRatedProducts) != 1 {
		t.Fatalf("expected only products with visible reviews, got %+v", result.TopRatedProducts)
	}
	if result.TopRatedProducts[0].ProductName != "Rated" {
		t.Errorf("top product = %q, want Rated", result.TopRatedProducts[0].ProductName)
	}
	if result.TopRatedProducts[0].AverageRating != 4.5 {
		t.Errorf("average = %v, want 4.5 (hidden 1-star excluded)", result.TopRatedProducts[0].AverageRating)
	}
}

func TestProductAnalytics(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db, NewReviewService(db, NewNotificationService(db), nil), nil)
	ctx := context.Background()

	staff := createUser(t, db, "moderator", true)
	author := createUser(t, db, "author", false)
	product := createProduct(t, db, "Gadget")

	createReview(t, db, product.ID, author.ID, 4, "good gadget good value", true)
	createReview(t, db, product.ID, author.ID, 2, "Good but fragile", true)
	createReview(t, db, product.ID, author.ID, 5, "hidden praise", false)
	old := createReview(t, db, product.ID, author.ID, 1, "ancient", true)
	backdate(t, db, old.ID, 40*24*time.Hour)

	result, err := svc.Product(ctx, actorFor(staff), product.ID)
	if err != nil {
		t.Fatalf("product analytics: %v", err)
	}
	if result.ReviewCountLast30Days != 2 {
		t.Errorf("review count = %d, want 2", result.ReviewCountLast30Days)
	}
	if result.AverageRatingLast30Days != 3.0 {
		t.Errorf("average = %v, want 3.0", result.AverageRatingLast30Days)
	}
	if result.TopRecentRating == nil || *result.TopRecentRating != 4 {
		t.Errorf("top recent rating = %v, want 4", result.TopRecentRating)
	}

	// "good" appears three times (case-insensitive) and must lead.
	if len(result.CommonWords) == 0 {
		t.Fatal("expected common words")
	}
	if result.CommonWords[0].Word != "good" || result.CommonWords[0].Count != 3 {
		t.Errorf("top word = %+v, want good x3", result.CommonWords[0])
	}
	if len(result.CommonWords) > 5 {
		t.Errorf("common words capped at 5, got %d", len(result.CommonWords))
	}
}

func TestProductAnalyticsEmptyAndMissing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAnalyticsService(db, NewReviewService(db, NewNotificationService(db), nil), nil)
	ctx := context.Background()

	staff := createUser(t, db, "moderator", true)
	product := createProduct(t, db, "Lonely")

	result, err := svc.Product(ctx, actorFor(staff), product.ID)
	if err != nil {
		t.Fatalf("product analytics without reviews: %v", err)
	}
	if result.AverageRatingLast30Days != 0.0 || result.ReviewCountLast30Days != 0 {
		t.Errorf("expected zeroed aggregates, got %+v", result)
	}
	if result.TopRecentRating != nil {
		t.Error("top recent rating must be nil without reviews")
	}
	if len(result.CommonWords) != 0 {
		t.Errorf("expected no common words, got %+v", result.CommonWords)
	}

	if _, err := svc.Product(ctx, actorFor(staff), 9999); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("missing product: expected not-found, got %v", err)
	}
}

func TestMostCommonWordsTieOrder(t *testing.T) {
	words := mostCommonWords([]string{"alpha beta alpha", "beta gamma delta"}, 5)
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %d", len(words))
	}
	// alpha and beta both count 2; alpha was seen first and stays first.
	if words[0].Word != "alpha" || words[0].Count != 2 {
		t.Errorf("words[0] = %+v, want alpha x2", words[0])
	}
	if words[1].Word != "beta" || words[1].Count != 2 {
		t.Errorf("words[1] = %+v, want beta x2", words[1])
	}

	capped := mostCommonWords([]string{"a b c d e f g"}, 5)
	if len(capped) != 5 {
		t.Errorf("expected cap of 5, got %d", len(capped))
	}
}

func TestMostCommonWordsUnicode(t *testing.T) {
	words := mostCommonWords([]string{"منتج جيد", "جيد جدا"}, 5)
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d: %+v", len(words), words)
	}
	if words[0].Word != "جيد" || words[0].Count != 2 {
		t.Errorf("words[0] = %+v, want جيد x2", words[0])
	}

	accented := mostCommonWords([]string{"Très bon, très bon!"}, 5)
	if len(accented) != 2 {
		t.Fatalf("expected 2 words, got %+v", accented)
	}
	if accented[0].Word != "très" || accented[0].Count != 2 {
		t.Errorf("accented[0] = %+v, want très x2", accented[0])
	}
}
