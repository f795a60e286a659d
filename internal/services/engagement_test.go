package services

import (
	"context"
	"testing"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
)

func TestReactWriteOnce(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEngagementService(db)
	ctx := context.Background()

	author := createUser(t, db, "author", false)
	fan := createUser(t, db, "fan", false)
	critic := createUser(t, db, "critic", false)
	product := createProduct(t, db, "Gadget")
	review := createReview(t, db, product.ID, author.ID, 4, "solid", true)

	interaction, err := svc.React(ctx, actorFor(fan), review.ID, ReactRequest{Reaction: models.ReactionLike})
	if err != nil {
		t.Fatalf("first reaction failed: %v", err)
	}
	if interaction.Reaction != models.ReactionLike {
		t.Errorf("expected stored reaction 'like', got %q", interaction.Reaction)
	}

	// Same reaction again is rejected.
	if _, err := svc.React(ctx, actorFor(fan), review.ID, ReactRequest{Reaction: models.ReactionLike}); apperrors.KindOf(err) != apperrors.KindConflict {
		t.Errorf("duplicate reaction: expected conflict, got %v", err)
	}

	// So is switching to the opposite reaction.
	if _, err := svc.React(ctx, actorFor(fan), review.ID, ReactRequest{Reaction: models.ReactionDislike}); apperrors.KindOf(err) != apperrors.KindConflict {
		t.Errorf("opposite reaction: expected conflict, got %v", err)
	}

	// A different user still can react.
	if _, err := svc.React(ctx, actorFor(critic), review.ID, ReactRequest{Reaction: models.ReactionDislike}); err != nil {
		t.Errorf("second user reaction failed: %v", err)
	}

	var count int64
	db.Model(&models.Interaction{}).Where("review_id = ?", review.ID).Count(&count)
	if count != 2 {
		t.Errorf("expected 2 interactions, got %d", count)
	}
}

func TestReactValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEngagementService(db)
	ctx := context.Background()

	author := createUser(t, db, "author", false)
	fan := createUser(t, db, "fan", false)
	product := createProduct(t, db, "Gadget")
	review := createReview(t, db, product.ID, author.ID, 4, "", true)

	if _, err := svc.React(ctx, actorFor(fan), review.ID, ReactRequest{Reaction: "love"}); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("invalid reaction value: expected validation error, got %v", err)
	}

	if _, err := svc.React(ctx, actorFor(fan), 9999, ReactRequest{Reaction: models.ReactionLike}); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("missing review: expected not-found, got %v", err)
	}
}

func TestCommentsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEngagementService(db)
	ctx := context.Background()

	author := createUser(t, db, "author", false)
	commenter := createUser(t, db, "commenter", false)
	product := createProduct(t, db, "Gadget")
	review := createReview(t, db, product.ID, author.ID, 4, "solid", true)

	for _, text := range []string{"first", "second", "third"} {
		comment, err := svc.AddComment(ctx, actorFor(commenter), review.ID, AddCommentRequest{CommentText: text})
		if err != nil {
			t.Fatalf("add comment %q: %v", text, err)
		}
		if comment.User.Username != "commenter" {
			t.Errorf("comment author = %q, want commenter", comment.User.Username)
		}
	}

	comments, err := svc.ListComments(ctx, review.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(comments))
	}
	// Equal timestamps are possible in fast test runs; only a strict
	// inversion is a failure.
	for i := 1; i < len(comments); i++ {
		if comments[i-1].CreatedAt < comments[i].CreatedAt {
			t.Fatalf("comments not ordered newest-first at index %d", i)
		}
	}
}

func TestAddCommentMissingReview(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEngagementService(db)

	commenter := createUser(t, db, "commenter", false)

	if _, err := svc.AddComment(context.Background(), actorFor(commenter), 42, AddCommentRequest{CommentText: "hi"}); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}
