package services

import (
	"context"
	"testing"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/utils"
)

const testJWTSecret = "test-secret"

func TestRegisterValidation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTSecret)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad username chars", RegisterRequest{Username: "bad user!", Password: "validpass123"}},
		{"empty username", RegisterRequest{Username: "", Password: "validpass123"}},
		{"short password", RegisterRequest{Username: "gooduser", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.req); apperrors.KindOf(err) != apperrors.KindValidation {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTSecret)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "validpass123", Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "validpass123" {
		t.Error("stored password must be hashed")
	}

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "otherpass123"}); apperrors.KindOf(err) != apperrors.KindConflict {
		t.Fatalf("duplicate username: expected conflict, got %v", err)
	}
}

func TestLoginAndRefresh(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTSecret)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "validpass123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "wrongpass"}); apperrors.KindOf(err) != apperrors.KindAuthentication {
		t.Fatalf("wrong password: expected authentication error, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Username: "nobody", Password: "validpass123"}); apperrors.KindOf(err) != apperrors.KindAuthentication {
		t.Fatalf("unknown user: expected authentication error, got %v", err)
	}

	auth, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "validpass123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := utils.ValidateToken(auth.Token.AccessToken, testJWTSecret)
	if err != nil {
		t.Fatalf("access token does not validate: %v", err)
	}
	if claims.Username != "alice" || claims.Type != string(utils.AccessToken) {
		t.Errorf("unexpected access claims: %+v", claims)
	}

	rotated, err := svc.Refresh(ctx, RefreshRequest{Refresh: auth.Token.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.Token.RefreshToken == auth.Token.RefreshToken {
		t.Error("refresh must rotate the refresh token")
	}

	// The old token was revoked by the rotation.
	if _, err := svc.Refresh(ctx, RefreshRequest{Refresh: auth.Token.RefreshToken}); apperrors.KindOf(err) != apperrors.KindAuthentication {
		t.Errorf("reused refresh token: expected authentication error, got %v", err)
	}

	// An access token is not accepted as a refresh token.
	if _, err := svc.Refresh(ctx, RefreshRequest{Refresh: rotated.Token.AccessToken}); apperrors.KindOf(err) != apperrors.KindAuthentication {
		t.Errorf("access token as refresh: expected authentication error, got %v", err)
	}
}

func TestGetUserByID(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTSecret)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "validpass123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := svc.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}

	if _, err := svc.GetUserByID(ctx, 9999); apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("unknown id: expected not-found, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAuthService(db, testJWTSecret)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{Username: "alice", Password: "validpass123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	auth, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "validpass123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, auth.Token.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	// Second revoke of the same token fails loudly.
	if err := svc.Logout(ctx, auth.Token.RefreshToken); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("double logout: expected validation error, got %v", err)
	}
	if err := svc.Logout(ctx, "bogus"); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("unknown token: expected validation error, got %v", err)
	}
	if err := svc.Logout(ctx, ""); apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("empty token: expected validation error, got %v", err)
	}

	if _, err := svc.Refresh(ctx, RefreshRequest{Refresh: auth.Token.RefreshToken}); apperrors.KindOf(err) != apperrors.KindAuthentication {
		t.Errorf("refresh after logout: expected authentication error, got %v", err)
	}
}
