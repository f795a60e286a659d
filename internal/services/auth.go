package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
	"reviewhub/internal/utils"
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required"`
}

type AuthResponse struct {
	Token utils.TokenPair `json:"token"`
	User  models.User     `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if !utils.IsValidUsername(req.Username) {
		return nil, apperrors.ValidationFields("invalid registration data", map[string]string{
			"username": "letters, digits and @.+-_ only, at most 150 characters",
		})
	}
	if !utils.IsValidPassword(req.Password) {
		return nil, apperrors.ValidationFields("invalid registration data", map[string]string{
			"password": "must be at least 8 characters",
		})
	}

	user := models.User{
		Username:  utils.SanitizeString(req.Username),
		Email:     utils.SanitizeString(req.Email),
		Password:  req.Password, // hashed in BeforeCreate hook
		FirstName: utils.SanitizeString(req.FirstName),
		LastName:  utils.SanitizeString(req.LastName),
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("a user with that username already exists")
		}
		return nil, apperrors.Internal("failed to create user", err)
	}

	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", req.Username).First(&user).Error; err != nil {
		return nil, apperrors.Authentication("invalid credentials")
	}

	if !user.CheckPassword(req.Password) {
		return nil, apperrors.Authentication("invalid credentials")
	}

	// A fresh login invalidates earlier refresh tokens for the account.
	s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", user.ID, false).
		Update("is_revoked", true)

	pair, err := s.issueTokens(ctx, s.db.WithContext(ctx), &user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: *pair, User: user}, nil
}

// Refresh rotates the token pair: the presented refresh token is revoked and
// a new pair is stored, all in one transaction.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(req.Refresh, s.jwtSecret)
	if err != nil || claims.Type != string(utils.RefreshToken) {
		return nil, apperrors.Authentication("invalid refresh token")
	}

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).
		Where("token = ? AND is_revoked = ? AND expires_at > ?", req.Refresh, false, time.Now()).
		First(&stored).Error; err != nil {
		return nil, apperrors.Authentication("refresh token not found or expired")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, stored.UserID).Error; err != nil {
		return nil, apperrors.Authentication("user not found")
	}

	var pair *utils.TokenPair
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&stored).Update("is_revoked", true).Error; err != nil {
			return err
		}
		pair, err = s.issueTokens(ctx, tx, &user)
		return err
	})
	if err != nil {
		return nil, apperrors.Internal("failed to rotate tokens", err)
	}

	return &AuthResponse{Token: *pair, User: user}, nil
}

// Logout revokes the presented refresh token. A missing, unknown or already
// revoked token is a validation failure, not a silent success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.Validation("refresh token is required")
	}

	result := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ? AND is_revoked = ?", refreshToken, false).
		Update("is_revoked", true)
	if result.Error != nil {
		return apperrors.Internal("failed to revoke token", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.Validation("invalid or expired token")
	}
	return nil
}

func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, apperrors.NotFound("user not found")
	}
	return &user, nil
}

func (s *AuthService) issueTokens(ctx context.Context, tx *gorm.DB, user *models.User) (*utils.TokenPair, error) {
	pair, err := utils.GenerateTokenPair(user.ID, user.Username, user.IsStaff, s.jwtSecret)
	if err != nil {
		return nil, apperrors.Internal("failed to generate tokens", err)
	}

	stored := models.RefreshToken{
		UserID:    user.ID,
		Token:     pair.RefreshToken,
		ExpiresAt: time.Unix(pair.RefreshTokenExpiresAt, 0),
	}
	if err := tx.Create(&stored).Error; err != nil {
		return nil, apperrors.Internal("failed to store refresh token", err)
	}

	return pair, nil
}
