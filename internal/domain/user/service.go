// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eticaret/storefront/internal/pkg/apperr"
	"github.com/eticaret/storefront/internal/pkg/auth"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", apperr.ErrUnauthorized)

// CartTransferrer moves a guest cart to a user after login
type CartTransferrer interface {
	TransferCartToUser(ctx context.Context, sessionID string, userID uint) (bool, error)
}

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	log             *logrus.Logger
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
	carts           CartTransferrer
}

// NewService creates a new user service
func NewService(db *gorm.DB, log *logrus.Logger, passwords *auth.PasswordManager, tokens *auth.JWTManager, carts CartTransferrer) *Service {
	return &Service{
		db:              db,
		log:             log,
		passwordManager: passwords,
		jwtManager:      tokens,
		carts:           carts,
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	FirstName       string `json:"first_name" binding:"required"`
	LastName        string `json:"last_name" binding:"required"`
	Phone           string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Register creates a new user account. A guest cart under sessionID is
// handed over to the new account.
func (s *Service) Register(ctx context.Context, req *RegisterRequest, sessionID string) (*AuthResponse, error) {
	if req.Password != req.ConfirmPassword {
		return nil, apperr.Validation("passwords do not match")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}

	email := normalizeEmail(req.Email)
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, apperr.Validation("user with this email already exists")
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := User{
		Email:       email,
		Password:    hashedPassword,
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		Phone:       strings.TrimSpace(req.Phone),
		IsActive:    true,
		LastLoginAt: &now,
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("user with this email already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID}).Info("user registered")
	return s.signIn(ctx, &user, sessionID)
}

// Login authenticates a user and attaches the caller's guest cart
func (s *Service) Login(ctx context.Context, req *LoginRequest, sessionID string) (*AuthResponse, error) {
	db := s.db.WithContext(ctx)

	var user User
	err := db.Where("email = ? AND is_active = ?", normalizeEmail(req.Email), true).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, user.Password); err != nil {
		s.log.WithField("user_id", user.ID).Warn("failed login attempt")
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := db.Model(&user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLoginAt = &now

	return s.signIn(ctx, &user, sessionID)
}

func (s *Service) signIn(ctx context.Context, user *User, sessionID string) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	if sessionID != "" && s.carts != nil {
		if _, err := s.carts.TransferCartToUser(ctx, sessionID, user.ID); err != nil {
			// the login itself succeeded
			s.log.WithError(err).WithField("user_id", user.ID).Warn("guest cart transfer failed")
		}
	}

	return &AuthResponse{
		User:        user,
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtManager.Expiry().Seconds()),
	}, nil
}

// GetProfile gets user profile by ID
func (s *Service) GetProfile(ctx context.Context, userID uint) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if err != nil {
		return nil, apperr.FromGorm(err, "user")
	}
	return &user, nil
}
