package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/riyakoli232311/SHG-management/internal/model"
	"github.com/riyakoli232311/SHG-management/internal/repository"
)

const bcryptCost = 12

type AuthService struct {
	userRepo    *repository.UserRepository
	shgRepo     *repository.SHGRepository
	jwtSecret   string
	tokenExpiry time.Duration
	logger      *logrus.Logger
}

func NewAuthService(
	userRepo *repository.UserRepository,
	shgRepo *repository.SHGRepository,
	jwtSecret string,
	tokenExpiry time.Duration,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		shgRepo:     shgRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

// SignUp registers a new account and returns the result plus a session token.
func (s *AuthService) SignUp(ctx context.Context, req model.SignupRequest) (*model.AuthResult, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.WithField("email", email).Info("Signup attempt")

	if req.Name == "" || email == "" || req.Password == "" {
		return nil, "", fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, "", fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.WithError(err).Error("Failed to check existing user")
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		s.logger.Warn("Email already registered")
		return nil, "", fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		s.logger.WithError(err).Error("Failed to hash password")
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.WithError(err).Error("Failed to create user")
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateToken(user.ID.String())
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return &model.AuthResult{User: user, Onboarded: false}, token, nil
}

// SignIn verifies credentials and reports whether the SHG profile exists yet.
func (s *AuthService) SignIn(ctx context.Context, req model.LoginRequest) (*model.AuthResult, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	s.logger.WithField("email", email).Info("Login attempt")

	if email == "" || req.Password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.WithError(err).Warn("User not found or bad credentials")
		return nil, "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Wrong password on login attempt")
		return nil, "", fmt.Errorf("invalid credentials")
	}

	result := &model.AuthResult{User: user}
	shg, err := s.shgRepo.GetByUserID(ctx, user.ID)
	if err == nil {
		result.Onboarded = true
		result.SHGName = &shg.Name
	} else if !errors.Is(err, sql.ErrNoRows) {
		s.logger.WithError(err).Error("Failed to look up SHG during login")
		return nil, "", fmt.Errorf("failed to look up SHG: %w", err)
	}

	token, err := s.GenerateToken(user.ID.String())
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate session token")
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User logged in")
	return result, token, nil
}

// Me returns the current user with their SHG profile, if set up.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*model.User, *model.SHG, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user: %w", err)
	}

	shg, err := s.shgRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to load SHG: %w", err)
	}

	return user, shg, nil
}

func (s *AuthService) GenerateToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenExpiry)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken validates a session token and returns the user ID it carries.
func (s *AuthService) ParseToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}

	return claims.Subject, nil
}
