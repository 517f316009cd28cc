package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// wrongCredentials is returned for both an unknown email and a bad password.
const wrongCredentials = "wrong credentials"

// UserService implements account registration and login.
type UserService struct {
	repo   repository.UserRepository
	tokens TokenIssuer
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new user service.
func NewUserService(repo repository.UserRepository, tokens TokenIssuer, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// LoginResult is a successful login.
type LoginResult struct {
	User        *domain.User
	AccessToken string
}

// Register creates a new account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if !input.Role.Valid() {
		return nil, apperrors.InvalidInput("role must be one of: BUYER SELLER")
	}
	email := strings.TrimSpace(input.Email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.AlreadyExists("user", "email", email)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("register user: %w", apperrors.FromStore(err))
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", apperrors.Internal(err))
	}

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("register user: %w", apperrors.FromStore(err))
	}

	now := s.now()
	user := &domain.User{
		UserID:       domain.NextUserID(count),
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register user: %w", apperrors.FromStore(err))
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.UserID),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Login checks the credentials and issues an access token. An unknown email
// and a wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput(wrongCredentials)
		}
		return nil, fmt.Errorf("login: %w", apperrors.FromStore(err))
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperrors.InvalidInput(wrongCredentials)
		}
		return nil, fmt.Errorf("login: %w", apperrors.Internal(err))
	}

	token, err := s.tokens.GenerateAccessToken(user.UserID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("login: %w", apperrors.Internal(err))
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.UserID))

	return &LoginResult{User: user, AccessToken: token}, nil
}

// GetUser retrieves an account by userId.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", apperrors.FromStore(err))
	}
	return user, nil
}
