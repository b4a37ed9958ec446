package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// DefaultBcryptCost is used when no cost is configured.
const DefaultBcryptCost = 10

const minPasswordLength = 8

// CredentialsInput is the body of sign-up and sign-in.
type CredentialsInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// CreateUserInput is the admin form for adding an account.
type CreateUserInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	IsAdmin  bool   `json:"is_admin"`
}

// UserService implements accounts, sign-in and the admin user listing.
type UserService struct {
	repo       repository.UserRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	logger     *slog.Logger
	bcryptCost int
}

// NewUserService creates a new user service. A bcryptCost of 0 selects
// DefaultBcryptCost.
func NewUserService(
	repo repository.UserRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	logger *slog.Logger,
	bcryptCost int,
) *UserService {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	return &UserService{
		repo:       repo,
		jwtManager: jwtManager,
		producer:   producer,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

// Signup registers a regular (non-admin) account.
func (s *UserService) Signup(ctx context.Context, input CredentialsInput) (*domain.User, error) {
	return s.create(ctx, input.Email, input.Password, false)
}

// CreateUser registers an account from the back-office, optionally as admin.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	return s.create(ctx, input.Email, input.Password, input.IsAdmin)
}

func (s *UserService) create(ctx context.Context, email, password string, isAdmin bool) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperrors.InvalidInput("password is too long")
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, &apperrors.AppError{
				Code:    "ALREADY_EXISTS",
				Message: "user already exists",
				Status:  http.StatusConflict,
				Err:     apperrors.ErrAlreadyExists,
			}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.producer.PublishUserCreated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.created event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user created",
		slog.String("user_id", user.ID),
		slog.Bool("is_admin", user.IsAdmin),
	)
	return user, nil
}

// Signin verifies credentials and issues an access token.
func (s *UserService) Signin(ctx context.Context, input CredentialsInput) (*domain.Session, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.InvalidInput("email and password are required")
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	token, expiresAt, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed in", slog.String("user_id", user.ID))

	return &domain.Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns the back-office user listing.
func (s *UserService) ListUsers(ctx context.Context, p pagination.Params) (pagination.Result[domain.User], error) {
	users, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return pagination.Result[domain.User]{}, fmt.Errorf("list users: %w", err)
	}
	return pagination.NewResult(users, total, p), nil
}

// DeleteUser removes account id. Admins cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, actorID, id string) error {
	if id == actorID {
		return apperrors.InvalidInput("you cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := s.producer.PublishUserDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
			slog.String("user_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", id),
		slog.String("deleted_by", actorID),
	)
	return nil
}

// CountUsers is used by the admin overview.
func (s *UserService) CountUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
