package services

import (
	"context"
	"time"

	"github.com/stoktakip/erp_backend/internal/core/domain"
	"github.com/stoktakip/erp_backend/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a specific user.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// ListUsers retrieves a paginated list of users.
	ListUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser persists a new user with a hashed password.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, creatorUserID string) (*domain.User, error)

	// UpdateUser updates an existing user's details.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error)

	// DeleteUser marks a user as deleted (soft delete).
	DeleteUser(ctx context.Context, userID string, requestingUserID string) error
}

// AuthSvc defines authentication operations
type AuthSvc interface {
	// Authenticate verifies credentials and returns the user.
	Authenticate(ctx context.Context, username string, password string) (*domain.User, error)

	// GenerateAccessToken issues a signed JWT for the user.
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
}

// UserSvcFacade combines all user-related service interfaces
// This is a facade for clients that need access to all operations
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	AuthSvc
}
