package server

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/config"
	"github.com/jonathan/placement-cell/internal/types"
)

// UserStore is the account storage the UserService needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error)
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*types.User, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	db             UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(db UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		db:             db,
		passwordConfig: passwordConfig,
	}
}

// Register creates a new account. A taken email or username is a *types.ErrConflict.
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	role, err := types.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if existing != nil {
		return nil, &types.ErrConflict{Entity: "user", Message: "User already exists"}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, req.Username, req.Email, passwordHash, role)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	user, err := s.db.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if user == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return user, nil
}

// Me returns the account behind an authenticated principal.
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &types.ErrNotFound{Entity: "user", ID: userID.String()}
	}
	return user, nil
}
