package identity

import (
	"context"

	"github.com/utilitrack/backend/internal/domain/identity"
	"github.com/utilitrack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles user management operations
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Create creates a new back-office user
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	s.logger.Info("Creating new user",
		zap.String("username", input.Username),
		zap.String("role", input.Role))

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error("Failed to check username existence", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, shared.ErrAlreadyExists.WithMessage("Username %s already exists", input.Username)
	}

	role := identity.Role(input.Role)
	if input.Role == "" {
		role = identity.RoleStaff
	}

	user, err := identity.NewUser(input.Username, input.Password, input.FullName, role)
	if err != nil {
		return nil, err
	}
	if err := user.SetEmail(input.Email); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.String("user_id", user.ID.String()))
	info := ToUserInfo(user)
	return &info, nil
}

// EnsureAdmin creates an Admin account with the given credentials unless the username is taken.
// It reports whether a user was created.
func (s *UserService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.Create(ctx, CreateUserInput{
		Username: username,
		Password: password,
		FullName: "Administrator",
		Role:     string(identity.RoleAdmin),
	}); err != nil {
		return false, err
	}
	s.logger.Warn("Bootstrap admin account created; change its password", zap.String("username", username))
	return true, nil
}
