package service

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"

	"github.com/rsommers/lakehouse/internal/domain"
	"github.com/rsommers/lakehouse/internal/notify"
	"github.com/rsommers/lakehouse/internal/platform/auth"
	"github.com/rsommers/lakehouse/internal/repo/postgres"
	"github.com/rsommers/lakehouse/pkg/config"
	"github.com/rsommers/lakehouse/pkg/logger"
)

type AuthService interface {
	Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error)
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.User, error)
	PromoteToAdmin(ctx context.Context, id int64) error
	DeleteUserCascading(ctx context.Context, id int64) error
	DeleteUserOnly(ctx context.Context, id int64) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type authService struct {
	users    postgres.UserRepository
	notifier notify.Notifier
	config   *config.Config
}

func NewAuthService(users postgres.UserRepository, notifier notify.Notifier, cfg *config.Config) AuthService {
	return &authService{
		users:    users,
		notifier: notifier,
		config:   cfg,
	}
}

// Register creates a user and immediately issues a session token, so a new
// family member lands logged in.
func (s *authService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, "", domain.ErrDuplicateEmail
	}

	passwordHash, err := argon2id.CreateHash(req.Password, argon2id.DefaultParams)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, req.Name, req.Email, req.Phone, passwordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, "", err
	}

	s.notifier.UserRegistered(ctx, user)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.User, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueSession(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	patch := domain.ProfilePatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}
	if req.Password != nil {
		hash, err := argon2id.CreateHash(*req.Password, argon2id.DefaultParams)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		patch.PasswordHash = &hash
	}

	user, err := s.users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authService) PromoteToAdmin(ctx context.Context, id int64) error {
	return s.users.PromoteToAdmin(ctx, id)
}

// DeleteUserCascading removes the user together with every reservation they
// own; the repository runs both deletes in one transaction.
func (s *authService) DeleteUserCascading(ctx context.Context, id int64) error {
	if err := s.users.DeleteCascading(ctx, id); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Deleted user with reservations", "deleted_user_id", id)
	s.notifier.UserDeleted(ctx, id, true)
	return nil
}

// DeleteUserOnly removes the user row and leaves their reservations on the
// calendar. Kept as a separate operation on purpose; see DESIGN.md.
func (s *authService) DeleteUserOnly(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.UserDeleted(ctx, id, false)
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return domain.ErrNotFound
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	expiresAt := timeNow().Add(s.config.Auth.ResetTokenTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password/%s", s.config.App.BaseURL, token)
	s.notifier.PasswordResetRequested(ctx, user, resetLink)
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < domain.MinPasswordLen {
		return domain.Validationf("password must be at least %d characters", domain.MinPasswordLen)
	}

	hash, err := argon2id.CreateHash(newPassword, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.ResetPassword(ctx, token, hash)
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "Password reset completed", "reset_user_id", user.ID)
	return nil
}

func (s *authService) issueSession(user *domain.User) (string, error) {
	token, err := auth.NewSessionToken(user.ID, user.Email, user.IsAdmin,
		s.config.Auth.JWTSecret, s.config.Auth.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("failed to create session token: %w", err)
	}
	return token, nil
}
