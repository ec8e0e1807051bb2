package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hadhin/internal/auth"
	"hadhin/internal/model"
)

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByResetToken(ctx context.Context, token string) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, name, phone string) error
	SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error
	SetPassword(ctx context.Context, id int64, hash string) error
}

// Service implements account registration, login, and profile management.
type Service struct {
	store         Store
	resetTokenTTL time.Duration
}

// NewService creates a service backed by a store.
func NewService(store Store, resetTokenTTL time.Duration) *Service {
	if resetTokenTTL <= 0 {
		resetTokenTTL = time.Hour
	}
	return &Service{store: store, resetTokenTTL: resetTokenTTL}
}

// RegisterInput carries a registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
}

func (in RegisterInput) validate() error {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Phone == "" {
		return fmt.Errorf("%w: name, email, phone and password are required", model.ErrValidation)
	}
	return nil
}

// RegisterParent creates a parent account. Parents verify out of band, so the
// account starts unverified with a verification token assigned.
func (s *Service) RegisterParent(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.register(ctx, in, model.RoleParent, false)
}

// RegisterStaff creates a staff account, verified immediately.
func (s *Service) RegisterStaff(ctx context.Context, in RegisterInput) (*model.User, error) {
	return s.register(ctx, in, model.RoleStaff, true)
}

func (s *Service) register(ctx context.Context, in RegisterInput, role model.Role, verified bool) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	existing, err := s.store.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already exists", model.ErrValidation)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		IsVerified:   verified,
	}
	if !verified {
		u.VerificationToken = uuid.NewString()
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and returns the account.
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", model.ErrValidation)
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid email or password", model.ErrAuthentication)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", model.ErrAuthentication)
	}
	return u, nil
}

// GetByID resolves an account for the auth middleware.
func (s *Service) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.store.GetByID(ctx, id)
}

// UpdateProfile changes name and/or phone, keeping unset fields.
func (s *Service) UpdateProfile(ctx context.Context, u *model.User, name, phone string) (*model.User, error) {
	if name == "" {
		name = u.Name
	}
	if phone == "" {
		phone = u.Phone
	}
	if err := s.store.UpdateProfile(ctx, u.ID, name, phone); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, u.ID)
}

// ForgotPassword issues a reset token for the account with this email.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", fmt.Errorf("%w: email is required", model.ErrValidation)
	}
	u, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", fmt.Errorf("%w: email not found", model.ErrNotFound)
	}
	token := uuid.NewString()
	expires := time.Now().Add(s.resetTokenTTL)
	if err := s.store.SetResetToken(ctx, u.ID, token, expires); err != nil {
		return "", err
	}
	return token, nil
}

// ResetPassword consumes a reset token and installs the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: reset_token and new_password are required", model.ErrValidation)
	}
	u, err := s.store.GetByResetToken(ctx, token)
	if err != nil {
		return err
	}
	if u == nil {
		return fmt.Errorf("%w: invalid reset token", model.ErrValidation)
	}
	if u.ResetTokenExpires != nil && u.ResetTokenExpires.Before(time.Now()) {
		return fmt.Errorf("%w: reset token has expired", model.ErrValidation)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.SetPassword(ctx, u.ID, hash)
}
