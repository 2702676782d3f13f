package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/auth"
	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/repository"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

const minPasswordLength = 8

// AuthService handles registration and login.
type AuthService struct {
	store      repository.Store
	tokens     *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
}

func NewAuthService(store repository.Store, tokens *auth.TokenManager, logger *zap.Logger, bcryptCost int) *AuthService {
	return &AuthService{store: store, tokens: tokens, logger: logger, bcryptCost: bcryptCost}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     domain.Role
}

type LoginResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// Register is the public signup path. Callers may sign up as a customer
// or as a technician; admin accounts are created by an admin only. An
// empty role defaults to customer.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	role := input.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if role != domain.RoleCustomer && role != domain.RoleTechnician {
		return nil, apperrors.NewValidationError(fmt.Sprintf("role must be customer or technician, got %q", role), nil)
	}
	return s.register(ctx, input, role)
}

// RegisterStaff lets an admin create technician or admin accounts.
func (s *AuthService) RegisterStaff(ctx context.Context, admin *domain.Account, input RegisterInput, role domain.Role) (*domain.Account, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if role != domain.RoleTechnician && role != domain.RoleAdmin {
		return nil, apperrors.NewValidationError(fmt.Sprintf("staff role must be technician or admin, got %q", role), nil)
	}
	return s.register(ctx, input, role)
}

func (s *AuthService) register(ctx context.Context, input RegisterInput, role domain.Role) (*domain.Account, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), nil)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.Account{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Role:         role,
		Active:       true,
	}
	if err := s.store.Accounts().Create(ctx, account); err != nil {
		if repository.IsDuplicate(err) {
			return nil, apperrors.NewAlreadyExists("email", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}

	s.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("role", string(account.Role)))
	return account, nil
}

// Login verifies credentials and issues a signed token. Deactivated and
// deleted accounts cannot log in; the error does not reveal which check
// failed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.store.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.ToDomainError(err)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !account.CanAct() {
		return nil, apperrors.NewForbidden("account inactive or deleted")
	}

	token, expiresAt, err := s.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := time.Now().UTC()
	account.LastLoginAt = &now
	if err := s.store.Accounts().Update(ctx, account); err != nil {
		// A failed last-login write should not block the login itself.
		s.logger.Warn("failed to record last login",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	return &LoginResult{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

// UpdateProfile lets an account change its own name and phone number.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *domain.Account, name, phone string) (*domain.Account, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}

	actor.Name = name
	actor.Phone = strings.TrimSpace(phone)
	actor.UpdatedAt = time.Now().UTC()
	if err := s.store.Accounts().Update(ctx, actor); err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return actor, nil
}

// ChangePassword verifies the current password before storing a new one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.Account, current, next string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := auth.ComparePassword(actor.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}
	if len(next) < minPasswordLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), nil)
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	actor.PasswordHash = hash
	actor.UpdatedAt = time.Now().UTC()
	if err := s.store.Accounts().Update(ctx, actor); err != nil {
		return apperrors.ToDomainError(err)
	}

	s.logger.Info("password changed", zap.String("account_id", actor.ID))
	return nil
}
