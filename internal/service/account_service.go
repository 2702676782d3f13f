package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/repository"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// AccountService covers admin-side account management. Registration and
// login live in AuthService.
type AccountService struct {
	store  repository.Store
	logger *zap.Logger
}

func NewAccountService(store repository.Store, logger *zap.Logger) *AccountService {
	return &AccountService{store: store, logger: logger}
}

type AccountListOptions struct {
	Role   domain.Role
	Active *bool
	Limit  int
	Offset int
}

// List returns accounts matching the filter, newest first. Admin only.
func (s *AccountService) List(ctx context.Context, admin *domain.Account, opts AccountListOptions) ([]domain.Account, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if opts.Role != "" && !domain.ValidRole(opts.Role) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid role %q", opts.Role), nil)
	}
	filter := repository.AccountFilter{
		Active: opts.Active,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}
	if opts.Role != "" {
		filter.Role = &opts.Role
	}
	accounts, err := s.store.Accounts().List(ctx, filter)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return accounts, nil
}

// ListTechnicians returns active technicians, the candidate pool for
// ticket assignment. Admin only.
func (s *AccountService) ListTechnicians(ctx context.Context, admin *domain.Account) ([]domain.Account, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	active := true
	role := domain.RoleTechnician
	technicians, err := s.store.Accounts().List(ctx, repository.AccountFilter{
		Role:   &role,
		Active: &active,
	})
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return technicians, nil
}

type ActivityListOptions struct {
	AccountID string
	Action    string
	Limit     int
	Offset    int
}

// ListActivity returns audit trail entries, newest first. Admin only.
func (s *AccountService) ListActivity(ctx context.Context, admin *domain.Account, opts ActivityListOptions) ([]domain.ActivityLog, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	filter := repository.ActivityLogFilter{Limit: opts.Limit, Offset: opts.Offset}
	if opts.AccountID != "" {
		filter.AccountID = &opts.AccountID
	}
	if opts.Action != "" {
		filter.Action = &opts.Action
	}
	entries, err := s.store.ActivityLogs().List(ctx, filter)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return entries, nil
}

// Get loads a single account. Admin only.
func (s *AccountService) Get(ctx context.Context, admin *domain.Account, accountID string) (*domain.Account, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	return s.load(ctx, s.store, accountID)
}

// ChangeRole reassigns an account's role and records the change.
func (s *AccountService) ChangeRole(ctx context.Context, admin *domain.Account, accountID string, role domain.Role) (*domain.Account, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid role %q", role), nil)
	}

	var updated *domain.Account
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		account, err := s.load(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account.Role == role {
			updated = account
			return nil
		}
		previous := account.Role
		account.Role = role
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return apperrors.ToDomainError(err)
		}
		if err := s.audit(ctx, tx, admin.ID, domain.ActionUserRoleChanged, account.ID,
			fmt.Sprintf("role of %s changed from %s to %s", account.Email, previous, role)); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Activate re-enables a deactivated account.
func (s *AccountService) Activate(ctx context.Context, admin *domain.Account, accountID string) (*domain.Account, error) {
	return s.setActive(ctx, admin, accountID, true)
}

// Deactivate suspends an account. Admins cannot deactivate themselves;
// that would strand the system without a working admin.
func (s *AccountService) Deactivate(ctx context.Context, admin *domain.Account, accountID string) (*domain.Account, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if admin.ID == accountID {
		return nil, apperrors.NewForbidden("cannot deactivate your own account")
	}
	return s.setActive(ctx, admin, accountID, false)
}

func (s *AccountService) setActive(ctx context.Context, admin *domain.Account, accountID string, active bool) (*domain.Account, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}

	action := domain.ActionUserDeactivated
	verb := "deactivated"
	if active {
		action = domain.ActionUserActivated
		verb = "activated"
	}

	var updated *domain.Account
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		account, err := s.load(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if account.Active == active {
			updated = account
			return nil
		}
		account.Active = active
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return apperrors.ToDomainError(err)
		}
		if err := s.audit(ctx, tx, admin.ID, action,
			account.ID, fmt.Sprintf("account %s %s", account.Email, verb)); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks an account deleted. The row stays behind so ticket
// history keeps its references.
func (s *AccountService) SoftDelete(ctx context.Context, admin *domain.Account, accountID string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if admin.ID == accountID {
		return apperrors.NewForbidden("cannot delete your own account")
	}

	return s.store.WithinTx(ctx, func(tx repository.Store) error {
		account, err := s.load(ctx, tx, accountID)
		if err != nil {
			return err
		}
		account.Deleted = true
		account.Active = false
		account.UpdatedAt = time.Now().UTC()
		if err := tx.Accounts().Update(ctx, account); err != nil {
			return apperrors.ToDomainError(err)
		}
		return s.audit(ctx, tx, admin.ID, domain.ActionUserDeleted,
			account.ID, fmt.Sprintf("account %s deleted", account.Email))
	})
}

func (s *AccountService) load(ctx context.Context, store repository.Store, accountID string) (*domain.Account, error) {
	account, err := store.Accounts().GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, apperrors.ToDomainError(err)
	}
	if account.Deleted {
		return nil, apperrors.NewNotFound("account", nil)
	}
	return account, nil
}

func (s *AccountService) audit(ctx context.Context, tx repository.Store, actorID, action, resourceID, description string) error {
	entry := &domain.ActivityLog{
		AccountID:    actorID,
		Action:       action,
		ResourceType: "account",
		ResourceID:   &resourceID,
		Description:  description,
	}
	if err := tx.ActivityLogs().Record(ctx, entry); err != nil {
		return apperrors.NewAuditWriteFailed(err)
	}
	return nil
}
