package service

import (
	"github.com/spec-kit/warranty-service/internal/domain"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// requireActor rejects missing, inactive or soft-deleted accounts.
// Every state-changing operation runs this first.
func requireActor(account *domain.Account) error {
	if account == nil {
		return apperrors.NewUnauthorized("account required")
	}
	if !account.CanAct() {
		return apperrors.NewForbidden("account inactive or deleted")
	}
	return nil
}

// requireRole checks the actor holds one of the allowed roles. Admin is
// not implicitly granted; operations that admit admins name the role.
func requireRole(account *domain.Account, allowed ...domain.Role) error {
	if err := requireActor(account); err != nil {
		return err
	}
	for _, role := range allowed {
		if account.Role == role {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

func requireCustomer(account *domain.Account) error {
	return requireRole(account, domain.RoleCustomer)
}

func requireAdmin(account *domain.Account) error {
	return requireRole(account, domain.RoleAdmin)
}

func requireTechnicianOrAdmin(account *domain.Account) error {
	return requireRole(account, domain.RoleTechnician, domain.RoleAdmin)
}
