package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/domain"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

func newAccountService(store *fakeStore) *AccountService {
	return NewAccountService(store, zap.NewNop())
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("admin promotes a customer and audits it", func(t *testing.T) {
		store := newFakeStore()
		svc := newAccountService(store)
		admin := store.addAccount(domain.RoleAdmin, true)
		customer := store.addAccount(domain.RoleCustomer, true)

		updated, err := svc.ChangeRole(ctx, admin, customer.ID, domain.RoleTechnician)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleTechnician, updated.Role)
		assert.Contains(t, store.auditActions(), domain.ActionUserRoleChanged)
	})

	t.Run("same role change is a no-op without audit", func(t *testing.T) {
		store := newFakeStore()
		svc := newAccountService(store)
		admin := store.addAccount(domain.RoleAdmin, true)
		customer := store.addAccount(domain.RoleCustomer, true)

		_, err := svc.ChangeRole(ctx, admin, customer.ID, domain.RoleCustomer)
		require.NoError(t, err)
		assert.Empty(t, store.auditActions())
	})

	t.Run("non-admins cannot change roles", func(t *testing.T) {
		store := newFakeStore()
		svc := newAccountService(store)
		tech := store.addAccount(domain.RoleTechnician, true)
		customer := store.addAccount(domain.RoleCustomer, true)

		_, err := svc.ChangeRole(ctx, tech, customer.ID, domain.RoleTechnician)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	})

	t.Run("unknown role", func(t *testing.T) {
		store := newFakeStore()
		svc := newAccountService(store)
		admin := store.addAccount(domain.RoleAdmin, true)
		customer := store.addAccount(domain.RoleCustomer, true)

		_, err := svc.ChangeRole(ctx, admin, customer.ID, domain.Role("superuser"))
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidationFailed))
	})
}

func TestActivateDeactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivate then activate with audits", func(t *testing.T) {
		store := newFakeStore()
		svc := newAccountService(store)
		admin := store.addAccount(domain.RoleAdmin, true)
		tech := store.addAccount(domain.RoleTechnician, true)

		updated, err := svc.Deactivate(ctx, admin, tech.ID)
		require.NoError(t, err)
		assert.False(t, updated.Active)

		updated, err = svc.Activate(ctx, admin, tech.ID)
		require.NoError(t, err)
		assert.True(t, updated.Active)

		actions := store.auditActions()
		assert.Contains(t, actions, domain.ActionUserDeactivated)
		assert.Contains(t, actions, domain.ActionUserActivated)
	})

	t.Run("admins cannot deactivate themselves", func(t *testing.T) {
		store := newFakeStore()
		svc := newAccountService(store)
		admin := store.addAccount(domain.RoleAdmin, true)

		_, err := svc.Deactivate(ctx, admin, admin.ID)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
	})
}

func TestSoftDeleteAccount(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newAccountService(store)
	admin := store.addAccount(domain.RoleAdmin, true)
	customer := store.addAccount(domain.RoleCustomer, true)

	require.NoError(t, svc.SoftDelete(ctx, admin, customer.ID))
	assert.Contains(t, store.auditActions(), domain.ActionUserDeleted)

	_, err := svc.Get(ctx, admin, customer.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	err = svc.SoftDelete(ctx, admin, admin.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestListTechnicians(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newAccountService(store)
	admin := store.addAccount(domain.RoleAdmin, true)

	active := store.addAccount(domain.RoleTechnician, true)
	store.addAccount(domain.RoleTechnician, false)
	store.addAccount(domain.RoleCustomer, true)

	technicians, err := svc.ListTechnicians(ctx, admin)
	require.NoError(t, err)
	require.Len(t, technicians, 1)
	assert.Equal(t, active.ID, technicians[0].ID)
}

func TestListActivity(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newAccountService(store)
	admin := store.addAccount(domain.RoleAdmin, true)
	tech := store.addAccount(domain.RoleTechnician, true)

	_, err := svc.Deactivate(ctx, admin, tech.ID)
	require.NoError(t, err)
	_, err = svc.Activate(ctx, admin, tech.ID)
	require.NoError(t, err)

	all, err := svc.ListActivity(ctx, admin, ActivityListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := svc.ListActivity(ctx, admin, ActivityListOptions{Action: domain.ActionUserActivated})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, domain.ActionUserActivated, filtered[0].Action)

	_, err = svc.ListActivity(ctx, tech, ActivityListOptions{})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}
