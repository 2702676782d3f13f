package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/warranty-service/internal/domain"
	"github.com/spec-kit/warranty-service/internal/repository"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// stubAccounts records the context of the last lookup.
type stubAccounts struct {
	account *domain.Account
	lastCtx context.Context
}

func (s *stubAccounts) Create(ctx context.Context, account *domain.Account) error { return nil }
func (s *stubAccounts) Update(ctx context.Context, account *domain.Account) error { return nil }
func (s *stubAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	s.lastCtx = ctx
	if s.account == nil || s.account.ID != id {
		return nil, pgx.ErrNoRows
	}
	cp := *s.account
	return &cp, nil
}
func (s *stubAccounts) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return nil, pgx.ErrNoRows
}
func (s *stubAccounts) List(ctx context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	return nil, nil
}

func newMiddlewareApp(t *testing.T, accounts *stubAccounts) (*fiber.App, *TokenManager) {
	t.Helper()
	tokens := NewTokenManager("test-secret", 15)
	middleware := NewAuthMiddleware(tokens, accounts)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), time.Second)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	})
	app.Get("/", middleware.Handle, func(c *fiber.Ctx) error {
		account, ok := AccountFromContext(c)
		require.True(t, ok)
		return c.JSON(fiber.Map{"id": account.ID})
	})
	return app, tokens
}

func TestAuthMiddleware(t *testing.T) {
	active := &domain.Account{ID: "acct-1", Role: domain.RoleCustomer, Active: true}

	t.Run("valid token loads the account under the request deadline", func(t *testing.T) {
		accounts := &stubAccounts{account: active}
		app, tokens := newMiddlewareApp(t, accounts)
		token, _, err := tokens.GenerateToken(active.ID, active.Role)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		require.NotNil(t, accounts.lastCtx)
		_, hasDeadline := accounts.lastCtx.Deadline()
		assert.True(t, hasDeadline)
	})

	t.Run("missing and malformed headers are rejected", func(t *testing.T) {
		accounts := &stubAccounts{account: active}
		app, _ := newMiddlewareApp(t, accounts)

		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Token abc")
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token for a vanished account is rejected", func(t *testing.T) {
		accounts := &stubAccounts{}
		app, tokens := newMiddlewareApp(t, accounts)
		token, _, err := tokens.GenerateToken("ghost", domain.RoleCustomer)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("deactivated accounts cannot act", func(t *testing.T) {
		accounts := &stubAccounts{account: &domain.Account{ID: "acct-2", Role: domain.RoleCustomer}}
		app, tokens := newMiddlewareApp(t, accounts)
		token, _, err := tokens.GenerateToken("acct-2", domain.RoleCustomer)
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}
