package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/warranty-service/internal/observability"
	apperrors "github.com/spec-kit/warranty-service/pkg/util"
)

// RegisterMiddlewares attaches the global middleware chain. The request
// logger wraps the error envelope so it observes the final status code,
// not the pre-conversion one.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	if timeout > 0 {
		app.Use(withDeadline(timeout))
	}
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorEnvelope(logger, metrics))
}

func withDeadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// errorEnvelope converts every error leaving a handler into the shared
// {"error": {code, message, details}} body and records it. Panics are
// absorbed here as internal errors.
func errorEnvelope(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Path()),
					zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err == nil {
				return
			}

			domainErr := classify(err)
			if metrics != nil {
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
			}
			if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
				logger.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(domainErr))
			}

			body := fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			}
			if len(domainErr.Details) > 0 {
				body["details"] = domainErr.Details
			}
			c.Status(domainErr.HTTPStatus)
			_ = c.JSON(fiber.Map{"error": body})
			err = nil
		}()
		return c.Next()
	}
}

// classify folds fiber's own routing errors (404, 405) into the domain
// taxonomy before the generic mapping runs.
func classify(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return apperrors.NewDomainError(apperrors.CodeNotFound, "route not found", fiber.StatusNotFound, nil)
		case fiber.StatusMethodNotAllowed:
			return apperrors.NewDomainError(apperrors.CodeValidationFailed, "method not allowed", fiber.StatusMethodNotAllowed, nil)
		}
	}
	return apperrors.ToDomainError(err)
}
