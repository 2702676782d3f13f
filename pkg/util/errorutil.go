package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes returned to callers. Each lifecycle operation maps its
// failures onto one of these.
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeMissingRepairCost = "MISSING_REPAIR_COST"
	CodePolicyViolation   = "POLICY_VIOLATION"
	CodeInvalidState      = "INVALID_STATE"
	CodeAlreadyPaid       = "ALREADY_PAID"
	CodeAlreadyExists     = "ALREADY_EXISTS"
	CodeNotApplicable     = "NOT_APPLICABLE"
	CodeAuditWriteFailed  = "AUDIT_WRITE_FAILED"
	CodeInternalError     = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInvalidTransition(message string, details map[string]any) error {
	return NewDomainError(CodeInvalidTransition, message, http.StatusConflict, details)
}

func NewMissingRepairCost(message string) error {
	return NewDomainError(CodeMissingRepairCost, message, http.StatusUnprocessableEntity, nil)
}

func NewPolicyViolation(message string) error {
	return NewDomainError(CodePolicyViolation, message, http.StatusUnprocessableEntity, nil)
}

func NewInvalidState(message string) error {
	return NewDomainError(CodeInvalidState, message, http.StatusConflict, nil)
}

func NewAlreadyPaid(message string) error {
	return NewDomainError(CodeAlreadyPaid, message, http.StatusConflict, nil)
}

func NewAlreadyExists(resource string, details map[string]any) error {
	return NewDomainError(CodeAlreadyExists, fmt.Sprintf("%s already exists", resource), http.StatusConflict, details)
}

func NewNotApplicable(message string) error {
	return NewDomainError(CodeNotApplicable, message, http.StatusConflict, nil)
}

func NewAuditWriteFailed(err error) error {
	return &DomainError{
		Code:       CodeAuditWriteFailed,
		Message:    "audit log write failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCode reports whether err is a DomainError with the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// ToDomainError converts generic errors to DomainError. Storage-level
// errors are mapped: missing rows become NOT_FOUND, unique violations
// become CONFLICT.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if de, ok := NewConflict("duplicate value", map[string]any{"constraint": pgErr.ConstraintName}).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	if err == nil {
		return nil
	}
	return ToDomainError(err)
}
