package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP layer. The error middleware maps
// kinds onto status codes so services never import fiber.
type Kind string

const (
	KindValidation         Kind = "VALIDATION"
	KindNotFound           Kind = "NOT_FOUND"
	KindCooldownActive     Kind = "COOLDOWN_ACTIVE"
	KindUpstreamGeneration Kind = "UPSTREAM_GENERATION"
	KindPersistence        Kind = "PERSISTENCE"
	KindUnknownOperation   Kind = "UNKNOWN_OPERATION"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindInternal           Kind = "INTERNAL"
)

type AppError struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(KindValidation, message)
}

func NotFound(resource string) *AppError {
	return New(KindNotFound, fmt.Sprintf("%s not found", resource))
}

// CooldownActive signals that a gated investigative action was already taken
// today. Not a system fault; the caller may retry after the local date rolls.
func CooldownActive(subject string) *AppError {
	return New(KindCooldownActive, fmt.Sprintf("already acted on %s today, try again tomorrow", subject))
}

func UpstreamGeneration(step string, err error) *AppError {
	return Wrap(KindUpstreamGeneration, fmt.Sprintf("generation step %q failed", step), err)
}

func Persistence(op string, err error) *AppError {
	return Wrap(KindPersistence, fmt.Sprintf("persistence failed during %s", op), err)
}

func UnknownOperation(id string) *AppError {
	return New(KindUnknownOperation, fmt.Sprintf("operation %s is unknown (it may have been lost on restart)", id))
}

// KindOf extracts the Kind from any error in the chain, defaulting to
// KindInternal for plain errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
