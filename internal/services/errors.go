package services

import (
	"errors"
	"fmt"

	"github.com/soaringjerry/Synform/internal/forms"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// PublishError rejects a publish request; Issues holds the validation issues
// per language.
type PublishError struct {
	Issues map[string][]forms.Issue
}

func (e *PublishError) Error() string {
	n := 0
	for _, issues := range e.Issues {
		n += len(issues)
	}
	return fmt.Sprintf("form is not publishable: %d issue(s) in %d language(s)", n, len(e.Issues))
}

func AsPublishError(err error) (*PublishError, bool) {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// fromFormError maps authoring errors of the forms package onto service codes.
func fromFormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, forms.ErrQuestionNotFound):
		return NewNotFoundError(err.Error())
	case errors.Is(err, forms.ErrLanguageExists), errors.Is(err, forms.ErrInvalidTransition):
		return NewConflictError(err.Error())
	case errors.Is(err, forms.ErrInvalidLanguage),
		errors.Is(err, forms.ErrLanguageNotFound),
		errors.Is(err, forms.ErrReorderMismatch),
		errors.Is(err, forms.ErrQuestionOutOfBounds):
		return NewInvalidError(err.Error())
	default:
		return err
	}
}
