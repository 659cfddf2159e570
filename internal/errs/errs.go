// Package errs carries the error taxonomy shared by services and handlers.
// Every failure leaving a service is one of these kinds so handlers can map
// it to an HTTP status without inspecting error strings.
package errs

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	// KindUnknown covers anything a service did not classify.
	KindUnknown Kind = iota
	// KindUnauthenticated: no valid session or token.
	KindUnauthenticated
	// KindUnauthorized: authenticated but not a party to the resource.
	KindUnauthorized
	// KindValidation: missing or malformed input.
	KindValidation
	// KindNotFound: referenced job/application/user absent.
	KindNotFound
	// KindTransient: network/database failure, worth retrying.
	KindTransient
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error { return &Error{Kind: kind, Msg: msg} }

// Wrap annotates err with a kind and message, keeping the chain intact.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func Unauthenticated(msg string) error { return New(KindUnauthenticated, msg) }
func Unauthorized(msg string) error    { return New(KindUnauthorized, msg) }
func Validation(msg string) error      { return New(KindValidation, msg) }
func NotFound(msg string) error        { return New(KindNotFound, msg) }

// Transient marks a backend failure as retryable.
func Transient(msg string, err error) error { return Wrap(KindTransient, msg, err) }

// KindOf walks the chain for the first classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsTransient reports whether a retry may help.
func IsTransient(err error) bool { return KindOf(err) == KindTransient }

// HTTPStatus maps a kind to the status codes the API contract promises.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindUnauthenticated:
		return fiber.StatusUnauthorized
	case KindUnauthorized:
		return fiber.StatusForbidden
	case KindValidation:
		return fiber.StatusBadRequest
	case KindNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}
