package errprocess

import (
	"errors"
	"fmt"

	"brand_collab_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failure so transport layers can map it to a status code.
type Kind int

const (
	// KindUnknown is any failure that has no better classification.
	KindUnknown Kind = iota
	// KindNotFound means the referenced entity does not exist.
	KindNotFound
	// KindForbidden means the caller is not allowed to touch the entity.
	KindForbidden
	// KindInvalidArgument means the request payload is malformed or violates a rule.
	KindInvalidArgument
	// KindAuthenticationFailed means the caller presented no or bad credentials.
	KindAuthenticationFailed
	// KindUnavailable means a backing dependency could not serve the request.
	KindUnavailable
)

// Error carries a kind, a caller facing message and an optional cause.
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

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Set set err info
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}

// NotFound reports a missing entity.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Forbidden reports an access violation.
func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Msg: msg}
}

// InvalidArgument reports a malformed or rule breaking request.
func InvalidArgument(msg string) error {
	return &Error{Kind: KindInvalidArgument, Msg: msg}
}

// AuthenticationFailed reports missing or bad credentials.
func AuthenticationFailed(msg string) error {
	return &Error{Kind: KindAuthenticationFailed, Msg: msg}
}

// Unavailable reports a failing dependency and keeps the cause.
func Unavailable(msg string, cause error) error {
	logger.Log.Errorf(msg, cause)
	return &Error{Kind: KindUnavailable, Msg: msg, Err: cause}
}

// KindOf extracts the kind, KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsNotFound reports whether err is a missing entity failure.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsForbidden reports whether err is an access violation.
func IsForbidden(err error) bool {
	return KindOf(err) == KindForbidden
}

// IsInvalidArgument reports whether err is a malformed request failure.
func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}

// IsAuthenticationFailed reports whether err is a credential failure.
func IsAuthenticationFailed(err error) bool {
	return KindOf(err) == KindAuthenticationFailed
}

// IsUnavailable reports whether err is a dependency failure.
func IsUnavailable(err error) bool {
	return KindOf(err) == KindUnavailable
}

// HTTPStatus maps an error kind to the REST status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindForbidden:
		return fiber.StatusForbidden
	case KindInvalidArgument:
		return fiber.StatusBadRequest
	case KindAuthenticationFailed:
		return fiber.StatusUnauthorized
	case KindUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
