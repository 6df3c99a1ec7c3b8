// Package apperr defines the closed set of failure conditions the API can
// report. Services construct these values where a problem is detected and
// return them as ordinary errors; the HTTP boundary classifies them into a
// status code and a client-safe message exactly once.
//
// The set is sealed: every variant implements the unexported failure marker,
// so packages outside apperr cannot add new kinds. Anything that is not one of
// these variants is treated as Unexpected by the classifier.
package apperr

import (
	"fmt"
	"sort"
	"strings"
)

// Failure is implemented by every failure condition in this package.
type Failure interface {
	error
	// Kind returns a stable snake_case identifier used in logs and metrics.
	Kind() string
	failure()
}

// NotFound reports a missing resource. Message is shown to the client verbatim.
type NotFound struct {
	Message string
}

func (e NotFound) Error() string { return e.Message }
func (NotFound) Kind() string    { return "not_found" }
func (NotFound) failure()        {}

// BadRequest reports a business-rule or input violation. Message is shown to
// the client verbatim.
type BadRequest struct {
	Message string
}

func (e BadRequest) Error() string { return e.Message }
func (BadRequest) Kind() string    { return "bad_request" }
func (BadRequest) failure()        {}

// Unauthorized reports an authentication-state problem with a specific
// client-safe explanation (locked account, expired refresh token...).
type Unauthorized struct {
	Message string
}

func (e Unauthorized) Error() string { return e.Message }
func (Unauthorized) Kind() string    { return "unauthorized" }
func (Unauthorized) failure()        {}

// AccessDenied reports an authenticated caller lacking permission. The cause
// is logged and never sent to the client.
type AccessDenied struct {
	Cause error
}

func (e AccessDenied) Error() string { return withCause("access denied", e.Cause) }
func (e AccessDenied) Unwrap() error { return e.Cause }
func (AccessDenied) Kind() string    { return "access_denied" }
func (AccessDenied) failure()        {}

// AuthenticationFailed reports that the caller could not be authenticated
// (missing, malformed or expired credentials).
type AuthenticationFailed struct {
	Cause error
}

func (e AuthenticationFailed) Error() string { return withCause("authentication failed", e.Cause) }
func (e AuthenticationFailed) Unwrap() error { return e.Cause }
func (AuthenticationFailed) Kind() string    { return "authentication_failed" }
func (AuthenticationFailed) failure()        {}

// InvalidCredentials reports a username/password mismatch. The client always
// gets the same message regardless of which half was wrong.
type InvalidCredentials struct {
	Cause error
}

func (e InvalidCredentials) Error() string { return withCause("invalid credentials", e.Cause) }
func (e InvalidCredentials) Unwrap() error { return e.Cause }
func (InvalidCredentials) Kind() string    { return "invalid_credentials" }
func (InvalidCredentials) failure()        {}

// ValidationFailed carries per-field messages produced by request validation.
// Keys are field names as the client sent them.
type ValidationFailed struct {
	Fields map[string]string
}

func (e ValidationFailed) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
func (ValidationFailed) Kind() string { return "validation_failed" }
func (ValidationFailed) failure()     {}

// Unexpected wraps any failure that has no more specific classification.
type Unexpected struct {
	Cause error
}

func (e Unexpected) Error() string { return withCause("unexpected error", e.Cause) }
func (e Unexpected) Unwrap() error { return e.Cause }
func (Unexpected) Kind() string    { return "unexpected" }
func (Unexpected) failure()        {}

// ResourceNotFound builds the conventional "<resource> not found with <field>: <value>"
// message, e.g. ResourceNotFound("User", "id", 42).
func ResourceNotFound(resource, field string, value any) NotFound {
	return NotFound{Message: fmt.Sprintf("%s not found with %s: %v", resource, field, value)}
}

// BadRequestf formats a BadRequest message.
func BadRequestf(format string, args ...any) BadRequest {
	return BadRequest{Message: fmt.Sprintf(format, args...)}
}

// Field returns a ValidationFailed with a single field error.
func Field(name, message string) ValidationFailed {
	return ValidationFailed{Fields: map[string]string{name: message}}
}

func withCause(prefix string, cause error) string {
	if cause == nil {
		return prefix
	}
	return prefix + ": " + cause.Error()
}
