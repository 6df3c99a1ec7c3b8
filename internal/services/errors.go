// Package services implements the business rules for accounts, roles,
// authentication and the audit trail. Services return apperr values for every
// predictable failure so the HTTP layer can classify them without knowing
// anything about persistence.
//
// This file centralizes the client-facing messages and the translation of
// repository errors into failure conditions.
package services

import (
	"errors"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/repo"
)

// Client-facing messages for business-rule violations.
const (
	MsgUsernameTaken        = "Username is already taken"
	MsgEmailTaken           = "Email is already taken"
	MsgPasswordMismatch     = "New password and confirmation do not match"
	MsgWrongCurrentPassword = "Current password is incorrect"
	MsgRoleInUse            = "Cannot delete role that is assigned to users"
	MsgAccountLocked        = "Account is temporarily locked. Please try again later."
	MsgAccountInactive      = "Account is not active. Please contact administrator."
	MsgInvalidRefresh       = "Invalid or expired refresh token"
)

// ErrInvalidToken is the cause attached to token failures.
var ErrInvalidToken = errors.New("invalid token")

// notFoundOr maps a missing row to a NotFound for resource/field/value and
// passes everything else through unchanged.
func notFoundOr(err error, resource, field string, value any) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.ResourceNotFound(resource, field, value)
	}
	return storeErr(err)
}

// storeErr converts repository errors that carry client meaning.
func storeErr(err error) error {
	if errors.Is(err, repo.ErrInvalidSort) {
		return apperr.BadRequest{Message: err.Error()}
	}
	return err
}
