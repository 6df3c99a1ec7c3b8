// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves bearer access tokens into the calling Principal and
// enforces authentication and role requirements on route groups.
//
// Authenticate runs globally and never rejects a request on its own: public
// endpoints must keep working when a client sends a stale token. It records
// either the Principal or the reason authentication failed; RequireAuth and
// RequireRoles turn that into 401/403 envelopes where access is restricted.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
)

const (
	// userIDKey holds the caller's id as a decimal string (rate limiting, logs).
	userIDKey    = "userID"
	principalKey = "principal"
	authErrKey   = "auth.error"
)

var errMissingBearer = errors.New("missing bearer token")

// Authenticator resolves an access token into a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*services.Principal, error)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

// Authenticate resolves the bearer token, if any, and stores the result.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			c.Next()
			return
		}
		p, err := auth.Authenticate(c.Request.Context(), tok)
		if err != nil {
			c.Set(authErrKey, err)
			c.Next()
			return
		}
		c.Set(principalKey, p)
		c.Set(userIDKey, strconv.FormatUint(uint64(p.UserID), 10))
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller, if any.
func PrincipalFrom(c *gin.Context) (*services.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*services.Principal)
	return p, ok && p != nil
}

// RequireAuth rejects requests without a valid access token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFrom(c); ok {
			c.Next()
			return
		}
		response.Abort(c, authFailure(c))
	}
}

// RequireRoles rejects callers holding none of roles. Unauthenticated callers
// get 401, authenticated ones 403.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			response.Abort(c, authFailure(c))
			return
		}
		if !p.HasAnyRole(roles...) {
			response.Abort(c, apperr.AccessDenied{
				Cause: fmt.Errorf("user %s lacks any of %v", p.Username, roles),
			})
			return
		}
		c.Next()
	}
}

// authFailure returns the recorded authentication error, or a missing-token
// failure when no bearer token was sent.
func authFailure(c *gin.Context) error {
	if v, ok := c.Get(authErrKey); ok {
		if err, ok := v.(error); ok {
			var af apperr.AuthenticationFailed
			if errors.As(err, &af) {
				return err
			}
			return apperr.AuthenticationFailed{Cause: err}
		}
	}
	return apperr.AuthenticationFailed{Cause: errMissingBearer}
}
