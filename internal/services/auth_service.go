// Package services – AuthService
//
// AuthService signs users in with username and password, rotates token pairs
// from a refresh token and resolves bearer access tokens into a Principal.
// Brute-force protection is delegated to UserService, which counts failures
// and applies the temporary lockout.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/repo"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   uint
	Username string
	Roles    []string
}

// HasAnyRole reports whether p holds at least one of roles.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, r) {
			return true
		}
	}
	return false
}

// LoginResult is returned by Login and Refresh.
type LoginResult struct {
	TokenPair
	User UserWithRoles
}

// AuthService implements sign-in, token refresh and token verification.
type AuthService struct {
	DB        *gorm.DB
	Users     *UserService
	Passwords *PasswordService
	Tokens    *TokenService

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewAuthService wires an AuthService.
func NewAuthService(db *gorm.DB, users *UserService, pw *PasswordService, tokens *TokenService) *AuthService {
	return &AuthService{DB: db, Users: users, Passwords: pw, Tokens: tokens}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

var errBadPassword = errors.New("password mismatch")

// Login verifies username and password and issues a token pair.
//
// Unknown users and wrong passwords both yield InvalidCredentials so callers
// cannot discover which account names exist. A wrong password counts towards the lockout.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if errors.Is(err, repo.ErrNotFound) {
		span.SetStatus(codes.Error, "unknown user")
		return nil, apperr.InvalidCredentials{Cause: fmt.Errorf("unknown user %q", username)}
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	if u.IsAccountLocked(now) {
		return nil, apperr.Unauthorized{Message: MsgAccountLocked}
	}
	if u.Status != domain.UserActive {
		return nil, apperr.Unauthorized{Message: MsgAccountInactive}
	}

	if !s.Passwords.Matches(password, u.PasswordHash) {
		if err := s.Users.RecordFailedLogin(ctx, username); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("username", username).Msg("record failed login")
		}
		span.SetStatus(codes.Error, "bad password")
		return nil, apperr.InvalidCredentials{Cause: errBadPassword}
	}

	res, err := s.issue(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := s.Users.RecordSuccessfulLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	res.User.LastLoginAt = &now
	res.User.FailedLoginAttempts = 0
	res.User.AccountLockedUntil = nil
	log.Ctx(ctx).Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("login succeeded")
	return res, nil
}

// Refresh exchanges a valid refresh token for a new pair. Every failure is
// reported with the same Unauthorized message.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Refresh")
	defer span.End()

	res, err := s.refresh(ctx, refreshToken)
	if err != nil {
		span.RecordError(err)
		log.Ctx(ctx).Warn().Err(err).Msg("token refresh failed")
		return nil, apperr.Unauthorized{Message: MsgInvalidRefresh}
	}
	return res, nil
}

func (s *AuthService) refresh(ctx context.Context, raw string) (*LoginResult, error) {
	claims, err := s.Tokens.Parse(raw, TokenRefresh)
	if err != nil {
		return nil, err
	}
	u, err := repo.GetUser(ctx, s.DB, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive(s.now()) {
		return nil, fmt.Errorf("user %d is not active", u.ID)
	}
	return s.issue(ctx, u)
}

func (s *AuthService) issue(ctx context.Context, u *domain.User) (*LoginResult, error) {
	full, err := s.Users.withRoles(ctx, u)
	if err != nil {
		return nil, err
	}
	pair, err := s.Tokens.Issue(u.ID, u.Username, full.Roles)
	if err != nil {
		return nil, err
	}
	return &LoginResult{TokenPair: pair, User: *full}, nil
}

// Logout records the sign-out of the token holder. Tokens stay valid until
// they expire; an invalid token is ignored.
func (s *AuthService) Logout(ctx context.Context, accessToken string) {
	claims, err := s.Tokens.Parse(accessToken, TokenAccess)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("logout with invalid token")
		return
	}
	log.Ctx(ctx).Info().Str("username", claims.Subject).Msg("logout")
}

// Validate reports whether raw is a well-formed, unexpired access token.
func (s *AuthService) Validate(raw string) bool {
	_, err := s.Tokens.Parse(raw, TokenAccess)
	return err == nil
}

// Authenticate resolves an access token into the current Principal. Roles are
// read from the store so revocations take effect before the token expires.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := s.Tokens.Parse(raw, TokenAccess)
	if err != nil {
		return nil, apperr.AuthenticationFailed{Cause: err}
	}
	u, err := repo.GetUser(ctx, s.DB, claims.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, apperr.AuthenticationFailed{Cause: fmt.Errorf("user %d no longer exists", claims.UserID)}
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive(s.now()) {
		return nil, apperr.AuthenticationFailed{Cause: fmt.Errorf("user %d is not active", u.ID)}
	}
	full, err := s.Users.withRoles(ctx, u)
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: u.ID, Username: u.Username, Roles: full.Roles}, nil
}
