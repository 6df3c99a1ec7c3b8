// Package services – UserService
//
// UserService owns the account lifecycle: creation with uniqueness checks,
// profile updates, password changes and administrative resets, role
// assignment, status changes and the failed-login lockout counter.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/config"
	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/repo"
	"github.com/tbourn/go-school-backend/internal/utils"
)

// UserInput carries the fields accepted when creating a user.
type UserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	PhotoURL  string
}

// UserUpdate is a partial profile update; nil fields are left unchanged.
// An empty Email clears the address.
type UserUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
	PhotoURL  *string
}

// UserWithRoles is a user together with the names of the roles it holds.
type UserWithRoles struct {
	domain.User
	Roles []string
}

// UserService implements account management.
type UserService struct {
	DB        *gorm.DB
	Passwords *PasswordService
	Login     config.LoginConfig

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, pw *PasswordService, login config.LoginConfig) *UserService {
	return &UserService{DB: db, Passwords: pw, Login: login}
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func emailPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Create registers a new ACTIVE user.
func (s *UserService) Create(ctx context.Context, in UserInput) (*UserWithRoles, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.String("user.username", in.Username)))
	defer span.End()

	username := strings.TrimSpace(in.Username)
	email := emailPtr(in.Email)

	taken, err := repo.UsernameExists(ctx, s.DB, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.BadRequest{Message: MsgUsernameTaken}
	}
	if email != nil {
		taken, err := repo.EmailExists(ctx, s.DB, *email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apperr.BadRequest{Message: MsgEmailTaken}
		}
	}

	hash, err := s.Passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		PhotoURL:     strings.TrimSpace(in.PhotoURL),
		Status:       domain.UserActive,
	}
	if err := repo.CreateUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperr.BadRequest{Message: MsgUsernameTaken}
		}
		return nil, err
	}
	log.Ctx(ctx).Info().Uint("user_id", u.ID).Str("username", u.Username).Msg("user created")
	return &UserWithRoles{User: *u, Roles: []string{}}, nil
}

// Get fetches a user and its roles by id.
func (s *UserService) Get(ctx context.Context, id uint) (*UserWithRoles, error) {
	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		return nil, notFoundOr(err, "User", "id", id)
	}
	return s.withRoles(ctx, u)
}

// GetByUsername fetches a user and its roles by username.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*UserWithRoles, error) {
	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if err != nil {
		return nil, notFoundOr(err, "User", "username", username)
	}
	return s.withRoles(ctx, u)
}

// List returns one page of all users.
func (s *UserService) List(ctx context.Context, p utils.Pageable) (utils.Page[UserWithRoles], error) {
	pg, err := repo.ListUsersPage(ctx, s.DB, p)
	if err != nil {
		return utils.Page[UserWithRoles]{}, storeErr(err)
	}
	return s.pageWithRoles(ctx, pg)
}

// ListByStatus returns one page of users in status.
func (s *UserService) ListByStatus(ctx context.Context, status domain.UserStatus, p utils.Pageable) (utils.Page[UserWithRoles], error) {
	pg, err := repo.ListUsersByStatusPage(ctx, s.DB, status, p)
	if err != nil {
		return utils.Page[UserWithRoles]{}, storeErr(err)
	}
	return s.pageWithRoles(ctx, pg)
}

// ListByRole returns one page of active users holding roleName.
func (s *UserService) ListByRole(ctx context.Context, roleName string, p utils.Pageable) (utils.Page[UserWithRoles], error) {
	pg, err := repo.ListUsersByRolePage(ctx, s.DB, NormalizeRoleName(roleName), p)
	if err != nil {
		return utils.Page[UserWithRoles]{}, storeErr(err)
	}
	return s.pageWithRoles(ctx, pg)
}

// Update applies a partial profile update to user id.
func (s *UserService) Update(ctx context.Context, id uint, upd UserUpdate) (*UserWithRoles, error) {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.Int("user.id", int(id))))
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, id)
	if err != nil {
		return nil, notFoundOr(err, "User", "id", id)
	}
	if upd.Email != nil {
		email := emailPtr(*upd.Email)
		if email != nil {
			taken, err := repo.EmailExists(ctx, s.DB, *email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.BadRequest{Message: MsgEmailTaken}
			}
		}
		u.Email = email
	}
	setTrimmed(&u.FirstName, upd.FirstName)
	setTrimmed(&u.LastName, upd.LastName)
	setTrimmed(&u.Phone, upd.Phone)
	setTrimmed(&u.Address, upd.Address)
	setTrimmed(&u.PhotoURL, upd.PhotoURL)

	if err := repo.SaveUser(ctx, s.DB, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperr.BadRequest{Message: MsgEmailTaken}
		}
		return nil, err
	}
	return s.withRoles(ctx, u)
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// ChangePassword replaces the password of userID after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next, confirm string) error {
	if next != confirm {
		return apperr.BadRequest{Message: MsgPasswordMismatch}
	}
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return notFoundOr(err, "User", "id", userID)
	}
	if !s.Passwords.Matches(current, u.PasswordHash) {
		return apperr.BadRequest{Message: MsgWrongCurrentPassword}
	}
	hash, err := s.Passwords.Hash(next)
	if err != nil {
		return err
	}
	now := s.now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.MustChangePassword = false
	if err := repo.SaveUser(ctx, s.DB, u); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Uint("user_id", u.ID).Msg("password changed")
	return nil
}

// ResetPassword sets a new password for userID, forces a change on next
// sign-in and lifts any lockout.
func (s *UserService) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return notFoundOr(err, "User", "id", userID)
	}
	hash, err := s.Passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	now := s.now()
	u.PasswordHash = hash
	u.PasswordChangedAt = &now
	u.MustChangePassword = true
	u.FailedLoginAttempts = 0
	u.AccountLockedUntil = nil
	if err := repo.SaveUser(ctx, s.DB, u); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Uint("user_id", u.ID).Msg("password reset")
	return nil
}

// AssignRole grants roleName to userID. assignedBy may be nil.
func (s *UserService) AssignRole(ctx context.Context, userID uint, roleName string, assignedBy *uint) error {
	tr := otel.Tracer("services/UserService")
	ctx, span := tr.Start(ctx, "AssignRole", trace.WithAttributes(
		attribute.Int("user.id", int(userID)),
		attribute.String("role.name", roleName),
	))
	defer span.End()

	if _, err := repo.GetUser(ctx, s.DB, userID); err != nil {
		return notFoundOr(err, "User", "id", userID)
	}
	name := NormalizeRoleName(roleName)
	role, err := repo.GetRoleByName(ctx, s.DB, name)
	if err != nil {
		return notFoundOr(err, "Role", "roleName", name)
	}
	if _, err := repo.AssignRole(ctx, s.DB, userID, role.ID, assignedBy); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return apperr.BadRequestf("Role %s is already assigned to user", name)
		}
		return err
	}
	if err := repo.TouchUser(ctx, s.DB, userID); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Uint("user_id", userID).Str("role", name).Msg("role assigned")
	return nil
}

// RemoveRole revokes roleName from userID.
func (s *UserService) RemoveRole(ctx context.Context, userID uint, roleName string) error {
	if _, err := repo.GetUser(ctx, s.DB, userID); err != nil {
		return notFoundOr(err, "User", "id", userID)
	}
	name := NormalizeRoleName(roleName)
	role, err := repo.GetRoleByName(ctx, s.DB, name)
	if err != nil {
		return notFoundOr(err, "Role", "roleName", name)
	}
	if err := repo.UnassignRole(ctx, s.DB, userID, role.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apperr.BadRequestf("Role %s is not assigned to user", name)
		}
		return err
	}
	if err := repo.TouchUser(ctx, s.DB, userID); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Uint("user_id", userID).Str("role", name).Msg("role removed")
	return nil
}

// UpdateStatus changes the administrative status of userID. Reactivating an
// account also clears its lockout state.
func (s *UserService) UpdateStatus(ctx context.Context, userID uint, status domain.UserStatus) error {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return notFoundOr(err, "User", "id", userID)
	}
	u.Status = status
	if status == domain.UserActive {
		u.FailedLoginAttempts = 0
		u.AccountLockedUntil = nil
	}
	if err := repo.SaveUser(ctx, s.DB, u); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Uint("user_id", userID).Str("status", string(status)).Msg("user status updated")
	return nil
}

// RecordFailedLogin counts a failed sign-in for username and locks the
// account once the configured threshold is reached. Unknown usernames are
// ignored.
func (s *UserService) RecordFailedLogin(ctx context.Context, username string) error {
	u, err := repo.GetUserByUsername(ctx, s.DB, username)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	n, err := repo.IncrementFailedLogins(ctx, s.DB, u.ID)
	if err != nil {
		return err
	}
	if s.Login.MaxFailedAttempts > 0 && n >= s.Login.MaxFailedAttempts {
		until := s.now().Add(s.Login.LockoutDuration)
		if err := repo.LockUser(ctx, s.DB, u.ID, until); err != nil {
			return err
		}
		log.Ctx(ctx).Warn().
			Str("username", username).
			Int("failed_attempts", n).
			Time("locked_until", until).
			Msg("account locked")
	}
	return nil
}

// RecordSuccessfulLogin resets the failure counter and stamps the login time.
func (s *UserService) RecordSuccessfulLogin(ctx context.Context, userID uint) error {
	return repo.RecordLogin(ctx, s.DB, userID, s.now())
}

// Roles returns the role names held by userID.
func (s *UserService) Roles(ctx context.Context, userID uint) ([]string, error) {
	if _, err := repo.GetUser(ctx, s.DB, userID); err != nil {
		return nil, notFoundOr(err, "User", "id", userID)
	}
	roles, err := repo.RolesForUser(ctx, s.DB, userID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.RoleName)
	}
	return out, nil
}

func (s *UserService) withRoles(ctx context.Context, u *domain.User) (*UserWithRoles, error) {
	byUser, err := repo.RoleNamesForUsers(ctx, s.DB, []uint{u.ID})
	if err != nil {
		return nil, err
	}
	roles := byUser[u.ID]
	if roles == nil {
		roles = []string{}
	}
	return &UserWithRoles{User: *u, Roles: roles}, nil
}

func (s *UserService) pageWithRoles(ctx context.Context, pg utils.Page[domain.User]) (utils.Page[UserWithRoles], error) {
	items := pg.Content()
	ids := make([]uint, 0, len(items))
	for _, u := range items {
		ids = append(ids, u.ID)
	}
	byUser, err := repo.RoleNamesForUsers(ctx, s.DB, ids)
	if err != nil {
		return utils.Page[UserWithRoles]{}, err
	}
	return utils.MapPage(pg, func(u domain.User) UserWithRoles {
		roles := byUser[u.ID]
		if roles == nil {
			roles = []string{}
		}
		return UserWithRoles{User: u, Roles: roles}
	}), nil
}
