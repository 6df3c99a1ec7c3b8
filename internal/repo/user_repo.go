// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: persistence and query composition only, business rules live in
// the services package.
//
// Error semantics:
//   - Missing rows surface as ErrNotFound (gorm.ErrRecordNotFound).
//   - Unique violations on username/email surface as ErrDuplicate.
//   - Any other DB error is propagated unchanged.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/utils"
)

var userSort = sortColumns{
	"id":          "users.id",
	"username":    "users.username",
	"email":       "users.email",
	"firstName":   "users.first_name",
	"lastName":    "users.last_name",
	"status":      "users.status",
	"lastLoginAt": "users.last_login_at",
	"createdAt":   "users.created_at",
	"updatedAt":   "users.updated_at",
}

// CreateUser inserts u and fills its generated ID and timestamps.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return translate(db.WithContext(ctx).Create(u).Error)
}

// SaveUser writes every column of u.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return translate(db.WithContext(ctx).Save(u).Error)
}

// GetUser fetches a user by primary key.
func GetUser(ctx context.Context, db *gorm.DB, id uint) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername fetches a user by exact username.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail fetches a user by exact email.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UsernameExists reports whether any user holds username.
func UsernameExists(ctx context.Context, db *gorm.DB, username string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&n).Error
	return n > 0, err
}

// EmailExists reports whether any user other than excludeID holds email.
// Pass excludeID 0 to check all users.
func EmailExists(ctx context.Context, db *gorm.DB, email string, excludeID uint) (bool, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// ListUsersPage returns one page of all users.
func ListUsersPage(ctx context.Context, db *gorm.DB, p utils.Pageable) (utils.Page[domain.User], error) {
	return findPage[domain.User](ctx, db.Model(&domain.User{}), p, userSort, "id")
}

// ListUsersByStatusPage returns one page of users in status.
func ListUsersByStatusPage(ctx context.Context, db *gorm.DB, status domain.UserStatus, p utils.Pageable) (utils.Page[domain.User], error) {
	q := db.Model(&domain.User{}).Where("users.status = ?", status)
	return findPage[domain.User](ctx, q, p, userSort, "id")
}

// ListUsersByRolePage returns one page of ACTIVE users holding roleName.
func ListUsersByRolePage(ctx context.Context, db *gorm.DB, roleName string, p utils.Pageable) (utils.Page[domain.User], error) {
	holders := db.Table("user_roles").
		Select("user_roles.user_id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.role_name = ?", roleName)
	q := db.Model(&domain.User{}).
		Where("users.status = ?", domain.UserActive).
		Where("users.id IN (?)", holders)
	return findPage[domain.User](ctx, q, p, userSort, "id")
}

// IncrementFailedLogins bumps the failure counter and returns the new value.
func IncrementFailedLogins(ctx context.Context, db *gorm.DB, id uint) (int, error) {
	var attempts int
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.User{}).Where("id = ?", id).
			UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&domain.User{}).Where("id = ?", id).
			Select("failed_login_attempts").Scan(&attempts).Error
	})
	return attempts, err
}

// LockUser sets a temporary lockout that expires at until.
func LockUser(ctx context.Context, db *gorm.DB, id uint, until time.Time) error {
	return updateUserColumns(ctx, db, id, map[string]any{"account_locked_until": until})
}

// RecordLogin clears failure state and stamps the last login time.
func RecordLogin(ctx context.Context, db *gorm.DB, id uint, at time.Time) error {
	return updateUserColumns(ctx, db, id, map[string]any{
		"failed_login_attempts": 0,
		"account_locked_until":  nil,
		"last_login_at":         at,
	})
}

// TouchUser bumps updated_at after changes stored outside the users table,
// such as role assignments, so conditional list responses see them.
func TouchUser(ctx context.Context, db *gorm.DB, id uint) error {
	return updateUserColumns(ctx, db, id, map[string]any{"updated_at": time.Now().UTC()})
}

func updateUserColumns(ctx context.Context, db *gorm.DB, id uint, cols map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).UpdateColumns(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
