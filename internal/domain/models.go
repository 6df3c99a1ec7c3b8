// Package domain defines the persistence models for user accounts, roles,
// role assignments and the audit trail. These types are mapped with GORM and
// form the core data layer of the school administration API.
package domain

import (
	"strings"
	"time"
)

// UserStatus is the administrative state of an account.
type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserInactive  UserStatus = "INACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
	UserLocked    UserStatus = "LOCKED"
)

// ParseUserStatus accepts a status name in any case.
func ParseUserStatus(s string) (UserStatus, bool) {
	switch st := UserStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case UserActive, UserInactive, UserSuspended, UserLocked:
		return st, true
	}
	return "", false
}

// User is a staff account able to sign in to the API.
//
// Fields:
//   - Username: unique login name (3..50 chars).
//   - Email: optional, unique when present.
//   - PasswordHash: bcrypt hash; never serialized.
//   - Status: administrative state; only ACTIVE accounts may sign in.
//   - FailedLoginAttempts / AccountLockedUntil: brute-force protection state.
//   - MustChangePassword: set for seeded or reset accounts.
type User struct {
	ID                  uint       `json:"id"                  gorm:"primaryKey"`
	Username            string     `json:"username"            gorm:"type:varchar(50);not null;uniqueIndex:ux_users_username"`
	Email               *string    `json:"email,omitempty"     gorm:"type:varchar(100);uniqueIndex:ux_users_email"`
	PasswordHash        string     `json:"-"                   gorm:"type:varchar(255);not null"`
	FirstName           string     `json:"firstName"           gorm:"type:varchar(100);not null"`
	LastName            string     `json:"lastName"            gorm:"type:varchar(100);not null"`
	Phone               string     `json:"phone,omitempty"     gorm:"type:varchar(20)"`
	Address             string     `json:"address,omitempty"   gorm:"type:varchar(500)"`
	PhotoURL            string     `json:"photoUrl,omitempty"  gorm:"type:varchar(255)"`
	Status              UserStatus `json:"status"              gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	PasswordChangedAt   *time.Time `json:"passwordChangedAt,omitempty"`
	FailedLoginAttempts int        `json:"-"                   gorm:"not null;default:0"`
	AccountLockedUntil  *time.Time `json:"-"`
	MustChangePassword  bool       `json:"mustChangePassword"  gorm:"not null"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsAccountLocked reports whether a temporary lockout is still in effect at now.
func (u User) IsAccountLocked(now time.Time) bool {
	return u.AccountLockedUntil != nil && u.AccountLockedUntil.After(now)
}

// IsActive reports whether the account may sign in at now.
func (u User) IsActive(now time.Time) bool {
	return u.Status == UserActive && !u.IsAccountLocked(now)
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Built-in role names created at bootstrap.
const (
	RolePrincipal      = "PRINCIPAL"
	RoleAdminOfficer   = "ADMIN_OFFICER"
	RoleAccountant     = "ACCOUNTANT"
	RoleClassTeacher   = "CLASS_TEACHER"
	RoleSubjectTeacher = "SUBJECT_TEACHER"
	RoleReception      = "RECEPTION"
	RoleITAdmin        = "IT_ADMIN"
)

// Role is a named permission group such as PRINCIPAL or IT_ADMIN.
type Role struct {
	ID          uint      `json:"id"          gorm:"primaryKey"`
	RoleName    string    `json:"roleName"    gorm:"type:varchar(50);not null;uniqueIndex:ux_roles_name"`
	Description string    `json:"description" gorm:"type:varchar(500)"`
	IsActive    bool      `json:"isActive"    gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName returns the database table name for Role.
func (Role) TableName() string { return "roles" }

// UserRole assigns a role to a user. A role can be assigned to a user once.
//
// Fields:
//   - AssignedBy: id of the administrator that made the assignment, when known.
//   - User / Role: FK associations; removing a user drops its assignments,
//     removing an assigned role is refused.
type UserRole struct {
	ID         uint      `json:"id"         gorm:"primaryKey"`
	UserID     uint      `json:"userId"     gorm:"not null;uniqueIndex:ux_user_roles,priority:1"`
	RoleID     uint      `json:"roleId"     gorm:"not null;uniqueIndex:ux_user_roles,priority:2;index"`
	AssignedAt time.Time `json:"assignedAt" gorm:"not null"`
	AssignedBy *uint     `json:"assignedBy,omitempty"`

	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Role Role `json:"-" gorm:"foreignKey:RoleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for UserRole.
func (UserRole) TableName() string { return "user_roles" }

// AuditLog records one audited operation and who performed it.
type AuditLog struct {
	ID         uint      `json:"id"                   gorm:"primaryKey"`
	UserID     *uint     `json:"userId,omitempty"     gorm:"index:idx_audit_user"`
	Username   string    `json:"username,omitempty"   gorm:"type:varchar(50)"`
	Action     string    `json:"action"               gorm:"type:varchar(100);not null"`
	EntityType string    `json:"entityType,omitempty" gorm:"type:varchar(50);index:idx_audit_entity,priority:1"`
	EntityID   *uint     `json:"entityId,omitempty"   gorm:"index:idx_audit_entity,priority:2"`
	OldValues  string    `json:"oldValues,omitempty"  gorm:"type:varchar(1000)"`
	NewValues  string    `json:"newValues,omitempty"  gorm:"type:varchar(1000)"`
	IPAddress  string    `json:"ipAddress,omitempty"  gorm:"type:varchar(64)"`
	UserAgent  string    `json:"userAgent,omitempty"  gorm:"type:varchar(255)"`
	CreatedAt  time.Time `json:"createdAt"            gorm:"index"`
}

// TableName returns the database table name for AuditLog.
func (AuditLog) TableName() string { return "audit_logs" }
