package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/utils"
)

var roleSort = sortColumns{
	"id":        "roles.id",
	"roleName":  "roles.role_name",
	"isActive":  "roles.is_active",
	"createdAt": "roles.created_at",
	"updatedAt": "roles.updated_at",
}

// CreateRole inserts r. A taken name surfaces as ErrDuplicate.
func CreateRole(ctx context.Context, db *gorm.DB, r *domain.Role) error {
	return translate(db.WithContext(ctx).Create(r).Error)
}

// SaveRole writes every column of r.
func SaveRole(ctx context.Context, db *gorm.DB, r *domain.Role) error {
	return translate(db.WithContext(ctx).Save(r).Error)
}

// GetRole fetches a role by primary key.
func GetRole(ctx context.Context, db *gorm.DB, id uint) (*domain.Role, error) {
	var r domain.Role
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRoleByName fetches a role by exact name.
func GetRoleByName(ctx context.Context, db *gorm.DB, name string) (*domain.Role, error) {
	var r domain.Role
	if err := db.WithContext(ctx).Where("role_name = ?", name).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// RoleNameExists reports whether a role other than excludeID is named name.
func RoleNameExists(ctx context.Context, db *gorm.DB, name string, excludeID uint) (bool, error) {
	var n int64
	q := db.WithContext(ctx).Model(&domain.Role{}).Where("role_name = ?", name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// ListRolesPage returns one page of roles.
func ListRolesPage(ctx context.Context, db *gorm.DB, p utils.Pageable) (utils.Page[domain.Role], error) {
	return findPage[domain.Role](ctx, db.Model(&domain.Role{}), p, roleSort, "roleName")
}

// ListActiveRoles returns every active role ordered by name.
func ListActiveRoles(ctx context.Context, db *gorm.DB) ([]domain.Role, error) {
	out := []domain.Role{}
	err := db.WithContext(ctx).Where("is_active = ?", true).Order("role_name ASC").Find(&out).Error
	return out, err
}

// SetRoleActive flips the active flag.
func SetRoleActive(ctx context.Context, db *gorm.DB, id uint, active bool) error {
	res := db.WithContext(ctx).Model(&domain.Role{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRole removes a role by id.
func DeleteRole(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Role{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountRoleAssignments returns how many users hold role id.
func CountRoleAssignments(ctx context.Context, db *gorm.DB, roleID uint) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.UserRole{}).Where("role_id = ?", roleID).Count(&n).Error
	return n, err
}
