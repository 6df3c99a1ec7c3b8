package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/domain"
)

// AssignRole links userID to roleID. An existing link surfaces as ErrDuplicate.
func AssignRole(ctx context.Context, db *gorm.DB, userID, roleID uint, assignedBy *uint) (*domain.UserRole, error) {
	ur := &domain.UserRole{
		UserID:     userID,
		RoleID:     roleID,
		AssignedAt: time.Now().UTC(),
		AssignedBy: assignedBy,
	}
	if err := db.WithContext(ctx).Create(ur).Error; err != nil {
		return nil, translate(err)
	}
	return ur, nil
}

// GetUserRole fetches the (userID, roleID) link.
func GetUserRole(ctx context.Context, db *gorm.DB, userID, roleID uint) (*domain.UserRole, error) {
	var ur domain.UserRole
	err := db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		First(&ur).Error
	if err != nil {
		return nil, err
	}
	return &ur, nil
}

// UnassignRole removes the (userID, roleID) link.
func UnassignRole(ctx context.Context, db *gorm.DB, userID, roleID uint) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&domain.UserRole{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RolesForUser returns the roles held by userID ordered by name.
func RolesForUser(ctx context.Context, db *gorm.DB, userID uint) ([]domain.Role, error) {
	out := []domain.Role{}
	err := db.WithContext(ctx).
		Model(&domain.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.role_name ASC").
		Find(&out).Error
	return out, err
}

// RoleNamesForUsers returns role names keyed by user id for a batch of users.
// Users without roles are absent from the map.
func RoleNamesForUsers(ctx context.Context, db *gorm.DB, userIDs []uint) (map[uint][]string, error) {
	out := make(map[uint][]string, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		UserID   uint
		RoleName string
	}
	err := db.WithContext(ctx).
		Table("user_roles").
		Select("user_roles.user_id, roles.role_name").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id IN ?", userIDs).
		Order("roles.role_name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.UserID] = append(out[r.UserID], r.RoleName)
	}
	return out, nil
}
