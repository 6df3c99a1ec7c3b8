// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) on collection endpoints.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/domain"
)

// UsersStats returns the number of users and the latest UpdatedAt among them.
// When the table is empty, maxUpdatedAt is nil.
func UsersStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	return tableStats(ctx, db.Model(&domain.User{}))
}

// RolesStats returns the number of roles and the latest UpdatedAt among them.
func RolesStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	return tableStats(ctx, db.Model(&domain.Role{}))
}

func tableStats(ctx context.Context, q *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	q = q.WithContext(ctx).Session(&gorm.Session{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
