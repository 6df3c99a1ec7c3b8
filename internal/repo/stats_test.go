package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-school-backend/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Single connection keeps the in-memory DB alive and the FK pragma in effect.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestUsersStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	if _, _, err := UsersStats(context.Background(), db); err == nil {
		t.Fatalf("expected error due to missing users table")
	}
}

func TestUsersStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.User{})
	count, maxAt, err := UsersStats(context.Background(), db)
	if err != nil {
		t.Fatalf("UsersStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestRolesStats_Success_Max(t *testing.T) {
	db := newTestDB(t, &domain.Role{})

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max
	for i, ts := range []time.Time{t1, t2} {
		r := &domain.Role{RoleName: fmt.Sprintf("R%d", i), IsActive: true}
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
		// UpdatedAt is auto-managed on create; pin it afterwards.
		if err := db.Model(r).UpdateColumn("updated_at", ts).Error; err != nil {
			t.Fatalf("pin updated_at: %v", err)
		}
	}

	count, maxAt, err := RolesStats(context.Background(), db)
	if err != nil {
		t.Fatalf("RolesStats error: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected (2, %v), got (%d, %v)", t2, count, maxAt)
	}
}
