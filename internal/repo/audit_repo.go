package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/utils"
)

var auditSort = sortColumns{
	"id":         "audit_logs.id",
	"createdAt":  "audit_logs.created_at",
	"action":     "audit_logs.action",
	"entityType": "audit_logs.entity_type",
	"userId":     "audit_logs.user_id",
}

// AuditFilter narrows an audit query. Zero fields are ignored.
type AuditFilter struct {
	UserID     *uint
	EntityType string
	EntityID   *uint
	From       *time.Time
	To         *time.Time
}

// CreateAuditLog appends one entry. CreatedAt defaults to now (UTC).
func CreateAuditLog(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(entry).Error
}

// ListAuditLogsPage returns one page of entries matching f. Default order is
// newest first.
func ListAuditLogsPage(ctx context.Context, db *gorm.DB, f AuditFilter, p utils.Pageable) (utils.Page[domain.AuditLog], error) {
	q := db.Model(&domain.AuditLog{})
	if f.UserID != nil {
		q = q.Where("audit_logs.user_id = ?", *f.UserID)
	}
	if f.EntityType != "" {
		q = q.Where("audit_logs.entity_type = ?", f.EntityType)
	}
	if f.EntityID != nil {
		q = q.Where("audit_logs.entity_id = ?", *f.EntityID)
	}
	if f.From != nil {
		q = q.Where("audit_logs.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("audit_logs.created_at <= ?", *f.To)
	}
	if p.SortBy == "" {
		p.SortBy, p.Desc = "createdAt", true
	}
	return findPage[domain.AuditLog](ctx, q, p, auditSort, "createdAt")
}
