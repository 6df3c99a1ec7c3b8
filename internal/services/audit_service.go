package services

import (
	"context"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/repo"
	"github.com/tbourn/go-school-backend/internal/utils"
)

// maxAuditValueRunes matches the width of the old/new value columns.
const maxAuditValueRunes = 1000

// AuditEntry describes one audited operation.
type AuditEntry struct {
	UserID     *uint
	Username   string
	Action     string
	EntityType string
	EntityID   *uint
	// Params are the operation inputs; secret-looking keys are dropped.
	Params map[string]any
	// Result is serialized into NewValues when non-nil.
	Result    any
	IPAddress string
	UserAgent string
}

// AuditService writes and queries the audit trail.
type AuditService struct {
	DB *gorm.DB
}

// NewAuditService constructs an AuditService.
func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{DB: db}
}

// Record persists e. Failures are logged and never returned so auditing
// cannot break the operation being audited.
func (s *AuditService) Record(ctx context.Context, e AuditEntry) {
	entry := &domain.AuditLog{
		UserID:     e.UserID,
		Username:   e.Username,
		Action:     clipRunes(e.Action, 100),
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		OldValues:  serializeAudit(scrubParams(e.Params)),
		IPAddress:  e.IPAddress,
		UserAgent:  clipRunes(e.UserAgent, 255),
	}
	if e.Result != nil {
		entry.NewValues = serializeAudit(e.Result)
	}
	if err := repo.CreateAuditLog(ctx, s.DB, entry); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("action", e.Action).Msg("write audit log")
	}
}

// List returns one page of audit entries matching f.
func (s *AuditService) List(ctx context.Context, f repo.AuditFilter, p utils.Pageable) (utils.Page[domain.AuditLog], error) {
	pg, err := repo.ListAuditLogsPage(ctx, s.DB, f, p)
	return pg, storeErr(err)
}

// scrubParams drops keys that look like credentials.
func scrubParams(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		low := strings.ToLower(k)
		if strings.Contains(low, "password") || strings.Contains(low, "token") {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func serializeAudit(v any) string {
	if v == nil {
		return ""
	}
	if m, ok := v.(map[string]any); ok && m == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return clipRunes(string(b), maxAuditValueRunes)
}

func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
