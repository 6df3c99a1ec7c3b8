package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/repo"
)

// ListAuditLogs godoc
// @ID          listAuditLogs
// @Summary     Search the audit trail
// @Description Returns a page of audit entries, newest first. Filters combine with AND.
// @Tags        Audit
// @Produce     json
// @Security    BearerAuth
// @Param       userId      query     int     false  "Acting user ID"
// @Param       entityType  query     string  false  "Entity type"  example(User)
// @Param       entityId    query     int     false  "Entity ID"
// @Param       from        query     string  false  "Lower bound (RFC 3339 or YYYY-MM-DD)"
// @Param       to          query     string  false  "Upper bound (RFC 3339 or YYYY-MM-DD, inclusive day)"
// @Param       page        query     int     false  "Page number (0-based)"
// @Param       size        query     int     false  "Page size"
// @Success     200         {object}  response.Envelope{data=response.PageResponse[domain.AuditLog]}
// @Failure     400         {object}  response.Envelope  "Validation failed"
// @Router      /audit-logs [get]
func (h *Handlers) ListAuditLogs(c *gin.Context) {
	f, err := auditFilter(c)
	if err != nil {
		fail(c, err)
		return
	}
	p, err := pageable(c)
	if err != nil {
		fail(c, err)
		return
	}
	pg, err := h.audit.List(c.Request.Context(), f, p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, MsgSuccess, response.PageFrom[domain.AuditLog](pg))
}

func auditFilter(c *gin.Context) (repo.AuditFilter, error) {
	var (
		f    repo.AuditFilter
		errs = map[string]string{}
	)
	parseID := func(name string) *uint {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs[name] = fieldLabel(name) + " must be a positive number"
			return nil
		}
		id := uint(n)
		return &id
	}
	parseTime := func(name string, endOfDay bool) *time.Time {
		raw := strings.TrimSpace(c.Query(name))
		if raw == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			t = t.UTC()
			return &t
		}
		if d, err := time.Parse(time.DateOnly, raw); err == nil {
			if endOfDay {
				d = d.Add(24*time.Hour - time.Nanosecond)
			}
			return &d
		}
		errs[name] = fieldLabel(name) + " must be an RFC 3339 timestamp or a YYYY-MM-DD date"
		return nil
	}

	f.UserID = parseID("userId")
	f.EntityID = parseID("entityId")
	f.EntityType = strings.TrimSpace(c.Query("entityType"))
	f.From = parseTime("from", false)
	f.To = parseTime("to", true)

	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		errs["to"] = "To must not be before from"
	}
	if len(errs) > 0 {
		return f, apperr.ValidationFailed{Fields: errs}
	}
	return f, nil
}
