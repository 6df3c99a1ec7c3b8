// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file records audited operations. Audit wraps a route, lets it run and
// then writes one audit entry describing who did what to which entity, from
// where, and whether it failed. Failures are recorded as
// "<ACTION> - FAILED (<kind>)" using the kind assigned by the error classifier.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
)

const (
	auditEntityKey = "audit.entityID"
	auditActorKey  = "audit.actor"
)

// AuditRecorder persists audit entries. Record must not fail the request.
type AuditRecorder interface {
	Record(ctx context.Context, e services.AuditEntry)
}

type auditActor struct {
	id       uint
	username string
}

// SetAuditEntity overrides the audited entity id, e.g. with the id of a
// freshly created resource.
func SetAuditEntity(c *gin.Context, id uint) {
	c.Set(auditEntityKey, id)
}

// SetAuditActor names the acting user for unauthenticated endpoints such as login.
func SetAuditActor(c *gin.Context, id uint, username string) {
	c.Set(auditActorKey, auditActor{id: id, username: username})
}

// Audit records action on entityType after the wrapped handler completes.
func Audit(rec AuditRecorder, action, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		e := services.AuditEntry{
			Action:     action,
			EntityType: entityType,
			EntityID:   auditEntityID(c),
			Params:     auditParams(c),
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		if p, ok := PrincipalFrom(c); ok {
			id := p.UserID
			e.UserID, e.Username = &id, p.Username
		} else if v, ok := c.Get(auditActorKey); ok {
			if a, ok := v.(auditActor); ok {
				id := a.id
				e.UserID, e.Username = &id, a.username
			}
		}
		if c.Writer.Status() >= http.StatusBadRequest {
			kind := response.FailureKind(c)
			if kind == "" {
				kind = strconv.Itoa(c.Writer.Status())
			}
			e.Action = fmt.Sprintf("%s - FAILED (%s)", action, kind)
		}

		rec.Record(context.WithoutCancel(c.Request.Context()), e)
	}
}

func auditEntityID(c *gin.Context) *uint {
	if v, ok := c.Get(auditEntityKey); ok {
		if id, ok := v.(uint); ok {
			return &id
		}
	}
	for _, name := range []string{"id", "userId"} {
		if raw := c.Param(name); raw != "" {
			if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
				id := uint(n)
				return &id
			}
		}
	}
	return nil
}

// auditParams collects path and query parameters. Credential-looking keys
// are dropped by the audit service.
func auditParams(c *gin.Context) map[string]any {
	out := map[string]any{}
	for _, p := range c.Params {
		out[p.Key] = p.Value
	}
	for k, vv := range c.Request.URL.Query() {
		if len(vv) == 1 {
			out[k] = vv[0]
		} else {
			out[k] = vv
		}
	}
	return out
}
