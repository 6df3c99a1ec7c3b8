package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
)

type captureAudit struct{ entries []services.AuditEntry }

func (r *captureAudit) Record(_ context.Context, e services.AuditEntry) {
	r.entries = append(r.entries, e)
}

func TestAudit_RecordsSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &captureAudit{}
	r := gin.New()
	r.Use(Authenticate(fakeAuth{"admin": {UserID: 1, Username: "admin"}}))
	r.PATCH("/api/users/:id/status", Audit(rec, "UPDATE_USER_STATUS", "User"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/users/12/status?status=SUSPENDED", nil)
	req.Header.Set("Authorization", "Bearer admin")
	req.Header.Set("User-Agent", "audit-test")
	r.ServeHTTP(httptest.NewRecorder(), req)

	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(rec.entries))
	}
	e := rec.entries[0]
	if e.Action != "UPDATE_USER_STATUS" || e.EntityType != "User" {
		t.Fatalf("unexpected action/entity: %+v", e)
	}
	if e.EntityID == nil || *e.EntityID != 12 {
		t.Fatalf("expected entity 12, got %v", e.EntityID)
	}
	if e.UserID == nil || *e.UserID != 1 || e.Username != "admin" {
		t.Fatalf("unexpected actor: %v %q", e.UserID, e.Username)
	}
	if e.Params["status"] != "SUSPENDED" || e.Params["id"] != "12" {
		t.Fatalf("unexpected params: %v", e.Params)
	}
	if e.UserAgent != "audit-test" {
		t.Fatalf("unexpected user agent %q", e.UserAgent)
	}
}

func TestAudit_RecordsFailureKind(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &captureAudit{}
	r := gin.New()
	r.DELETE("/api/roles/:id", Audit(rec, "DELETE_ROLE", "Role"), func(c *gin.Context) {
		response.Abort(c, apperr.BadRequest{Message: "in use"})
	})
	r.POST("/api/auth/login", Audit(rec, "LOGIN", "User"), func(c *gin.Context) {
		SetAuditActor(c, 5, "jdoe")
		SetAuditEntity(c, 5)
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/roles/3", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

	if len(rec.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rec.entries))
	}
	if got := rec.entries[0].Action; got != "DELETE_ROLE - FAILED (bad_request)" {
		t.Fatalf("unexpected failure action %q", got)
	}
	if rec.entries[0].UserID != nil {
		t.Fatalf("anonymous failure should have no actor")
	}
	login := rec.entries[1]
	if login.UserID == nil || *login.UserID != 5 || login.Username != "jdoe" {
		t.Fatalf("unexpected login actor: %+v", login)
	}
	if login.EntityID == nil || *login.EntityID != 5 {
		t.Fatalf("unexpected login entity: %v", login.EntityID)
	}
}
