package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
)

type fakeAuth map[string]*services.Principal

func (f fakeAuth) Authenticate(_ context.Context, tok string) (*services.Principal, error) {
	if p, ok := f[tok]; ok {
		return p, nil
	}
	return nil, apperr.AuthenticationFailed{Cause: errors.New("bad token")}
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(fakeAuth{
		"admin":   {UserID: 1, Username: "admin", Roles: []string{"PRINCIPAL", "IT_ADMIN"}},
		"teacher": {UserID: 2, Username: "teacher", Roles: []string{"CLASS_TEACHER"}},
	}))
	r.GET("/public", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(userIDKey))
	})
	r.GET("/me", RequireAuth(), func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.String(http.StatusOK, p.Username)
	})
	r.GET("/admin", RequireRoles("PRINCIPAL", "IT_ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doAuth(r http.Handler, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"missing":      {"", "", false},
		"basic scheme": {"Basic abc", "", false},
		"empty token":  {"Bearer   ", "", false},
		"ok":           {"Bearer abc", "abc", true},
		"lower scheme": {"bearer xyz", "xyz", true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}
			got, ok := BearerToken(c)
			if got != tc.want || ok != tc.ok {
				t.Fatalf("got (%q,%v), want (%q,%v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestAuthenticate_PublicRouteToleratesBadToken(t *testing.T) {
	r := authRouter()

	if w := doAuth(r, "/public", "Bearer nope"); w.Code != http.StatusOK || w.Body.String() != "" {
		t.Fatalf("bad token on public route: %d %q", w.Code, w.Body.String())
	}
	if w := doAuth(r, "/public", "Bearer teacher"); w.Body.String() != "2" {
		t.Fatalf("expected userID 2, got %q", w.Body.String())
	}
}

func TestRequireAuth(t *testing.T) {
	r := authRouter()

	for _, h := range []string{"", "Bearer nope"} {
		w := doAuth(r, "/me", h)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", h, w.Code)
		}
		var env response.Envelope
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if env.Success || env.Message != response.MsgAuthenticationFailed {
			t.Fatalf("unexpected envelope: %+v", env)
		}
	}

	if w := doAuth(r, "/me", "Bearer admin"); w.Code != http.StatusOK || w.Body.String() != "admin" {
		t.Fatalf("expected admin, got %d %q", w.Code, w.Body.String())
	}
}

func TestRequireRoles(t *testing.T) {
	r := authRouter()

	if w := doAuth(r, "/admin", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", w.Code)
	}

	w := doAuth(r, "/admin", "Bearer teacher")
	if w.Code != http.StatusForbidden {
		t.Fatalf("teacher: expected 403, got %d", w.Code)
	}
	var env response.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if env.Message != response.MsgAccessDenied {
		t.Fatalf("unexpected message %q", env.Message)
	}

	if w := doAuth(r, "/admin", "Bearer admin"); w.Code != http.StatusNoContent {
		t.Fatalf("admin: expected 204, got %d", w.Code)
	}
}
