package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-school-backend/internal/config"
	"github.com/tbourn/go-school-backend/internal/http/middleware"
	"github.com/tbourn/go-school-backend/internal/repo"
	"github.com/tbourn/go-school-backend/internal/services"
)

// ---------- test environment ----------

type testEnv struct {
	t     *testing.T
	db    *gorm.DB
	h     *Handlers
	deps  Deps
	r     *gin.Engine
	token string // admin access token
}

func newHandlersDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newTestEnv seeds roles and an admin account and mounts every handler
// without role guards; guards are covered by the router tests.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newHandlersDB(t)

	pw := services.NewPasswordService(config.PasswordPolicy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireDigit: true})
	pw.Cost = bcrypt.MinCost
	users := services.NewUserService(db, pw, config.LoginConfig{MaxFailedAttempts: 3, LockoutDuration: time.Minute})
	tokens := services.NewTokenService(config.JWTConfig{
		Secret:     "0123456789abcdef0123456789abcdef",
		Issuer:     "school-api-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})
	deps := Deps{
		DB:          db,
		Users:       users,
		Roles:       services.NewRoleService(db),
		Auth:        services.NewAuthService(db, users, pw, tokens),
		Audit:       services.NewAuditService(db),
		Idempotency: services.NewIdempotencyService(db, time.Hour),
		AppName:     "school-api",
		AppVersion:  "test",
	}
	if err := services.Seed(context.Background(), db, pw, config.SeedConfig{
		Enabled: true, AdminUsername: "admin", AdminPassword: "Admin123", AdminEmail: "admin@school.test",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	h := New(deps)
	r := gin.New()
	r.Use(middleware.Authenticate(deps.Auth))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, func(ctx context.Context, userID, scope, key string, _ time.Time) (bool, error) {
		var uid uint
		if _, err := fmt.Sscan(userID, &uid); err != nil {
			return false, err
		}
		return deps.Idempotency.Exists(ctx, uid, scope, key)
	}))

	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.POST("/auth/login", middleware.Audit(deps.Audit, "LOGIN", "User"), h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/logout", h.Logout)
	api.POST("/auth/change-password", middleware.RequireAuth(), h.ChangePassword)
	api.POST("/auth/reset-password/:userId", h.ResetPassword)
	api.GET("/auth/validate", h.ValidateToken)

	api.POST("/users", middleware.Audit(deps.Audit, "CREATE_USER", "User"), h.CreateUser)
	api.GET("/users", h.ListUsers)
	api.GET("/users/:id", h.GetUser)
	api.GET("/users/username/:username", h.GetUserByUsername)
	api.GET("/users/status/:status", h.ListUsersByStatus)
	api.GET("/users/role/:roleName", h.ListUsersByRole)
	api.GET("/users/:id/roles", h.GetUserRoles)
	api.PUT("/users/:id", h.UpdateUser)
	api.PUT("/users/:id/status", h.UpdateUserStatus)
	api.POST("/users/:id/roles/:roleName", h.AssignRole)
	api.DELETE("/users/:id/roles/:roleName", h.RemoveRole)

	api.POST("/roles", middleware.Audit(deps.Audit, "CREATE_ROLE", "Role"), h.CreateRole)
	api.GET("/roles", h.ListRoles)
	api.GET("/roles/active", h.ListActiveRoles)
	api.GET("/roles/name/:roleName", h.GetRoleByName)
	api.GET("/roles/:id", h.GetRole)
	api.PUT("/roles/:id", h.UpdateRole)
	api.PUT("/roles/:id/activate", h.ActivateRole)
	api.PUT("/roles/:id/deactivate", h.DeactivateRole)
	api.DELETE("/roles/:id", middleware.Audit(deps.Audit, "DELETE_ROLE", "Role"), h.DeleteRole)

	api.GET("/audit-logs", h.ListAuditLogs)

	env := &testEnv{t: t, db: db, h: h, deps: deps, r: r}
	env.token = env.login("admin", "Admin123").AccessToken
	return env
}

// envelope mirrors response.Envelope with a raw data member.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func (e *testEnv) do(method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			e.t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			e.t.Fatalf("%s %s: invalid json %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w, env
}

// as performs an authenticated request with the admin token.
func (e *testEnv) as(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	return e.do(method, path, body, map[string]string{"Authorization": "Bearer " + e.token})
}

func (e *testEnv) login(username, password string) LoginResponse {
	e.t.Helper()
	w, env := e.do(http.MethodPost, "/api/auth/login", LoginRequest{Username: username, Password: password}, nil)
	if w.Code != http.StatusOK {
		e.t.Fatalf("login %s: %d %s", username, w.Code, w.Body.String())
	}
	var out LoginResponse
	decode(e.t, env.Data, &out)
	return out
}

func (e *testEnv) createUser(username string) UserResponse {
	e.t.Helper()
	w, env := e.as(http.MethodPost, "/api/users", CreateUserRequest{
		Username:  username,
		Email:     username + "@school.test",
		Password:  "Secret123",
		FirstName: "Jane",
		LastName:  "Roe",
	})
	if w.Code != http.StatusCreated {
		e.t.Fatalf("create user %s: %d %s", username, w.Code, w.Body.String())
	}
	var u UserResponse
	decode(e.t, env.Data, &u)
	return u
}

func decode(t *testing.T, raw json.RawMessage, dst any) {
	t.Helper()
	if err := json.Unmarshal(raw, dst); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
}

func wantFailure(t *testing.T, w *httptest.ResponseRecorder, env envelope, status int, msg string) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d (%s)", status, w.Code, w.Body.String())
	}
	if env.Success || env.Message != msg {
		t.Fatalf("expected failure %q, got %+v", msg, env)
	}
}

// ---------- shared helpers ----------

func TestPageable_DefaultsAndClamping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := map[string]struct {
		query      string
		page, size int
		sortBy     string
		desc       bool
	}{
		"defaults":      {"", 0, 10, "", false},
		"explicit":      {"page=2&size=25&sortBy=username&sortDir=DESC", 2, 25, "username", true},
		"negative page": {"page=-3", 0, 10, "", false},
		"size too big":  {"size=1000", 0, 100, "", false},
		"size zero":     {"size=0", 0, 1, "", false},
		"garbage":       {"page=x&size=y&sortDir=sideways", 0, 10, "", false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
			p, err := pageable(c)
			if err != nil {
				t.Fatalf("pageable: %v", err)
			}
			if p.Page != tc.page || p.Size != tc.size || p.SortBy != tc.sortBy || p.Desc != tc.desc {
				t.Fatalf("got %+v", p)
			}
		})
	}
}

func TestPageable_RejectsHugePage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, q := range []string{"page=10000001", "page=184467440737095516", "page=99999999999999999999999"} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+q, nil)
		if _, err := pageable(c); err == nil {
			t.Fatalf("%s: expected an error", q)
		}
	}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/?page=10000000&size=100", nil)
	p, err := pageable(c)
	if err != nil || p.Offset() != 1_000_000_000 {
		t.Fatalf("largest page: %+v %v", p, err)
	}
}

func TestFieldLabel(t *testing.T) {
	for in, want := range map[string]string{
		"username":        "Username",
		"firstName":       "First name",
		"currentPassword": "Current password",
		"photoUrl":        "Photo url",
	} {
		if got := fieldLabel(in); got != want {
			t.Fatalf("fieldLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w, env := e.do(http.MethodGet, "/api/health", nil, nil)
	if w.Code != http.StatusOK || !env.Success || env.Message != "Application is healthy" {
		t.Fatalf("unexpected health response: %d %s", w.Code, w.Body.String())
	}
	var info HealthInfo
	decode(t, env.Data, &info)
	if info.Status != "UP" || info.Application != "school-api" || info.Version != "test" || info.Database != "UP" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Timestamp.IsZero() {
		t.Fatalf("timestamp missing")
	}
}
