// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// authentication, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Every failure, including unknown routes, answers with the error envelope
//   - Role checks declared next to the routes they guard
package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/config"
	"github.com/tbourn/go-school-backend/internal/domain"
	"github.com/tbourn/go-school-backend/internal/http/handlers"
	"github.com/tbourn/go-school-backend/internal/http/middleware"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
)

// MsgRouteNotFound is the message of the 404 answered for unknown routes.
const MsgRouteNotFound = "route not found"

// MsgMethodNotAllowed is the message of the 405 answered for known routes.
const MsgMethodNotAllowed = "method not allowed"

// Role sets shared by several route groups.
var (
	userReaders  = []string{domain.RolePrincipal, domain.RoleAdminOfficer, domain.RoleITAdmin}
	userManagers = []string{domain.RolePrincipal, domain.RoleITAdmin}
	auditReaders = []string{domain.RolePrincipal, domain.RoleITAdmin}
)

// NewDeps builds the application services used by the handlers.
func NewDeps(db *gorm.DB, cfg config.Config) handlers.Deps {
	pw := services.NewPasswordService(cfg.Password)
	users := services.NewUserService(db, pw, cfg.Login)
	tokens := services.NewTokenService(cfg.JWT)
	return handlers.Deps{
		DB:          db,
		Users:       users,
		Roles:       services.NewRoleService(db),
		Auth:        services.NewAuthService(db, users, pw, tokens),
		Audit:       services.NewAuditService(db),
		Idempotency: services.NewIdempotencyService(db, cfg.IdempotencyTTL),
		AppName:     cfg.AppName,
		AppVersion:  cfg.AppVersion,
	}
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine and mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Authenticate: resolve the bearer token (routes decide if it is required)
//  8. Idempotency validator (needs the caller; before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay); login adds a per-IP throttle
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps handlers.Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{middleware.HeaderIdempotencyKey},
	}))

	// 4) Panic recovery to the catch-all envelope (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Bearer token → principal
	r.Use(middleware.Authenticate(deps.Auth))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200},
		idempotencyLookup(deps.Idempotency),
	))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(middleware.RateLimitOptions{
		Name:  "global",
		RPS:   cfg.RateRPS,
		Burst: cfg.RateBurst,
		Key:   middleware.KeyByUserOrIP(),
	})
	r.Use(rl.Handler())
	loginLimit := middleware.NewRateLimiter(middleware.RateLimitOptions{
		Name:  "login",
		RPS:   cfg.Login.RateRPS,
		Burst: cfg.Login.RateBurst,
		Key:   middleware.KeyByIP(),
	})

	// 10) CORS posture (safe defaults: allow all if none configured)
	r.Use(corsMiddleware(cfg.CORS)...)

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		response.Abort(c, apperr.NotFound{Message: MsgRouteNotFound})
	})
	r.NoMethod(func(c *gin.Context) {
		response.Reject(c, http.StatusMethodNotAllowed, "method_not_allowed", MsgMethodNotAllowed)
	})

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps)
	audit := func(action, entity string) gin.HandlerFunc {
		return middleware.Audit(deps.Audit, action, entity)
	}

	api := groupWithPrefix(r, cfg.APIBasePath)
	api.GET("/health", h.Health)

	auth := api.Group("/auth", middleware.NoStore())
	{
		auth.POST("/login", loginLimit.Handler(), audit("LOGIN", "User"), h.Login)
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/validate", h.ValidateToken)
		auth.POST("/change-password", middleware.RequireAuth(), audit("CHANGE_PASSWORD", "User"), h.ChangePassword)
		auth.POST("/reset-password/:userId", middleware.RequireRoles(userManagers...), audit("RESET_PASSWORD", "User"), h.ResetPassword)
	}

	users := api.Group("/users")
	{
		read := middleware.RequireRoles(userReaders...)
		manage := middleware.RequireRoles(userManagers...)
		itAdmin := middleware.RequireRoles(domain.RoleITAdmin)

		users.POST("", itAdmin, audit("CREATE_USER", "User"), h.CreateUser)
		users.GET("", read, h.ListUsers)
		users.GET("/:id", read, h.GetUser)
		users.GET("/username/:username", read, h.GetUserByUsername)
		users.GET("/status/:status", read, h.ListUsersByStatus)
		users.GET("/role/:roleName", read, h.ListUsersByRole)
		users.GET("/:id/roles", read, h.GetUserRoles)
		users.PUT("/:id", manage, audit("UPDATE_USER", "User"), h.UpdateUser)
		users.PUT("/:id/status", manage, audit("UPDATE_USER_STATUS", "User"), h.UpdateUserStatus)
		users.POST("/:id/roles/:roleName", itAdmin, audit("ASSIGN_ROLE", "User"), h.AssignRole)
		users.DELETE("/:id/roles/:roleName", itAdmin, audit("REMOVE_ROLE", "User"), h.RemoveRole)
	}

	roles := api.Group("/roles", middleware.RequireRoles(domain.RoleITAdmin))
	{
		roles.POST("", audit("CREATE_ROLE", "Role"), h.CreateRole)
		roles.GET("", h.ListRoles)
		roles.GET("/active", h.ListActiveRoles)
		roles.GET("/name/:roleName", h.GetRoleByName)
		roles.GET("/:id", h.GetRole)
		roles.PUT("/:id", audit("UPDATE_ROLE", "Role"), h.UpdateRole)
		roles.PUT("/:id/activate", audit("ACTIVATE_ROLE", "Role"), h.ActivateRole)
		roles.PUT("/:id/deactivate", audit("DEACTIVATE_ROLE", "Role"), h.DeactivateRole)
		roles.DELETE("/:id", audit("DELETE_ROLE", "Role"), h.DeleteRole)
	}

	api.GET("/audit-logs", middleware.RequireRoles(auditReaders...), h.ListAuditLogs)
}

// idempotencyLookup adapts the idempotency store to the middleware callback.
// The middleware passes the caller id as a decimal string.
func idempotencyLookup(svc *services.IdempotencyService) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, scope, key string, _ time.Time) (bool, error) {
		if svc == nil {
			return false, nil
		}
		uid, err := strconv.ParseUint(userID, 10, 64)
		if err != nil {
			return false, err
		}
		return svc.Exists(ctx, uint(uid), scope, key)
	}
}

// corsMiddleware returns the CORS handlers for cfg. With no allowlist every
// origin is accepted without credentials; otherwise listed origins are echoed.
func corsMiddleware(cfg config.CORSConfig) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed},
		MaxAge:        12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 0 {
		base.AllowAllOrigins = true // AllowCredentials must stay false
		return []gin.HandlerFunc{
			// Force ACAO: * even for requests without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = cfg.AllowedOrigins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
