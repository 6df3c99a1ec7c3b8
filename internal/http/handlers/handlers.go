// Package handlers provides HTTP handler implementations for the public API.
//
// Handlers are transport-thin: they bind and validate input, call the
// application services and wrap results in the response envelope. Every
// failure goes through response.Abort, so status codes and client messages
// are decided in one place.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/apperr"
	"github.com/tbourn/go-school-backend/internal/http/middleware"
	"github.com/tbourn/go-school-backend/internal/http/response"
	"github.com/tbourn/go-school-backend/internal/services"
	"github.com/tbourn/go-school-backend/internal/utils"
)

// Success messages shared across endpoints.
const (
	MsgSuccess = "Success"
)

// Deps wires the application services into the handlers.
type Deps struct {
	DB          *gorm.DB
	Users       *services.UserService
	Roles       *services.RoleService
	Auth        *services.AuthService
	Audit       *services.AuditService
	Idempotency *services.IdempotencyService

	AppName    string
	AppVersion string
}

// Handlers groups every HTTP endpoint of the API.
type Handlers struct {
	db          *gorm.DB
	users       *services.UserService
	roles       *services.RoleService
	auth        *services.AuthService
	audit       *services.AuditService
	idempotency *services.IdempotencyService

	appName    string
	appVersion string
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		db:          d.DB,
		users:       d.Users,
		roles:       d.Roles,
		auth:        d.Auth,
		audit:       d.Audit,
		idempotency: d.Idempotency,
		appName:     d.AppName,
		appVersion:  d.AppVersion,
	}
}

// fail hands err to the error classifier and stops the chain.
func fail(c *gin.Context, err error) { response.Abort(c, err) }

// ok writes a success envelope carrying data.
func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, response.Success(message, data))
}

// done writes a success envelope without a payload.
func done(c *gin.Context, message string) {
	c.JSON(http.StatusOK, response.SuccessMessage(message))
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		fail(c, apperr.BadRequestf("Invalid %s: %s", name, raw))
		return 0, false
	}
	return uint(n), true
}

// Paging bounds for list endpoints. maxPage keeps page*size far from
// integer overflow on every platform.
const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxPage         = 10_000_000
)

// MsgPageTooLarge rejects page numbers past maxPage.
const MsgPageTooLarge = "Page number must not exceed 10000000"

// pageable reads page (0-based), size, sortBy and sortDir from the query.
// A page number beyond maxPage is a BadRequest; other bad values fall back
// to defaults.
func pageable(c *gin.Context) (utils.Pageable, error) {
	page := utils.AtoiDefault(c.Query("page"), 0)
	if page < 0 {
		page = 0
	}
	if page > maxPage || overflowsInt(c.Query("page")) {
		return utils.Pageable{}, apperr.BadRequest{Message: MsgPageTooLarge}
	}
	size := utils.AtoiDefault(c.Query("size"), defaultPageSize)
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return utils.Pageable{
		Page:   page,
		Size:   size,
		SortBy: strings.TrimSpace(c.Query("sortBy")),
		Desc:   strings.EqualFold(c.Query("sortDir"), "desc"),
	}, nil
}

// overflowsInt reports whether raw is a positive decimal too large for int.
// AtoiDefault falls back to the default for those, which would silently
// serve page 0.
func overflowsInt(raw string) bool {
	_, err := strconv.Atoi(raw)
	var ne *strconv.NumError
	return errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) && !strings.HasPrefix(raw, "-")
}

// callerID returns the authenticated user's id, if any.
func callerID(c *gin.Context) (uint, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return 0, false
	}
	return p.UserID, true
}
