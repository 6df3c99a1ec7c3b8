package handlers

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tbourn/go-school-backend/internal/http/middleware"
	"github.com/tbourn/go-school-backend/internal/repo"
)

type statsFunc func(ctx context.Context, db *gorm.DB) (int64, *time.Time, error)

// notModified sets a weak ETag derived from the row count and newest
// updated_at of every table in stats, plus the query string, and answers 304
// when If-None-Match matches. ETag support is best effort: a stats error just
// skips it.
func (h *Handlers) notModified(c *gin.Context, name string, stats ...statsFunc) bool {
	if h.db == nil {
		return false
	}
	fp := fnv.New64a()
	for _, st := range stats {
		count, maxTS, err := st(c.Request.Context(), h.db)
		if err != nil {
			middleware.LoggerFrom(c).Debug().Err(err).Msg("etag stats unavailable")
			return false
		}
		var ts int64
		if maxTS != nil {
			ts = maxTS.UnixNano()
		}
		fmt.Fprintf(fp, "%d:%d;", count, ts)
	}
	fp.Write([]byte(c.Request.URL.RawQuery))

	etag := fmt.Sprintf(`W/"%s-%x"`, name, fp.Sum64())
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}

var (
	usersStats statsFunc = repo.UsersStats
	rolesStats statsFunc = repo.RolesStats
)

// replayCreated answers a replayed create request with the resource stored
// for its Idempotency-Key. It reports whether a response was written.
func (h *Handlers) replayCreated(c *gin.Context, message string, load func(ctx context.Context, id uint) (any, error)) bool {
	if h.idempotency == nil || !middleware.IsReplay(c) {
		return false
	}
	key, _ := middleware.GetIdempotencyKey(c)
	uid, found := callerID(c)
	if !found {
		return false
	}
	rec, err := h.idempotency.Lookup(c.Request.Context(), uid, c.FullPath(), key)
	if err != nil {
		// Expired since the middleware looked; process as a new request.
		return false
	}
	data, err := load(c.Request.Context(), rec.ResourceID)
	if err != nil {
		fail(c, err)
		return true
	}
	middleware.SetAuditEntity(c, rec.ResourceID)
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
	ok(c, rec.Status, message, data)
	return true
}

// rememberCreated stores resourceID under the request's Idempotency-Key.
func (h *Handlers) rememberCreated(c *gin.Context, resourceID uint) {
	if h.idempotency == nil {
		return
	}
	key, found := middleware.GetIdempotencyKey(c)
	uid, authed := callerID(c)
	if !found || !authed {
		return
	}
	h.idempotency.Remember(c.Request.Context(), uid, c.FullPath(), key, resourceID, http.StatusCreated)
}
