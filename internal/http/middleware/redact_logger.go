// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the access logger. It attaches a request-scoped
// zerolog.Logger (to the Gin context and to the request context, so services
// can use log.Ctx) and emits one structured line per request with personal
// data and credentials scrubbed from the query string and headers.
//
// Redaction:
//   - Credential headers (Authorization, Cookie, Set-Cookie and any extra
//     MaskHeaders) are replaced with "[REDACTED]".
//   - Query parameters whose name mentions password or token are masked, so
//     endpoints such as reset-password?newPassword=... never leak secrets.
//   - UUIDs, e-mail addresses and phone numbers are pattern-redacted in the
//     remaining query string and header values.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-school-backend/internal/http/response"
)

// RedactOptions configures RedactingLogger.
type RedactOptions struct {
	// MaskHeaders are additional header names to mask entirely.
	MaskHeaders []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern (prevents matching hex characters from UUIDs).
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
	// secretParamRE matches query parameters carrying credentials.
	secretParamRE = regexp.MustCompile(`(?i)(^|&)([^=&]*(?:password|token)[^=&]*)=[^&]*`)
)

// redact masks ids, e-mail addresses and phone numbers in s.
func redact(s string) string {
	if s == "" {
		return s
	}
	// Order matters: IDs → email → phone (phone is the loosest).
	out := uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
}

// redactQuery masks credential parameters, then applies redact.
func redactQuery(raw string) string {
	return redact(secretParamRE.ReplaceAllString(raw, "${1}${2}=[REDACTED]"))
}

// RedactingLogger attaches the request-scoped logger and writes the access
// log. Level follows the outcome: error for 5xx or collected gin errors, warn
// for 4xx, info otherwise.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			// Unmatched route.
			path = c.Request.URL.Path
		}
		reqID := c.GetString(requestIDKey)
		if reqID == "" {
			reqID = c.Writer.Header().Get(requestIDHeader)
		}
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}

		scoped := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &scoped)
		c.Request = c.Request.WithContext(scoped.WithContext(c.Request.Context()))

		safeQuery := truncate(redactQuery(c.Request.URL.RawQuery), maxQueryLogLength)
		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		ev := scoped.Info()
		switch {
		case len(c.Errors) > 0:
			ev = scoped.Error().Str("errors", c.Errors.String())
		case status >= 500:
			ev = scoped.Error()
		case status >= 400:
			ev = scoped.Warn()
		}
		if kind := response.FailureKind(c); kind != "" {
			ev = ev.Str("error_kind", kind)
		}

		ev.
			Str("user_id", c.GetString(userIDKey)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", safeQuery).
			Int64("bytes_in", c.Request.ContentLength).
			Int("status", status).
			Int("bytes_out", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
