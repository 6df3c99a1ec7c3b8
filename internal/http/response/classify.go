package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-school-backend/internal/apperr"
)

// Fixed client messages. Causes behind these kinds are logged, never returned.
const (
	MsgAccessDenied         = "Access denied"
	MsgAuthenticationFailed = "Authentication failed"
	MsgInvalidCredentials   = "Invalid username or password"
	MsgValidationFailed     = "Validation failed"
	MsgUnexpected           = "An unexpected error occurred"
)

// failuresTotal counts classified failures by kind and status.
var failuresTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "api_failures_total",
		Help: "Total number of failed API calls by failure kind.",
	},
	[]string{"kind", "status"},
)

func init() {
	prometheus.MustRegister(failuresTotal)
}

// Classify maps err to an HTTP status and an error envelope. It is total:
// anything outside the apperr variants becomes a 500 with a fixed message.
// The outermost failure in a wrapped chain decides; a cause carried inside a
// failure never changes its classification.
func Classify(err error) (int, Envelope) {
	status, env, _ := classify(err)
	return status, env
}

func classify(err error) (int, Envelope, string) {
	var f apperr.Failure
	if !errors.As(err, &f) {
		return http.StatusInternalServerError, Error(MsgUnexpected), apperr.Unexpected{}.Kind()
	}
	switch v := f.(type) {
	case apperr.NotFound:
		return http.StatusNotFound, Error(v.Message), v.Kind()
	case apperr.BadRequest:
		return http.StatusBadRequest, Error(v.Message), v.Kind()
	case apperr.Unauthorized:
		return http.StatusUnauthorized, Error(v.Message), v.Kind()
	case apperr.AccessDenied:
		return http.StatusForbidden, Error(MsgAccessDenied), v.Kind()
	case apperr.AuthenticationFailed:
		return http.StatusUnauthorized, Error(MsgAuthenticationFailed), v.Kind()
	case apperr.InvalidCredentials:
		return http.StatusUnauthorized, Error(MsgInvalidCredentials), v.Kind()
	case apperr.ValidationFailed:
		return http.StatusBadRequest, ValidationError(MsgValidationFailed, v.Fields), v.Kind()
	case apperr.Unexpected:
		return http.StatusInternalServerError, Error(MsgUnexpected), v.Kind()
	default:
		return http.StatusInternalServerError, Error(MsgUnexpected), apperr.Unexpected{}.Kind()
	}
}

// Resolve classifies err, logs it on lg and records the failure metric.
// A nil lg logs through the global logger.
func Resolve(lg *zerolog.Logger, err error) (int, Envelope) {
	status, env, _ := resolve(lg, err)
	return status, env
}

func resolve(lg *zerolog.Logger, err error) (int, Envelope, string) {
	status, env, kind := classify(err)
	if lg == nil {
		lg = &log.Logger
	}
	failuresTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()

	if status >= http.StatusInternalServerError {
		lg.Error().Err(err).Str("kind", kind).Int("status", status).Msg("unexpected error")
		return status, env, kind
	}
	ev := lg.Warn().Str("kind", kind).Int("status", status)
	switch kind {
	case "validation_failed":
		ev = ev.Interface("fields", env.Errors)
	case "not_found", "bad_request", "unauthorized":
		ev = ev.Str("detail", env.Message)
	default:
		ev = ev.AnErr("cause", errors.Unwrap(err))
	}
	ev.Msg("request failed")
	return status, env, kind
}

// kindKey is the gin context key under which Abort records the failure kind.
const kindKey = "error.kind"

// Abort resolves err with the request-scoped logger and stops the chain.
// The failure kind stays readable through FailureKind.
func Abort(c *gin.Context, err error) {
	status, env, kind := resolve(loggerFrom(c), err)
	c.Set(kindKey, kind)
	c.AbortWithStatusJSON(status, env)
}

// Reject ends the request with status and a fixed message for failures that
// are decided by the router rather than by an error, such as 405. It logs and
// counts like Abort.
func Reject(c *gin.Context, status int, kind, message string) {
	failuresTotal.WithLabelValues(kind, strconv.Itoa(status)).Inc()
	loggerFrom(c).Warn().Str("kind", kind).Int("status", status).Str("detail", message).Msg("request failed")
	c.Set(kindKey, kind)
	c.AbortWithStatusJSON(status, Error(message))
}

// FailureKind returns the kind recorded by Abort or Reject, or "" when the
// request has not failed through either.
func FailureKind(c *gin.Context) string {
	return c.GetString(kindKey)
}

// loggerFrom reads the request logger stored under "logger" by the logging
// middleware, falling back to the global logger.
func loggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get("logger"); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	return &log.Logger
}
