package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthInfo is the payload of the health endpoint.
type HealthInfo struct {
	Status      string    `json:"status" example:"UP"`
	Application string    `json:"application" example:"school-api"`
	Timestamp   time.Time `json:"timestamp"`
	Version     string    `json:"version" example:"1.0.0"`
	Database    string    `json:"database" example:"UP"`
}

// Health godoc
// @ID          health
// @Summary     Health check
// @Description Reports application status. The database field reflects a live ping.
// @Tags        System Health
// @Produce     json
// @Success     200  {object}  response.Envelope{data=handlers.HealthInfo}
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	info := HealthInfo{
		Status:      "UP",
		Application: h.appName,
		Timestamp:   time.Now().UTC(),
		Version:     h.appVersion,
		Database:    "UP",
	}
	if h.db != nil {
		if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			info.Database = "DOWN"
		}
	}
	ok(c, http.StatusOK, "Application is healthy", info)
}
