// Package health provides the health check endpoint for the report server.
package health

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles health check requests.
type Handler struct {
	dataDir string
	logger  *zap.SugaredLogger
}

// New creates a health handler serving from the given data directory.
func New(dataDir string, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		dataDir: dataDir,
		logger:  logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status      string `json:"status"`
	ReportReady bool   `json:"report_ready"`
}

// Check handles GET /health. Unhealthy means the data directory itself is
// unreadable; a missing report only flips report_ready.
func (h *Handler) Check(c *gin.Context) {
	if _, err := os.Stat(h.dataDir); err != nil {
		h.logger.Warnw("health check failed", "data_dir", h.dataDir, "error", err)
		c.JSON(http.StatusServiceUnavailable, Response{Status: "unhealthy"})
		return
	}

	_, err := os.Stat(filepath.Join(h.dataDir, "report.json"))
	c.JSON(http.StatusOK, Response{
		Status:      "ok",
		ReportReady: err == nil,
	})
}
