package report

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mkazarin/pr-times/internal/health"
	"github.com/mkazarin/pr-times/internal/middleware"
)

// NewRouter builds the gin engine serving the report artifact, the raw
// per-repository CSVs and any rendered chart assets to the front end.
func NewRouter(dataDir string, logger *zap.SugaredLogger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.GET("/health", health.New(dataDir, logger).Check)

	r.GET("/api/report", func(c *gin.Context) {
		path := filepath.Join(dataDir, FileName)
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "report not generated yet",
			})
			return
		}
		c.File(path)
	})

	// Chart assets and CSV record sets both live in the output directory.
	r.Static("/assets", dataDir)
	r.Static("/data", dataDir)

	return r
}
