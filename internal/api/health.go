package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck is one dependency probed by /readyz.
type ReadinessCheck struct {
	Name  string
	Check func() error
}

// HealthHandler provides liveness and readiness endpoints for the service.
//
// Responsibilities:
//   - /healthz: Basic liveness probe (always returns 200 OK).
//   - /readyz: Readiness probe (output folder writable, database reachable when used).
type HealthHandler struct {
	checks []ReadinessCheck
}

// NewHealthHandler constructs a HealthHandler running checks in order on /readyz.
// Checks with a nil func are ignored.
func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	h := &HealthHandler{}
	for _, c := range checks {
		if c.Check != nil {
			h.checks = append(h.checks, c)
		}
	}
	return h
}

// Register mounts the health and readiness endpoints into the provided Gin router.
//
// Routes:
//   - GET /healthz: Always returns 200 OK.
//   - GET /readyz: Returns 200 OK if every check passes, 503 with the failing
//     check names otherwise.
func (h *HealthHandler) Register(r *gin.Engine) {
	// @Summary      Liveness probe
	// @Description  Always returns OK if the service is running
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Router       /healthz [get]
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// @Summary      Readiness probe
	// @Description  Returns ready if the output folder and the database (when used) are reachable
	// @Tags         health
	// @Produce      json
	// @Success      200  {object}  map[string]string
	// @Failure      503  {object}  map[string]any
	// @Router       /readyz [get]
	r.GET("/readyz", func(c *gin.Context) {
		var failed []string
		for _, chk := range h.checks {
			if err := chk.Check(); err != nil {
				failed = append(failed, chk.Name)
			}
		}
		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": failed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
