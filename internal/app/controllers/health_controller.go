package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether a dependency is usable
type HealthCheck func(ctx context.Context) error

// HealthController reports the state of the service's dependencies
type HealthController struct {
	checks map[string]HealthCheck
}

// NewHealthController creates a new HealthController. Nil checks are ignored.
func NewHealthController(checks map[string]HealthCheck) *HealthController {
	filtered := make(map[string]HealthCheck, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &HealthController{checks: filtered}
}

// Health answers 200 when every check passes and 503 otherwise
func (c *HealthController) Health(ctx *gin.Context) {
	checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	components := make(map[string]string, len(names))
	for _, name := range names {
		if err := c.checks[name](checkCtx); err != nil {
			components[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "ok"
	}

	resp := dto.NewSuccessResponse(gin.H{"components": components})
	resp.Success = status == http.StatusOK
	ctx.JSON(status, resp)
}
