package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	serviceName    = "ERP AI Service"
	serviceVersion = "1.0.0"
	serviceTier    = "L2+"
	healthService  = "ai-service"
)

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]ReadinessCheck
}

// NewHealthHandler creates a handler that pings checks on /ready. Nil checks are skipped.
func NewHealthHandler(checks map[string]ReadinessCheck) *HealthHandler {
	filtered := make(map[string]ReadinessCheck, len(checks))
	for name, check := range checks {
		if check != nil {
			filtered[name] = check
		}
	}
	return &HealthHandler{checks: filtered}
}

// Root returns the service banner.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": serviceName,
		"version": serviceVersion,
		"status":  "running",
		"tier":    serviceTier,
	})
}

// Health reports liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": healthService})
}

// Ready pings every configured dependency.
func (h *HealthHandler) Ready(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]string, len(names))
	ready := true
	for _, name := range names {
		if err := h.checks[name].Ping(c.Request.Context()); err != nil {
			log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "service": healthService, "checks": checks})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "service": healthService, "checks": checks})
}
