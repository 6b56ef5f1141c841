package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/types"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

const serviceName = "scholia"

var startedAt = time.Now()

// HealthHandler handles health check requests
type HealthHandler struct {
	scholia scholia.Scholia
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(s scholia.Scholia) *HealthHandler {
	return &HealthHandler{
		scholia: s,
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// probeStore reads a node that does not exist. Not-found proves the store answered.
func (h *HealthHandler) probeStore(ctx context.Context) (gin.H, bool) {
	start := time.Now()
	_, err := h.scholia.GetNode(ctx, "health-check-non-existent-id")
	duration := time.Since(start)

	switch {
	case err == nil, errors.Is(err, types.ErrNodeNotFound):
		return gin.H{"status": "healthy", "duration": duration.String()}, true
	case ctx.Err() != nil:
		return gin.H{"status": "unhealthy", "error": "database connection timeout", "duration": duration.String()}, false
	default:
		return gin.H{"status": "unhealthy", "error": err.Error(), "duration": duration.String()}, false
	}
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{}
	allHealthy := true

	if h.scholia != nil {
		status, ok := h.probeStore(ctx)
		checks["database"] = status
		allHealthy = ok
	} else {
		checks["database"] = gin.H{
			"status": "unhealthy",
			"error":  "scholia client not initialized",
		}
		allHealthy = false
	}

	checks["system"] = gin.H{
		"status": "healthy",
		"uptime": time.Since(startedAt).String(),
	}

	response := gin.H{
		"status":    "ready",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}
	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health information
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	startTime := time.Now()
	checks := gin.H{}
	allHealthy := true

	if h.scholia != nil {
		status, ok := h.probeStore(ctx)
		status["operation"] = "GetNode"
		checks["database_connectivity"] = status
		allHealthy = ok

		statsStart := time.Now()
		stats, err := h.scholia.GetStats(ctx)
		statsStatus := gin.H{
			"status":      "healthy",
			"duration_ms": time.Since(statsStart).Milliseconds(),
			"operation":   "GetStats",
		}
		if err != nil {
			statsStatus["status"] = "unhealthy"
			statsStatus["error"] = err.Error()
			allHealthy = false
		} else {
			statsStatus["nodes"] = stats.NodeCount
			statsStatus["edges"] = stats.EdgeCount
		}
		checks["database_stats"] = statsStatus
	} else {
		checks["scholia_client"] = gin.H{
			"status": "unhealthy",
			"error":  "client not initialized",
		}
		allHealthy = false
	}

	systemMetrics := h.getSystemMetrics()
	checks["system"] = gin.H{
		"status":       "healthy",
		"uptime":       time.Since(startedAt).String(),
		"memory_usage": systemMetrics.MemoryUsage,
		"goroutines":   systemMetrics.Goroutines,
		"gc_cycles":    systemMetrics.GCCycles,
		"heap_objects": systemMetrics.HeapObjects,
		"stack_usage":  systemMetrics.StackUsage,
	}

	response := gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"checks": checks,
		"metrics": gin.H{
			"response_time_ms": time.Since(startTime).Milliseconds(),
		},
	}

	if !allHealthy {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// SystemMetrics holds system runtime metrics
type SystemMetrics struct {
	MemoryUsage string `json:"memory_usage"`
	Goroutines  int    `json:"goroutines"`
	GCCycles    uint32 `json:"gc_cycles"`
	HeapObjects uint64 `json:"heap_objects"`
	StackUsage  string `json:"stack_usage"`
}

func (h *HealthHandler) getSystemMetrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsage: fmt.Sprintf("%.2f MB", float64(m.Alloc)/(1024*1024)),
		Goroutines:  runtime.NumGoroutine(),
		GCCycles:    m.NumGC,
		HeapObjects: m.HeapObjects,
		StackUsage:  fmt.Sprintf("%.2f MB", float64(m.StackSys)/(1024*1024)),
	}
}
