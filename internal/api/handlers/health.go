package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sony/gobreaker"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	HealthCheck() error
}

// Pinger is a dependency checked with a context-bound ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// BreakerReporter exposes the upstream circuit breaker
type BreakerReporter interface {
	BreakerState() gobreaker.State
}

// SyncReporter exposes the background sync state
type SyncReporter interface {
	Status() (time.Time, error)
}

type HealthHandler struct {
	db       HealthChecker
	cache    Pinger
	upstream BreakerReporter
	sync     SyncReporter
}

// NewHealthHandler creates a health handler. Any dependency may be nil.
func NewHealthHandler(db HealthChecker, cache Pinger, upstream BreakerReporter, sync SyncReporter) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, upstream: upstream, sync: sync}
}

// GetHealth always returns 200 while the process is serving
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"time":    time.Now().UTC(),
		"service": "hoops-oracle",
	})
}

// GetReady reports each dependency; the database is the only hard requirement
func (h *HealthHandler) GetReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true

	if h.db != nil {
		if err := h.db.HealthCheck(); err != nil {
			checks["database"] = err.Error()
			ready = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
		} else {
			checks["cache"] = "ok"
		}
	}
	if h.upstream != nil {
		checks["yahoo_breaker"] = h.upstream.BreakerState().String()
	}
	if h.sync != nil {
		lastRun, err := h.sync.Status()
		sync := gin.H{"last_run": lastRun}
		if err != nil {
			sync["last_error"] = err.Error()
		}
		checks["sync"] = sync
	}

	status := http.StatusOK
	state := "ready"
	if !ready {
		status = http.StatusServiceUnavailable
		state = "not_ready"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
