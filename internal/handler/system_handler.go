package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/VanAubrey/aws-cert-review/internal/response"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a backing store that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// SystemHandler reports liveness and dependency health.
type SystemHandler struct {
	deps      map[string]Pinger
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler checking the named dependencies.
func NewSystemHandler(deps map[string]Pinger, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		deps:      deps,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthStatus struct {
	Status     string            `json:"status"`
	Uptime     string            `json:"uptime"`
	GoVersion  string            `json:"goVersion"`
	Goroutines int               `json:"goroutines"`
	Checks     map[string]string `json:"checks"`
}

// Health godoc
// GET /health
// Returns 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := healthStatus{
		Status:     "ok",
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		Checks:     make(map[string]string, len(h.deps)),
	}

	code := http.StatusOK
	for name, dep := range h.deps {
		if err := dep.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			status.Checks[name] = "down"
			status.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		status.Checks[name] = "up"
	}

	if code != http.StatusOK {
		response.FailWithData(c, code, response.ErrServiceUnavailable, status)
		return
	}
	response.Success(c, code, status)
}
