package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Version   string            `json:"version"`
	DB        string            `json:"db,omitempty"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Pinger is satisfied by *sql.DB, *pgxpool.Pool and friends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	serviceName string
	version     string
	db          Pinger
	extra       map[string]Pinger
	timeout     time.Duration
}

func NewHealthHandler(serviceName, version string, db Pinger) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		extra:       make(map[string]Pinger),
		timeout:     1 * time.Second,
	}
}

// AddCheck registers an optional dependency. A failing check marks the
// service degraded but does not fail the request.
func (h *HealthHandler) AddCheck(name string, p Pinger) {
	h.extra[name] = p
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        "disabled",
	}

	code := http.StatusOK
	if h.db != nil {
		resp.DB = h.ping(c.Request.Context(), h.db)
		if resp.DB == "down" {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	if len(h.extra) > 0 {
		names := make([]string, 0, len(h.extra))
		for name := range h.extra {
			names = append(names, name)
		}
		sort.Strings(names)

		resp.Checks = make(map[string]string, len(names))
		for _, name := range names {
			state := h.ping(c.Request.Context(), h.extra[name])
			resp.Checks[name] = state
			if state == "down" && resp.Status == "healthy" {
				resp.Status = "degraded"
			}
		}
	}

	c.JSON(code, resp)
}

func (h *HealthHandler) ping(ctx context.Context, p Pinger) string {
	pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		return "down"
	}
	return "up"
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
