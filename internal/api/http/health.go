package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/todosuggest/relay/internal/suggestions/service"
)

type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Service   string          `json:"service"`
	Version   string          `json:"version"`
	Upstream  *UpstreamHealth `json:"upstream,omitempty"`
}

type UpstreamHealth struct {
	Configured bool                    `json:"configured"`
	Model      string                  `json:"model"`
	Transport  string                  `json:"transport,omitempty"`
	Mode       string                  `json:"mode"`
	Metrics    service.MetricsSnapshot `json:"metrics"`
}

type HealthHandler struct {
	serviceName string
	version     string
	transport   string
	relay       *service.RelayService
}

// NewHealthHandler reports service identity and, when relay is set, whether
// the upstream credential is present. It never calls the upstream.
func NewHealthHandler(serviceName, version string, relay *service.RelayService, transport string) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		transport:   transport,
		relay:       relay,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
	}

	if h.relay != nil {
		up := h.relay.Upstream()
		resp.Upstream = &UpstreamHealth{
			Configured: up.Configured(),
			Model:      up.Model(),
			Transport:  h.transport,
			Mode:       string(h.relay.Mode()),
			Metrics:    h.relay.Metrics().Snapshot(),
		}
		if !up.Configured() {
			resp.Status = "degraded"
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
