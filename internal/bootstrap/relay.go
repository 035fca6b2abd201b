package bootstrap

import (
	"github.com/todosuggest/relay/config"
	"github.com/todosuggest/relay/internal/suggestions/gemini"
	"github.com/todosuggest/relay/internal/suggestions/service"
)

// NewUpstream picks the Gemini client for the configured transport.
func NewUpstream(cfg config.GeminiConfig) service.Upstream {
	switch cfg.Transport {
	case config.TransportSDK:
		return gemini.NewGenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
	case config.TransportVertex:
		return gemini.NewVertexClient(cfg.VertexEndpoint, cfg.APIKey, cfg.Model, cfg.Timeout)
	default:
		return gemini.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.Timeout)
	}
}

func BuildRelay(cfg *config.Config) *service.RelayService {
	return service.NewRelayService(NewUpstream(cfg.Gemini), service.Options{
		Mode:         service.Mode(cfg.Relay.Mode),
		MaxBodyBytes: cfg.Relay.MaxBodyBytes,
		LogLevel:     cfg.App.LogLevel,
	})
}
