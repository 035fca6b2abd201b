package bootstrap

import (
	"github.com/gin-gonic/gin"

	httpapi "github.com/todosuggest/relay/internal/api/http"
	"github.com/todosuggest/relay/internal/api/http/middleware"
	"github.com/todosuggest/relay/internal/api/http/routes"
	"github.com/todosuggest/relay/internal/suggestions/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Transport      string
	AllowedOrigins []string
	Relay          *service.RelayService
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.CORSMiddleware(dep.AllowedOrigins))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Relay, dep.Transport)
	healthHandler.RegisterRoutes(r)

	routes.Register(r, routes.Deps{Relay: dep.Relay})

	return r
}
