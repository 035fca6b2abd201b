package routes

import (
	"github.com/gin-gonic/gin"

	suggesthttp "github.com/todosuggest/relay/internal/suggestions/http"
	"github.com/todosuggest/relay/internal/suggestions/service"
)

type Deps struct {
	Relay *service.RelayService
}

// Register mounts the suggestion relay at /api/suggest and /api/v1/suggest.
func Register(r *gin.Engine, dep Deps) {
	h := suggesthttp.NewHandler(dep.Relay)

	api := r.Group("/api")
	h.Register(api)
	h.Register(api.Group("/v1"))
}
