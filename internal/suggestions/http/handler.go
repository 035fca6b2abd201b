package http

import (
	"github.com/gin-gonic/gin"

	"github.com/todosuggest/relay/internal/suggestions/service"
)

type Handler struct {
	relay *service.RelayService
}

func NewHandler(relay *service.RelayService) *Handler {
	return &Handler{relay: relay}
}

// Suggest hands every method to the relay so that non-POST requests get the
// relay's JSON 405 rather than gin's plain one.
func (h *Handler) Suggest(c *gin.Context) {
	reply := h.relay.Handle(c.Request.Context(), c.Request.Method, c.Request.Body)
	writeReply(c, reply)
}

func writeReply(c *gin.Context, reply service.Reply) {
	if reply.Raw != nil {
		c.Data(reply.Status, reply.ContentType, reply.Raw)
		return
	}
	c.JSON(reply.Status, reply.Payload)
}
