package http

import "github.com/gin-gonic/gin"

func (h *Handler) Register(rg gin.IRoutes) {
	rg.Any("/suggest", h.Suggest)
}
