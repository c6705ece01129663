package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/linen-admin/internal/model"
)

func (h *Handler) getSettings(c *gin.Context) {
	settings, err := h.svc.Settings.Get(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, settings)
}

func (h *Handler) replaceSettings(c *gin.Context) {
	var req model.BusinessSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	settings, err := h.svc.Settings.Replace(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, settings)
}
