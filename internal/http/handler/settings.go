package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/dto"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type SettingsHandler struct {
	settings service.SettingsService
}

func NewSettingsHandler(settings service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSettingsResponse(s))
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	s, err := h.settings.Update(c.Request.Context(), req.ToModel())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSettingsResponse(s))
}
