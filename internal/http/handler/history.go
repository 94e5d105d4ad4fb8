package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/dto"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type HistoryHandler struct {
	history service.HistoryService
}

func NewHistoryHandler(history service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) List(c *gin.Context) {
	records, err := h.history.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponses(records))
}

func (h *HistoryHandler) Delete(c *gin.Context) {
	if err := h.history.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HistoryHandler) Clear(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
