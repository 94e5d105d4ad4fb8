package router

import (
	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/handler"
)

func HistoryRouter(rg *gin.RouterGroup, h *handler.HistoryHandler) {
	rg.GET("", h.List)
	rg.DELETE("", h.Clear)
	rg.DELETE("/:id", h.Delete)
}

func SettingsRouter(rg *gin.RouterGroup, h *handler.SettingsHandler) {
	rg.GET("", h.Get)
	rg.PUT("", h.Update)
}
