package router

import (
	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/handler"
)

func ProjectRouter(rg *gin.RouterGroup, h *handler.ProjectHandler) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.POST("/test-connection", h.TestConnection)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}
