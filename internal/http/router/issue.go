package router

import (
	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/handler"
)

func IssueRouter(rg *gin.RouterGroup, h *handler.IssueHandler) {
	rg.POST("", h.Submit)
	rg.POST("/generate", h.Generate)
	rg.POST("/extract", h.Extract)
}
