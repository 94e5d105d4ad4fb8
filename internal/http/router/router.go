package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frankfika/gitlab-issuehelper/internal/http/handler"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
)

type RouterConfig struct {
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics))
	}

	v1 := router.Group("/api/v1")
	{
		issueHandler := handler.NewIssueHandler(services.Generator(), services.Submission())
		IssueRouter(v1.Group("/issues"), issueHandler)

		projectHandler := handler.NewProjectHandler(services.Projects())
		ProjectRouter(v1.Group("/projects"), projectHandler)

		historyHandler := handler.NewHistoryHandler(services.History())
		HistoryRouter(v1.Group("/history"), historyHandler)

		settingsHandler := handler.NewSettingsHandler(services.Settings())
		SettingsRouter(v1.Group("/settings"), settingsHandler)
	}
}
