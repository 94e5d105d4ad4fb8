package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/frankfika/gitlab-issuehelper/common/id"
	"github.com/frankfika/gitlab-issuehelper/common/logger"
	"github.com/frankfika/gitlab-issuehelper/common/otel"
	"github.com/frankfika/gitlab-issuehelper/core/config"
	"github.com/frankfika/gitlab-issuehelper/internal/http/middleware"
	httprouter "github.com/frankfika/gitlab-issuehelper/internal/http/router"
	"github.com/frankfika/gitlab-issuehelper/internal/metrics"
	"github.com/frankfika/gitlab-issuehelper/internal/service"
	"github.com/frankfika/gitlab-issuehelper/internal/service/issue_tracker"
	"github.com/frankfika/gitlab-issuehelper/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg, os.Stdout)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "issuehelper server starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	m := metrics.New()

	stores, err := store.Open(ctx, cfg, store.Options{
		OnFallback: m.RecordStoreFallback,
		Settings:   service.DefaultSettings(cfg.LLM),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to open storage", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	services := service.NewServices(
		stores,
		issue_tracker.NewGitLabIssueTrackerService(nil),
		service.NewLLMClientFactory(cfg.LLM),
		m,
	)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, m)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation streams for as long as the model keeps writing.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger("/health", "/metrics"))

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Metrics: m.Handler(),
	})

	return router
}

const banner = `
 _                       _          _
(_)___ ___ _   _  ___   | |__   ___| |_ __   ___ _ __
| / __/ __| | | |/ _ \  | '_ \ / _ \ | '_ \ / _ \ '__|
| \__ \__ \ |_| |  __/  | | | |  __/ | |_) |  __/ |
|_|___/___/\__,_|\___|  |_| |_|\___|_| .__/ \___|_|
                                     |_|
`
