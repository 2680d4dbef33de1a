package main

import (
	// standard library
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// third-party
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	// internal
	"github.com/okabelab/graymeter/internal/config"
	"github.com/okabelab/graymeter/internal/database"
	"github.com/okabelab/graymeter/internal/handlers"
	"github.com/okabelab/graymeter/internal/logging"
	"github.com/okabelab/graymeter/internal/middleware"
	"github.com/okabelab/graymeter/internal/version"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Println(version.String())
		os.Exit(0)
	}

	logging.InfoWithComponent(logging.ComponentStartup, "Starting Graymeter", "version", version.String())

	settings, err := config.LoadSettings()
	if err != nil {
		logging.ErrorWithComponent(logging.ComponentStartup, "Failed to load settings", "error", err)
		os.Exit(1)
	}

	if err := database.Initialize(); err != nil {
		logging.ErrorWithComponent(logging.ComponentStartup, "Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	db := database.GetDB()
	sessionService := database.NewSessionService(db)
	resultService := database.NewResultService(db)

	// Reap stale sessions in the background. Uploaded blobs are large, so
	// sessions idle past the TTL are dropped together with their results.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessionTTL := config.GetDuration("SESSION_TTL", 24*time.Hour)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := sessionService.DeleteSessionsOlderThan(time.Now().Add(-sessionTTL))
				if err != nil {
					logging.ErrorWithComponent(logging.ComponentCleanup, "Session cleanup failed", "error", err)
				} else if deleted > 0 {
					logging.InfoWithComponent(logging.ComponentCleanup, "Stale sessions removed", "count", deleted)
				}
			}
		}
	}()

	if mode := config.Get("GIN_MODE", ""); mode != "" {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Browser clients may serve the UI from a different origin
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	sessionHandler := handlers.NewSessionHandler(sessionService, settings)
	resultHandler := handlers.NewResultHandler(sessionService, resultService)
	rateLimiter := middleware.NewUploadRateLimiter(settings.UploadsPerMinute)

	api := router.Group("/api")
	{
		api.POST("/sessions",
			middleware.RequestSizeLimit(settings.MaxUploadBytes),
			rateLimiter.RateLimit(),
			sessionHandler.Upload,
		)
		api.GET("/sessions/:id", sessionHandler.Get)
		api.POST("/sessions/:id/process", sessionHandler.Process)
		api.POST("/sessions/:id/thresholds", sessionHandler.Thresholds)

		api.POST("/results", resultHandler.Create)
		api.GET("/results", resultHandler.List)
		api.DELETE("/results", resultHandler.DeleteAll)
		api.DELETE("/results/:id", resultHandler.Delete)
		api.GET("/results/export", resultHandler.Export)

		api.GET("/config", handlers.ConfigHandler(settings))
		api.GET("/version", handlers.VersionHandler)
		api.GET("/healthz", handlers.HealthHandler)
	}

	port := config.Get("PORT", "8000")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logging.InfoWithComponent(logging.ComponentStartup, "Listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorWithComponent(logging.ComponentStartup, "Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.InfoWithComponent(logging.ComponentShutdown, "Shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorWithComponent(logging.ComponentShutdown, "Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logging.InfoWithComponent(logging.ComponentShutdown, "Server stopped")
}
