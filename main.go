package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/tripscribe-be/internal/api"
	"github.com/isdelr/tripscribe-be/internal/auth"
	"github.com/isdelr/tripscribe-be/internal/config"
	"github.com/isdelr/tripscribe-be/internal/database"
	"github.com/isdelr/tripscribe-be/internal/logger"
	"github.com/isdelr/tripscribe-be/internal/monitoring"
	"github.com/isdelr/tripscribe-be/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Ensure the directory for uploaded images exists
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create uploads directory")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	tokens := auth.New(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(db)
	assetService := services.NewAssetService(cfg.UploadsDir)
	storyService := services.NewStoryService(db, assetService)

	// Set up and run the background orphaned-asset sweeper
	sweeper, err := monitoring.NewAssetSweeper(db, cfg.UploadsDir, cfg.SweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid sweep schedule")
	}
	go sweeper.Run()

	// Set up router
	router := api.NewRouter(api.RouterDeps{
		Tokens:         tokens,
		UserService:    userService,
		StoryService:   storyService,
		AssetService:   assetService,
		UploadsDir:     cfg.UploadsDir,
		AssetsDir:      cfg.AssetsDir,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
