package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/api"
	"github.com/aboutme-website/aboutme-be/internal/config"
	"github.com/aboutme-website/aboutme-be/internal/database"
	"github.com/aboutme-website/aboutme-be/internal/logger"
	"github.com/aboutme-website/aboutme-be/internal/monitoring"
	"github.com/aboutme-website/aboutme-be/internal/notify"
	"github.com/aboutme-website/aboutme-be/internal/services"
	"github.com/aboutme-website/aboutme-be/internal/site"
	"github.com/aboutme-website/aboutme-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Ensure the scratch and public roots exist
	if err := os.MkdirAll(cfg.ScratchRoot, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create scratch root")
	}
	if err := os.MkdirAll(cfg.PublicRoot, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create public root")
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

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	profileService := services.NewProfileService(db)
	postService := services.NewPostService(db)
	authService := services.NewAuthService(db)
	eventService := services.NewEventService(db)

	notifier := notify.NewTwilioNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.AppName)

	// Set up the site generation pipeline
	builder, err := site.NewHugoBuilder(cfg.BuildTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to locate the site generator")
	}
	workspaces := site.NewWorkspaceManager(cfg.ScratchRoot, cfg.TemplateHome)
	assembler := site.NewAssembler(cfg.BaseURL)
	publisher := site.NewPublisher(cfg.PublicRoot, cfg.BaseURL)
	allocator := site.NewAllocator(profileService)
	pipeline := site.NewPipeline(workspaces, assembler, builder, publisher, profileService, postService, eventService, hub, cfg.BuildWorkers)

	// Set up and run the background disk usage updater
	diskUpdater := monitoring.NewDiskUpdater(cfg.PublicRoot, eventService, hub)
	go diskUpdater.Run()

	// Set up and run the scratch workspace janitor
	janitor, err := monitoring.NewJanitor(cfg.ScratchRoot, cfg.JanitorSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid janitor schedule")
	}
	go janitor.Run()

	// Set up router
	router := api.NewRouter(hub, authService, profileService, postService, allocator, pipeline, notifier)

	// Set up server
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

	diskUpdater.Stop()
	janitor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
