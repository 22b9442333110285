package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/cronospark/internal/api"
	"github.com/isdelr/cronospark/internal/auth"
	"github.com/isdelr/cronospark/internal/config"
	"github.com/isdelr/cronospark/internal/database"
	"github.com/isdelr/cronospark/internal/logger"
	"github.com/isdelr/cronospark/internal/monitoring"
	"github.com/isdelr/cronospark/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Env)

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
	userService := services.NewUserService(db)
	eventService := services.NewEventService(db)

	// Purge anything that expired while the process was down
	if _, err := eventService.CleanupPastEvents(time.Now()); err != nil {
		log.Fatal().Err(err).Msg("Startup cleanup failed")
	}

	// Set up and run the background cleanup scheduler
	scheduler, err := monitoring.NewCleanupScheduler(eventService, cfg.CleanupSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid cleanup schedule")
	}
	go scheduler.Run()

	// Set up sessions and router
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.Env == "production")
	router := api.NewRouter(sessions, userService, eventService)

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

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
