package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cidbot/backend/config"
	"github.com/cidbot/backend/internal/bot"
	"github.com/cidbot/backend/internal/database"
	"github.com/cidbot/backend/internal/logging"
	"github.com/cidbot/backend/internal/server"
	"github.com/cidbot/backend/internal/service"
)

func main() {
	logging.Init()
	log := logging.Component("main")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	// Sessions live in Redis when configured; otherwise in process memory,
	// which loses in-progress dialogues on restart.
	var sessions bot.SessionStore
	if cfg.RedisConfigured() {
		redisClient, err := database.NewRedisClient(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		sessions = bot.NewRedisSessionStore(redisClient)
	} else {
		log.Warn("Redis not configured, using in-memory session store")
		sessions = bot.NewMemorySessionStore()
	}

	router := bot.NewRouter(
		sessions,
		service.NewUserService(db),
		service.NewProfileService(db),
		service.NewPlanService(db),
		service.NewFoodLogService(db),
		service.NewMealSuggestionService(db),
		service.NewLLMService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel),
		service.NewVoiceService(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL),
		logging.Component("router"),
	)

	srv := server.New(cfg, db, router, logging.Component("http"))

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.WithError(err).Fatal("server error")
		}
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		log.WithError(err).Error("shutdown error")
	}
	log.Info("server stopped")
}
