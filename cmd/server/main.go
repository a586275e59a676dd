package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mip-notes/internal/config"
	"mip-notes/internal/logger"
	"mip-notes/internal/server"
)

const defaultConfigFile = "config.yml"

func main() {
	configFile := flag.String("config", envOr("CONFIG_FILE", defaultConfigFile), "path to config file")
	flag.Parse()

	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.New("notes-service", "info", "json").WithError(err).Fatal("Error initializing config")
	}

	log := logger.New("notes-service", cfg.Logger.Level, cfg.Logger.Format)

	srv := server.NewServer(cfg, log)
	if err := srv.Initialize(context.Background()); err != nil {
		// без хранилища сервис не принимает запросы
		log.WithError(err).Fatal("Failed to initialize server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := srv.Start()

	select {
	case err := <-errChan:
		log.WithError(err).Error("Server error")
		_ = srv.Shutdown()
		os.Exit(1)
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Received signal")
	}

	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Error("Shutdown finished with errors")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
