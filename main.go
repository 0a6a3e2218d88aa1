package main

import (
	"flag"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"steam-resale-tracker/internal/config"
	"steam-resale-tracker/internal/database"
	"steam-resale-tracker/internal/services/steam"
	"steam-resale-tracker/internal/tracker"
	"steam-resale-tracker/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Load environment variables
	envLoaded := godotenv.Load() == nil

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	if !envLoaded {
		log.Debug().Msg("no .env file found")
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Initialize(cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("database archive unavailable, continuing without it")
			db = nil
		}
	}

	client := steam.NewClient(cfg.AppID, cfg.Currency)
	t := tracker.New(cfg, client.LowestPrice, db, log)

	if err := t.Run(); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
	log.Info().Str("file", cfg.OutputFile).Msg("data saved and charts updated")
}
