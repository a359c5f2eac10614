package main

import (
	"log/slog"
	"os"

	"github.com/quizforge/scorm-engine/internal/config"
	"github.com/quizforge/scorm-engine/internal/harness"
	"github.com/quizforge/scorm-engine/internal/utils"
	"github.com/quizforge/scorm-engine/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)

	store := harness.NewMemoryStore()
	if cfg.RedisURL != "" {
		client, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		store = harness.NewRedisStore(client)
		logger.Info("using redis session store", "url", cfg.RedisURL)
	}

	server := harness.NewServer(store, logger)
	logger.Info("harness listening", "port", cfg.HarnessPort)
	if err := server.Router().Run(":" + cfg.HarnessPort); err != nil {
		logger.Error("harness stopped", "error", err)
		os.Exit(1)
	}
}
