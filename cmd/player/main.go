package main

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/quizforge/scorm-engine/internal/attempt"
	"github.com/quizforge/scorm-engine/internal/config"
	"github.com/quizforge/scorm-engine/internal/events"
	"github.com/quizforge/scorm-engine/internal/harness"
	"github.com/quizforge/scorm-engine/internal/models"
	"github.com/quizforge/scorm-engine/internal/scorm"
	"github.com/quizforge/scorm-engine/internal/utils"
	"github.com/quizforge/scorm-engine/internal/validator"
	"github.com/quizforge/scorm-engine/internal/webhook"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Environment)

	data, err := os.ReadFile(cfg.DefinitionPath)
	if err != nil {
		logger.Error("failed to read test definition", "path", cfg.DefinitionPath, "error", err)
		os.Exit(1)
	}
	test, err := models.ParseTest(data)
	if err != nil {
		logger.Error("failed to parse test definition", "error", err)
		os.Exit(1)
	}
	if err := validator.New().ValidateTest(test); err != nil {
		logger.Error("test definition rejected", "error", err)
		os.Exit(1)
	}

	var runtime scorm.RuntimeAPI
	if cfg.RuntimeURL != "" {
		runtime = harness.NewClient(cfg.RuntimeURL, cfg.RuntimeSession)
	}
	api := scorm.Connect(runtime, logger)
	defer api.Terminate()

	adapter := scorm.NewAdapter(api, logger)
	store := scorm.NewSessionStore(api, logger)

	bus := events.NewBus(logger)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	webhookTimeout := time.Duration(cfg.WebhookTimeoutSeconds) * time.Second
	notifier := webhook.NewNotifier(test.WebhookURL, webhookTimeout, logger)
	if err := notifier.Run(ctx, bus); err != nil {
		logger.Error("failed to start webhook notifier", "error", err)
		os.Exit(1)
	}

	eventSink := events.NewSink(bus, logger)
	machine := attempt.NewMachine(test, logger,
		attempt.WithSessionStore(store),
		attempt.WithResultSink(adapter),
		attempt.WithResultSink(eventSink),
		attempt.WithStartSink(eventSink),
	)
	session := attempt.NewSession(machine, logger)

	ui := newTerminalUI(os.Stdout, session)
	session.OnNotice = ui.ShowNotice
	session.OnUpdate = ui.Render

	go session.Run(ctx)

	ui.ShowWelcome(test)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if quit := ui.HandleCommand(line); quit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("input stream failed", "error", err)
	}
}
