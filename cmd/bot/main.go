// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/oskli/triagebot/internal/ai"
	"github.com/oskli/triagebot/internal/bot"
	"github.com/oskli/triagebot/internal/bot/handlers"
	"github.com/oskli/triagebot/internal/bot/tasks"
	"github.com/oskli/triagebot/internal/config"
	"github.com/oskli/triagebot/internal/logger"
	"github.com/oskli/triagebot/internal/mcp"
	"github.com/oskli/triagebot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, tool
// server bridge, completion client, bot, scheduler), handles graceful
// shutdown, and returns an exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	log.Info("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	bridge, err := mcp.Connect(ctx, cfg.MCP, log)
	if err != nil {
		log.Error("Failed to connect to tool server", "error", err)
		return 1
	}
	defer func() {
		if closeErr := bridge.Close(); closeErr != nil {
			log.Error("Failed to close tool server bridge", "error", closeErr)
		}
	}()

	aiClient, err := ai.NewClient(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI client", "error", err)
		return 1
	}

	asker := bot.NewAsker(log, aiClient, bridge, cfg.AI, cfg.Telegram.Messages.EmptyAnswer)

	// The mention handler needs the sender, and the sender needs the bot
	// instance the handler option is passed to. Bind the handler after both
	// exist; no updates flow until Run starts the listener.
	var mentionHandler tgbot.HandlerFunc

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if mentionHandler != nil {
				mentionHandler(ctx, b, update)
			}
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	botInfo, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", botInfo.ID, "bot_username", botInfo.Username)

	hDeps := handlers.HandlerDeps{
		Logger:  log,
		Config:  cfg,
		Asker:   asker,
		Bridge:  bridge,
		Replier: telegram.NewSender(tg, log, cfg.Telegram.MaxMessageLength),
		BotInfo: botInfo,
	}
	tDeps := tasks.TaskDeps{
		Logger: log,
		Bridge: bridge,
		Config: cfg,
	}

	// The default handler skips the registry, so the chat gate is applied here.
	mentionHandler = handlers.ChatAllowed(hDeps)(handlers.NewMentionHandler(hDeps))

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sched, err := bot.NewScheduler(log, cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
