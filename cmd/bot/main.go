// Package main contains the entrypoint for the relay bot application.
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

	"github.com/edgard/relaybot/internal/bot"
	"github.com/edgard/relaybot/internal/bot/handlers"
	"github.com/edgard/relaybot/internal/bot/tasks"
	"github.com/edgard/relaybot/internal/config"
	"github.com/edgard/relaybot/internal/database"
	"github.com/edgard/relaybot/internal/forwarder"
	"github.com/edgard/relaybot/internal/logger"
	"github.com/edgard/relaybot/internal/selection"
	"github.com/edgard/relaybot/internal/telegram"
	"github.com/edgard/relaybot/internal/tenant"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// stores, bot, scheduler), handles graceful shutdown, and returns an exit code
// (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.New(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)

	tenantStore := tenant.NewStore(database.NewTenantKV(db, log), log)
	channelStore := database.NewChannelStore(db, log)
	maintenance := database.NewMaintenance(db, log)
	selections := selection.NewManager(tenantStore, log)

	// The default handler must be supplied at bot construction, but the
	// transport it depends on needs the bot instance. The indirection below
	// lets the real handler be assigned once both exist, before Start.
	var defaultHandler tgbot.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if defaultHandler != nil {
				defaultHandler(ctx, b, update)
			}
		}),
	}
	tg, err := telegram.NewBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	transport := telegram.NewTransport(tg, channelStore, log)
	dispatcher := forwarder.NewDispatcher(tenantStore, transport, log, cfg.Forwarder.MaxParallelSends)

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      tenantStore,
		Selection:  selections,
		Transport:  transport,
		Dispatcher: dispatcher,
		Channels:   channelStore,
	}
	defaultHandler = handlers.NewDefaultHandler(hDeps)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:      log,
		Maintenance: maintenance,
		Channels:    channelStore,
		Config:      cfg,
	}
	sched := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	app := bot.NewBot(log, cfg, tg, sched)

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
