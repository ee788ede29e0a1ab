package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"market-dashboard/src/actions"
	"market-dashboard/src/api"
	"market-dashboard/src/config"
	"market-dashboard/src/logger"
	"market-dashboard/src/network"
	"market-dashboard/src/session"
	"market-dashboard/src/store"
	"market-dashboard/src/utils"
)

const (
	hydrateTimeout  = 15 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	// 1. Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// 2. Load config
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// 3. Setup Logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)
	defer appLogger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// 4. Core: metrics, event loop, store
	registry, m := setupMetrics()
	loop := utils.NewEventLoop(appLogger.Named("EventLoop"))
	scheduler := utils.NewRealScheduler(loop)
	st := store.NewStore(loop)

	writer, db, err := setupJournal(ctx, &wg, conf.MConfig, st, m, appLogger)
	if err != nil {
		appLogger.Critical("Failed to set up journal: %v", err)
	}

	notifier := setupNotifier(ctx, &wg, conf.MConfig, loop, scheduler, m, appLogger)

	// 5. Real-time session
	opts := session.OptionsFromConfig(conf.Session)
	manager := session.NewManager(
		opts,
		loop,
		network.NewWSDialer(appLogger.Named("Transport")),
		scheduler,
		writer,
		m,
		appLogger.Named("Session"),
	)
	watchConnection(manager, notifier, conf.Symbols, opts.MaxAttempts, appLogger)

	// 6. Request/response boundary
	client := api.NewClient(conf.API, appLogger.Named("API"))
	acts := actions.NewActions(client, st, notifier, appLogger.Named("Actions"))
	hydrate(ctx, acts, appLogger)

	// 7. Servers
	markets := utils.NewMarketScheduler(conf.Symbols, appLogger.Named("Markets"))
	gateway, health := startServers(conf.MConfig, st, manager, acts, notifier, markets, registry, appLogger)

	// 8. Connect and wait for a signal
	manager.Connect()
	appLogger.Info("Dashboard running, press Ctrl+C to stop")
	<-ctx.Done()

	// 9. Graceful shutdown
	appLogger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := gateway.Stop(shutdownCtx); err != nil {
		appLogger.Warning("Gateway shutdown: %v", err)
	}
	health.Stop()
	manager.Disconnect()

	// Journal and telegram writers drain on ctx cancellation.
	wg.Wait()
	if db != nil {
		if err := db.Close(); err != nil {
			appLogger.Warning("Failed to close database: %v", err)
		}
	}
	appLogger.Info("Shutdown complete.")
}

// -----------------------------------------------------------------------------

// hydrate loads the confirmed order list and portfolio before the session
// starts streaming updates. Failures are already surfaced as notices.
func hydrate(ctx context.Context, acts *actions.Actions, appLogger *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, hydrateTimeout)
	defer cancel()

	if orders, err := acts.LoadOrders(ctx); err == nil {
		appLogger.Info("Loaded %d orders", len(orders))
	}
	if _, err := acts.LoadPortfolio(ctx); err == nil {
		appLogger.Info("Loaded portfolio")
	}
}
