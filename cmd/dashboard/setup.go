package main

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/metrics"
	"market-dashboard/src/models"
	"market-dashboard/src/notify"
	"market-dashboard/src/storage"
	"market-dashboard/src/store"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

// setupMetrics builds the registry served on /metrics.
func setupMetrics() (*prometheus.Registry, *metrics.Metrics) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry, metrics.NewMetrics(registry)
}

// -----------------------------------------------------------------------------

// setupJournal returns the writer the session dispatches into: the store
// itself, or a journal in front of it when storage is enabled.
func setupJournal(
	ctx context.Context,
	wg *sync.WaitGroup,
	config *models.MConfig,
	st *store.Store,
	m *metrics.Metrics,
	appLogger *logger.Logger,
) (interfaces.IStateWriter, interfaces.IDatabase, error) {
	if !config.Storage.Enabled {
		appLogger.Info("Storage disabled, state is kept in memory only")
		return st, nil, nil
	}

	dbLogger := appLogger.Named("Storage")
	db, err := storage.NewDatabase(config.Storage, dbLogger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		return nil, nil, err
	}
	if config.Storage.RetentionDays > 0 {
		if err := db.CleanupOldData(config.Storage.RetentionDays); err != nil {
			appLogger.Warning("Failed to clean up old journal data: %v", err)
		}
	}

	journal := storage.NewJournal(st, db, config.Storage.QueueSize, m, dbLogger.Named("Journal"))
	wg.Add(1)
	go func() {
		defer wg.Done()
		journal.Run(ctx)
	}()

	appLogger.Info("Journaling to %s", config.Storage.DBType)
	return journal, db, nil
}

// -----------------------------------------------------------------------------

// setupNotifier creates the notification channel and, when configured, the
// Telegram forwarder for error notices.
func setupNotifier(
	ctx context.Context,
	wg *sync.WaitGroup,
	config *models.MConfig,
	loop *utils.EventLoop,
	scheduler interfaces.IScheduler,
	m *metrics.Metrics,
	appLogger *logger.Logger,
) *notify.Notifier {
	notifier := notify.NewNotifier(loop, scheduler, msDuration(config.Notify.TTLMs), m, appLogger.Named("Notify"))

	if config.Notify.Telegram.Enabled {
		sink := notify.NewTelegramSink(config.Notify.Telegram, appLogger.Named("Telegram"))
		notifier.AddSink(sink)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink.Run(ctx)
		}()
	}
	return notifier
}

// -----------------------------------------------------------------------------

// watchConnection subscribes the configured symbols on every (re)connect and
// tells the user when the session drops, recovers or gives up.
func watchConnection(
	session interfaces.ISession,
	notifier interfaces.INotifier,
	symbols []string,
	maxAttempts int,
	appLogger *logger.Logger,
) {
	lost := false
	session.Observe(func(state models.MConnectionState) {
		switch state.Phase {
		case models.PhaseConnected:
			if len(symbols) > 0 {
				session.Subscribe(symbols)
			}
			if lost {
				notifier.ShowInfo("Real-time connection restored")
			}
			lost = false
		case models.PhaseReconnecting:
			if !lost {
				notifier.ShowWarning("Real-time connection lost, reconnecting...")
			}
			lost = true
		case models.PhaseDisconnected:
			// Disconnect by request resets the attempt counter.
			if state.Attempts >= maxAttempts {
				appLogger.Warning("Real-time session gave up after %d attempts", state.Attempts)
				notifier.ShowError("Real-time connection unavailable")
			}
		}
	})
}

// -----------------------------------------------------------------------------

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
