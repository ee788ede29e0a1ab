package storage

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/metrics"
	"market-dashboard/src/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultQueueSize     = 1024
	journalBatchSize     = 256
	journalFlushInterval = time.Second
)

// -----------------------------------------------------------------------------

type journalRecord struct {
	tick       *models.MMarketTick
	order      *models.MOrder
	portfolio  *models.MPortfolio
	receivedAt int64
}

// -----------------------------------------------------------------------------
// Journal
// -----------------------------------------------------------------------------

// Journal forwards every write to the wrapped state writer and persists a
// copy in the background. A full queue drops the record; dispatch never
// waits on the database.
type Journal struct {
	next    interfaces.IStateWriter
	db      interfaces.IDatabase
	queue   chan journalRecord
	metrics *metrics.Metrics
	Logger  *logger.Logger

	flushInterval time.Duration
	now           func() time.Time
}

// -----------------------------------------------------------------------------

func NewJournal(next interfaces.IStateWriter, db interfaces.IDatabase, queueSize int, m *metrics.Metrics, log *logger.Logger) *Journal {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Journal{
		next:          next,
		db:            db,
		queue:         make(chan journalRecord, queueSize),
		metrics:       m,
		Logger:        log,
		flushInterval: journalFlushInterval,
		now:           time.Now,
	}
}

// -----------------------------------------------------------------------------
// IStateWriter
// -----------------------------------------------------------------------------

func (j *Journal) ApplyTick(symbol string, tick models.MMarketTick) {
	j.next.ApplyTick(symbol, tick)
	tick.Symbol = symbol
	j.enqueue(journalRecord{tick: &tick})
}

func (j *Journal) ReplacePortfolio(portfolio models.MPortfolio) {
	j.next.ReplacePortfolio(portfolio)
	p := portfolio.Clone()
	j.enqueue(journalRecord{portfolio: &p})
}

func (j *Journal) UpsertOrder(order models.MOrder) {
	j.next.UpsertOrder(order)
	j.enqueue(journalRecord{order: &order})
}

// -----------------------------------------------------------------------------

func (j *Journal) enqueue(rec journalRecord) {
	rec.receivedAt = j.now().UnixMilli()
	select {
	case j.queue <- rec:
	default:
		j.metrics.JournalDropped()
		j.Logger.Warning("Journal queue full, dropping record")
	}
}

// -----------------------------------------------------------------------------
// Writer loop
// -----------------------------------------------------------------------------

// Run persists queued records in batches until ctx is done, then flushes
// whatever is still queued.
func (j *Journal) Run(ctx context.Context) {
	ticker := time.NewTicker(j.flushInterval)
	defer ticker.Stop()

	var batch []journalRecord
	for {
		select {
		case rec := <-j.queue:
			batch = append(batch, rec)
			if len(batch) >= journalBatchSize {
				j.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				j.flush(batch)
				batch = batch[:0]
			}

		case <-ctx.Done():
			for {
				select {
				case rec := <-j.queue:
					batch = append(batch, rec)
				default:
					j.flush(batch)
					return
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (j *Journal) flush(batch []journalRecord) {
	if len(batch) == 0 {
		return
	}

	var ticks []models.MMarketTick
	var orders []models.MOrder
	for _, rec := range batch {
		switch {
		case rec.tick != nil:
			ticks = append(ticks, *rec.tick)
		case rec.order != nil:
			orders = append(orders, *rec.order)
		case rec.portfolio != nil:
			if err := j.db.SavePortfolioSnapshot(*rec.portfolio, rec.receivedAt); err != nil {
				j.Logger.Error("Failed to save portfolio snapshot: %v", err)
			}
		}
	}

	if err := j.db.SaveTicks(ticks); err != nil {
		j.Logger.Error("Failed to save %d ticks: %v", len(ticks), err)
	}
	if err := j.db.SaveOrders(orders); err != nil {
		j.Logger.Error("Failed to save %d orders: %v", len(orders), err)
	}
	j.Logger.Debug("Journal flushed %d records", len(batch))
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func nullablePrice(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func encodePositions(positions []models.MPosition) (string, error) {
	if positions == nil {
		positions = []models.MPosition{}
	}
	data, err := json.Marshal(positions)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// -----------------------------------------------------------------------------

// NewDatabase picks the backend named by cfg.DBType.
func NewDatabase(cfg models.MStorageConfig, log *logger.Logger) (interfaces.IDatabase, error) {
	switch cfg.DBType {
	case "postgres":
		return NewPostgresDB(cfg, log)
	case "sqlite", "":
		return NewAsyncSQLiteDB(cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database type: %q", cfg.DBType)
	}
}
