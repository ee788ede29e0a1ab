package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/src/metrics"
	"market-dashboard/src/models"
	"market-dashboard/src/store"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------

type memoryDB struct {
	mu        sync.Mutex
	ticks     []models.MMarketTick
	orders    []models.MOrder
	snapshots []models.MPortfolio
}

func (m *memoryDB) Initialize() error { return nil }
func (m *memoryDB) Close() error      { return nil }

func (m *memoryDB) SaveTicks(ticks []models.MMarketTick) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, ticks...)
	return nil
}

func (m *memoryDB) SaveOrders(orders []models.MOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, orders...)
	return nil
}

func (m *memoryDB) SavePortfolioSnapshot(p models.MPortfolio, receivedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, p)
	return nil
}

func (m *memoryDB) CleanupOldData(int) error { return nil }

// -----------------------------------------------------------------------------

func TestJournal_ForwardsAndPersists(t *testing.T) {
	st := store.NewStore(utils.NewEventLoop(nil))
	db := &memoryDB{}
	j := NewJournal(st, db, 16, nil, nil)

	j.ApplyTick("AAPL", models.MMarketTick{Price: 1, Timestamp: 1})
	j.UpsertOrder(models.MOrder{ID: "1", Status: models.OrderStatusPending})
	j.ReplacePortfolio(models.MPortfolio{TotalValue: 10})

	// The store sees the writes immediately.
	tick, ok := st.Tick("AAPL")
	require.True(t, ok)
	assert.Equal(t, 1.0, tick.Price)
	assert.Len(t, st.Orders(), 1)
	require.NotNil(t, st.Portfolio())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	require.Len(t, db.ticks, 1)
	assert.Equal(t, "AAPL", db.ticks[0].Symbol)
	require.Len(t, db.orders, 1)
	require.Len(t, db.snapshots, 1)
	assert.Equal(t, 10.0, db.snapshots[0].TotalValue)
}

func TestJournal_FlushesOnInterval(t *testing.T) {
	st := store.NewStore(utils.NewEventLoop(nil))
	db := &memoryDB{}
	j := NewJournal(st, db, 16, nil, nil)
	j.flushInterval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go j.Run(ctx)

	j.ApplyTick("MSFT", models.MMarketTick{Price: 2})

	assert.Eventually(t, func() bool {
		db.mu.Lock()
		defer db.mu.Unlock()
		return len(db.ticks) == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestJournal_FullQueueDropsButStillForwards(t *testing.T) {
	st := store.NewStore(utils.NewEventLoop(nil))
	m := metrics.NewMetrics(prometheus.NewRegistry())
	j := NewJournal(st, &memoryDB{}, 1, m, nil)

	j.ApplyTick("AAPL", models.MMarketTick{Price: 1})
	j.ApplyTick("AAPL", models.MMarketTick{Price: 2})

	tick, _ := st.Tick("AAPL")
	assert.Equal(t, 2.0, tick.Price)
	assert.Len(t, j.queue, 1)
}

func TestJournal_PersistsIntoSQLite(t *testing.T) {
	db := newTestSQLite(t)
	st := store.NewStore(utils.NewEventLoop(nil))
	j := NewJournal(st, db, 16, nil, nil)

	j.ApplyTick("AAPL", models.MMarketTick{Price: 101.5, Timestamp: 1000})
	j.UpsertOrder(models.MOrder{ID: "1", Symbol: "AAPL", Side: models.OrderSideBuy, Type: models.OrderTypeMarket, Quantity: 1, Status: models.OrderStatusFilled})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	j.Run(ctx)

	var ticks, orders int
	require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM market_ticks`).Scan(&ticks))
	require.NoError(t, db.DB.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&orders))
	assert.Equal(t, 1, ticks)
	assert.Equal(t, 1, orders)
}
