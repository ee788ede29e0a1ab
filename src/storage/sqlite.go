package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config models.MStorageConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg models.MStorageConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	tables := map[string]string{
		"market_ticks": `
			CREATE TABLE IF NOT EXISTS market_ticks (
				symbol TEXT,
				timestamp INTEGER,
				price REAL,
				open REAL,
				high REAL,
				low REAL,
				close REAL,
				volume REAL,
				PRIMARY KEY (symbol, timestamp)
			);
		`,
		"orders": `
			CREATE TABLE IF NOT EXISTS orders (
				id TEXT PRIMARY KEY,
				symbol TEXT,
				side TEXT,
				type TEXT,
				quantity REAL,
				price REAL,
				status TEXT,
				timestamp INTEGER,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
		"portfolio_snapshots": `
			CREATE TABLE IF NOT EXISTS portfolio_snapshots (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				received_at INTEGER,
				total_value REAL,
				cash_balance REAL,
				day_pnl REAL,
				positions TEXT
			);
		`,
	}

	for name, query := range tables {
		if _, err := d.DB.Exec(query); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveTicks(ticks []models.MMarketTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_ticks (symbol, timestamp, price, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET
			price = excluded.price,
			open = excluded.open,
			high = excluded.high,
			low = excluded.low,
			close = excluded.close,
			volume = excluded.volume
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range ticks {
		_, err := stmt.Exec(t.Symbol, t.Timestamp, t.Price, t.Open, t.High, t.Low, t.Close, t.Volume)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveOrders(orders []models.MOrder) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO orders (id, symbol, side, type, quantity, price, status, timestamp, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			symbol = excluded.symbol,
			side = excluded.side,
			type = excluded.type,
			quantity = excluded.quantity,
			price = excluded.price,
			status = excluded.status,
			timestamp = excluded.timestamp,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range orders {
		_, err := stmt.Exec(o.ID, o.Symbol, string(o.Side), string(o.Type), o.Quantity,
			nullablePrice(o.Price), string(o.Status), o.Timestamp, time.Now().UTC())
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SavePortfolioSnapshot(p models.MPortfolio, receivedAt int64) error {
	positions, err := encodePositions(p.Positions)
	if err != nil {
		return err
	}

	_, err = d.DB.Exec(`
		INSERT INTO portfolio_snapshots (received_at, total_value, cash_balance, day_pnl, positions)
		VALUES (?, ?, ?, ?, ?)
	`, receivedAt, p.TotalValue, p.CashBalance, p.DayPnL, positions)
	return err
}

// -----------------------------------------------------------------------------

// CleanupOldData removes ticks and snapshots older than the retention window.
func (d *AsyncSQLiteDB) CleanupOldData(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	d.Logger.Info("Cleaning up data older than %d days", retentionDays)

	if _, err := d.DB.Exec("DELETE FROM market_ticks WHERE timestamp < ?", cutoff.UnixMilli()); err != nil {
		d.Logger.Error("Cleanup market_ticks error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM portfolio_snapshots WHERE received_at < ?", cutoff.UnixMilli()); err != nil {
		d.Logger.Error("Cleanup portfolio_snapshots error: %v", err)
	}

	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
