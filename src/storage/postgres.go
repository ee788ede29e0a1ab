package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lib/pq"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config models.MStorageConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewPostgresDB uses the configured schema, or the executable name when none
// is set.
func NewPostgresDB(cfg models.MStorageConfig, log *logger.Logger) (*PostgresDB, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	name := cfg.Schema
	if name == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable name: %w", err)
		}
		name = filepath.Base(exe)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, d.schema())); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) schema() string {
	return pq.QuoteIdentifier(d.Schema)
}

func (d *PostgresDB) table(name string) string {
	return d.schema() + "." + pq.QuoteIdentifier(name)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	queries := []struct {
		name  string
		query string
	}{
		{"market_ticks", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT,
				timestamp BIGINT,
				price DOUBLE PRECISION,
				open DOUBLE PRECISION,
				high DOUBLE PRECISION,
				low DOUBLE PRECISION,
				close DOUBLE PRECISION,
				volume DOUBLE PRECISION,
				PRIMARY KEY (symbol, timestamp)
			);
		`, d.table("market_ticks"))},
		{"orders", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				symbol TEXT,
				side TEXT,
				type TEXT,
				quantity DOUBLE PRECISION,
				price DOUBLE PRECISION,
				status TEXT,
				timestamp BIGINT,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`, d.table("orders"))},
		{"portfolio_snapshots", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				received_at BIGINT,
				total_value DOUBLE PRECISION,
				cash_balance DOUBLE PRECISION,
				day_pnl DOUBLE PRECISION,
				positions JSONB
			);
		`, d.table("portfolio_snapshots"))},
	}

	for _, q := range queries {
		if _, err := d.DB.Exec(q.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", q.name, err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveTicks(ticks []models.MMarketTick) error {
	if len(ticks) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (symbol, timestamp, price, open, high, low, close, volume)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol, timestamp) DO UPDATE SET
			price = EXCLUDED.price,
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume
	`, d.table("market_ticks"))
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) SaveOrders(orders []models.MOrder) error {
	if len(orders) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, symbol, side, type, quantity, price, status, timestamp, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			side = EXCLUDED.side,
			type = EXCLUDED.type,
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price,
			status = EXCLUDED.status,
			timestamp = EXCLUDED.timestamp,
			updated_at = EXCLUDED.updated_at
	`, d.table("orders"))
	stmt, err := tx.Prepare(query)
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

func (d *PostgresDB) SavePortfolioSnapshot(p models.MPortfolio, receivedAt int64) error {
	positions, err := encodePositions(p.Positions)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (received_at, total_value, cash_balance, day_pnl, positions)
		VALUES ($1, $2, $3, $4, $5)
	`, d.table("portfolio_snapshots"))
	_, err = d.DB.Exec(query, receivedAt, p.TotalValue, p.CashBalance, p.DayPnL, positions)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	d.Logger.Info("Cleaning up data older than %d days (timestamp < %d)", retentionDays, cutoff)

	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE timestamp < $1`, d.table("market_ticks")), cutoff); err != nil {
		d.Logger.Error("Cleanup market_ticks error: %v", err)
	}
	if _, err := d.DB.Exec(fmt.Sprintf(`DELETE FROM %s WHERE received_at < $1`, d.table("portfolio_snapshots")), cutoff); err != nil {
		d.Logger.Error("Cleanup portfolio_snapshots error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
