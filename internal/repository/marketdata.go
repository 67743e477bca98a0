package repository

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// MarketDataRepository persists MarketData bars.
type MarketDataRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewMarketDataRepository(db *sql.DB, log zerolog.Logger) *MarketDataRepository {
	return &MarketDataRepository{db: db, log: log.With().Str("repo", "market_data").Logger()}
}

// Create inserts a single bar, ignoring the call if one already
// exists for (instrument, timestamp, interval).
func (r *MarketDataRepository) Create(bar domain.MarketData) error {
	_, err := r.db.Exec(`
		INSERT OR IGNORE INTO market_data (instrument_id, timestamp, interval, open, high, low, close, volume, vwap, trade_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, bar.InstrumentID, formatTime(bar.Timestamp), string(bar.Interval), bar.Open, bar.High, bar.Low,
		bar.Close, bar.Volume, bar.VWAP, bar.TradeCount)
	if err != nil {
		return fmt.Errorf("create market data bar: %w", err)
	}
	return nil
}

// CreateBulk inserts many bars in a single transaction. A failure
// partway through rolls back the whole batch.
func (r *MarketDataRepository) CreateBulk(bars []domain.MarketData) error {
	if len(bars) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin bulk market data insert: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO market_data (instrument_id, timestamp, interval, open, high, low, close, volume, vwap, trade_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare bulk market data insert: %w", err)
	}
	defer stmt.Close()

	for _, bar := range bars {
		if _, err := stmt.Exec(bar.InstrumentID, formatTime(bar.Timestamp), string(bar.Interval),
			bar.Open, bar.High, bar.Low, bar.Close, bar.Volume, bar.VWAP, bar.TradeCount); err != nil {
			tx.Rollback()
			return fmt.Errorf("bulk insert market data bar: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk market data insert: %w", err)
	}
	return nil
}

// RecentCloses returns the last n closes for an instrument at the
// given interval, oldest first (the order the indicators package
// expects).
func (r *MarketDataRepository) RecentCloses(instrumentID int64, interval domain.MarketDataInterval, n int) ([]float64, error) {
	rows, err := r.db.Query(`
		SELECT close FROM market_data
		WHERE instrument_id = ? AND interval = ?
		ORDER BY timestamp DESC LIMIT ?
	`, instrumentID, string(interval), n)
	if err != nil {
		return nil, fmt.Errorf("query recent closes: %w", err)
	}
	defer rows.Close()

	var closes []float64
	for rows.Next() {
		var c float64
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan close: %w", err)
		}
		closes = append(closes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverse(closes)
	return closes, nil
}

// RecentBars returns the last n full bars for an instrument at the
// given interval, oldest first.
func (r *MarketDataRepository) RecentBars(instrumentID int64, interval domain.MarketDataInterval, n int) ([]domain.MarketData, error) {
	rows, err := r.db.Query(`
		SELECT id, instrument_id, timestamp, interval, open, high, low, close, volume, vwap, trade_count
		FROM market_data WHERE instrument_id = ? AND interval = ?
		ORDER BY timestamp DESC LIMIT ?
	`, instrumentID, string(interval), n)
	if err != nil {
		return nil, fmt.Errorf("query recent bars: %w", err)
	}
	defer rows.Close()

	var out []domain.MarketData
	for rows.Next() {
		var b domain.MarketData
		var ts string
		if err := rows.Scan(&b.ID, &b.InstrumentID, &ts, &b.Interval, &b.Open, &b.High, &b.Low,
			&b.Close, &b.Volume, &b.VWAP, &b.TradeCount); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		if b.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	reverseMarketData(out)
	return out, nil
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseMarketData(s []domain.MarketData) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
