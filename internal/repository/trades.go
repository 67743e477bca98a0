package repository

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// TradeRepository persists append-only Trade rows.
type TradeRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewTradeRepository(db *sql.DB, log zerolog.Logger) *TradeRepository {
	return &TradeRepository{db: db, log: log.With().Str("repo", "trade").Logger()}
}

func (r *TradeRepository) Create(t domain.Trade) error {
	_, err := r.db.Exec(`
		INSERT INTO trades (account_id, instrument_id, symbol, side, quantity, entry_price, exit_price,
			gross_pnl, net_pnl, percentage_pnl, commission, entry_time, exit_time, holding_period_days)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.AccountID, t.InstrumentID, t.Symbol, string(t.Side), t.Quantity, t.EntryPrice, t.ExitPrice,
		t.GrossPnL, t.NetPnL, t.PercentagePnL, t.Commission, formatTime(t.EntryTime), formatTime(t.ExitTime),
		t.HoldingPeriodDays)
	if err != nil {
		return fmt.Errorf("create trade: %w", err)
	}
	return nil
}

func (r *TradeRepository) ListByAccount(accountID string, limit int) ([]domain.Trade, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, instrument_id, symbol, side, quantity, entry_price, exit_price,
			gross_pnl, net_pnl, percentage_pnl, commission, entry_time, exit_time, holding_period_days
		FROM trades WHERE account_id = ? ORDER BY exit_time DESC LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list trades by account: %w", err)
	}
	defer rows.Close()

	var out []domain.Trade
	for rows.Next() {
		var t domain.Trade
		var entryTime, exitTime string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.InstrumentID, &t.Symbol, &t.Side, &t.Quantity,
			&t.EntryPrice, &t.ExitPrice, &t.GrossPnL, &t.NetPnL, &t.PercentagePnL, &t.Commission,
			&entryTime, &exitTime, &t.HoldingPeriodDays); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		if t.EntryTime, err = parseTime(entryTime); err != nil {
			return nil, err
		}
		if t.ExitTime, err = parseTime(exitTime); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
