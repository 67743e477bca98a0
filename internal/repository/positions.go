package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// PositionRepository persists Position rows. Invariant: at most one
// row per (AccountID, InstrumentID).
type PositionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewPositionRepository(db *sql.DB, log zerolog.Logger) *PositionRepository {
	return &PositionRepository{db: db, log: log.With().Str("repo", "position").Logger()}
}

func (r *PositionRepository) GetByAccountAndInstrument(accountID string, instrumentID int64) (*domain.Position, error) {
	row := r.db.QueryRow(`
		SELECT id, account_id, instrument_id, symbol, quantity, average_entry_price, current_price, unrealized_pnl, realized_pnl, created_at, updated_at
		FROM positions WHERE account_id = ? AND instrument_id = ?
	`, accountID, instrumentID)
	p, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	return p, nil
}

func (r *PositionRepository) ListByAccount(accountID string) ([]domain.Position, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, instrument_id, symbol, quantity, average_entry_price, current_price, unrealized_pnl, realized_pnl, created_at, updated_at
		FROM positions WHERE account_id = ? AND quantity != 0
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("list positions by account: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

func (r *PositionRepository) ListAllOpen() ([]domain.Position, error) {
	rows, err := r.db.Query(`
		SELECT id, account_id, instrument_id, symbol, quantity, average_entry_price, current_price, unrealized_pnl, realized_pnl, created_at, updated_at
		FROM positions WHERE quantity != 0
	`)
	if err != nil {
		return nil, fmt.Errorf("list open positions: %w", err)
	}
	defer rows.Close()
	return scanPositions(rows)
}

// Upsert creates the position row if absent, otherwise updates
// quantity, average entry price, current price and both P&L fields in
// place.
func (r *PositionRepository) Upsert(p domain.Position) error {
	now := time.Now()
	_, err := r.db.Exec(`
		INSERT INTO positions (account_id, instrument_id, symbol, quantity, average_entry_price, current_price, unrealized_pnl, realized_pnl, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, instrument_id) DO UPDATE SET
			quantity = excluded.quantity,
			average_entry_price = excluded.average_entry_price,
			current_price = excluded.current_price,
			unrealized_pnl = excluded.unrealized_pnl,
			realized_pnl = excluded.realized_pnl,
			updated_at = excluded.updated_at
	`, p.AccountID, p.InstrumentID, p.Symbol, p.Quantity, p.AverageEntryPrice, p.CurrentPrice,
		p.UnrealizedPnL, p.RealizedPnL, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}
	return nil
}

// UpdateMarketValue sets current_price and unrealized_pnl for a
// revaluation tick without touching quantity/cost basis.
func (r *PositionRepository) UpdateMarketValue(id int64, currentPrice, unrealizedPnL float64) error {
	_, err := r.db.Exec(`UPDATE positions SET current_price = ?, unrealized_pnl = ?, updated_at = ? WHERE id = ?`,
		currentPrice, unrealizedPnL, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update position market value: %w", err)
	}
	return nil
}

func scanPosition(s rowScanner) (*domain.Position, error) {
	var p domain.Position
	var createdAt, updatedAt string
	err := s.Scan(&p.ID, &p.AccountID, &p.InstrumentID, &p.Symbol, &p.Quantity, &p.AverageEntryPrice,
		&p.CurrentPrice, &p.UnrealizedPnL, &p.RealizedPnL, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPositions(rows *sql.Rows) ([]domain.Position, error) {
	var out []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
