package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// ErrNotFound is returned when a lookup by id finds no row.
var ErrNotFound = errors.New("not found")

// AccountRepository persists Account rows.
type AccountRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewAccountRepository(db *sql.DB, log zerolog.Logger) *AccountRepository {
	return &AccountRepository{db: db, log: log.With().Str("repo", "account").Logger()}
}

func (r *AccountRepository) Create(a domain.Account) error {
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now

	_, err := r.db.Exec(`
		INSERT INTO accounts (id, name, type, cash_balance, currency, status, strategy_id, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Name, string(a.Type), a.CashBalance, a.Currency, string(a.Status),
		nullStringPtr(a.StrategyID), boolToInt(a.Deleted), formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) GetByID(id string) (*domain.Account, error) {
	row := r.db.QueryRow(`
		SELECT id, name, type, cash_balance, currency, status, strategy_id, deleted, created_at, updated_at
		FROM accounts WHERE id = ?
	`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) ListActive() ([]domain.Account, error) {
	rows, err := r.db.Query(`
		SELECT id, name, type, cash_balance, currency, status, strategy_id, deleted, created_at, updated_at
		FROM accounts WHERE deleted = 0 AND status = 'active'
	`)
	if err != nil {
		return nil, fmt.Errorf("list active accounts: %w", err)
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccountFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateCashBalance sets the cash balance and bumps updated_at.
func (r *AccountRepository) UpdateCashBalance(id string, balance float64) error {
	_, err := r.db.Exec(`UPDATE accounts SET cash_balance = ?, updated_at = ? WHERE id = ?`,
		balance, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("update cash balance: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(s rowScanner) (*domain.Account, error) {
	var a domain.Account
	var strategyID sql.NullString
	var deleted int
	var createdAt, updatedAt string

	err := s.Scan(&a.ID, &a.Name, &a.Type, &a.CashBalance, &a.Currency, &a.Status,
		&strategyID, &deleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	a.StrategyID = stringPtrFromNull(strategyID)
	a.Deleted = deleted != 0
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAccountFromRows(rows *sql.Rows) (*domain.Account, error) {
	return scanAccount(rows)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
