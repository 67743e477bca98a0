package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// ErrInvalidTransition is returned when UpdateStatus is asked to move
// an order out of a terminal state, or into one it's already in.
var ErrInvalidTransition = errors.New("invalid order status transition")

// OrderRepository persists Order rows.
type OrderRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewOrderRepository(db *sql.DB, log zerolog.Logger) *OrderRepository {
	return &OrderRepository{db: db, log: log.With().Str("repo", "order").Logger()}
}

func (r *OrderRepository) Create(o domain.Order) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO orders (external_order_id, account_id, instrument_id, symbol, strategy_id, type, side, quantity,
			limit_price, stop_price, status, filled_quantity, average_fill_price, commission, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.ExternalOrderID, o.AccountID, o.InstrumentID, o.Symbol, nullStringPtr(o.StrategyID),
		string(o.Type), string(o.Side), o.Quantity, nullFloat64Ptr(o.LimitPrice), nullFloat64Ptr(o.StopPrice),
		string(o.Status), o.FilledQuantity, nullFloat64Ptr(o.AverageFillPrice), o.Commission, formatTime(o.SubmittedAt))
	if err != nil {
		return 0, fmt.Errorf("create order: %w", err)
	}
	return res.LastInsertId()
}

// ListPendingFIFO returns PENDING orders ordered by submitted_at
// ascending, the order the matcher fills them in.
func (r *OrderRepository) ListPendingFIFO() ([]domain.Order, error) {
	rows, err := r.db.Query(`
		SELECT id, external_order_id, account_id, instrument_id, symbol, strategy_id, type, side, quantity,
			limit_price, stop_price, status, filled_quantity, average_fill_price, commission, submitted_at, filled_at, cancelled_at
		FROM orders WHERE status = 'PENDING' ORDER BY submitted_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *OrderRepository) GetByID(id int64) (*domain.Order, error) {
	row := r.db.QueryRow(`
		SELECT id, external_order_id, account_id, instrument_id, symbol, strategy_id, type, side, quantity,
			limit_price, stop_price, status, filled_quantity, average_fill_price, commission, submitted_at, filled_at, cancelled_at
		FROM orders WHERE id = ?
	`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// UpdateStatus transitions an order's status, setting filled_at on
// FILLED and cancelled_at on CANCELLED. Transitions out of a terminal
// status, or a no-op re-entry into the current status, are rejected.
func (r *OrderRepository) UpdateStatus(tx *sql.Tx, id int64, status domain.OrderStatus, filledQuantity float64, avgFillPrice *float64) error {
	exec := queryExec(tx, r.db)

	var current domain.OrderStatus
	if err := exec.QueryRow(`SELECT status FROM orders WHERE id = ?`, id).Scan(&current); err != nil {
		return fmt.Errorf("lookup order status: %w", err)
	}
	if current.IsTerminal() {
		return fmt.Errorf("%w: order %d is %s", ErrInvalidTransition, id, current)
	}
	if current == status {
		return fmt.Errorf("%w: order %d already %s", ErrInvalidTransition, id, status)
	}

	now := formatTime(time.Now())
	switch status {
	case domain.OrderStatusFilled:
		_, err := exec.Exec(`UPDATE orders SET status = ?, filled_quantity = ?, average_fill_price = ?, filled_at = ? WHERE id = ?`,
			string(status), filledQuantity, nullFloat64Ptr(avgFillPrice), now, id)
		return err
	case domain.OrderStatusCancelled:
		_, err := exec.Exec(`UPDATE orders SET status = ?, cancelled_at = ? WHERE id = ?`, string(status), now, id)
		return err
	default:
		_, err := exec.Exec(`UPDATE orders SET status = ? WHERE id = ?`, string(status), id)
		return err
	}
}

// sqlExecQuerier is satisfied by both *sql.DB and *sql.Tx.
type sqlExecQuerier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

func queryExec(tx *sql.Tx, db *sql.DB) sqlExecQuerier {
	if tx != nil {
		return tx
	}
	return db
}

func scanOrder(s rowScanner) (*domain.Order, error) {
	var o domain.Order
	var limitF, stopF, avgF sql.NullFloat64
	var filledAt, cancelledAt sql.NullString
	var submittedAt string

	var strategyIDNS sql.NullString
	err := s.Scan(&o.ID, &o.ExternalOrderID, &o.AccountID, &o.InstrumentID, &o.Symbol, &strategyIDNS,
		&o.Type, &o.Side, &o.Quantity, &limitF, &stopF, &o.Status, &o.FilledQuantity, &avgF,
		&o.Commission, &submittedAt, &filledAt, &cancelledAt)
	if err != nil {
		return nil, err
	}

	o.StrategyID = stringPtrFromNull(strategyIDNS)
	o.LimitPrice = floatPtrFromNull(limitF)
	o.StopPrice = floatPtrFromNull(stopF)
	o.AverageFillPrice = floatPtrFromNull(avgF)

	if o.SubmittedAt, err = parseTime(submittedAt); err != nil {
		return nil, err
	}
	if o.FilledAt, err = timePtrFromNull(filledAt); err != nil {
		return nil, err
	}
	if o.CancelledAt, err = timePtrFromNull(cancelledAt); err != nil {
		return nil, err
	}
	return &o, nil
}
