package jobs

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/providers"
	"github.com/papertrader/engine/internal/repository"
)

// Matcher is the order matcher worker: fills PENDING orders FIFO
// by submission time, mutating cash and positions atomically.
type Matcher struct {
	db         *sql.DB
	orders     *repository.OrderRepository
	positions  *repository.PositionRepository
	accounts   *repository.AccountRepository
	registry   *providers.Registry
	log        zerolog.Logger
}

func NewMatcher(db *sql.DB, orders *repository.OrderRepository, positions *repository.PositionRepository,
	accounts *repository.AccountRepository, registry *providers.Registry, log zerolog.Logger) *Matcher {
	return &Matcher{
		db:        db,
		orders:    orders,
		positions: positions,
		accounts:  accounts,
		registry:  registry,
		log:       log.With().Str("worker", "order_matcher").Logger(),
	}
}

// Run processes every PENDING order, oldest first.
func (m *Matcher) Run() error {
	pending, err := m.orders.ListPendingFIFO()
	if err != nil {
		return fmt.Errorf("list pending orders: %w", err)
	}

	for _, order := range pending {
		if err := m.fill(order); err != nil {
			m.log.Error().Err(err).Int64("order_id", order.ID).Str("symbol", order.Symbol).Msg("order fill failed")
		}
	}
	return nil
}

func (m *Matcher) resolveFillPrice(order domain.Order) (float64, bool) {
	if order.LimitPrice != nil {
		return *order.LimitPrice, true
	}
	res := m.registry.FetchCurrentPrice(order.Symbol)
	if res.Outcome != providers.Found || res.Price == nil {
		return 0, false
	}
	return *res.Price, true
}

func (m *Matcher) fill(order domain.Order) error {
	price, ok := m.resolveFillPrice(order)
	if !ok {
		m.log.Warn().Int64("order_id", order.ID).Str("symbol", order.Symbol).Msg("no fill price available, leaving pending")
		return nil
	}

	switch order.Side {
	case domain.OrderSideBuy:
		return m.fillBuy(order, price)
	case domain.OrderSideSell:
		return m.fillSell(order, price)
	default:
		return fmt.Errorf("unknown order side %q", order.Side)
	}
}

func (m *Matcher) fillBuy(order domain.Order, price float64) error {
	cost := order.Quantity * price

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("begin buy transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := m.accounts.GetByID(order.AccountID)
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.CashBalance < cost {
		if err := m.orders.UpdateStatus(tx, order.ID, domain.OrderStatusRejected, 0, nil); err != nil {
			return fmt.Errorf("reject insufficient-funds order: %w", err)
		}
		return tx.Commit()
	}

	newBalance := account.CashBalance - cost
	if _, err := tx.Exec(`UPDATE accounts SET cash_balance = ? WHERE id = ?`, newBalance, order.AccountID); err != nil {
		return fmt.Errorf("debit cash: %w", err)
	}

	existing, err := m.positions.GetByAccountAndInstrument(order.AccountID, order.InstrumentID)
	var newQty, newAvg float64
	if err == repository.ErrNotFound {
		newQty, newAvg = order.Quantity, price
	} else if err != nil {
		return fmt.Errorf("lookup position: %w", err)
	} else {
		newQty = existing.Quantity + order.Quantity
		newAvg = (existing.Quantity*existing.AverageEntryPrice + order.Quantity*price) / newQty
	}

	currentPrice := price
	if existing != nil {
		currentPrice = existing.CurrentPrice
	}
	if _, err := tx.Exec(`
		INSERT INTO positions (account_id, instrument_id, symbol, quantity, average_entry_price, current_price, unrealized_pnl, realized_pnl, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, datetime('now'), datetime('now'))
		ON CONFLICT(account_id, instrument_id) DO UPDATE SET
			quantity = excluded.quantity,
			average_entry_price = excluded.average_entry_price,
			updated_at = excluded.updated_at
	`, order.AccountID, order.InstrumentID, order.Symbol, newQty, newAvg, currentPrice); err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}

	if err := m.orders.UpdateStatus(tx, order.ID, domain.OrderStatusFilled, order.Quantity, &price); err != nil {
		return fmt.Errorf("mark order filled: %w", err)
	}

	return tx.Commit()
}

func (m *Matcher) fillSell(order domain.Order, price float64) error {
	position, err := m.positions.GetByAccountAndInstrument(order.AccountID, order.InstrumentID)
	if err == repository.ErrNotFound || (position != nil && position.Quantity < order.Quantity) {
		// Per the observed (and flagged) asymmetry: insufficient shares
		// is logged as an error but the order is left PENDING rather
		// than rejected, unlike the BUY insufficient-funds case.
		m.log.Error().Int64("order_id", order.ID).Str("symbol", order.Symbol).
			Msg("insufficient shares to fill sell order, leaving pending for operator review")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup position: %w", err)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("begin sell transaction: %w", err)
	}
	defer tx.Rollback()

	account, err := m.accounts.GetByID(order.AccountID)
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}

	proceeds := order.Quantity * price
	if _, err := tx.Exec(`UPDATE accounts SET cash_balance = ? WHERE id = ?`, account.CashBalance+proceeds, order.AccountID); err != nil {
		return fmt.Errorf("credit cash: %w", err)
	}

	newQty := position.Quantity - order.Quantity
	if _, err := tx.Exec(`UPDATE positions SET quantity = ?, updated_at = datetime('now') WHERE id = ?`, newQty, position.ID); err != nil {
		return fmt.Errorf("reduce position: %w", err)
	}

	if err := m.orders.UpdateStatus(tx, order.ID, domain.OrderStatusFilled, order.Quantity, &price); err != nil {
		return fmt.Errorf("mark order filled: %w", err)
	}

	return tx.Commit()
}
