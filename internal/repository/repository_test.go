package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/database"
	"github.com/papertrader/engine/internal/domain"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAddToWatchlist_IdempotentCreateThenFlag(t *testing.T) {
	db := newTestDB(t)
	repo := NewInstrumentRepository(db.Conn(), zerolog.Nop())

	err := repo.AddToWatchlist("aapl", nil, nil)
	require.NoError(t, err)

	inst, err := repo.GetBySymbol("AAPL")
	require.NoError(t, err)
	require.True(t, inst.Watchlist)

	// Calling again on an existing instrument must not error or
	// duplicate the row.
	err = repo.AddToWatchlist("AAPL", nil, nil)
	require.NoError(t, err)

	again, err := repo.GetBySymbol("AAPL")
	require.NoError(t, err)
	require.Equal(t, inst.ID, again.ID)
}

func TestAddToWatchlist_ScoringFailureDoesNotRollBackFlag(t *testing.T) {
	db := newTestDB(t)
	repo := NewInstrumentRepository(db.Conn(), zerolog.Nop())

	failingScore := func(inst domain.Instrument) (*float64, *float64, *string, error) {
		return nil, nil, nil, errors.New("scoring unavailable")
	}

	err := repo.AddToWatchlist("MSFT", nil, failingScore)
	require.NoError(t, err)

	inst, err := repo.GetBySymbol("MSFT")
	require.NoError(t, err)
	require.True(t, inst.Watchlist)
	require.Nil(t, inst.OverallScore)
}

func TestOrderUpdateStatus_RejectsOutOfOrderTransition(t *testing.T) {
	db := newTestDB(t)
	orders := NewOrderRepository(db.Conn(), zerolog.Nop())

	id, err := orders.Create(domain.Order{
		ExternalOrderID: "ext-1",
		AccountID:       "acct-1",
		InstrumentID:    1,
		Symbol:          "AAPL",
		Type:            domain.OrderTypeMarket,
		Side:            domain.OrderSideBuy,
		Quantity:        10,
		Status:          domain.OrderStatusPending,
		SubmittedAt:     time.Now(),
	})
	require.NoError(t, err)

	price := 150.0
	require.NoError(t, orders.UpdateStatus(nil, id, domain.OrderStatusFilled, 10, &price))

	filled, err := orders.GetByID(id)
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusFilled, filled.Status)
	require.NotNil(t, filled.FilledAt)

	// FILLED is terminal: a further transition must be rejected.
	err = orders.UpdateStatus(nil, id, domain.OrderStatusCancelled, 0, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSettingUpsert_CreatesThenUpdatesInPlace(t *testing.T) {
	db := newTestDB(t)
	settings := NewSettingRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, settings.Upsert("ai_stock_list_growth", `["AAPL","MSFT"]`, domain.SettingCategoryAICache, true))
	first, err := settings.Get("ai_stock_list_growth")
	require.NoError(t, err)

	require.NoError(t, settings.Upsert("ai_stock_list_growth", `["AAPL","MSFT","NVDA"]`, domain.SettingCategoryAICache, true))
	second, err := settings.Get("ai_stock_list_growth")
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Contains(t, second.Value, "NVDA")
}
