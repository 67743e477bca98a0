package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/repository"
)

func TestRevaluer_MarksOpenPositionsToMarket(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	accounts := repository.NewAccountRepository(conn, testLogger())
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	positions := repository.NewPositionRepository(conn, testLogger())

	account := domain.Account{ID: "acct-1", Name: "Test", Type: domain.AccountTypeVirtual, CashBalance: 1000, Currency: "USD", Status: domain.AccountStatusActive}
	require.NoError(t, accounts.Create(account))
	inst, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)
	require.NoError(t, positions.Upsert(domain.Position{AccountID: account.ID, InstrumentID: inst.ID, Symbol: inst.Symbol, Quantity: 10, AverageEntryPrice: 100}))

	registry := singleProviderRegistry(&fakeProvider{name: "fake", price: fPtr(120)})
	revaluer := NewRevaluer(positions, registry, testLogger())
	require.NoError(t, revaluer.Run())

	pos, err := positions.GetByAccountAndInstrument(account.ID, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, 120.0, pos.CurrentPrice)
	assert.Equal(t, 200.0, pos.UnrealizedPnL)
}

func TestRevaluer_SkipsPositionOnMissingPriceWithoutAborting(t *testing.T) {
	db := newTestDB(t)
	conn := db.Conn()
	accounts := repository.NewAccountRepository(conn, testLogger())
	instruments := repository.NewInstrumentRepository(conn, testLogger())
	positions := repository.NewPositionRepository(conn, testLogger())

	account := domain.Account{ID: "acct-1", Name: "Test", Type: domain.AccountTypeVirtual, CashBalance: 1000, Currency: "USD", Status: domain.AccountStatusActive}
	require.NoError(t, accounts.Create(account))

	instA, err := instruments.EnsureExists("AAPL")
	require.NoError(t, err)
	instB, err := instruments.EnsureExists("MSFT")
	require.NoError(t, err)
	require.NoError(t, positions.Upsert(domain.Position{AccountID: account.ID, InstrumentID: instA.ID, Symbol: instA.Symbol, Quantity: 10, AverageEntryPrice: 100}))
	require.NoError(t, positions.Upsert(domain.Position{AccountID: account.ID, InstrumentID: instB.ID, Symbol: instB.Symbol, Quantity: 5, AverageEntryPrice: 200}))

	// fakeProvider with no price configured reports Empty for every symbol.
	registry := singleProviderRegistry(&fakeProvider{name: "fake"})
	revaluer := NewRevaluer(positions, registry, testLogger())
	require.NoError(t, revaluer.Run())

	posA, err := positions.GetByAccountAndInstrument(account.ID, instA.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, posA.CurrentPrice)
}
