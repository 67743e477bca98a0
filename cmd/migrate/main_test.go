package main

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrader/engine/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunAction_InitAppliesSchema(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, runAction("init", db, zerolog.Nop()))

	var tableCount int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table'`).Scan(&tableCount))
	assert.Greater(t, tableCount, 0)
}

func TestRunAction_SampleSeedsAccountStrategyAndInstruments(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())
	require.NoError(t, runAction("sample", db, zerolog.Nop()))

	var accountCount, strategyCount, instrumentCount int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM accounts`).Scan(&accountCount))
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM strategies`).Scan(&strategyCount))
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM instruments`).Scan(&instrumentCount))

	assert.Equal(t, 1, accountCount)
	assert.Equal(t, 1, strategyCount)
	assert.Equal(t, 3, instrumentCount)
}

func TestRunAction_UnknownActionErrors(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate())
	err := runAction("bogus", db, zerolog.Nop())
	assert.Error(t, err)
}
