// Command migrate manages the database schema and seed data: init
// creates the database file, migrate/migrate-all apply the versioned
// schema statements, status prints how many tables the database has, and
// sample loads a minimal demo account/strategy/instrument set for
// local exploration.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/config"
	"github.com/papertrader/engine/internal/database"
	"github.com/papertrader/engine/internal/domain"
	"github.com/papertrader/engine/internal/repository"
	"github.com/papertrader/engine/pkg/logger"
)

func main() {
	action := flag.String("action", "migrate", "one of: init, status, migrate, migrate-all, sample")
	flag.Parse()

	log := logger.New(logger.Config{Level: "info", Pretty: true})

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Error().Err(err).Msg("failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	if err := runAction(*action, db, log); err != nil {
		log.Error().Err(err).Str("action", *action).Msg("migrate command failed")
		os.Exit(1)
	}

	log.Info().Str("action", *action).Msg("migrate command completed")
}

func runAction(action string, db *database.DB, log zerolog.Logger) error {
	switch action {
	case "init":
		return db.Migrate()
	case "status":
		return printStatus(db)
	case "migrate", "migrate-all":
		return db.Migrate()
	case "sample":
		return loadSample(db, log)
	default:
		return fmt.Errorf("unknown action %q: want init, status, migrate, migrate-all, or sample", action)
	}
}

func printStatus(db *database.DB) error {
	row := db.QueryRow(`SELECT count(*) FROM sqlite_master WHERE type = 'table'`)
	var tableCount int
	if err := row.Scan(&tableCount); err != nil {
		return fmt.Errorf("query schema status: %w", err)
	}
	fmt.Printf("schema tables present: %d\n", tableCount)
	return nil
}

// loadSample seeds one virtual account driven by a manual-mode
// strategy over three liquid symbols, for local smoke-testing the job
// controller without external credentials.
func loadSample(db *database.DB, log zerolog.Logger) error {
	conn := db.Conn()
	instruments := repository.NewInstrumentRepository(conn, log)
	strategies := repository.NewStrategyRepository(conn, log)
	accounts := repository.NewAccountRepository(conn, log)

	strategy := domain.Strategy{
		ID:            uuid.NewString(),
		Name:          "Sample Manual Strategy",
		Description:   "Seeded by cmd/migrate --action sample",
		Category:      domain.StrategyCategoryLong,
		StrategyType:  "technical",
		StockListMode: domain.StockListModeManual,
		StockList:     "AAPL,MSFT,GOOG",
		Parameters: map[string]interface{}{
			"max_position_size_percent": 10.0,
			"max_positions":             5.0,
		},
		Active: true,
	}
	if err := strategies.Create(strategy); err != nil {
		return fmt.Errorf("seed sample strategy: %w", err)
	}

	strategyID := strategy.ID
	account := domain.Account{
		ID:          uuid.NewString(),
		Name:        "Sample Paper Account",
		Type:        domain.AccountTypeVirtual,
		CashBalance: 100000,
		Currency:    "USD",
		Status:      domain.AccountStatusActive,
		StrategyID:  &strategyID,
	}
	if err := accounts.Create(account); err != nil {
		return fmt.Errorf("seed sample account: %w", err)
	}

	for _, symbol := range []string{"AAPL", "MSFT", "GOOG"} {
		if _, err := instruments.EnsureExists(symbol); err != nil {
			return fmt.Errorf("seed sample instrument %s: %w", symbol, err)
		}
	}

	fmt.Println("sample data loaded: 1 account, 1 strategy, 3 instruments")
	return nil
}
