package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// InstrumentRepository persists Instrument rows.
type InstrumentRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewInstrumentRepository(db *sql.DB, log zerolog.Logger) *InstrumentRepository {
	return &InstrumentRepository{db: db, log: log.With().Str("repo", "instrument").Logger()}
}

func (r *InstrumentRepository) GetBySymbol(symbol string) (*domain.Instrument, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, name, exchange, currency, active, watchlist, overall_score, risk_score, sector_bucket, created_at, updated_at
		FROM instruments WHERE symbol = ?
	`, strings.ToUpper(symbol))
	inst, err := scanInstrument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get instrument by symbol: %w", err)
	}
	return inst, nil
}

func (r *InstrumentRepository) GetByID(id int64) (*domain.Instrument, error) {
	row := r.db.QueryRow(`
		SELECT id, symbol, name, exchange, currency, active, watchlist, overall_score, risk_score, sector_bucket, created_at, updated_at
		FROM instruments WHERE id = ?
	`, id)
	inst, err := scanInstrument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get instrument by id: %w", err)
	}
	return inst, nil
}

func (r *InstrumentRepository) ListActive() ([]domain.Instrument, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, name, exchange, currency, active, watchlist, overall_score, risk_score, sector_bucket, created_at, updated_at
		FROM instruments WHERE active = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("list active instruments: %w", err)
	}
	defer rows.Close()
	return scanInstruments(rows)
}

func (r *InstrumentRepository) ListWatchlist() ([]domain.Instrument, error) {
	rows, err := r.db.Query(`
		SELECT id, symbol, name, exchange, currency, active, watchlist, overall_score, risk_score, sector_bucket, created_at, updated_at
		FROM instruments WHERE watchlist = 1 AND active = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("list watchlist instruments: %w", err)
	}
	defer rows.Close()
	return scanInstruments(rows)
}

// EnrichFunc supplies name/exchange/currency for a newly-created
// instrument. Returning an error just leaves the defaults in place.
type EnrichFunc func(symbol string) (name, exchange, currency string, err error)

// ScoreFunc enriches an existing instrument row with overall/risk
// score and sector bucket. Failure must not roll back the watchlist
// flag already committed by AddToWatchlist.
type ScoreFunc func(inst domain.Instrument) (overallScore, riskScore *float64, sectorBucket *string, err error)

// EnsureExists creates the instrument row with USD defaults if absent,
// leaving the watchlist flag untouched. Used by the trading bot, which
// trades a resolved universe independent of the watchlist.
func (r *InstrumentRepository) EnsureExists(symbol string) (*domain.Instrument, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	inst, err := r.GetBySymbol(symbol)
	if err == nil {
		return inst, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("ensure instrument exists: %w", err)
	}

	now := formatTime(time.Now())
	res, execErr := r.db.Exec(`
		INSERT INTO instruments (symbol, name, exchange, currency, active, watchlist, created_at, updated_at)
		VALUES (?, ?, '', 'USD', 1, 0, ?, ?)
	`, symbol, symbol, now, now)
	if execErr != nil {
		return nil, fmt.Errorf("create instrument: %w", execErr)
	}
	id, _ := res.LastInsertId()
	return &domain.Instrument{ID: id, Symbol: symbol, Name: symbol, Currency: "USD", Active: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}, nil
}

// AddToWatchlist is idempotent create-or-flag: if the symbol is
// absent, it is created (enriched via enrich when supplied), then the
// watchlist flag is set, then scoring is attempted. A scoring failure
// never rolls back the watchlist flag.
func (r *InstrumentRepository) AddToWatchlist(symbol string, enrich EnrichFunc, score ScoreFunc) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	inst, err := r.GetBySymbol(symbol)
	if errors.Is(err, ErrNotFound) {
		name, exchange, currency := symbol, "", "USD"
		if enrich != nil {
			if n, ex, cur, enrichErr := enrich(symbol); enrichErr == nil {
				name, exchange, currency = n, ex, cur
			} else {
				r.log.Warn().Err(enrichErr).Str("symbol", symbol).Msg("enrichment failed, using defaults")
			}
		}
		now := time.Now()
		res, execErr := r.db.Exec(`
			INSERT INTO instruments (symbol, name, exchange, currency, active, watchlist, created_at, updated_at)
			VALUES (?, ?, ?, ?, 1, 0, ?, ?)
		`, symbol, name, exchange, currency, formatTime(now), formatTime(now))
		if execErr != nil {
			return fmt.Errorf("create instrument: %w", execErr)
		}
		id, _ := res.LastInsertId()
		inst = &domain.Instrument{ID: id, Symbol: symbol, Name: name, Exchange: exchange, Currency: currency, Active: true}
	} else if err != nil {
		return fmt.Errorf("add to watchlist: %w", err)
	}

	if _, err := r.db.Exec(`UPDATE instruments SET watchlist = 1, updated_at = ? WHERE id = ?`,
		formatTime(time.Now()), inst.ID); err != nil {
		return fmt.Errorf("set watchlist flag: %w", err)
	}

	if score == nil {
		return nil
	}

	overall, risk, bucket, scoreErr := score(*inst)
	if scoreErr != nil {
		r.log.Warn().Err(scoreErr).Str("symbol", symbol).Msg("scoring failed after watchlist add")
		return nil
	}
	if _, err := r.db.Exec(`UPDATE instruments SET overall_score = ?, risk_score = ?, sector_bucket = ?, updated_at = ? WHERE id = ?`,
		nullFloat64Ptr(overall), nullFloat64Ptr(risk), nullStringPtr(bucket), formatTime(time.Now()), inst.ID); err != nil {
		r.log.Warn().Err(err).Str("symbol", symbol).Msg("failed to persist score after watchlist add")
	}
	return nil
}

func scanInstrument(s rowScanner) (*domain.Instrument, error) {
	var inst domain.Instrument
	var active, watchlist int
	var overallScore, riskScore sql.NullFloat64
	var sectorBucket sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(&inst.ID, &inst.Symbol, &inst.Name, &inst.Exchange, &inst.Currency,
		&active, &watchlist, &overallScore, &riskScore, &sectorBucket, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	inst.Active = active != 0
	inst.Watchlist = watchlist != 0
	inst.OverallScore = floatPtrFromNull(overallScore)
	inst.RiskScore = floatPtrFromNull(riskScore)
	inst.SectorBucket = stringPtrFromNull(sectorBucket)
	if inst.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if inst.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &inst, nil
}

func scanInstruments(rows *sql.Rows) ([]domain.Instrument, error) {
	var out []domain.Instrument
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		out = append(out, *inst)
	}
	return out, rows.Err()
}
