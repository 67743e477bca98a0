package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// SignalRepository persists append-only TradingSignal rows.
type SignalRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSignalRepository(db *sql.DB, log zerolog.Logger) *SignalRepository {
	return &SignalRepository{db: db, log: log.With().Str("repo", "trading_signal").Logger()}
}

func (r *SignalRepository) Create(sig domain.TradingSignal) error {
	indicators, err := json.Marshal(sig.IndicatorsUsed)
	if err != nil {
		return fmt.Errorf("marshal signal indicators: %w", err)
	}
	_, err = r.db.Exec(`
		INSERT INTO trading_signals (instrument_id, symbol, strategy_id, timestamp, signal_type, strength, price, confidence, indicators_used, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sig.InstrumentID, sig.Symbol, sig.StrategyID, formatTime(sig.Timestamp), string(sig.SignalType),
		sig.Strength, sig.Price, sig.Confidence, string(indicators), sig.Reason)
	if err != nil {
		return fmt.Errorf("create trading signal: %w", err)
	}
	return nil
}

func (r *SignalRepository) ListByInstrument(instrumentID int64, limit int) ([]domain.TradingSignal, error) {
	rows, err := r.db.Query(`
		SELECT id, instrument_id, symbol, strategy_id, timestamp, signal_type, strength, price, confidence, indicators_used, reason
		FROM trading_signals WHERE instrument_id = ? ORDER BY timestamp DESC LIMIT ?
	`, instrumentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list signals by instrument: %w", err)
	}
	defer rows.Close()

	var out []domain.TradingSignal
	for rows.Next() {
		var s domain.TradingSignal
		var ts, indicatorsJSON string
		if err := rows.Scan(&s.ID, &s.InstrumentID, &s.Symbol, &s.StrategyID, &ts, &s.SignalType,
			&s.Strength, &s.Price, &s.Confidence, &indicatorsJSON, &s.Reason); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		if s.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		s.IndicatorsUsed = map[string]interface{}{}
		if indicatorsJSON != "" {
			if err := json.Unmarshal([]byte(indicatorsJSON), &s.IndicatorsUsed); err != nil {
				return nil, fmt.Errorf("unmarshal signal indicators: %w", err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
