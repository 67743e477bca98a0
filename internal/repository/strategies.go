package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// StrategyRepository persists Strategy rows.
type StrategyRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewStrategyRepository(db *sql.DB, log zerolog.Logger) *StrategyRepository {
	return &StrategyRepository{db: db, log: log.With().Str("repo", "strategy").Logger()}
}

func (r *StrategyRepository) GetByID(id string) (*domain.Strategy, error) {
	row := r.db.QueryRow(`
		SELECT id, name, description, category, strategy_type, stock_list_mode, stock_list, stock_list_ai_prompt, parameters, active
		FROM strategies WHERE id = ?
	`, id)
	s, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get strategy: %w", err)
	}
	return s, nil
}

func (r *StrategyRepository) ListActive() ([]domain.Strategy, error) {
	rows, err := r.db.Query(`
		SELECT id, name, description, category, strategy_type, stock_list_mode, stock_list, stock_list_ai_prompt, parameters, active
		FROM strategies WHERE active = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("list active strategies: %w", err)
	}
	defer rows.Close()

	var out []domain.Strategy
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *StrategyRepository) Create(s domain.Strategy) error {
	params, err := json.Marshal(s.Parameters)
	if err != nil {
		return fmt.Errorf("marshal strategy parameters: %w", err)
	}
	_, err = r.db.Exec(`
		INSERT INTO strategies (id, name, description, category, strategy_type, stock_list_mode, stock_list, stock_list_ai_prompt, parameters, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Name, s.Description, string(s.Category), s.StrategyType, string(s.StockListMode),
		s.StockList, s.StockListAIPrompt, string(params), boolToInt(s.Active))
	if err != nil {
		return fmt.Errorf("create strategy: %w", err)
	}
	return nil
}

// UpdateStockList overwrites the strategy's stored stock_list, used so
// Manual-mode fallback reflects the most recent AI-generated universe.
func (r *StrategyRepository) UpdateStockList(id, stockList string) error {
	_, err := r.db.Exec(`UPDATE strategies SET stock_list = ? WHERE id = ?`, stockList, id)
	if err != nil {
		return fmt.Errorf("update strategy stock_list: %w", err)
	}
	return nil
}

func scanStrategy(s rowScanner) (*domain.Strategy, error) {
	var strat domain.Strategy
	var paramsJSON string
	var active int

	err := s.Scan(&strat.ID, &strat.Name, &strat.Description, &strat.Category, &strat.StrategyType,
		&strat.StockListMode, &strat.StockList, &strat.StockListAIPrompt, &paramsJSON, &active)
	if err != nil {
		return nil, err
	}
	strat.Active = active != 0
	strat.Parameters = map[string]interface{}{}
	if paramsJSON != "" {
		if err := json.Unmarshal([]byte(paramsJSON), &strat.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshal strategy parameters: %w", err)
		}
	}
	return &strat, nil
}
