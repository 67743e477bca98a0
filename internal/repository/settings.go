package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// SettingRepository persists Setting rows: vendor credentials and the
// AI stock-list cache.
type SettingRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSettingRepository(db *sql.DB, log zerolog.Logger) *SettingRepository {
	return &SettingRepository{db: db, log: log.With().Str("repo", "setting").Logger()}
}

func (r *SettingRepository) Get(name string) (*domain.Setting, error) {
	row := r.db.QueryRow(`
		SELECT id, name, value, category, active, created_at, updated_at FROM settings WHERE name = ?
	`, name)
	var s domain.Setting
	var active int
	var createdAt, updatedAt string
	err := row.Scan(&s.ID, &s.Name, &s.Value, &s.Category, &active, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get setting: %w", err)
	}
	s.Active = active != 0
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert is the concurrency-safe primitive backing the AI stock-list
// cache: a single statement that creates or overwrites in place.
func (r *SettingRepository) Upsert(name, value string, category domain.SettingCategory, active bool) error {
	now := formatTime(time.Now())
	_, err := r.db.Exec(`
		INSERT INTO settings (name, value, category, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			category = excluded.category,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, name, value, string(category), boolToInt(active), now, now)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// Credential resolves a vendor API key from the settings table,
// implementing providers.CredentialSource. Vendor keys are stored
// under the name "credential:<vendor>" in the credentials category.
func (r *SettingRepository) Credential(vendor string) (string, bool) {
	s, err := r.Get("credential:" + vendor)
	if err != nil || !s.Active || s.Value == "" {
		return "", false
	}
	return s.Value, true
}

// IsFresh reports whether a setting was last updated within maxAge.
func (r *SettingRepository) IsFresh(name string, maxAge time.Duration) (bool, error) {
	s, err := r.Get(name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return time.Since(s.UpdatedAt) < maxAge, nil
}
