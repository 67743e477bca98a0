package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/domain"
)

// SystemLogRepository persists append-only SystemLog rows.
type SystemLogRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewSystemLogRepository(db *sql.DB, log zerolog.Logger) *SystemLogRepository {
	return &SystemLogRepository{db: db, log: log.With().Str("repo", "system_log").Logger()}
}

func (r *SystemLogRepository) Create(entry domain.SystemLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	_, err := r.db.Exec(`
		INSERT INTO system_logs (level, module, message, details, account_id, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(entry.Level), entry.Module, entry.Message, entry.Details, nullStringPtr(entry.AccountID), formatTime(entry.Timestamp))
	if err != nil {
		return fmt.Errorf("create system log: %w", err)
	}
	return nil
}

func (r *SystemLogRepository) ListRecent(limit int) ([]domain.SystemLog, error) {
	rows, err := r.db.Query(`
		SELECT id, level, module, message, details, account_id, timestamp
		FROM system_logs ORDER BY timestamp DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent system logs: %w", err)
	}
	defer rows.Close()

	var out []domain.SystemLog
	for rows.Next() {
		var l domain.SystemLog
		var accountID sql.NullString
		var ts string
		if err := rows.Scan(&l.ID, &l.Level, &l.Module, &l.Message, &l.Details, &accountID, &ts); err != nil {
			return nil, fmt.Errorf("scan system log: %w", err)
		}
		l.AccountID = stringPtrFromNull(accountID)
		if l.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes log rows older than the cutoff, for the
// maintenance job's retention sweep.
func (r *SystemLogRepository) DeleteOlderThan(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM system_logs WHERE timestamp < ?`, formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete old system logs: %w", err)
	}
	return res.RowsAffected()
}

// SystemLogHook is a zerolog.Hook that writes matching log events
// through to the system_logs table, alongside the usual console/file
// sink. Kept in this package (not pkg/logger) to avoid pkg/logger
// importing internal/repository.
type SystemLogHook struct {
	repo   *SystemLogRepository
	module string
}

// NewSystemLogHook builds a hook tagging every persisted row with the
// given module name.
func NewSystemLogHook(repo *SystemLogRepository, module string) *SystemLogHook {
	return &SystemLogHook{repo: repo, module: module}
}

// Run implements zerolog.Hook. It only persists info-level-and-above
// events, to keep the table from filling with debug noise.
func (h *SystemLogHook) Run(e *zerolog.Event, level zerolog.Level, message string) {
	if level < zerolog.InfoLevel {
		return
	}

	entry := domain.SystemLog{
		Level:     logLevelFor(level),
		Module:    h.module,
		Message:   message,
		Timestamp: time.Now(),
	}
	// Best-effort: a failure to persist a log line must never disrupt
	// the caller emitting it.
	_ = h.repo.Create(entry)
}

func logLevelFor(level zerolog.Level) domain.LogLevel {
	switch level {
	case zerolog.WarnLevel:
		return domain.LogLevelWarning
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return domain.LogLevelError
	default:
		return domain.LogLevelInfo
	}
}
