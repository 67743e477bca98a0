package jobs

import (
	"database/sql"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/repository"
)

// Maintenance runs the WAL checkpoint and log-retention sweep on a
// cron schedule, outside the Job Controller: this is fixed-schedule
// housekeeping, not a job operators start/stop/cancel individually, so
// the schedule library's own runner fits without needing the
// controller's per-job cancellation.
type Maintenance struct {
	db         *sql.DB
	systemLogs *repository.SystemLogRepository
	retention  time.Duration
	log        zerolog.Logger
	cron       *cron.Cron
}

// NewMaintenance builds the maintenance job. retention is how long
// system_logs rows are kept before the sweep deletes them.
func NewMaintenance(db *sql.DB, systemLogs *repository.SystemLogRepository, retention time.Duration, log zerolog.Logger) *Maintenance {
	return &Maintenance{
		db:         db,
		systemLogs: systemLogs,
		retention:  retention,
		log:        log.With().Str("worker", "maintenance").Logger(),
		cron:       cron.New(),
	}
}

// Start registers the sweep on the given cron schedule (e.g.
// "@every 1h") and starts the cron scheduler's own goroutine.
func (m *Maintenance) Start(schedule string) error {
	_, err := m.cron.AddFunc(schedule, m.sweep)
	if err != nil {
		return err
	}
	m.cron.Start()
	return nil
}

// Stop halts the cron scheduler and waits for any in-flight run.
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

func (m *Maintenance) sweep() {
	var busy, log, checkpointed int
	if err := m.db.QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &log, &checkpointed); err != nil {
		m.log.Warn().Err(err).Msg("failed to check wal checkpoint")
	} else if log > 1000 {
		m.log.Warn().Int("wal_frames", log).Int("checkpointed", checkpointed).Msg("wal file is large, checkpoint may be needed")
	} else {
		m.log.Debug().Int("wal_frames", log).Msg("wal checkpoint status ok")
	}

	cutoff := time.Now().Add(-m.retention)
	deleted, err := m.systemLogs.DeleteOlderThan(cutoff)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to sweep old system logs")
		return
	}
	if deleted > 0 {
		m.log.Info().Int64("deleted", deleted).Msg("swept old system log rows")
	}
}
