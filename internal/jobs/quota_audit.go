// Package jobs runs the background sweeps of the service on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cheatvault/gta-cheats-api/internal/api/metrics"
	"github.com/cheatvault/gta-cheats-api/internal/core/ports"
)

const auditTimeout = time.Minute

// MeteredAuditor records every audit run in the quota metrics. The cron job
// and the admin endpoint share it so the gauge reflects the latest run.
type MeteredAuditor struct {
	auditor ports.QuotaAuditor
}

func NewMeteredAuditor(auditor ports.QuotaAuditor) *MeteredAuditor {
	return &MeteredAuditor{auditor: auditor}
}

func (m *MeteredAuditor) Audit(ctx context.Context) (*ports.QuotaReport, error) {
	report, err := m.auditor.Audit(ctx)
	if err != nil {
		metrics.QuotaAuditsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.QuotaAuditsTotal.WithLabelValues("ok").Inc()
	metrics.QuotaViolations.Set(float64(len(report.Violations)))
	return report, nil
}

// Scheduler runs the quota audit on a cron spec such as "@every 15m" or
// "*/5 * * * *".
type Scheduler struct {
	cron    *cron.Cron
	auditor ports.QuotaAuditor
	log     zerolog.Logger
	// base bounds every run; cancelled by Stop.
	base   context.Context
	cancel context.CancelFunc
}

// NewScheduler validates spec and registers the audit job. Overlapping runs
// are skipped rather than queued.
func NewScheduler(spec string, auditor ports.QuotaAuditor, log zerolog.Logger) (*Scheduler, error) {
	log = log.With().Str("component", "jobs").Logger()
	base, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		auditor: auditor,
		log:     log,
		base:    base,
		cancel:  cancel,
	}
	cl := cronLogger{log: log}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := s.cron.AddFunc(spec, s.runAudit); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule quota audit %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop prevents new runs, cancels the one in flight and waits for it to
// return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runAudit() {
	ctx, cancel := context.WithTimeout(s.base, auditTimeout)
	defer cancel()

	start := time.Now()
	report, err := s.auditor.Audit(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("quota audit failed")
		return
	}
	s.log.Info().
		Int("violations", len(report.Violations)).
		Int64("limit", report.Limit).
		Dur("took", time.Since(start)).
		Msg("quota audit finished")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
