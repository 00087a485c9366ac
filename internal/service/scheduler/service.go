// Package scheduler runs the platform's recurring background jobs: case
// generation, closure sweeps, ledger reconciliation, leaderboard refresh, and
// badge evaluation.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/huutrungle2001/moral-duel-api/internal/config"
	prommetrics "github.com/huutrungle2001/moral-duel-api/internal/metrics"
	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// Generator creates new AI cases on a schedule and resubmits verdict
// commitments that never landed.
type Generator interface {
	GenerateCase(ctx context.Context) (*models.Case, error)
	RetryCommitments(ctx context.Context) (int, error)
}

// CaseJobs covers the lifecycle operations run on a schedule.
type CaseJobs interface {
	CloseExpired(ctx context.Context) (int, error)
}

// Reconciler resolves in-flight ledger transactions.
type Reconciler interface {
	ReconcileCommitments(ctx context.Context) (int, error)
	ReconcilePayouts(ctx context.Context) (int, error)
}

// LeaderboardRefresher recomputes ranking snapshots.
type LeaderboardRefresher interface {
	ComputeSnapshots(ctx context.Context) error
}

// BadgeSweeper evaluates badge criteria across all users.
type BadgeSweeper interface {
	EvaluateAllBadges(ctx context.Context) (int, error)
}

// Service registers and runs the recurring jobs.
type Service struct {
	cfg         *config.Config
	generator   Generator
	caseJobs    CaseJobs
	reconciler  Reconciler
	leaderboard LeaderboardRefresher
	badges      BadgeSweeper
	log         *logger.Logger
	cron        *cron.Cron
}

// NewService creates a new scheduler service.
func NewService(
	cfg *config.Config,
	generator Generator,
	caseJobs CaseJobs,
	reconciler Reconciler,
	leaderboard LeaderboardRefresher,
	badges BadgeSweeper,
	log *logger.Logger,
) *Service {
	return &Service{
		cfg:         cfg,
		generator:   generator,
		caseJobs:    caseJobs,
		reconciler:  reconciler,
		leaderboard: leaderboard,
		badges:      badges,
		log:         log,
	}
}

// Start registers the jobs and starts the cron runner. A job that is still
// running when its next tick arrives skips that tick instead of stacking.
func (s *Service) Start() error {
	if !s.cfg.Jobs.Enabled {
		s.log.Info().Msg("Background jobs are disabled in configuration")
		return nil
	}

	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))

	jobs := []struct {
		name     string
		interval time.Duration
		run      func(ctx context.Context) error
	}{
		{"case_generation", time.Duration(s.cfg.Jobs.CaseGenerationHours) * time.Hour, s.runGeneration},
		{"closure_sweep", time.Duration(s.cfg.Jobs.ClosureSweepMinutes) * time.Minute, s.runClosureSweep},
		{"reconciler", time.Duration(s.cfg.Jobs.ReconcilerSeconds) * time.Second, s.runReconciler},
		{"leaderboard_refresh", time.Duration(s.cfg.Jobs.LeaderboardMinutes) * time.Minute, s.runLeaderboardRefresh},
		{"badge_sweep", time.Duration(s.cfg.Jobs.BadgeSweepHours) * time.Hour, s.runBadgeSweep},
	}

	for _, job := range jobs {
		if job.interval <= 0 {
			s.log.Warn().Str("job", job.name).Msg("Job interval not configured, skipping registration")
			continue
		}
		name, run := job.name, job.run
		spec := fmt.Sprintf("@every %s", job.interval)
		if _, err := s.cron.AddFunc(spec, func() {
			s.runJob(name, run)
		}); err != nil {
			return fmt.Errorf("failed to register %s job: %w", name, err)
		}
		s.log.Info().Str("job", name).Dur("interval", job.interval).Msg("Job registered")
	}

	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
	return nil
}

// Stop shuts the runner down and waits for in-flight jobs to finish.
func (s *Service) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.log.Info().Msg("Scheduler stopped")
	}
}

// runJob wraps one job execution with logging and metrics.
func (s *Service) runJob(name string, run func(ctx context.Context) error) {
	start := time.Now()
	if err := run(context.Background()); err != nil {
		prommetrics.RecordJobRun(name, "error")
		s.log.Error().Err(err).
			Str("job", name).
			Dur("duration", time.Since(start)).
			Msg("Job failed")
		return
	}
	prommetrics.RecordJobRun(name, "success")
	s.log.Debug().
		Str("job", name).
		Dur("duration", time.Since(start)).
		Msg("Job finished")
}

func (s *Service) runGeneration(ctx context.Context) error {
	// Resubmit first so earlier failures do not wait behind a generation
	// that keeps erroring.
	retried, err := s.generator.RetryCommitments(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Commitment resubmission pass failed")
	} else if retried > 0 {
		s.log.Info().Int("retried", retried).Msg("Resubmitted stranded commitments")
	}

	c, err := s.generator.GenerateCase(ctx)
	if err != nil {
		return err
	}
	s.log.Info().Uint("case_id", c.ID).Msg("Scheduled case generation produced a case")
	return nil
}

func (s *Service) runClosureSweep(ctx context.Context) error {
	closed, err := s.caseJobs.CloseExpired(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		s.log.Info().Int("closed", closed).Msg("Closure sweep closed cases")
	}
	return nil
}

func (s *Service) runReconciler(ctx context.Context) error {
	if _, err := s.reconciler.ReconcileCommitments(ctx); err != nil {
		return err
	}
	_, err := s.reconciler.ReconcilePayouts(ctx)
	return err
}

func (s *Service) runLeaderboardRefresh(ctx context.Context) error {
	return s.leaderboard.ComputeSnapshots(ctx)
}

func (s *Service) runBadgeSweep(ctx context.Context) error {
	_, err := s.badges.EvaluateAllBadges(ctx)
	return err
}
