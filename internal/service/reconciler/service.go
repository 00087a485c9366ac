// Package reconciler resolves in-flight ledger transactions: verdict
// commitments waiting for confirmation and reward payouts waiting to land.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/config"
	"github.com/huutrungle2001/moral-duel-api/internal/ledger"
	prommetrics "github.com/huutrungle2001/moral-duel-api/internal/metrics"
	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// CaseRepository interface for case commitment operations.
type CaseRepository interface {
	ListPendingCommitments(limit int) ([]models.Case, error)
	UpdateCommitmentStatus(id uint, from, to string) (bool, error)
}

// RewardRepository interface for reward payout operations.
type RewardRepository interface {
	GetByID(id uint) (*models.Reward, error)
	ListByUser(userID uint) ([]models.Reward, error)
	ListProcessing(limit int) ([]models.Reward, error)
	Claim(id uint, txID string, claimedAt time.Time) (bool, error)
	Complete(id, userID uint, amount int64, completedAt time.Time) (bool, error)
	Fail(id uint) (bool, error)
}

// UserRepository interface for payout wallet lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// AuditRepository interface for transition records.
type AuditRepository interface {
	Append(entry *models.AuditEntry) error
}

// Activator opens voting on a case whose commitment confirmed.
type Activator interface {
	ActivateCommitted(caseID uint) error
}

// Service polls the ledger and advances commitment and payout state.
type Service struct {
	caseRepo   CaseRepository
	rewardRepo RewardRepository
	userRepo   UserRepository
	auditRepo  AuditRepository
	ledger     ledger.Ledger
	activator  Activator
	batchSize  int
	grace      time.Duration
	log        *logger.Logger
}

// NewService creates a new reconciler service.
func NewService(
	caseRepo *repository.CaseRepository,
	rewardRepo *repository.RewardRepository,
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditRepository,
	ldg ledger.Ledger,
	activator Activator,
	cfg *config.JobsConfig,
	log *logger.Logger,
) *Service {
	return newService(caseRepo, rewardRepo, userRepo, auditRepo, ldg, activator, cfg, log)
}

// NewServiceWithInterfaces creates a new reconciler service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	caseRepo CaseRepository,
	rewardRepo RewardRepository,
	userRepo UserRepository,
	auditRepo AuditRepository,
	ldg ledger.Ledger,
	activator Activator,
	cfg *config.JobsConfig,
	log *logger.Logger,
) *Service {
	return newService(caseRepo, rewardRepo, userRepo, auditRepo, ldg, activator, cfg, log)
}

func newService(
	caseRepo CaseRepository,
	rewardRepo RewardRepository,
	userRepo UserRepository,
	auditRepo AuditRepository,
	ldg ledger.Ledger,
	activator Activator,
	cfg *config.JobsConfig,
	log *logger.Logger,
) *Service {
	batch := cfg.ReconcilerBatchSize
	if batch <= 0 || batch > 100 {
		batch = 100
	}
	grace := time.Duration(cfg.ReconcilerGraceHours) * time.Hour
	if grace <= 0 {
		grace = 24 * time.Hour
	}
	return &Service{
		caseRepo:   caseRepo,
		rewardRepo: rewardRepo,
		userRepo:   userRepo,
		auditRepo:  auditRepo,
		ledger:     ldg,
		activator:  activator,
		batchSize:  batch,
		grace:      grace,
		log:        log,
	}
}

// ListRewards retrieves a user's rewards, newest first.
func (s *Service) ListRewards(ctx context.Context, userID uint) ([]models.Reward, error) {
	return s.rewardRepo.ListByUser(userID)
}

// ClaimReward starts the payout of a pending reward to the user's wallet.
// The user must own the reward and have a wallet attached; the conditional
// claim makes a double submission a no-op.
func (s *Service) ClaimReward(ctx context.Context, rewardID, userID uint) (*models.Reward, error) {
	rw, err := s.rewardRepo.GetByID(rewardID)
	if err != nil {
		return nil, err
	}
	if rw.UserID != userID {
		return nil, fmt.Errorf("reward %d does not belong to user %d", rewardID, userID)
	}
	if rw.Status != models.RewardStatusPending {
		return nil, fmt.Errorf("reward %d is not claimable", rewardID)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.HasWallet() {
		return nil, fmt.Errorf("user %d has no wallet connected", userID)
	}

	txID, err := s.ledger.SubmitPayout(ctx, user.WalletAddress, rw.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to submit payout: %w", err)
	}

	claimed, err := s.rewardRepo.Claim(rewardID, txID, time.Now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("reward %d was claimed concurrently", rewardID)
	}
	s.appendAuditAs("api", models.AuditEntityReward, rewardID, models.RewardStatusPending, models.RewardStatusProcessing, "payout submitted")

	s.log.Info().
		Uint("reward_id", rewardID).
		Uint("user_id", userID).
		Int64("amount", rw.Amount).
		Str("tx_id", txID).
		Msg("Reward claimed")
	return s.rewardRepo.GetByID(rewardID)
}

// ReconcilePayouts resolves one batch of processing rewards. A transaction
// error or a still-propagating payout keeps the reward in flight for the next
// run, but only inside the grace window; past it the reward fails whether the
// payout went missing or the node stayed unreachable. Returns how many
// rewards were resolved either way.
func (s *Service) ReconcilePayouts(ctx context.Context) (int, error) {
	start := time.Now()

	rewards, err := s.rewardRepo.ListProcessing(s.batchSize)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for i := range rewards {
		rw := &rewards[i]
		if rw.TxID == nil {
			continue
		}

		status, err := s.ledger.GetTransactionStatus(ctx, *rw.TxID)
		if err != nil {
			if rw.ClaimedAt != nil && time.Since(*rw.ClaimedAt) > s.grace {
				// The node has been unreachable for the whole grace window;
				// give up and release the reward for a fresh claim
				failed, failErr := s.rewardRepo.Fail(rw.ID)
				if failErr != nil {
					s.log.Error().Err(failErr).Uint("reward_id", rw.ID).Msg("Failed to fail reward")
					continue
				}
				if failed {
					s.appendAudit(rw.ID, models.RewardStatusProcessing, models.RewardStatusFailed, "ledger unreachable past grace window")
					prommetrics.RecordRewardReconciled("failed")
					s.log.Warn().Err(err).
						Uint("reward_id", rw.ID).
						Str("tx_id", *rw.TxID).
						Msg("Payout unresolvable past grace window, reward failed")
					resolved++
				}
				continue
			}
			// Transient RPC failure: retry next run
			s.log.Warn().Err(err).Uint("reward_id", rw.ID).Msg("Ledger lookup failed, will retry")
			continue
		}

		switch {
		case status.Confirmed():
			credited, err := s.rewardRepo.Complete(rw.ID, rw.UserID, rw.Amount, time.Now())
			if err != nil {
				s.log.Error().Err(err).Uint("reward_id", rw.ID).Msg("Failed to complete reward")
				continue
			}
			if credited {
				s.appendAudit(rw.ID, models.RewardStatusProcessing, models.RewardStatusCompleted, "payout confirmed")
				prommetrics.RecordRewardReconciled("completed")
				prommetrics.PendingRewards.Dec()
				resolved++
			}

		case status.Status == ledger.TxStatusNotFound:
			if rw.ClaimedAt == nil || time.Since(*rw.ClaimedAt) <= s.grace {
				// Recently broadcast transactions can take a while to appear
				continue
			}
			failed, err := s.rewardRepo.Fail(rw.ID)
			if err != nil {
				s.log.Error().Err(err).Uint("reward_id", rw.ID).Msg("Failed to fail reward")
				continue
			}
			if failed {
				s.appendAudit(rw.ID, models.RewardStatusProcessing, models.RewardStatusFailed, "payout not found past grace window")
				prommetrics.RecordRewardReconciled("failed")
				s.log.Warn().
					Uint("reward_id", rw.ID).
					Str("tx_id", *rw.TxID).
					Msg("Payout transaction never appeared, reward failed")
				resolved++
			}
		}
		// pending: not enough confirmations yet, leave for the next run
	}

	prommetrics.ReconcilerBatchDurationSeconds.Observe(time.Since(start).Seconds())
	if resolved > 0 {
		s.log.Info().Int("resolved", resolved).Int("batch", len(rewards)).Msg("Payout reconciliation finished")
	}
	return resolved, nil
}

// ReconcileCommitments resolves pending verdict commitments. A confirmed
// transaction must carry the exact hash the case stored at creation;
// divergence marks the case with an integrity fault and it never activates.
func (s *Service) ReconcileCommitments(ctx context.Context) (int, error) {
	cases, err := s.caseRepo.ListPendingCommitments(s.batchSize)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for i := range cases {
		c := &cases[i]
		if c.CommitmentTxID == nil {
			continue
		}

		status, err := s.ledger.GetTransactionStatus(ctx, *c.CommitmentTxID)
		if err != nil {
			if c.CommitmentSubmittedAt != nil && time.Since(*c.CommitmentSubmittedAt) > s.grace {
				ok, failErr := s.caseRepo.UpdateCommitmentStatus(c.ID, models.CommitmentStatusPending, models.CommitmentStatusFailed)
				if failErr != nil || !ok {
					continue
				}
				prommetrics.RecordCommitment("failed")
				s.appendAuditFor(models.AuditEntityCase, c.ID, models.CommitmentStatusPending, models.CommitmentStatusFailed, "ledger unreachable past grace window")
				s.log.Warn().Err(err).
					Uint("case_id", c.ID).
					Str("tx_id", *c.CommitmentTxID).
					Msg("Commitment unresolvable past grace window")
				resolved++
				continue
			}
			s.log.Warn().Err(err).Uint("case_id", c.ID).Msg("Ledger lookup failed, will retry")
			continue
		}

		switch {
		case status.Confirmed():
			if status.Payload != c.VerdictHash {
				s.faultCommitment(c, status.Payload)
				resolved++
				continue
			}
			ok, err := s.caseRepo.UpdateCommitmentStatus(c.ID, models.CommitmentStatusPending, models.CommitmentStatusConfirmed)
			if err != nil || !ok {
				continue
			}
			prommetrics.RecordCommitment("confirmed")
			resolved++

			// AI cases open for voting straight away; user cases wait for
			// moderation
			if c.Origin == models.CaseOriginAI && c.Status == models.CaseStatusCommitted {
				if err := s.activator.ActivateCommitted(c.ID); err != nil {
					s.log.Error().Err(err).Uint("case_id", c.ID).Msg("Failed to activate confirmed case")
				}
			}

		case status.Status == ledger.TxStatusNotFound:
			if c.CommitmentSubmittedAt == nil || time.Since(*c.CommitmentSubmittedAt) <= s.grace {
				continue
			}
			ok, err := s.caseRepo.UpdateCommitmentStatus(c.ID, models.CommitmentStatusPending, models.CommitmentStatusFailed)
			if err != nil || !ok {
				continue
			}
			prommetrics.RecordCommitment("failed")
			s.log.Warn().
				Uint("case_id", c.ID).
				Str("tx_id", *c.CommitmentTxID).
				Msg("Commitment transaction never appeared")
			resolved++
		}
	}
	return resolved, nil
}

// faultCommitment quarantines a case whose on-ledger hash does not match the
// stored verdict.
func (s *Service) faultCommitment(c *models.Case, onLedger string) {
	ok, err := s.caseRepo.UpdateCommitmentStatus(c.ID, models.CommitmentStatusPending, models.CommitmentStatusIntegrityFault)
	if err != nil || !ok {
		return
	}
	prommetrics.CommitmentIntegrityFaultsTotal.Inc()
	s.appendAuditFor(models.AuditEntityCase, c.ID, models.CommitmentStatusPending, models.CommitmentStatusIntegrityFault, "on-ledger hash diverged from stored verdict")
	s.log.Error().
		Uint("case_id", c.ID).
		Str("stored_hash", c.VerdictHash).
		Str("ledger_hash", onLedger).
		Msg("Commitment integrity fault")
}

func (s *Service) appendAudit(rewardID uint, from, to, reason string) {
	s.appendAuditFor(models.AuditEntityReward, rewardID, from, to, reason)
}

func (s *Service) appendAuditFor(entityType string, entityID uint, from, to, reason string) {
	s.appendAuditAs("reconciler", entityType, entityID, from, to, reason)
}

func (s *Service) appendAuditAs(actor, entityType string, entityID uint, from, to, reason string) {
	entry := &models.AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		FromState:  from,
		ToState:    to,
		Actor:      actor,
		Reason:     reason,
	}
	if err := s.auditRepo.Append(entry); err != nil {
		s.log.Error().Err(err).Uint("entity_id", entityID).Msg("Failed to append audit entry")
	}
}
