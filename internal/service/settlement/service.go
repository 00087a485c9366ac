// Package settlement divides a closed case's reward pool among winners,
// top arguments, participants and the creator.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/config"
	prommetrics "github.com/huutrungle2001/moral-duel-api/internal/metrics"
	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// Weights of the three podium places, in percent of the top-arguments share.
var podiumWeights = [3]int64{50, 30, 20}

// VoteRepository interface for vote operations.
type VoteRepository interface {
	ListByCase(caseID uint) ([]models.Vote, error)
	ListBySide(caseID uint, side string) ([]models.Vote, error)
}

// ArgumentRepository interface for argument operations.
type ArgumentRepository interface {
	TopByCase(caseID uint, n int) ([]models.Argument, error)
	MarkTop3(ids []uint) error
}

// RewardRepository interface for reward operations.
type RewardRepository interface {
	CreateBatch(rewards []models.Reward) error
	CountByCase(caseID uint) (int64, error)
}

// AuditRepository interface for transition records.
type AuditRepository interface {
	Append(entry *models.AuditEntry) error
}

// Service computes and persists reward allocations.
type Service struct {
	voteRepo   VoteRepository
	argRepo    ArgumentRepository
	rewardRepo RewardRepository
	auditRepo  AuditRepository
	cfg        *config.RewardsConfig
	log        *logger.Logger
}

// NewService creates a new settlement service.
func NewService(
	voteRepo *repository.VoteRepository,
	argRepo *repository.ArgumentRepository,
	rewardRepo *repository.RewardRepository,
	auditRepo *repository.AuditRepository,
	cfg *config.RewardsConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		voteRepo:   voteRepo,
		argRepo:    argRepo,
		rewardRepo: rewardRepo,
		auditRepo:  auditRepo,
		cfg:        cfg,
		log:        log,
	}
}

// NewServiceWithInterfaces creates a new settlement service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	voteRepo VoteRepository,
	argRepo ArgumentRepository,
	rewardRepo RewardRepository,
	auditRepo AuditRepository,
	cfg *config.RewardsConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		voteRepo:   voteRepo,
		argRepo:    argRepo,
		rewardRepo: rewardRepo,
		auditRepo:  auditRepo,
		cfg:        cfg,
		log:        log,
	}
}

// SettleCase divides the case's pool into pending rewards. All arithmetic is
// integer; every share rounds down and remainders stay unclaimed in the pool.
// Settling an already settled case is a no-op.
func (s *Service) SettleCase(ctx context.Context, c *models.Case) error {
	start := time.Now()

	existing, err := s.rewardRepo.CountByCase(c.ID)
	if err != nil {
		return err
	}
	if existing > 0 {
		s.log.Warn().Uint("case_id", c.ID).Msg("Case already settled, skipping")
		return nil
	}

	rewards, err := s.computeRewards(c)
	if err != nil {
		return err
	}
	if len(rewards) == 0 {
		s.log.Info().Uint("case_id", c.ID).Msg("Nothing to settle")
		return nil
	}

	if err := s.rewardRepo.CreateBatch(rewards); err != nil {
		return err
	}
	for _, rw := range rewards {
		prommetrics.RecordRewardSettled(rw.Category)
		prommetrics.PendingRewards.Inc()
	}

	var total int64
	for _, rw := range rewards {
		total += rw.Amount
	}
	entry := &models.AuditEntry{
		EntityType: models.AuditEntityReward,
		EntityID:   c.ID,
		ToState:    models.RewardStatusPending,
		Actor:      "settlement",
		Reason:     fmt.Sprintf("settled %d rewards totaling %d of pool %d", len(rewards), total, c.RewardPool),
	}
	if err := s.auditRepo.Append(entry); err != nil {
		s.log.Error().Err(err).Uint("case_id", c.ID).Msg("Failed to append settlement audit entry")
	}

	prommetrics.SettlementDurationSeconds.Observe(time.Since(start).Seconds())
	s.log.Info().
		Uint("case_id", c.ID).
		Int("rewards", len(rewards)).
		Int64("allocated", total).
		Int64("pool", c.RewardPool).
		Msg("Settled case")
	return nil
}

// computeRewards builds the allocation for one case. The same inputs always
// produce the same rows in the same order.
func (s *Service) computeRewards(c *models.Case) ([]models.Reward, error) {
	votes, err := s.voteRepo.ListByCase(c.ID)
	if err != nil {
		return nil, err
	}
	if len(votes) == 0 {
		return nil, nil
	}

	winners, err := s.voteRepo.ListBySide(c.ID, c.Verdict)
	if err != nil {
		return nil, err
	}
	top, err := s.argRepo.TopByCase(c.ID, len(podiumWeights))
	if err != nil {
		return nil, err
	}

	pool := c.RewardPool
	var rewards []models.Reward
	add := func(userID uint, category string, amount int64) {
		if amount <= 0 {
			return
		}
		rewards = append(rewards, models.Reward{
			UserID:   userID,
			CaseID:   c.ID,
			Category: category,
			Amount:   amount,
			Status:   models.RewardStatusPending,
		})
	}

	// Winning voters split their share equally
	if len(winners) > 0 {
		share := pool * int64(s.cfg.WinningVotersPercent) / 100 / int64(len(winners))
		for _, v := range winners {
			add(v.UserID, models.RewardCategoryWinningVoter, share)
		}
	}

	// Podium arguments take weighted cuts of the top-arguments share
	argShare := pool * int64(s.cfg.TopArgumentsPercent) / 100
	topIDs := make([]uint, 0, len(top))
	for i, arg := range top {
		add(arg.UserID, models.RewardCategoryTopArgument, argShare*podiumWeights[i]/100)
		topIDs = append(topIDs, arg.ID)
	}
	if err := s.argRepo.MarkTop3(topIDs); err != nil {
		return nil, err
	}

	// Everyone who voted gets the participation cut
	participantShare := pool * int64(s.cfg.ParticipantsPercent) / 100 / int64(len(votes))
	for _, v := range votes {
		add(v.UserID, models.RewardCategoryParticipant, participantShare)
	}

	// The creator's cut exists only for user cases that drew a real crowd
	if c.Origin == models.CaseOriginUser && c.CreatorID != nil &&
		c.ParticipantCount >= s.cfg.MinParticipantsForCreator {
		add(*c.CreatorID, models.RewardCategoryCreator, pool*int64(s.cfg.CreatorPercent)/100)
	}

	return rewards, nil
}
