// Package badges provides achievement evaluation and awarding.
package badges

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	prommetrics "github.com/huutrungle2001/moral-duel-api/internal/metrics"
	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// BadgeRepository interface for badge operations.
type BadgeRepository interface {
	SeedCatalog(badges []models.Badge) error
	ListCatalog() ([]models.Badge, error)
	HasAward(userID, badgeID uint) (bool, error)
	Award(userID uint, badge *models.Badge, earnedAt time.Time) error
	ListAwardsByUser(userID uint) ([]models.BadgeAward, error)
}

// RewardRepository interface for reward-derived metrics.
type RewardRepository interface {
	CountWinsByUser(userID uint) (int64, error)
	CountParticipationsByUser(userID uint) (int64, error)
}

// ArgumentRepository interface for argument-derived metrics.
type ArgumentRepository interface {
	CountTop3ByUser(userID uint) (int64, error)
}

// VoteRepository interface for vote-derived metrics.
type VoteRepository interface {
	CountByUser(userID uint) (int64, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	ListIDs() ([]uint, error)
}

// Service evaluates badge criteria and awards badges.
type Service struct {
	badgeRepo  BadgeRepository
	rewardRepo RewardRepository
	argRepo    ArgumentRepository
	voteRepo   VoteRepository
	userRepo   UserRepository
	log        *logger.Logger
}

// NewService creates a new badge service.
func NewService(
	badgeRepo *repository.BadgeRepository,
	rewardRepo *repository.RewardRepository,
	argRepo *repository.ArgumentRepository,
	voteRepo *repository.VoteRepository,
	userRepo *repository.UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo:  badgeRepo,
		rewardRepo: rewardRepo,
		argRepo:    argRepo,
		voteRepo:   voteRepo,
		userRepo:   userRepo,
		log:        log,
	}
}

// NewServiceWithInterfaces creates a new badge service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	badgeRepo BadgeRepository,
	rewardRepo RewardRepository,
	argRepo ArgumentRepository,
	voteRepo VoteRepository,
	userRepo UserRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		badgeRepo:  badgeRepo,
		rewardRepo: rewardRepo,
		argRepo:    argRepo,
		voteRepo:   voteRepo,
		userRepo:   userRepo,
		log:        log,
	}
}

// SeedCatalog installs the default badge catalog. Safe to run on every boot.
func (s *Service) SeedCatalog() error {
	return s.badgeRepo.SeedCatalog(DefaultCatalog())
}

// EvaluateAllBadges evaluates every badge for every user. Typically run as a
// scheduled job. Returns the number of badges awarded.
func (s *Service) EvaluateAllBadges(ctx context.Context) (int, error) {
	s.log.Info().Msg("Starting badge evaluation for all users")
	start := time.Now()

	badges, err := s.badgeRepo.ListCatalog()
	if err != nil {
		return 0, fmt.Errorf("failed to list badges: %w", err)
	}
	userIDs, err := s.userRepo.ListIDs()
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	awarded := 0
	for _, userID := range userIDs {
		n, err := s.evaluateUser(ctx, userID, badges)
		if err != nil {
			// One broken user must not sink the sweep
			s.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to evaluate user badges")
			continue
		}
		awarded += n
	}

	s.log.Info().
		Int("awarded", awarded).
		Int("users", len(userIDs)).
		Dur("duration", time.Since(start)).
		Msg("Badge evaluation finished")
	return awarded, nil
}

// EvaluateUser evaluates all badges for one user, e.g. right after a wallet
// connect or a case settlement. Returns the number of badges awarded.
func (s *Service) EvaluateUser(ctx context.Context, userID uint) (int, error) {
	badges, err := s.badgeRepo.ListCatalog()
	if err != nil {
		return 0, fmt.Errorf("failed to list badges: %w", err)
	}
	return s.evaluateUser(ctx, userID, badges)
}

func (s *Service) evaluateUser(ctx context.Context, userID uint, badges []models.Badge) (int, error) {
	awarded := 0
	for i := range badges {
		badge := &badges[i]

		has, err := s.badgeRepo.HasAward(userID, badge.ID)
		if err != nil {
			return awarded, err
		}
		if has {
			continue
		}

		earned, err := s.meetsCriteria(userID, badge)
		if err != nil {
			s.log.Error().Err(err).
				Uint("user_id", userID).
				Str("badge", badge.Slug).
				Msg("Failed to evaluate badge criteria")
			continue
		}
		if !earned {
			continue
		}

		// The unique award index absorbs a concurrent duplicate
		if err := s.badgeRepo.Award(userID, badge, time.Now()); err != nil {
			s.log.Warn().Err(err).
				Uint("user_id", userID).
				Str("badge", badge.Slug).
				Msg("Failed to award badge")
			continue
		}
		awarded++
		prommetrics.RecordBadgeAwarded(badge.Slug)
		s.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.Slug).
			Int64("bonus", badge.BonusPoints).
			Msg("Badge awarded")
	}
	return awarded, nil
}

// meetsCriteria checks one badge's predicate against the user's stats.
func (s *Service) meetsCriteria(userID uint, badge *models.Badge) (bool, error) {
	var criteria models.BadgeCriteria
	if err := json.Unmarshal(badge.Criteria, &criteria); err != nil {
		return false, fmt.Errorf("badge %s has invalid criteria: %w", badge.Slug, err)
	}

	if criteria.Operator == "flag" {
		return s.flagValue(userID, criteria.Metric)
	}

	value, err := s.metricValue(userID, criteria.Metric)
	if err != nil {
		return false, err
	}

	switch criteria.Operator {
	case ">=":
		return float64(value) >= criteria.Value, nil
	case ">":
		return float64(value) > criteria.Value, nil
	case "==":
		return float64(value) == criteria.Value, nil
	default:
		return false, fmt.Errorf("badge %s has unknown operator %q", badge.Slug, criteria.Operator)
	}
}

func (s *Service) metricValue(userID uint, metric string) (int64, error) {
	switch metric {
	case models.BadgeMetricWins:
		return s.rewardRepo.CountWinsByUser(userID)
	case models.BadgeMetricTopArguments:
		return s.argRepo.CountTop3ByUser(userID)
	case models.BadgeMetricParticipations:
		return s.rewardRepo.CountParticipationsByUser(userID)
	case models.BadgeMetricVotes:
		return s.voteRepo.CountByUser(userID)
	default:
		return 0, fmt.Errorf("unknown badge metric %q", metric)
	}
}

func (s *Service) flagValue(userID uint, metric string) (bool, error) {
	switch metric {
	case models.BadgeMetricWalletConnected:
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return false, err
		}
		return user.HasWallet(), nil
	default:
		return false, fmt.Errorf("unknown badge flag %q", metric)
	}
}

// GetUserBadges retrieves a user's earned badges.
func (s *Service) GetUserBadges(ctx context.Context, userID uint) ([]models.BadgeAward, error) {
	return s.badgeRepo.ListAwardsByUser(userID)
}

// ListCatalog retrieves all badge definitions.
func (s *Service) ListCatalog(ctx context.Context) ([]models.Badge, error) {
	return s.badgeRepo.ListCatalog()
}
