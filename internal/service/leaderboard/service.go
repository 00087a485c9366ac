// Package leaderboard computes and serves the daily, weekly and all-time
// point rankings.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/cache"
	prommetrics "github.com/huutrungle2001/moral-duel-api/internal/metrics"
	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

const (
	// Boards show at most this many users.
	boardSize = 100

	// A snapshot older than this is recomputed on read.
	maxStaleness = 15 * time.Minute
)

// Entry is one row of a served leaderboard.
type Entry struct {
	Rank     int    `json:"rank"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Points   int64  `json:"points"`
}

// RewardRepository interface for point sums from payouts.
type RewardRepository interface {
	SumCompletedByUser(since, until time.Time) (map[uint]int64, error)
}

// BadgeRepository interface for point sums from badge bonuses.
type BadgeRepository interface {
	SumBonusByUser(since, until time.Time) (map[uint]int64, error)
}

// UserRepository interface for user lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	ListByPoints(limit int) ([]models.User, error)
}

// SnapshotRepository interface for cached ranking rows.
type SnapshotRepository interface {
	ReplaceSnapshot(period string, entries []models.LeaderboardSnapshot) error
	GetSnapshot(period string) ([]models.LeaderboardSnapshot, error)
	GetUserEntry(period string, userID uint) (*models.LeaderboardSnapshot, error)
}

// Service computes and serves leaderboards.
type Service struct {
	rewardRepo   RewardRepository
	badgeRepo    BadgeRepository
	userRepo     UserRepository
	snapshotRepo SnapshotRepository
	cache        cache.Cache
	log          *logger.Logger
}

// NewService creates a new leaderboard service.
func NewService(
	rewardRepo *repository.RewardRepository,
	badgeRepo *repository.BadgeRepository,
	userRepo *repository.UserRepository,
	snapshotRepo *repository.LeaderboardRepository,
	c cache.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		rewardRepo:   rewardRepo,
		badgeRepo:    badgeRepo,
		userRepo:     userRepo,
		snapshotRepo: snapshotRepo,
		cache:        c,
		log:          log,
	}
}

// NewServiceWithInterfaces creates a new leaderboard service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	rewardRepo RewardRepository,
	badgeRepo BadgeRepository,
	userRepo UserRepository,
	snapshotRepo SnapshotRepository,
	c cache.Cache,
	log *logger.Logger,
) *Service {
	return &Service{
		rewardRepo:   rewardRepo,
		badgeRepo:    badgeRepo,
		userRepo:     userRepo,
		snapshotRepo: snapshotRepo,
		cache:        c,
		log:          log,
	}
}

// ComputeSnapshots recomputes all period boards. Run on a schedule.
func (s *Service) ComputeSnapshots(ctx context.Context) error {
	for _, period := range []string{models.PeriodDaily, models.PeriodWeekly, models.PeriodAllTime} {
		if _, err := s.compute(ctx, period); err != nil {
			return fmt.Errorf("failed to compute %s leaderboard: %w", period, err)
		}
	}
	return nil
}

// GetLeaderboard serves a period's board: Redis first, then the stored
// snapshot, recomputing live when the snapshot has gone stale.
func (s *Service) GetLeaderboard(ctx context.Context, period string) ([]Entry, error) {
	if period != models.PeriodDaily && period != models.PeriodWeekly && period != models.PeriodAllTime {
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}

	if cached, err := s.cache.Get(ctx, cacheKey(period)); err == nil && cached != "" {
		var entries []Entry
		if err := json.Unmarshal([]byte(cached), &entries); err == nil {
			return entries, nil
		}
	}

	rows, err := s.snapshotRepo.GetSnapshot(period)
	if err == nil && len(rows) > 0 && time.Since(rows[0].ComputedAt) <= maxStaleness {
		entries := s.snapshotEntries(rows)
		s.cacheEntries(ctx, period, entries)
		return entries, nil
	}

	// Stale or missing snapshot: serve a live computation
	entries, err := s.compute(ctx, period)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// GetUserRank returns the user's row on a period board, or nil when unranked.
// A stale snapshot is recomputed first, like GetLeaderboard does, so the rank
// served never lags the board.
func (s *Service) GetUserRank(ctx context.Context, period string, userID uint) (*Entry, error) {
	if period != models.PeriodDaily && period != models.PeriodWeekly && period != models.PeriodAllTime {
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}

	row, err := s.snapshotRepo.GetUserEntry(period, userID)
	switch {
	case err == nil && row != nil && time.Since(row.ComputedAt) <= maxStaleness:
		user, err := s.userRepo.GetByID(userID)
		if err != nil {
			return nil, err
		}
		return &Entry{Rank: row.Rank, UserID: userID, Username: user.Username, Points: row.Points}, nil

	case err != nil && !repository.IsNotFound(err):
		return nil, err

	case err != nil:
		// No row for this user. When the rest of the snapshot is fresh the
		// user is genuinely unranked; otherwise fall through to a recompute.
		rows, snapErr := s.snapshotRepo.GetSnapshot(period)
		if snapErr == nil && len(rows) > 0 && time.Since(rows[0].ComputedAt) <= maxStaleness {
			return nil, nil
		}
	}

	entries, err := s.compute(ctx, period)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].UserID == userID {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// compute builds a period's board, stores the snapshot and warms the cache.
func (s *Service) compute(ctx context.Context, period string) ([]Entry, error) {
	totals, err := s.totalsFor(period)
	if err != nil {
		return nil, err
	}

	entries := s.rank(totals)
	now := time.Now()

	rows := make([]models.LeaderboardSnapshot, len(entries))
	for i, e := range entries {
		rows[i] = models.LeaderboardSnapshot{
			Period:     period,
			Rank:       e.Rank,
			UserID:     e.UserID,
			Points:     e.Points,
			ComputedAt: now,
		}
	}
	if err := s.snapshotRepo.ReplaceSnapshot(period, rows); err != nil {
		return nil, err
	}
	s.cacheEntries(ctx, period, entries)
	prommetrics.LeaderboardComputedAt.WithLabelValues(period).Set(float64(now.Unix()))

	s.log.Debug().Str("period", period).Int("entries", len(entries)).Msg("Leaderboard computed")
	return entries, nil
}

// totalsFor sums each user's qualifying credits for a period. Daily and
// weekly windows count reward payouts and badge bonuses landed inside the
// window; all-time is the users' running totals.
func (s *Service) totalsFor(period string) (map[uint]int64, error) {
	if period == models.PeriodAllTime {
		users, err := s.userRepo.ListByPoints(boardSize)
		if err != nil {
			return nil, err
		}
		totals := make(map[uint]int64, len(users))
		for _, u := range users {
			totals[u.ID] = u.TotalPoints
		}
		return totals, nil
	}

	since := time.Now().Add(-24 * time.Hour)
	if period == models.PeriodWeekly {
		since = time.Now().Add(-7 * 24 * time.Hour)
	}

	totals, err := s.rewardRepo.SumCompletedByUser(since, time.Time{})
	if err != nil {
		return nil, err
	}
	bonuses, err := s.badgeRepo.SumBonusByUser(since, time.Time{})
	if err != nil {
		return nil, err
	}
	for userID, bonus := range bonuses {
		totals[userID] += bonus
	}
	return totals, nil
}

// rank orders users by points and assigns competition ranks: tied points
// share a rank and the next distinct score ranks at its list position.
func (s *Service) rank(totals map[uint]int64) []Entry {
	entries := make([]Entry, 0, len(totals))
	for userID, points := range totals {
		if points <= 0 {
			continue
		}
		entries = append(entries, Entry{UserID: userID, Points: points})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > boardSize {
		entries = entries[:boardSize]
	}

	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
		if user, err := s.userRepo.GetByID(entries[i].UserID); err == nil {
			entries[i].Username = user.Username
		}
	}
	return entries
}

func (s *Service) snapshotEntries(rows []models.LeaderboardSnapshot) []Entry {
	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = Entry{Rank: row.Rank, UserID: row.UserID, Points: row.Points, Username: row.User.Username}
	}
	return entries
}

func (s *Service) cacheEntries(ctx context.Context, period string, entries []Entry) {
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(period), string(payload), maxStaleness); err != nil {
		s.log.Warn().Err(err).Str("period", period).Msg("Failed to cache leaderboard")
	}
}

func cacheKey(period string) string {
	return "leaderboard:" + period
}
