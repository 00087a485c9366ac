package leaderboard

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
	"github.com/huutrungle2001/moral-duel-api/test/mocks"
)

func userRepoWithNames() *mocks.MockUserRepository {
	return &mocks.MockUserRepository{
		GetByIDFunc: func(id uint) (*models.User, error) {
			return &models.User{ID: id, Username: fmt.Sprintf("user%d", id)}, nil
		},
	}
}

func TestService_Rank_CompetitionRanking(t *testing.T) {
	svc := NewServiceWithInterfaces(
		&mocks.MockRewardRepository{}, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		&mocks.MockLeaderboardRepository{}, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	// Two tied at 100 share first place; 90 ranks third, 80 fourth
	totals := map[uint]int64{1: 100, 2: 100, 3: 90, 4: 80}
	entries := svc.rank(totals)

	if len(entries) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(entries))
	}
	wantRanks := []int{1, 1, 3, 4}
	wantPoints := []int64{100, 100, 90, 80}
	for i, e := range entries {
		if e.Rank != wantRanks[i] {
			t.Errorf("Position %d: expected rank %d, got %d", i, wantRanks[i], e.Rank)
		}
		if e.Points != wantPoints[i] {
			t.Errorf("Position %d: expected %d points, got %d", i, wantPoints[i], e.Points)
		}
	}
}

func TestService_Rank_DropsZeroAndCaps(t *testing.T) {
	svc := NewServiceWithInterfaces(
		&mocks.MockRewardRepository{}, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		&mocks.MockLeaderboardRepository{}, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	totals := make(map[uint]int64)
	for i := 1; i <= 150; i++ {
		totals[uint(i)] = int64(i)
	}
	totals[200] = 0

	entries := svc.rank(totals)
	if len(entries) != 100 {
		t.Fatalf("Expected board capped at 100, got %d", len(entries))
	}
	if entries[0].Points != 150 || entries[0].Rank != 1 {
		t.Errorf("Expected top entry 150 points rank 1, got %d points rank %d", entries[0].Points, entries[0].Rank)
	}
	for _, e := range entries {
		if e.Points == 0 {
			t.Fatal("Zero-point users must not be ranked")
		}
	}
}

func TestService_ComputeSnapshots(t *testing.T) {
	rewardRepo := &mocks.MockRewardRepository{
		SumCompletedByUserFunc: func(since, until time.Time) (map[uint]int64, error) {
			return map[uint]int64{1: 50, 2: 30}, nil
		},
	}
	badgeRepo := &mocks.MockBadgeRepository{
		SumBonusByUserFunc: func(since, until time.Time) (map[uint]int64, error) {
			return map[uint]int64{2: 50}, nil
		},
	}
	userRepo := userRepoWithNames()
	userRepo.ListByPointsFunc = func(limit int) ([]models.User, error) {
		return []models.User{{ID: 1, Username: "user1", TotalPoints: 500}}, nil
	}

	replaced := map[string][]models.LeaderboardSnapshot{}
	snapshotRepo := &mocks.MockLeaderboardRepository{
		ReplaceSnapshotFunc: func(period string, entries []models.LeaderboardSnapshot) error {
			replaced[period] = entries
			return nil
		},
	}
	svc := NewServiceWithInterfaces(
		rewardRepo, badgeRepo, userRepo, snapshotRepo, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	if err := svc.ComputeSnapshots(context.Background()); err != nil {
		t.Fatalf("ComputeSnapshots() failed: %v", err)
	}
	if len(replaced) != 3 {
		t.Fatalf("Expected 3 period snapshots, got %d", len(replaced))
	}

	// Badge bonuses stack on reward points inside the window: user 2 overtakes
	daily := replaced[models.PeriodDaily]
	if len(daily) != 2 {
		t.Fatalf("Expected 2 daily entries, got %d", len(daily))
	}
	if daily[0].UserID != 2 || daily[0].Points != 80 {
		t.Errorf("Expected user 2 leading with 80, got user %d with %d", daily[0].UserID, daily[0].Points)
	}

	// All-time comes from the users' running totals
	allTime := replaced[models.PeriodAllTime]
	if len(allTime) != 1 || allTime[0].Points != 500 {
		t.Errorf("Expected all-time board from user totals, got %v", allTime)
	}
}

func TestService_GetLeaderboard_FreshSnapshot(t *testing.T) {
	snapshotRepo := &mocks.MockLeaderboardRepository{
		GetSnapshotFunc: func(period string) ([]models.LeaderboardSnapshot, error) {
			return []models.LeaderboardSnapshot{
				{Period: period, Rank: 1, UserID: 1, Points: 100, ComputedAt: time.Now(), User: models.User{ID: 1, Username: "user1"}},
			}, nil
		},
		ReplaceSnapshotFunc: func(period string, entries []models.LeaderboardSnapshot) error {
			t.Error("Fresh snapshot must not be recomputed")
			return nil
		},
	}
	svc := NewServiceWithInterfaces(
		&mocks.MockRewardRepository{}, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		snapshotRepo, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	entries, err := svc.GetLeaderboard(context.Background(), models.PeriodDaily)
	if err != nil {
		t.Fatalf("GetLeaderboard() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "user1" {
		t.Errorf("Expected snapshot entry for user1, got %v", entries)
	}
}

func TestService_GetLeaderboard_StaleSnapshotRecomputes(t *testing.T) {
	rewardRepo := &mocks.MockRewardRepository{
		SumCompletedByUserFunc: func(since, until time.Time) (map[uint]int64, error) {
			return map[uint]int64{5: 42}, nil
		},
	}
	recomputed := false
	snapshotRepo := &mocks.MockLeaderboardRepository{
		GetSnapshotFunc: func(period string) ([]models.LeaderboardSnapshot, error) {
			return []models.LeaderboardSnapshot{
				{Period: period, Rank: 1, UserID: 1, Points: 10, ComputedAt: time.Now().Add(-time.Hour)},
			}, nil
		},
		ReplaceSnapshotFunc: func(period string, entries []models.LeaderboardSnapshot) error {
			recomputed = true
			return nil
		},
	}
	svc := NewServiceWithInterfaces(
		rewardRepo, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		snapshotRepo, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	entries, err := svc.GetLeaderboard(context.Background(), models.PeriodDaily)
	if err != nil {
		t.Fatalf("GetLeaderboard() failed: %v", err)
	}
	if !recomputed {
		t.Error("Expected stale snapshot to trigger recomputation")
	}
	if len(entries) != 1 || entries[0].UserID != 5 || entries[0].Points != 42 {
		t.Errorf("Expected live entries, got %v", entries)
	}
}

func TestService_GetLeaderboard_CacheHit(t *testing.T) {
	c := mocks.NewMockCache()
	_ = c.Set(context.Background(), "leaderboard:daily", `[{"rank":1,"user_id":9,"username":"cached","points":77}]`, 0)

	snapshotRepo := &mocks.MockLeaderboardRepository{
		GetSnapshotFunc: func(period string) ([]models.LeaderboardSnapshot, error) {
			t.Error("Cache hit must not reach the database")
			return nil, nil
		},
	}
	svc := NewServiceWithInterfaces(
		&mocks.MockRewardRepository{}, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		snapshotRepo, c, logger.New("error", "console", "stdout"),
	)

	entries, err := svc.GetLeaderboard(context.Background(), models.PeriodDaily)
	if err != nil {
		t.Fatalf("GetLeaderboard() failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "cached" {
		t.Errorf("Expected cached entries, got %v", entries)
	}
}

func TestService_GetUserRank_FreshRow(t *testing.T) {
	snapshotRepo := &mocks.MockLeaderboardRepository{
		GetUserEntryFunc: func(period string, userID uint) (*models.LeaderboardSnapshot, error) {
			return &models.LeaderboardSnapshot{Period: period, Rank: 3, UserID: userID, Points: 70, ComputedAt: time.Now()}, nil
		},
		ReplaceSnapshotFunc: func(period string, entries []models.LeaderboardSnapshot) error {
			t.Error("Fresh row must not be recomputed")
			return nil
		},
	}
	svc := NewServiceWithInterfaces(
		&mocks.MockRewardRepository{}, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		snapshotRepo, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	entry, err := svc.GetUserRank(context.Background(), models.PeriodDaily, 7)
	if err != nil {
		t.Fatalf("GetUserRank() failed: %v", err)
	}
	if entry == nil || entry.Rank != 3 || entry.Points != 70 {
		t.Errorf("Expected rank 3 with 70 points, got %v", entry)
	}
}

func TestService_GetUserRank_StaleRowRecomputes(t *testing.T) {
	rewardRepo := &mocks.MockRewardRepository{
		SumCompletedByUserFunc: func(since, until time.Time) (map[uint]int64, error) {
			return map[uint]int64{7: 42}, nil
		},
	}
	recomputed := false
	snapshotRepo := &mocks.MockLeaderboardRepository{
		GetUserEntryFunc: func(period string, userID uint) (*models.LeaderboardSnapshot, error) {
			return &models.LeaderboardSnapshot{Period: period, Rank: 9, UserID: userID, Points: 1, ComputedAt: time.Now().Add(-time.Hour)}, nil
		},
		ReplaceSnapshotFunc: func(period string, entries []models.LeaderboardSnapshot) error {
			recomputed = true
			return nil
		},
	}
	svc := NewServiceWithInterfaces(
		rewardRepo, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		snapshotRepo, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	entry, err := svc.GetUserRank(context.Background(), models.PeriodDaily, 7)
	if err != nil {
		t.Fatalf("GetUserRank() failed: %v", err)
	}
	if !recomputed {
		t.Error("Expected stale row to trigger recomputation")
	}
	if entry == nil || entry.Rank != 1 || entry.Points != 42 {
		t.Errorf("Expected live rank 1 with 42 points, got %v", entry)
	}
}

func TestService_GetUserRank_UnrankedOnFreshBoard(t *testing.T) {
	snapshotRepo := &mocks.MockLeaderboardRepository{
		GetUserEntryFunc: func(period string, userID uint) (*models.LeaderboardSnapshot, error) {
			return nil, repository.ErrNotFound
		},
		GetSnapshotFunc: func(period string) ([]models.LeaderboardSnapshot, error) {
			return []models.LeaderboardSnapshot{
				{Period: period, Rank: 1, UserID: 1, Points: 100, ComputedAt: time.Now()},
			}, nil
		},
		ReplaceSnapshotFunc: func(period string, entries []models.LeaderboardSnapshot) error {
			t.Error("A fresh board must not be recomputed for an unranked user")
			return nil
		},
	}
	svc := NewServiceWithInterfaces(
		&mocks.MockRewardRepository{}, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		snapshotRepo, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	entry, err := svc.GetUserRank(context.Background(), models.PeriodDaily, 7)
	if err != nil {
		t.Fatalf("GetUserRank() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Expected unranked user, got %v", entry)
	}
}

func TestService_GetLeaderboard_UnknownPeriod(t *testing.T) {
	svc := NewServiceWithInterfaces(
		&mocks.MockRewardRepository{}, &mocks.MockBadgeRepository{}, userRepoWithNames(),
		&mocks.MockLeaderboardRepository{}, mocks.NewMockCache(),
		logger.New("error", "console", "stdout"),
	)

	if _, err := svc.GetLeaderboard(context.Background(), "monthly"); err == nil {
		t.Error("Expected error for unknown period")
	}
}
