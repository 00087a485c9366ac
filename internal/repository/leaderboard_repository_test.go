package repository

import (
	"testing"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

func TestLeaderboardRepository_ReplaceSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaderboardRepository(db)

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	now := time.Now()
	first := []models.LeaderboardSnapshot{
		{Period: models.PeriodDaily, Rank: 1, UserID: alice.ID, Points: 100, ComputedAt: now},
		{Period: models.PeriodDaily, Rank: 2, UserID: bob.ID, Points: 50, ComputedAt: now},
	}
	if err := repo.ReplaceSnapshot(models.PeriodDaily, first); err != nil {
		t.Fatalf("ReplaceSnapshot() failed: %v", err)
	}

	// A later compute replaces the board wholesale
	second := []models.LeaderboardSnapshot{
		{Period: models.PeriodDaily, Rank: 1, UserID: bob.ID, Points: 120, ComputedAt: now.Add(time.Minute)},
	}
	if err := repo.ReplaceSnapshot(models.PeriodDaily, second); err != nil {
		t.Fatalf("ReplaceSnapshot() re-run failed: %v", err)
	}

	entries, err := repo.GetSnapshot(models.PeriodDaily)
	if err != nil {
		t.Fatalf("GetSnapshot() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].UserID != bob.ID || entries[0].Points != 120 {
		t.Errorf("Expected bob with 120 points, got user %d with %d", entries[0].UserID, entries[0].Points)
	}
}

func TestLeaderboardRepository_PeriodsIsolated(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaderboardRepository(db)

	alice := createTestUser(t, db, "alice")
	now := time.Now()

	daily := []models.LeaderboardSnapshot{
		{Period: models.PeriodDaily, Rank: 1, UserID: alice.ID, Points: 10, ComputedAt: now},
	}
	weekly := []models.LeaderboardSnapshot{
		{Period: models.PeriodWeekly, Rank: 1, UserID: alice.ID, Points: 70, ComputedAt: now},
	}
	if err := repo.ReplaceSnapshot(models.PeriodDaily, daily); err != nil {
		t.Fatalf("ReplaceSnapshot(daily) failed: %v", err)
	}
	if err := repo.ReplaceSnapshot(models.PeriodWeekly, weekly); err != nil {
		t.Fatalf("ReplaceSnapshot(weekly) failed: %v", err)
	}

	// Replacing daily leaves weekly untouched
	if err := repo.ReplaceSnapshot(models.PeriodDaily, nil); err != nil {
		t.Fatalf("ReplaceSnapshot(daily, nil) failed: %v", err)
	}

	entries, err := repo.GetSnapshot(models.PeriodWeekly)
	if err != nil {
		t.Fatalf("GetSnapshot() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected weekly snapshot to survive, got %d entries", len(entries))
	}
}

func TestLeaderboardRepository_GetUserEntry(t *testing.T) {
	db := setupTestDB(t)
	repo := NewLeaderboardRepository(db)

	alice := createTestUser(t, db, "alice")
	now := time.Now()

	if err := repo.ReplaceSnapshot(models.PeriodAllTime, []models.LeaderboardSnapshot{
		{Period: models.PeriodAllTime, Rank: 3, UserID: alice.ID, Points: 300, ComputedAt: now},
	}); err != nil {
		t.Fatalf("ReplaceSnapshot() failed: %v", err)
	}

	entry, err := repo.GetUserEntry(models.PeriodAllTime, alice.ID)
	if err != nil {
		t.Fatalf("GetUserEntry() failed: %v", err)
	}
	if entry.Rank != 3 {
		t.Errorf("Expected rank 3, got %d", entry.Rank)
	}

	// Unranked user is a not-found
	_, err = repo.GetUserEntry(models.PeriodAllTime, alice.ID+1)
	if err == nil {
		t.Error("Expected error for unranked user")
	}
}
