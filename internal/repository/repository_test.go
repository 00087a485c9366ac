package repository

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Enable foreign key constraints (SQLite default is off)
	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&models.User{},
		&models.Case{},
		&models.Vote{},
		&models.Argument{},
		&models.ArgumentLike{},
		&models.Reward{},
		&models.LeaderboardSnapshot{},
		&models.Badge{},
		&models.BadgeAward{},
		&models.AuditEntry{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

// createTestUser creates a test user in the database.
func createTestUser(t *testing.T, db *DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// createTestCase creates an active test case in the database.
func createTestCase(t *testing.T, db *DB, status string) *models.Case {
	t.Helper()

	closesAt := time.Now().Add(24 * time.Hour)
	c := &models.Case{
		Title:      fmt.Sprintf("Dilemma %d", time.Now().UnixNano()),
		Context:    "A runaway trolley approaches a fork in the track.",
		Status:     status,
		Origin:     models.CaseOriginAI,
		RewardPool: 1000,
		ClosesAt:   &closesAt,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to create test case: %v", err)
	}
	return c
}

// createTestVote records a vote directly, bypassing counter updates.
func createTestVote(t *testing.T, db *DB, caseID, userID uint, side string) *models.Vote {
	t.Helper()

	vote := &models.Vote{CaseID: caseID, UserID: userID, Side: side}
	if err := db.Create(vote).Error; err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
	return vote
}
