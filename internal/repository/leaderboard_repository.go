package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// LeaderboardRepository handles ranking snapshot database operations.
type LeaderboardRepository struct {
	db *DB
}

// NewLeaderboardRepository creates a new leaderboard repository.
func NewLeaderboardRepository(db *DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// ReplaceSnapshot swaps a period's ranking wholesale inside one transaction,
// so readers never observe a half-written board.
func (r *LeaderboardRepository) ReplaceSnapshot(period string, entries []models.LeaderboardSnapshot) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("period = ?", period).
			Delete(&models.LeaderboardSnapshot{}).Error; err != nil {
			return err
		}
		for i := range entries {
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace %s leaderboard snapshot: %w", period, err)
	}
	return nil
}

// GetSnapshot retrieves a period's ranking, best rank first.
func (r *LeaderboardRepository) GetSnapshot(period string) ([]models.LeaderboardSnapshot, error) {
	var entries []models.LeaderboardSnapshot
	err := r.db.
		Preload("User").
		Where("period = ?", period).
		Order("rank ASC, user_id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get %s leaderboard snapshot: %w", period, err)
	}
	return entries, nil
}

// GetUserEntry retrieves a single user's snapshot row for a period.
func (r *LeaderboardRepository) GetUserEntry(period string, userID uint) (*models.LeaderboardSnapshot, error) {
	var entry models.LeaderboardSnapshot
	err := r.db.
		Where("period = ? AND user_id = ?", period, userID).
		First(&entry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get %s leaderboard entry for user %d: %w", period, userID, err)
	}
	return &entry, nil
}
