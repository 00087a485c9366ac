package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// RewardRepository handles reward-related database operations.
type RewardRepository struct {
	db *DB
}

// NewRewardRepository creates a new reward repository.
func NewRewardRepository(db *DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// CreateBatch inserts a case's reward allocations in one transaction. The
// unique index on (user_id, case_id, category) makes a settlement re-run
// abort instead of duplicating payouts.
func (r *RewardRepository) CreateBatch(rewards []models.Reward) error {
	if len(rewards) == 0 {
		return nil
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i := range rewards {
			if err := tx.Create(&rewards[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create rewards: %w", err)
	}
	return nil
}

// GetByID retrieves a reward.
func (r *RewardRepository) GetByID(id uint) (*models.Reward, error) {
	var reward models.Reward
	if err := r.db.First(&reward, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get reward %d: %w", id, err)
	}
	return &reward, nil
}

// ListByUser retrieves a user's rewards, newest first.
func (r *RewardRepository) ListByUser(userID uint) ([]models.Reward, error) {
	var rewards []models.Reward
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rewards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards for user %d: %w", userID, err)
	}
	return rewards, nil
}

// CountByCase returns how many reward rows exist for a case.
func (r *RewardRepository) CountByCase(caseID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reward{}).Where("case_id = ?", caseID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count rewards for case %d: %w", caseID, err)
	}
	return count, nil
}

// ListProcessing retrieves in-flight rewards awaiting ledger confirmation,
// oldest claim first.
func (r *RewardRepository) ListProcessing(limit int) ([]models.Reward, error) {
	var rewards []models.Reward
	err := r.db.
		Where("status = ? AND tx_id IS NOT NULL", models.RewardStatusProcessing).
		Order("claimed_at ASC").
		Limit(limit).
		Find(&rewards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list processing rewards: %w", err)
	}
	return rewards, nil
}

// Claim moves a pending reward into processing with its payout transaction.
// Returns false when the reward was not pending, so a double claim is a no-op.
func (r *RewardRepository) Claim(id uint, txID string, claimedAt time.Time) (bool, error) {
	res := r.db.Model(&models.Reward{}).
		Where("id = ? AND status = ?", id, models.RewardStatusPending).
		Updates(map[string]interface{}{
			"status":     models.RewardStatusProcessing,
			"tx_id":      txID,
			"claimed_at": claimedAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim reward %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Complete finalizes a confirmed reward and credits the user's points, all in
// one transaction. The conditional update guarantees the credit lands exactly
// once even when the same confirmation is observed by concurrent sweeps.
func (r *RewardRepository) Complete(id, userID uint, amount int64, completedAt time.Time) (bool, error) {
	credited := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Reward{}).
			Where("id = ? AND status = ?", id, models.RewardStatusProcessing).
			Updates(map[string]interface{}{
				"status":       models.RewardStatusCompleted,
				"completed_at": completedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		credited = true
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("total_points", gorm.Expr("total_points + ?", amount)).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to complete reward %d: %w", id, err)
	}
	return credited, nil
}

// Fail marks an in-flight reward as failed. Returns false when the reward had
// already left the processing state.
func (r *RewardRepository) Fail(id uint) (bool, error) {
	res := r.db.Model(&models.Reward{}).
		Where("id = ? AND status = ?", id, models.RewardStatusProcessing).
		Update("status", models.RewardStatusFailed)
	if res.Error != nil {
		return false, fmt.Errorf("failed to fail reward %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SumCompletedByUser sums the reward points a user collected inside a window.
// A zero until means no upper bound.
func (r *RewardRepository) SumCompletedByUser(since, until time.Time) (map[uint]int64, error) {
	type row struct {
		UserID uint
		Total  int64
	}
	query := r.db.Model(&models.Reward{}).
		Select("user_id, SUM(amount) AS total").
		Where("status = ? AND completed_at >= ?", models.RewardStatusCompleted, since).
		Group("user_id")
	if !until.IsZero() {
		query = query.Where("completed_at < ?", until)
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum completed rewards: %w", err)
	}

	totals := make(map[uint]int64, len(rows))
	for _, r := range rows {
		totals[r.UserID] = r.Total
	}
	return totals, nil
}

// CountWinsByUser returns how many winning-voter rewards a user has earned.
func (r *RewardRepository) CountWinsByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reward{}).
		Where("user_id = ? AND category = ?", userID, models.RewardCategoryWinningVoter).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count wins for user %d: %w", userID, err)
	}
	return count, nil
}

// CountParticipationsByUser returns how many cases a user collected a
// participation reward on.
func (r *RewardRepository) CountParticipationsByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reward{}).
		Where("user_id = ? AND category = ?", userID, models.RewardCategoryParticipant).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count participations for user %d: %w", userID, err)
	}
	return count, nil
}
