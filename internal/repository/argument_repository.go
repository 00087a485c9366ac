package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// ArgumentRepository handles argument and like database operations.
type ArgumentRepository struct {
	db *DB
}

// NewArgumentRepository creates a new argument repository.
func NewArgumentRepository(db *DB) *ArgumentRepository {
	return &ArgumentRepository{db: db}
}

// Create stores an argument and flags the author's vote in one transaction.
func (r *ArgumentRepository) Create(arg *models.Argument, voteID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(arg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Vote{}).
			Where("id = ?", voteID).
			Update("has_argued", true).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create argument: %w", err)
	}
	return nil
}

// GetByID retrieves an argument.
func (r *ArgumentRepository) GetByID(id uint) (*models.Argument, error) {
	var arg models.Argument
	if err := r.db.First(&arg, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get argument %d: %w", id, err)
	}
	return &arg, nil
}

// GetByCaseAndUser retrieves a user's argument on a case.
func (r *ArgumentRepository) GetByCaseAndUser(caseID, userID uint) (*models.Argument, error) {
	var arg models.Argument
	err := r.db.Where("case_id = ? AND user_id = ?", caseID, userID).First(&arg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get argument for case %d user %d: %w", caseID, userID, err)
	}
	return &arg, nil
}

// ListByCase retrieves a case's arguments, most liked first. Ties break on
// submission order so the ranking is stable between reads.
func (r *ArgumentRepository) ListByCase(caseID uint) ([]models.Argument, error) {
	var args []models.Argument
	err := r.db.
		Where("case_id = ?", caseID).
		Order("like_count DESC, created_at ASC").
		Find(&args).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list arguments for case %d: %w", caseID, err)
	}
	return args, nil
}

// TopByCase retrieves the n most liked arguments on a case, regardless of
// side, ties broken by earliest submission.
func (r *ArgumentRepository) TopByCase(caseID uint, n int) ([]models.Argument, error) {
	var args []models.Argument
	err := r.db.
		Where("case_id = ?", caseID).
		Order("like_count DESC, created_at ASC").
		Limit(n).
		Find(&args).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top arguments for case %d: %w", caseID, err)
	}
	return args, nil
}

// MarkTop3 tags the settled podium arguments.
func (r *ArgumentRepository) MarkTop3(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.Model(&models.Argument{}).
		Where("id IN ?", ids).
		Update("is_top3", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark top arguments: %w", err)
	}
	return nil
}

// CountTop3ByUser returns how many of a user's arguments made a podium.
func (r *ArgumentRepository) CountTop3ByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Argument{}).
		Where("user_id = ? AND is_top3 = ?", userID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count top arguments for user %d: %w", userID, err)
	}
	return count, nil
}

// Like records a like and bumps the counters in one transaction. The unique
// index on (argument_id, user_id) rejects a second like from the same user.
func (r *ArgumentRepository) Like(argumentID, voterVoteID, userID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		like := &models.ArgumentLike{ArgumentID: argumentID, UserID: userID}
		if err := tx.Create(like).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Argument{}).
			Where("id = ?", argumentID).
			Update("like_count", gorm.Expr("like_count + ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Vote{}).
			Where("id = ?", voterVoteID).
			Update("likes_given", gorm.Expr("likes_given + ?", 1)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to like argument %d: %w", argumentID, err)
	}
	return nil
}

// Unlike removes a like and rolls the counters back in one transaction.
// Returns false when no like existed.
func (r *ArgumentRepository) Unlike(argumentID, voterVoteID, userID uint) (bool, error) {
	removed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("argument_id = ? AND user_id = ?", argumentID, userID).
			Delete(&models.ArgumentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true
		if err := tx.Model(&models.Argument{}).
			Where("id = ? AND like_count > 0", argumentID).
			Update("like_count", gorm.Expr("like_count - ?", 1)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Vote{}).
			Where("id = ? AND likes_given > 0", voterVoteID).
			Update("likes_given", gorm.Expr("likes_given - ?", 1)).Error
	})
	if err != nil {
		return false, fmt.Errorf("failed to unlike argument %d: %w", argumentID, err)
	}
	return removed, nil
}

// HasLiked reports whether the user already liked the argument.
func (r *ArgumentRepository) HasLiked(argumentID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ArgumentLike{}).
		Where("argument_id = ? AND user_id = ?", argumentID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check like on argument %d: %w", argumentID, err)
	}
	return count > 0, nil
}
