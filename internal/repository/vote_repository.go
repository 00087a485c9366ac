package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// VoteRepository handles vote-related database operations.
type VoteRepository struct {
	db *DB
}

// NewVoteRepository creates a new vote repository.
func NewVoteRepository(db *DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Create records a vote and bumps the case tallies in one transaction.
func (r *VoteRepository) Create(vote *models.Vote) error {
	counter := "no_votes"
	if vote.Side == models.SideYes {
		counter = "yes_votes"
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		return tx.Model(&models.Case{}).
			Where("id = ?", vote.CaseID).
			Updates(map[string]interface{}{
				counter:             gorm.Expr(counter+" + ?", 1),
				"participant_count": gorm.Expr("participant_count + ?", 1),
			}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create vote: %w", err)
	}
	return nil
}

// GetByCaseAndUser retrieves a user's vote on a case.
func (r *VoteRepository) GetByCaseAndUser(caseID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.Where("case_id = ? AND user_id = ?", caseID, userID).First(&vote).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get vote for case %d user %d: %w", caseID, userID, err)
	}
	return &vote, nil
}

// ListByCase retrieves all votes on a case.
func (r *VoteRepository) ListByCase(caseID uint) ([]models.Vote, error) {
	var votes []models.Vote
	if err := r.db.Where("case_id = ?", caseID).Find(&votes).Error; err != nil {
		return nil, fmt.Errorf("failed to list votes for case %d: %w", caseID, err)
	}
	return votes, nil
}

// ListBySide retrieves the votes on a case cast for the given side.
func (r *VoteRepository) ListBySide(caseID uint, side string) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.Where("case_id = ? AND side = ?", caseID, side).Find(&votes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list %s votes for case %d: %w", side, caseID, err)
	}
	return votes, nil
}

// CountByUser returns how many votes a user has cast overall.
func (r *VoteRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vote{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count votes for user %d: %w", userID, err)
	}
	return count, nil
}
