package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CaseRepository handles case-related database operations.
type CaseRepository struct {
	db *DB
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// Create creates a new case.
func (r *CaseRepository) Create(c *models.Case) error {
	if err := r.db.Create(c).Error; err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

// GetByID retrieves a case by its ID with the creator preloaded.
func (r *CaseRepository) GetByID(id uint) (*models.Case, error) {
	var c models.Case
	if err := r.db.Preload("Creator").First(&c, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get case %d: %w", id, err)
	}
	return &c, nil
}

// Update saves the full case row.
func (r *CaseRepository) Update(c *models.Case) error {
	if err := r.db.Save(c).Error; err != nil {
		return fmt.Errorf("failed to update case %d: %w", c.ID, err)
	}
	return nil
}

// List retrieves cases filtered by status with pagination, newest first.
func (r *CaseRepository) List(status string, page, pageSize int) ([]models.Case, int64, error) {
	query := r.db.Model(&models.Case{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	var cases []models.Case
	err := query.
		Preload("Creator").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&cases).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, total, nil
}

// ListExpired retrieves active cases whose voting window has elapsed.
func (r *CaseRepository) ListExpired(now time.Time) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.
		Where("status = ? AND closes_at <= ?", models.CaseStatusActive, now).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expired cases: %w", err)
	}
	return cases, nil
}

// ListPendingCommitments retrieves cases whose verdict commitment has been
// submitted but not yet resolved, oldest first.
func (r *CaseRepository) ListPendingCommitments(limit int) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.
		Where("commitment_tx_id IS NOT NULL AND commitment_status = ?", models.CommitmentStatusPending).
		Order("commitment_submitted_at ASC").
		Limit(limit).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending commitments: %w", err)
	}
	return cases, nil
}

// ListNeedingCommitment retrieves cases whose verdict hash still needs a
// ledger anchor: AI cases where the submission never went out, and committed
// cases whose transaction was declared failed. Oldest first.
func (r *CaseRepository) ListNeedingCommitment(limit int) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.
		Where("(status = ? AND origin = ? AND commitment_tx_id IS NULL) OR (status = ? AND commitment_status = ?)",
			models.CaseStatusVerdictPending, models.CaseOriginAI,
			models.CaseStatusCommitted, models.CommitmentStatusFailed).
		Order("created_at ASC").
		Limit(limit).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cases needing commitment: %w", err)
	}
	return cases, nil
}

// ListStaleClosing retrieves claimed cases whose closure never finished,
// typically because settlement failed or the process died mid-close.
func (r *CaseRepository) ListStaleClosing(before time.Time) ([]models.Case, error) {
	var cases []models.Case
	err := r.db.
		Where("status = ? AND updated_at <= ?", models.CaseStatusClosing, before).
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale closing cases: %w", err)
	}
	return cases, nil
}

// ClaimForClosing atomically moves a case out of 'active' so that exactly one
// runner performs closure work. Returns false when the case was not eligible,
// meaning another runner already claimed it.
func (r *CaseRepository) ClaimForClosing(id uint) (bool, error) {
	res := r.db.Model(&models.Case{}).
		Where("id = ? AND status = ?", id, models.CaseStatusActive).
		Update("status", models.CaseStatusClosing)
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim case %d for closing: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Activate transitions a case into 'active' and arms its voting window.
// Only cases in one of the given source states are eligible.
func (r *CaseRepository) Activate(id uint, from string, closesAt time.Time) (bool, error) {
	res := r.db.Model(&models.Case{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":    models.CaseStatusActive,
			"closes_at": closesAt,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to activate case %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkClosed finalizes a claimed case.
func (r *CaseRepository) MarkClosed(id uint, closedAt time.Time) error {
	err := r.db.Model(&models.Case{}).
		Where("id = ? AND status = ?", id, models.CaseStatusClosing).
		Updates(map[string]interface{}{
			"status":    models.CaseStatusClosed,
			"closed_at": closedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to close case %d: %w", id, err)
	}
	return nil
}

// SetCommitment records a submitted verdict commitment transaction.
func (r *CaseRepository) SetCommitment(id uint, txID string, submittedAt time.Time) error {
	err := r.db.Model(&models.Case{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"commitment_tx_id":        txID,
			"commitment_status":       models.CommitmentStatusPending,
			"commitment_submitted_at": submittedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set commitment for case %d: %w", id, err)
	}
	return nil
}

// UpdateCommitmentStatus advances the commitment confirmation state. The
// transition only applies while the stored status matches from, so a
// confirmation observed twice settles only once.
func (r *CaseRepository) UpdateCommitmentStatus(id uint, from, to string) (bool, error) {
	res := r.db.Model(&models.Case{}).
		Where("id = ? AND commitment_status = ?", id, from).
		Update("commitment_status", to)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update commitment status for case %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// IsNotFound reports whether err means the entity does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
