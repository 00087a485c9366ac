package repository

import (
	"fmt"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// AuditRepository handles append-only state transition records.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append records a state transition.
func (r *AuditRepository) Append(entry *models.AuditEntry) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListForEntity retrieves an entity's transition history in order.
func (r *AuditRepository) ListForEntity(entityType string, entityID uint) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	err := r.db.
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for %s %d: %w", entityType, entityID, err)
	}
	return entries, nil
}
