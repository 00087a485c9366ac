package models

import (
	"time"
)

// AuditEntry is an append-only record of a state transition, sufficient to
// reconstruct why a case or reward reached its current state.
type AuditEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	EntityType string    `gorm:"size:32;not null;index:idx_audit_entity" json:"entity_type"`
	EntityID   uint      `gorm:"not null;index:idx_audit_entity" json:"entity_id"`
	FromState  string    `gorm:"size:32" json:"from_state"`
	ToState    string    `gorm:"size:32;not null" json:"to_state"`
	Reason     string    `gorm:"type:text" json:"reason"`
	Actor      string    `gorm:"size:64" json:"actor"` // job or API surface that drove the transition
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditEntry model.
func (AuditEntry) TableName() string {
	return "audit_entries"
}

// Audit entity type constants.
const (
	AuditEntityCase   = "case"
	AuditEntityReward = "reward"
)
