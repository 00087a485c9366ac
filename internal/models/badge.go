package models

import (
	"encoding/json"
	"time"
)

// Badge represents an achievement that can be earned by users.
type Badge struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Slug        string          `gorm:"uniqueIndex;not null;size:64" json:"slug"`
	Name        string          `gorm:"not null;size:100" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Icon        string          `gorm:"size:50" json:"icon"`
	BonusPoints int64           `gorm:"not null;default:0" json:"bonus_points"`
	Criteria    json.RawMessage `gorm:"type:jsonb" json:"criteria"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// BadgeCriteria represents the predicate for earning a badge: a count-based
// threshold over a metric, or a boolean flag check.
type BadgeCriteria struct {
	Metric   string  `json:"metric"`
	Operator string  `json:"operator"` // ">=", ">", "==", "flag"
	Value    float64 `json:"value,omitempty"`
}

// Badge metric constants.
const (
	BadgeMetricWins            = "wins"
	BadgeMetricTopArguments    = "top_arguments"
	BadgeMetricParticipations  = "participations"
	BadgeMetricVotes           = "votes"
	BadgeMetricWalletConnected = "wallet_connected"
)

// BadgeAward represents a badge earned by a user. Unique per (user, badge);
// granting is idempotent and the bonus is credited exactly once.
type BadgeAward struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_badge_awards_user_badge" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BadgeID     uint      `gorm:"not null;uniqueIndex:idx_badge_awards_user_badge" json:"badge_id"`
	Badge       Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	BonusPoints int64     `gorm:"not null" json:"bonus_points"`
	EarnedAt    time.Time `gorm:"not null" json:"earned_at"`
}

// TableName specifies the table name for BadgeAward model.
func (BadgeAward) TableName() string {
	return "badge_awards"
}
