package models

import (
	"time"
)

// Reward represents a single reward share owed to a user for one case.
// A user holds at most one reward per category per case; categories are
// additive and independent.
type Reward struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	UserID   uint   `gorm:"not null;uniqueIndex:idx_rewards_user_case_category;index" json:"user_id"`
	User     User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CaseID   uint   `gorm:"not null;uniqueIndex:idx_rewards_user_case_category;index" json:"case_id"`
	Case     Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	Category string `gorm:"size:32;not null;uniqueIndex:idx_rewards_user_case_category" json:"category"`

	// Amount is fixed at creation and never changes.
	Amount int64  `gorm:"not null" json:"amount"`
	Status string `gorm:"size:32;not null;index" json:"status"`
	TxID   *string `gorm:"size:128;index" json:"tx_id,omitempty"`

	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Reward model.
func (Reward) TableName() string {
	return "rewards"
}

// Reward category constants.
const (
	RewardCategoryWinningVoter = "winning_voter"
	RewardCategoryTopArgument  = "top_argument"
	RewardCategoryParticipant  = "participant"
	RewardCategoryCreator      = "creator"
)

// Reward status constants. Transitions are one-way:
// pending -> processing -> {completed, failed}.
const (
	RewardStatusPending    = "pending"
	RewardStatusProcessing = "processing"
	RewardStatusCompleted  = "completed"
	RewardStatusFailed     = "failed"
)

// LeaderboardSnapshot is one row of a cached leaderboard for a period.
// Entries for a period are replaced wholesale on each recomputation.
type LeaderboardSnapshot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Period     string    `gorm:"size:16;not null;index" json:"period"`
	Rank       int       `gorm:"not null" json:"rank"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Points     int64     `gorm:"not null" json:"points"`
	ComputedAt time.Time `gorm:"not null" json:"computed_at"`
}

// TableName specifies the table name for LeaderboardSnapshot model.
func (LeaderboardSnapshot) TableName() string {
	return "leaderboard_snapshots"
}

// Leaderboard period constants.
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodAllTime = "all_time"
)
