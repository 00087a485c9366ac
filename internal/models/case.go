// Package models defines domain models for the moral duel platform.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Case represents a moral dilemma case moving through the debate lifecycle.
type Case struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"size:200;not null" json:"title"`
	Context string `gorm:"type:text;not null" json:"context"`
	Status  string `gorm:"size:32;not null;index" json:"status"`
	Origin  string `gorm:"size:32;not null" json:"origin"` // 'ai_generated' or 'user_submitted'

	CreatorID *uint `gorm:"index" json:"creator_id"`
	Creator   *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`

	// Sealed verdict. Never serialized; the read path exposes it only once
	// the case is closed.
	Verdict          string  `gorm:"size:8" json:"-"`
	VerdictReasoning string  `gorm:"type:text" json:"-"`
	VerdictHash      string  `gorm:"size:64" json:"verdict_hash,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`

	CommitmentTxID        *string    `gorm:"size:128;index" json:"commitment_tx_id,omitempty"`
	CommitmentStatus      string     `gorm:"size:32" json:"commitment_status,omitempty"` // 'pending', 'confirmed', 'failed', 'integrity_fault'
	CommitmentSubmittedAt *time.Time `json:"commitment_submitted_at,omitempty"`

	ClosesAt *time.Time `gorm:"index" json:"closes_at,omitempty"`
	ClosedAt *time.Time `json:"closed_at,omitempty"`

	RewardPool       int64 `gorm:"not null;default:0" json:"reward_pool"`
	YesVotes         int   `gorm:"not null;default:0" json:"yes_votes"`
	NoVotes          int   `gorm:"not null;default:0" json:"no_votes"`
	ParticipantCount int   `gorm:"not null;default:0" json:"participant_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Case model.
func (Case) TableName() string {
	return "cases"
}

// IsOpenForVoting reports whether votes and arguments are accepted.
func (c *Case) IsOpenForVoting(now time.Time) bool {
	return c.Status == CaseStatusActive && c.ClosesAt != nil && now.Before(*c.ClosesAt)
}

// HashVerdict computes the commitment digest of a verdict payload.
// The hash is pinned before voting opens and checked again at reveal.
func HashVerdict(side, reasoning string) string {
	sum := sha256.Sum256([]byte(side + "|" + reasoning))
	return hex.EncodeToString(sum[:])
}

// Vote represents a user's YES/NO vote on a case. One per (case, user).
type Vote struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	CaseID uint   `gorm:"not null;uniqueIndex:idx_votes_case_user" json:"case_id"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_votes_case_user;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Side   string `gorm:"size:8;not null" json:"side"`

	HasArgued  bool `gorm:"not null;default:false" json:"has_argued"`
	LikesGiven int  `gorm:"not null;default:0" json:"likes_given"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Vote model.
func (Vote) TableName() string {
	return "votes"
}

// Argument represents a user's argument for one side of a case.
type Argument struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CaseID    uint   `gorm:"not null;index" json:"case_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	User      User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content   string `gorm:"size:300;not null" json:"content"`
	Side      string `gorm:"size:8;not null" json:"side"`
	LikeCount int    `gorm:"not null;default:0" json:"like_count"`
	IsTop3    bool   `gorm:"not null;default:false" json:"is_top_3"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for Argument model.
func (Argument) TableName() string {
	return "arguments"
}

// ArgumentLike records a user liking an argument. One per (argument, user).
type ArgumentLike struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ArgumentID uint      `gorm:"not null;uniqueIndex:idx_arg_likes_arg_user" json:"argument_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_arg_likes_arg_user" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for ArgumentLike model.
func (ArgumentLike) TableName() string {
	return "argument_likes"
}

// Case status constants. AI path: verdict_pending -> committed -> active ->
// closing -> closed. User path: pending_moderation -> active -> closing -> closed.
const (
	CaseStatusVerdictPending    = "verdict_pending"
	CaseStatusCommitted         = "committed"
	CaseStatusPendingModeration = "pending_moderation"
	CaseStatusActive            = "active"
	CaseStatusClosing           = "closing"
	CaseStatusClosed            = "closed"
)

// Case origin constants.
const (
	CaseOriginAI   = "ai_generated"
	CaseOriginUser = "user_submitted"
)

// Vote side constants.
const (
	SideYes = "YES"
	SideNo  = "NO"
)

// Commitment status constants.
const (
	CommitmentStatusPending        = "pending"
	CommitmentStatusConfirmed      = "confirmed"
	CommitmentStatusFailed         = "failed"
	CommitmentStatusIntegrityFault = "integrity_fault"
)
