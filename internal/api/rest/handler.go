// Package rest provides the platform's REST API: case browsing and
// participation, moderation, rewards, badges, and leaderboards.
package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/internal/service/leaderboard"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// CaseService interface for case lifecycle operations.
type CaseService interface {
	SubmitCase(ctx context.Context, creatorID uint, title, caseContext string) (*models.Case, error)
	ApproveCase(ctx context.Context, caseID uint) (*models.Case, error)
	RejectCase(ctx context.Context, caseID uint, reason string) error
	Vote(ctx context.Context, caseID, userID uint, side string) (*models.Vote, error)
	SubmitArgument(ctx context.Context, caseID, userID uint, content string) (*models.Argument, error)
	LikeArgument(ctx context.Context, caseID, argumentID, userID uint) error
	UnlikeArgument(ctx context.Context, caseID, argumentID, userID uint) error
	GetCase(ctx context.Context, id uint) (*models.Case, error)
	ListCases(ctx context.Context, status string, page, pageSize int) ([]models.Case, int64, error)
	ListArguments(ctx context.Context, caseID uint) ([]models.Argument, error)
}

// RewardService interface for reward listing and payout claims.
type RewardService interface {
	ListRewards(ctx context.Context, userID uint) ([]models.Reward, error)
	ClaimReward(ctx context.Context, rewardID, userID uint) (*models.Reward, error)
}

// LeaderboardService interface for ranking queries.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, period string) ([]leaderboard.Entry, error)
	GetUserRank(ctx context.Context, period string, userID uint) (*leaderboard.Entry, error)
}

// BadgeService interface for badge queries.
type BadgeService interface {
	ListCatalog(ctx context.Context) ([]models.Badge, error)
	GetUserBadges(ctx context.Context, userID uint) ([]models.BadgeAward, error)
}

// UserService interface for user registration and wallets.
type UserService interface {
	Register(ctx context.Context, username, email string) (*models.User, error)
	Get(ctx context.Context, id uint) (*models.User, error)
	ConnectWallet(ctx context.Context, userID uint, address string) (*models.User, error)
}

// HealthChecker reports dependency health.
type HealthChecker func(ctx context.Context) error

// Handler handles REST API requests.
type Handler struct {
	cases       CaseService
	rewards     RewardService
	leaderboard LeaderboardService
	badges      BadgeService
	users       UserService
	health      map[string]HealthChecker
	log         *logger.Logger
}

// NewHandler creates a new REST handler.
func NewHandler(
	cases CaseService,
	rewards RewardService,
	lb LeaderboardService,
	badges BadgeService,
	users UserService,
	health map[string]HealthChecker,
	log *logger.Logger,
) *Handler {
	return &Handler{
		cases:       cases,
		rewards:     rewards,
		leaderboard: lb,
		badges:      badges,
		users:       users,
		health:      health,
		log:         log,
	}
}

// caseResponse shapes a case for the wire. The sealed verdict appears only
// once the case is closed.
type caseResponse struct {
	ID               uint       `json:"id"`
	Title            string     `json:"title"`
	Context          string     `json:"context"`
	Status           string     `json:"status"`
	Origin           string     `json:"origin"`
	CreatorID        *uint      `json:"creator_id,omitempty"`
	VerdictHash      string     `json:"verdict_hash,omitempty"`
	CommitmentTxID   *string    `json:"commitment_tx_id,omitempty"`
	CommitmentStatus string     `json:"commitment_status,omitempty"`
	ClosesAt         *time.Time `json:"closes_at,omitempty"`
	ClosedAt         *time.Time `json:"closed_at,omitempty"`
	RewardPool       int64      `json:"reward_pool"`
	YesVotes         int        `json:"yes_votes"`
	NoVotes          int        `json:"no_votes"`
	ParticipantCount int        `json:"participant_count"`
	CreatedAt        time.Time  `json:"created_at"`

	Verdict          string  `json:"verdict,omitempty"`
	VerdictReasoning string  `json:"verdict_reasoning,omitempty"`
	Confidence       float64 `json:"confidence,omitempty"`
}

func toCaseResponse(c *models.Case) caseResponse {
	resp := caseResponse{
		ID:               c.ID,
		Title:            c.Title,
		Context:          c.Context,
		Status:           c.Status,
		Origin:           c.Origin,
		CreatorID:        c.CreatorID,
		VerdictHash:      c.VerdictHash,
		CommitmentTxID:   c.CommitmentTxID,
		CommitmentStatus: c.CommitmentStatus,
		ClosesAt:         c.ClosesAt,
		ClosedAt:         c.ClosedAt,
		RewardPool:       c.RewardPool,
		YesVotes:         c.YesVotes,
		NoVotes:          c.NoVotes,
		ParticipantCount: c.ParticipantCount,
		CreatedAt:        c.CreatedAt,
	}
	if c.Status == models.CaseStatusClosed {
		resp.Verdict = c.Verdict
		resp.VerdictReasoning = c.VerdictReasoning
		resp.Confidence = c.Confidence
	}
	return resp
}

// SubmitCase creates a user-authored case.
// POST /api/v1/cases.
func (h *Handler) SubmitCase(c *gin.Context) {
	var req struct {
		CreatorID uint   `json:"creator_id" binding:"required"`
		Title     string `json:"title" binding:"required"`
		Context   string `json:"context" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.cases.SubmitCase(c.Request.Context(), req.CreatorID, req.Title, req.Context)
	if err != nil {
		h.log.Error().Err(err).Uint("creator_id", req.CreatorID).Msg("Failed to submit case")
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"case": toCaseResponse(created)})
}

// ListCases returns cases filtered by status.
// GET /api/v1/cases?status=active&page=1&page_size=20.
func (h *Handler) ListCases(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	cases, total, err := h.cases.ListCases(c.Request.Context(), status, page, pageSize)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list cases")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve cases")
		return
	}

	resp := make([]caseResponse, 0, len(cases))
	for i := range cases {
		resp = append(resp, toCaseResponse(&cases[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"cases":     resp,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetCase returns one case.
// GET /api/v1/cases/:id.
func (h *Handler) GetCase(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	found, err := h.cases.GetCase(c.Request.Context(), caseID)
	if err != nil {
		if repository.IsNotFound(err) {
			h.errorResponse(c, http.StatusNotFound, "Case not found")
			return
		}
		h.log.Error().Err(err).Uint("case_id", caseID).Msg("Failed to get case")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve case")
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": toCaseResponse(found)})
}

// ListArguments returns a case's arguments, most liked first.
// GET /api/v1/cases/:id/arguments.
func (h *Handler) ListArguments(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	args, err := h.cases.ListArguments(c.Request.Context(), caseID)
	if err != nil {
		h.log.Error().Err(err).Uint("case_id", caseID).Msg("Failed to list arguments")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve arguments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"arguments": args, "total": len(args)})
}

// Vote casts a vote on a case.
// POST /api/v1/cases/:id/votes.
func (h *Handler) Vote(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Side   string `json:"side" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	vote, err := h.cases.Vote(c.Request.Context(), caseID, req.UserID, req.Side)
	if err != nil {
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vote": vote})
}

// SubmitArgument attaches an argument to the user's vote.
// POST /api/v1/cases/:id/arguments.
func (h *Handler) SubmitArgument(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		UserID  uint   `json:"user_id" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	arg, err := h.cases.SubmitArgument(c.Request.Context(), caseID, req.UserID, req.Content)
	if err != nil {
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"argument": arg})
}

// LikeArgument spends one like on an argument.
// POST /api/v1/cases/:id/arguments/:arg_id/likes.
func (h *Handler) LikeArgument(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	argID, err := h.parseID(c, "arg_id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cases.LikeArgument(c.Request.Context(), caseID, argID, req.UserID); err != nil {
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// UnlikeArgument takes back a like.
// DELETE /api/v1/cases/:id/arguments/:arg_id/likes.
func (h *Handler) UnlikeArgument(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	argID, err := h.parseID(c, "arg_id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.cases.UnlikeArgument(c.Request.Context(), caseID, argID, req.UserID); err != nil {
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": false})
}

// ApproveCase activates a moderated case.
// POST /api/v1/moderation/cases/:id/approve.
func (h *Handler) ApproveCase(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	approved, err := h.cases.ApproveCase(c.Request.Context(), caseID)
	if err != nil {
		h.errorResponse(c, http.StatusConflict, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"case": toCaseResponse(approved)})
}

// RejectCase removes a case from moderation.
// POST /api/v1/moderation/cases/:id/reject.
func (h *Handler) RejectCase(c *gin.Context) {
	caseID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.cases.RejectCase(c.Request.Context(), caseID, req.Reason); err != nil {
		h.errorResponse(c, http.StatusConflict, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"rejected": true})
}

// RegisterUser creates a platform user.
// POST /api/v1/users.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email)
	if err != nil {
		h.errorResponse(c, http.StatusConflict, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetUser returns one user.
// GET /api/v1/users/:id.
func (h *Handler) GetUser(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Get(c.Request.Context(), userID)
	if err != nil {
		if repository.IsNotFound(err) {
			h.errorResponse(c, http.StatusNotFound, "User not found")
			return
		}
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ConnectWallet attaches a payout wallet to the user.
// POST /api/v1/users/:id/wallet.
func (h *Handler) ConnectWallet(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.ConnectWallet(c.Request.Context(), userID, req.Address)
	if err != nil {
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ListRewards returns a user's rewards.
// GET /api/v1/users/:id/rewards.
func (h *Handler) ListRewards(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	rewards, err := h.rewards.ListRewards(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to list rewards")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve rewards")
		return
	}

	c.JSON(http.StatusOK, gin.H{"rewards": rewards, "total": len(rewards)})
}

// ClaimReward starts the payout of a pending reward.
// POST /api/v1/rewards/:id/claim.
func (h *Handler) ClaimReward(c *gin.Context) {
	rewardID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	reward, err := h.rewards.ClaimReward(c.Request.Context(), rewardID, req.UserID)
	if err != nil {
		h.errorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"reward": reward})
}

// GetUserBadges returns a user's earned badges.
// GET /api/v1/users/:id/badges.
func (h *Handler) GetUserBadges(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	awards, err := h.badges.GetUserBadges(c.Request.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to get user badges")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badges")
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": awards, "total": len(awards)})
}

// GetBadgeCatalog returns all badge definitions.
// GET /api/v1/badges.
func (h *Handler) GetBadgeCatalog(c *gin.Context) {
	catalog, err := h.badges.ListCatalog(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get badge catalog")
		h.errorResponse(c, http.StatusInternalServerError, "Failed to retrieve badge catalog")
		return
	}

	c.JSON(http.StatusOK, gin.H{"badges": catalog, "total": len(catalog)})
}

// GetLeaderboard returns the ranking for a period.
// GET /api/v1/leaderboard?period=all_time.
func (h *Handler) GetLeaderboard(c *gin.Context) {
	period := c.DefaultQuery("period", models.PeriodAllTime)

	entries, err := h.leaderboard.GetLeaderboard(c.Request.Context(), period)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"leaderboard":  entries,
		"period":       period,
		"total":        len(entries),
		"generated_at": time.Now().UTC(),
	})
}

// GetUserRank returns one user's rank for a period.
// GET /api/v1/leaderboard/users/:id?period=all_time.
func (h *Handler) GetUserRank(c *gin.Context) {
	userID, err := h.parseID(c, "id")
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	period := c.DefaultQuery("period", models.PeriodAllTime)

	entry, err := h.leaderboard.GetUserRank(c.Request.Context(), period, userID)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if entry == nil {
		h.errorResponse(c, http.StatusNotFound, "User is not ranked for this period")
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry, "period": period})
}

// Health reports dependency health.
// GET /health.
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.health))
	for name, check := range h.health {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}

// parseID extracts a numeric URL parameter.
func (h *Handler) parseID(c *gin.Context, param string) (uint, error) {
	raw := c.Param(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", param, raw)
	}
	return uint(id), nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
