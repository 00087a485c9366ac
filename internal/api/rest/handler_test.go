//nolint:noctx // Test file uses http.NewRequest for simplicity
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/internal/service/leaderboard"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// Mock case service
type mockCaseService struct {
	cases     map[uint]*models.Case
	arguments map[uint][]models.Argument
	voteErr   error
	argErr    error
}

func newMockCaseService() *mockCaseService {
	return &mockCaseService{
		cases:     make(map[uint]*models.Case),
		arguments: make(map[uint][]models.Argument),
	}
}

func (m *mockCaseService) SubmitCase(ctx context.Context, creatorID uint, title, caseContext string) (*models.Case, error) {
	c := &models.Case{
		ID:        99,
		Title:     title,
		Context:   caseContext,
		Status:    models.CaseStatusPendingModeration,
		Origin:    models.CaseOriginUser,
		CreatorID: &creatorID,
	}
	m.cases[c.ID] = c
	return c, nil
}

func (m *mockCaseService) ApproveCase(ctx context.Context, caseID uint) (*models.Case, error) {
	c, ok := m.cases[caseID]
	if !ok {
		return nil, fmt.Errorf("case %d not found", caseID)
	}
	c.Status = models.CaseStatusActive
	return c, nil
}

func (m *mockCaseService) RejectCase(ctx context.Context, caseID uint, reason string) error {
	if _, ok := m.cases[caseID]; !ok {
		return fmt.Errorf("case %d not found", caseID)
	}
	return nil
}

func (m *mockCaseService) Vote(ctx context.Context, caseID, userID uint, side string) (*models.Vote, error) {
	if m.voteErr != nil {
		return nil, m.voteErr
	}
	return &models.Vote{ID: 1, CaseID: caseID, UserID: userID, Side: side}, nil
}

func (m *mockCaseService) SubmitArgument(ctx context.Context, caseID, userID uint, content string) (*models.Argument, error) {
	if m.argErr != nil {
		return nil, m.argErr
	}
	return &models.Argument{ID: 1, CaseID: caseID, UserID: userID, Content: content}, nil
}

func (m *mockCaseService) LikeArgument(ctx context.Context, caseID, argumentID, userID uint) error {
	return m.argErr
}

func (m *mockCaseService) UnlikeArgument(ctx context.Context, caseID, argumentID, userID uint) error {
	return m.argErr
}

func (m *mockCaseService) GetCase(ctx context.Context, id uint) (*models.Case, error) {
	c, ok := m.cases[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockCaseService) ListCases(ctx context.Context, status string, page, pageSize int) ([]models.Case, int64, error) {
	out := []models.Case{}
	for _, c := range m.cases {
		if status == "" || c.Status == status {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockCaseService) ListArguments(ctx context.Context, caseID uint) ([]models.Argument, error) {
	return m.arguments[caseID], nil
}

// Mock reward service
type mockRewardService struct {
	rewards  map[uint][]models.Reward
	claimErr error
}

func (m *mockRewardService) ListRewards(ctx context.Context, userID uint) ([]models.Reward, error) {
	return m.rewards[userID], nil
}

func (m *mockRewardService) ClaimReward(ctx context.Context, rewardID, userID uint) (*models.Reward, error) {
	if m.claimErr != nil {
		return nil, m.claimErr
	}
	return &models.Reward{ID: rewardID, UserID: userID, Status: models.RewardStatusProcessing}, nil
}

// Mock leaderboard service
type mockLeaderboardService struct {
	boards map[string][]leaderboard.Entry
}

func (m *mockLeaderboardService) GetLeaderboard(ctx context.Context, period string) ([]leaderboard.Entry, error) {
	entries, ok := m.boards[period]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}
	return entries, nil
}

func (m *mockLeaderboardService) GetUserRank(ctx context.Context, period string, userID uint) (*leaderboard.Entry, error) {
	entries, ok := m.boards[period]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard period %q", period)
	}
	for i := range entries {
		if entries[i].UserID == userID {
			return &entries[i], nil
		}
	}
	return nil, nil
}

// Mock badge service
type mockBadgeService struct {
	catalog []models.Badge
	awards  map[uint][]models.BadgeAward
}

func (m *mockBadgeService) ListCatalog(ctx context.Context) ([]models.Badge, error) {
	return m.catalog, nil
}

func (m *mockBadgeService) GetUserBadges(ctx context.Context, userID uint) ([]models.BadgeAward, error) {
	return m.awards[userID], nil
}

// Mock user service
type mockUserService struct {
	users map[uint]*models.User
}

func (m *mockUserService) Register(ctx context.Context, username, email string) (*models.User, error) {
	u := &models.User{ID: uint(len(m.users) + 1), Username: username, Email: email}
	m.users[u.ID] = u
	return u, nil
}

func (m *mockUserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *mockUserService) ConnectWallet(ctx context.Context, userID uint, address string) (*models.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.WalletAddress = address
	return u, nil
}

type testServices struct {
	cases       *mockCaseService
	rewards     *mockRewardService
	leaderboard *mockLeaderboardService
	badges      *mockBadgeService
	users       *mockUserService
}

func setupTestRouter(health map[string]HealthChecker) (*gin.Engine, *testServices) {
	svcs := &testServices{
		cases:       newMockCaseService(),
		rewards:     &mockRewardService{rewards: make(map[uint][]models.Reward)},
		leaderboard: &mockLeaderboardService{boards: make(map[string][]leaderboard.Entry)},
		badges:      &mockBadgeService{awards: make(map[uint][]models.BadgeAward)},
		users:       &mockUserService{users: make(map[uint]*models.User)},
	}

	handler := NewHandler(
		svcs.cases, svcs.rewards, svcs.leaderboard, svcs.badges, svcs.users,
		health, logger.New("error", "console", "stdout"),
	)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router)
	return router, svcs
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitCase(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/cases", gin.H{
		"creator_id": 3,
		"title":      "The lifeboat",
		"context":    "Five passengers, four seats.",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "pending_moderation", response["case"]["status"])
	assert.Equal(t, "user_submitted", response["case"]["origin"])
}

func TestSubmitCaseMissingFields(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/cases", gin.H{"creator_id": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCaseHidesVerdictUntilClosed(t *testing.T) {
	router, svcs := setupTestRouter(nil)

	closesAt := time.Now().Add(time.Hour)
	svcs.cases.cases[5] = &models.Case{
		ID:               5,
		Title:            "The whistleblower",
		Status:           models.CaseStatusActive,
		ClosesAt:         &closesAt,
		Verdict:          models.SideYes,
		VerdictReasoning: "Public interest outweighs the NDA.",
		VerdictHash:      models.HashVerdict(models.SideYes, "Public interest outweighs the NDA."),
	}

	w := doJSON(router, "GET", "/api/v1/cases/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotContains(t, response["case"], "verdict")
	assert.NotContains(t, response["case"], "verdict_reasoning")
	assert.NotEmpty(t, response["case"]["verdict_hash"])
}

func TestGetCaseRevealsVerdictWhenClosed(t *testing.T) {
	router, svcs := setupTestRouter(nil)

	svcs.cases.cases[5] = &models.Case{
		ID:               5,
		Title:            "The whistleblower",
		Status:           models.CaseStatusClosed,
		Verdict:          models.SideYes,
		VerdictReasoning: "Public interest outweighs the NDA.",
	}

	w := doJSON(router, "GET", "/api/v1/cases/5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "YES", response["case"]["verdict"])
	assert.Equal(t, "Public interest outweighs the NDA.", response["case"]["verdict_reasoning"])
}

func TestGetCaseNotFound(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "GET", "/api/v1/cases/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCaseInvalidID(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "GET", "/api/v1/cases/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVote(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/cases/5/votes", gin.H{
		"user_id": 2,
		"side":    "YES",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestVoteRejected(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.cases.voteErr = errors.New("case 5 is not open for voting")

	w := doJSON(router, "POST", "/api/v1/cases/5/votes", gin.H{
		"user_id": 2,
		"side":    "YES",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Contains(t, response["error"], "not open for voting")
}

func TestSubmitArgument(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/cases/5/arguments", gin.H{
		"user_id": 2,
		"content": "Duty to rescue binds everyone aboard.",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestLikeAndUnlikeArgument(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/cases/5/arguments/9/likes", gin.H{"user_id": 2})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, "DELETE", "/api/v1/cases/5/arguments/9/likes", gin.H{"user_id": 2})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestModerationApprove(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.cases.cases[7] = &models.Case{ID: 7, Status: models.CaseStatusPendingModeration}

	w := doJSON(router, "POST", "/api/v1/moderation/cases/7/approve", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "active", response["case"]["status"])
}

func TestModerationApproveUnknownCase(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/moderation/cases/404/approve", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterUser(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/users", gin.H{"username": "socrates"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestConnectWallet(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.users.users[3] = &models.User{ID: 3, Username: "socrates"}

	w := doJSON(router, "POST", "/api/v1/users/3/wallet", gin.H{"address": "dx1qwallet"})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "dx1qwallet", response["user"]["wallet_address"])
}

func TestListRewards(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.rewards.rewards[3] = []models.Reward{
		{ID: 1, UserID: 3, Amount: 150, Category: models.RewardCategoryTopArgument, Status: models.RewardStatusPending},
	}

	w := doJSON(router, "GET", "/api/v1/users/3/rewards", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["total"])
}

func TestClaimReward(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "POST", "/api/v1/rewards/1/claim", gin.H{"user_id": 3})
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "processing", response["reward"]["status"])
}

func TestClaimRewardWithoutWallet(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.rewards.claimErr = errors.New("user 3 has no wallet connected")

	w := doJSON(router, "POST", "/api/v1/rewards/1/claim", gin.H{"user_id": 3})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetLeaderboard(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.leaderboard.boards["weekly"] = []leaderboard.Entry{
		{Rank: 1, UserID: 1, Username: "alice", Points: 420},
		{Rank: 2, UserID: 2, Username: "bob", Points: 180},
	}

	w := doJSON(router, "GET", "/api/v1/leaderboard?period=weekly", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "weekly", response["period"])
	assert.Equal(t, float64(2), response["total"])
}

func TestGetLeaderboardInvalidPeriod(t *testing.T) {
	router, _ := setupTestRouter(nil)

	w := doJSON(router, "GET", "/api/v1/leaderboard?period=monthly", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUserRankUnranked(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.leaderboard.boards["all_time"] = []leaderboard.Entry{}

	w := doJSON(router, "GET", "/api/v1/leaderboard/users/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBadgeCatalog(t *testing.T) {
	router, svcs := setupTestRouter(nil)
	svcs.badges.catalog = []models.Badge{{ID: 1, Slug: "first_win", Name: "First Win"}}

	w := doJSON(router, "GET", "/api/v1/badges", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(1), response["total"])
}

func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(map[string]HealthChecker{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return nil },
	})

	w := doJSON(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthDegraded(t *testing.T) {
	router, _ := setupTestRouter(map[string]HealthChecker{
		"database": func(ctx context.Context) error { return nil },
		"ledger":   func(ctx context.Context) error { return errors.New("rpc timeout") },
	})

	w := doJSON(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "degraded", response["status"])
}
