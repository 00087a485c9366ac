package mocks

import (
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// MockCaseRepository is a simple mock for case repository
type MockCaseRepository struct {
	CreateFunc                 func(c *models.Case) error
	GetByIDFunc                func(id uint) (*models.Case, error)
	UpdateFunc                 func(c *models.Case) error
	ListFunc                   func(status string, page, pageSize int) ([]models.Case, int64, error)
	ListExpiredFunc            func(now time.Time) ([]models.Case, error)
	ListPendingCommitmentsFunc func(limit int) ([]models.Case, error)
	ListNeedingCommitmentFunc  func(limit int) ([]models.Case, error)
	ListStaleClosingFunc       func(before time.Time) ([]models.Case, error)
	ClaimForClosingFunc        func(id uint) (bool, error)
	ActivateFunc               func(id uint, from string, closesAt time.Time) (bool, error)
	MarkClosedFunc             func(id uint, closedAt time.Time) error
	SetCommitmentFunc          func(id uint, txID string, submittedAt time.Time) error
	UpdateCommitmentStatusFunc func(id uint, from, to string) (bool, error)
}

func (m *MockCaseRepository) Create(c *models.Case) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(c)
	}
	return nil
}

func (m *MockCaseRepository) GetByID(id uint) (*models.Case, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *MockCaseRepository) Update(c *models.Case) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(c)
	}
	return nil
}

func (m *MockCaseRepository) List(status string, page, pageSize int) ([]models.Case, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(status, page, pageSize)
	}
	return []models.Case{}, 0, nil
}

func (m *MockCaseRepository) ListExpired(now time.Time) ([]models.Case, error) {
	if m.ListExpiredFunc != nil {
		return m.ListExpiredFunc(now)
	}
	return []models.Case{}, nil
}

func (m *MockCaseRepository) ListPendingCommitments(limit int) ([]models.Case, error) {
	if m.ListPendingCommitmentsFunc != nil {
		return m.ListPendingCommitmentsFunc(limit)
	}
	return []models.Case{}, nil
}

func (m *MockCaseRepository) ListNeedingCommitment(limit int) ([]models.Case, error) {
	if m.ListNeedingCommitmentFunc != nil {
		return m.ListNeedingCommitmentFunc(limit)
	}
	return []models.Case{}, nil
}

func (m *MockCaseRepository) ListStaleClosing(before time.Time) ([]models.Case, error) {
	if m.ListStaleClosingFunc != nil {
		return m.ListStaleClosingFunc(before)
	}
	return []models.Case{}, nil
}

func (m *MockCaseRepository) ClaimForClosing(id uint) (bool, error) {
	if m.ClaimForClosingFunc != nil {
		return m.ClaimForClosingFunc(id)
	}
	return true, nil
}

func (m *MockCaseRepository) Activate(id uint, from string, closesAt time.Time) (bool, error) {
	if m.ActivateFunc != nil {
		return m.ActivateFunc(id, from, closesAt)
	}
	return true, nil
}

func (m *MockCaseRepository) MarkClosed(id uint, closedAt time.Time) error {
	if m.MarkClosedFunc != nil {
		return m.MarkClosedFunc(id, closedAt)
	}
	return nil
}

func (m *MockCaseRepository) SetCommitment(id uint, txID string, submittedAt time.Time) error {
	if m.SetCommitmentFunc != nil {
		return m.SetCommitmentFunc(id, txID, submittedAt)
	}
	return nil
}

func (m *MockCaseRepository) UpdateCommitmentStatus(id uint, from, to string) (bool, error) {
	if m.UpdateCommitmentStatusFunc != nil {
		return m.UpdateCommitmentStatusFunc(id, from, to)
	}
	return true, nil
}

// MockVoteRepository is a simple mock for vote repository
type MockVoteRepository struct {
	CreateFunc           func(vote *models.Vote) error
	GetByCaseAndUserFunc func(caseID, userID uint) (*models.Vote, error)
	ListByCaseFunc       func(caseID uint) ([]models.Vote, error)
	ListBySideFunc       func(caseID uint, side string) ([]models.Vote, error)
	CountByUserFunc      func(userID uint) (int64, error)
}

func (m *MockVoteRepository) Create(vote *models.Vote) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(vote)
	}
	return nil
}

func (m *MockVoteRepository) GetByCaseAndUser(caseID, userID uint) (*models.Vote, error) {
	if m.GetByCaseAndUserFunc != nil {
		return m.GetByCaseAndUserFunc(caseID, userID)
	}
	return nil, nil
}

func (m *MockVoteRepository) ListByCase(caseID uint) ([]models.Vote, error) {
	if m.ListByCaseFunc != nil {
		return m.ListByCaseFunc(caseID)
	}
	return []models.Vote{}, nil
}

func (m *MockVoteRepository) ListBySide(caseID uint, side string) ([]models.Vote, error) {
	if m.ListBySideFunc != nil {
		return m.ListBySideFunc(caseID, side)
	}
	return []models.Vote{}, nil
}

func (m *MockVoteRepository) CountByUser(userID uint) (int64, error) {
	if m.CountByUserFunc != nil {
		return m.CountByUserFunc(userID)
	}
	return 0, nil
}

// MockArgumentRepository is a simple mock for argument repository
type MockArgumentRepository struct {
	CreateFunc           func(arg *models.Argument, voteID uint) error
	GetByIDFunc          func(id uint) (*models.Argument, error)
	GetByCaseAndUserFunc func(caseID, userID uint) (*models.Argument, error)
	ListByCaseFunc       func(caseID uint) ([]models.Argument, error)
	TopByCaseFunc        func(caseID uint, n int) ([]models.Argument, error)
	MarkTop3Func         func(ids []uint) error
	CountTop3ByUserFunc  func(userID uint) (int64, error)
	LikeFunc             func(argumentID, voterVoteID, userID uint) error
	UnlikeFunc           func(argumentID, voterVoteID, userID uint) (bool, error)
	HasLikedFunc         func(argumentID, userID uint) (bool, error)
}

func (m *MockArgumentRepository) Create(arg *models.Argument, voteID uint) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(arg, voteID)
	}
	return nil
}

func (m *MockArgumentRepository) GetByID(id uint) (*models.Argument, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *MockArgumentRepository) GetByCaseAndUser(caseID, userID uint) (*models.Argument, error) {
	if m.GetByCaseAndUserFunc != nil {
		return m.GetByCaseAndUserFunc(caseID, userID)
	}
	return nil, nil
}

func (m *MockArgumentRepository) ListByCase(caseID uint) ([]models.Argument, error) {
	if m.ListByCaseFunc != nil {
		return m.ListByCaseFunc(caseID)
	}
	return []models.Argument{}, nil
}

func (m *MockArgumentRepository) TopByCase(caseID uint, n int) ([]models.Argument, error) {
	if m.TopByCaseFunc != nil {
		return m.TopByCaseFunc(caseID, n)
	}
	return []models.Argument{}, nil
}

func (m *MockArgumentRepository) MarkTop3(ids []uint) error {
	if m.MarkTop3Func != nil {
		return m.MarkTop3Func(ids)
	}
	return nil
}

func (m *MockArgumentRepository) CountTop3ByUser(userID uint) (int64, error) {
	if m.CountTop3ByUserFunc != nil {
		return m.CountTop3ByUserFunc(userID)
	}
	return 0, nil
}

func (m *MockArgumentRepository) Like(argumentID, voterVoteID, userID uint) error {
	if m.LikeFunc != nil {
		return m.LikeFunc(argumentID, voterVoteID, userID)
	}
	return nil
}

func (m *MockArgumentRepository) Unlike(argumentID, voterVoteID, userID uint) (bool, error) {
	if m.UnlikeFunc != nil {
		return m.UnlikeFunc(argumentID, voterVoteID, userID)
	}
	return true, nil
}

func (m *MockArgumentRepository) HasLiked(argumentID, userID uint) (bool, error) {
	if m.HasLikedFunc != nil {
		return m.HasLikedFunc(argumentID, userID)
	}
	return false, nil
}

// MockRewardRepository is a simple mock for reward repository
type MockRewardRepository struct {
	CreateBatchFunc              func(rewards []models.Reward) error
	GetByIDFunc                  func(id uint) (*models.Reward, error)
	ListByUserFunc               func(userID uint) ([]models.Reward, error)
	CountByCaseFunc              func(caseID uint) (int64, error)
	ListProcessingFunc           func(limit int) ([]models.Reward, error)
	ClaimFunc                    func(id uint, txID string, claimedAt time.Time) (bool, error)
	CompleteFunc                 func(id, userID uint, amount int64, completedAt time.Time) (bool, error)
	FailFunc                     func(id uint) (bool, error)
	SumCompletedByUserFunc       func(since, until time.Time) (map[uint]int64, error)
	CountWinsByUserFunc          func(userID uint) (int64, error)
	CountParticipationsByUserFunc func(userID uint) (int64, error)
}

func (m *MockRewardRepository) CreateBatch(rewards []models.Reward) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(rewards)
	}
	return nil
}

func (m *MockRewardRepository) GetByID(id uint) (*models.Reward, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return nil, nil
}

func (m *MockRewardRepository) ListByUser(userID uint) ([]models.Reward, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(userID)
	}
	return []models.Reward{}, nil
}

func (m *MockRewardRepository) CountByCase(caseID uint) (int64, error) {
	if m.CountByCaseFunc != nil {
		return m.CountByCaseFunc(caseID)
	}
	return 0, nil
}

func (m *MockRewardRepository) ListProcessing(limit int) ([]models.Reward, error) {
	if m.ListProcessingFunc != nil {
		return m.ListProcessingFunc(limit)
	}
	return []models.Reward{}, nil
}

func (m *MockRewardRepository) Claim(id uint, txID string, claimedAt time.Time) (bool, error) {
	if m.ClaimFunc != nil {
		return m.ClaimFunc(id, txID, claimedAt)
	}
	return true, nil
}

func (m *MockRewardRepository) Complete(id, userID uint, amount int64, completedAt time.Time) (bool, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(id, userID, amount, completedAt)
	}
	return true, nil
}

func (m *MockRewardRepository) Fail(id uint) (bool, error) {
	if m.FailFunc != nil {
		return m.FailFunc(id)
	}
	return true, nil
}

func (m *MockRewardRepository) SumCompletedByUser(since, until time.Time) (map[uint]int64, error) {
	if m.SumCompletedByUserFunc != nil {
		return m.SumCompletedByUserFunc(since, until)
	}
	return map[uint]int64{}, nil
}

func (m *MockRewardRepository) CountWinsByUser(userID uint) (int64, error) {
	if m.CountWinsByUserFunc != nil {
		return m.CountWinsByUserFunc(userID)
	}
	return 0, nil
}

func (m *MockRewardRepository) CountParticipationsByUser(userID uint) (int64, error) {
	if m.CountParticipationsByUserFunc != nil {
		return m.CountParticipationsByUserFunc(userID)
	}
	return 0, nil
}

// MockUserRepository is a simple mock for user repository
type MockUserRepository struct {
	CreateFunc        func(user *models.User) error
	GetByIDFunc       func(id uint) (*models.User, error)
	GetByUsernameFunc func(username string) (*models.User, error)
	SetWalletFunc     func(id uint, address string) error
	ListByPointsFunc  func(limit int) ([]models.User, error)
	ListIDsFunc       func() ([]uint, error)
}

func (m *MockUserRepository) Create(user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(user)
	}
	return nil
}

func (m *MockUserRepository) GetByID(id uint) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(id)
	}
	return &models.User{ID: id}, nil
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(username)
	}
	return nil, nil
}

func (m *MockUserRepository) SetWallet(id uint, address string) error {
	if m.SetWalletFunc != nil {
		return m.SetWalletFunc(id, address)
	}
	return nil
}

func (m *MockUserRepository) ListByPoints(limit int) ([]models.User, error) {
	if m.ListByPointsFunc != nil {
		return m.ListByPointsFunc(limit)
	}
	return []models.User{}, nil
}

func (m *MockUserRepository) ListIDs() ([]uint, error) {
	if m.ListIDsFunc != nil {
		return m.ListIDsFunc()
	}
	return []uint{}, nil
}

// MockBadgeRepository is a simple mock for badge repository
type MockBadgeRepository struct {
	SeedCatalogFunc     func(badges []models.Badge) error
	ListCatalogFunc     func() ([]models.Badge, error)
	GetBySlugFunc       func(slug string) (*models.Badge, error)
	HasAwardFunc        func(userID, badgeID uint) (bool, error)
	AwardFunc           func(userID uint, badge *models.Badge, earnedAt time.Time) error
	ListAwardsByUserFunc func(userID uint) ([]models.BadgeAward, error)
	SumBonusByUserFunc  func(since, until time.Time) (map[uint]int64, error)
}

func (m *MockBadgeRepository) SeedCatalog(badges []models.Badge) error {
	if m.SeedCatalogFunc != nil {
		return m.SeedCatalogFunc(badges)
	}
	return nil
}

func (m *MockBadgeRepository) ListCatalog() ([]models.Badge, error) {
	if m.ListCatalogFunc != nil {
		return m.ListCatalogFunc()
	}
	return []models.Badge{}, nil
}

func (m *MockBadgeRepository) GetBySlug(slug string) (*models.Badge, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(slug)
	}
	return nil, nil
}

func (m *MockBadgeRepository) HasAward(userID, badgeID uint) (bool, error) {
	if m.HasAwardFunc != nil {
		return m.HasAwardFunc(userID, badgeID)
	}
	return false, nil
}

func (m *MockBadgeRepository) Award(userID uint, badge *models.Badge, earnedAt time.Time) error {
	if m.AwardFunc != nil {
		return m.AwardFunc(userID, badge, earnedAt)
	}
	return nil
}

func (m *MockBadgeRepository) ListAwardsByUser(userID uint) ([]models.BadgeAward, error) {
	if m.ListAwardsByUserFunc != nil {
		return m.ListAwardsByUserFunc(userID)
	}
	return []models.BadgeAward{}, nil
}

func (m *MockBadgeRepository) SumBonusByUser(since, until time.Time) (map[uint]int64, error) {
	if m.SumBonusByUserFunc != nil {
		return m.SumBonusByUserFunc(since, until)
	}
	return map[uint]int64{}, nil
}

// MockLeaderboardRepository is a simple mock for leaderboard repository
type MockLeaderboardRepository struct {
	ReplaceSnapshotFunc func(period string, entries []models.LeaderboardSnapshot) error
	GetSnapshotFunc     func(period string) ([]models.LeaderboardSnapshot, error)
	GetUserEntryFunc    func(period string, userID uint) (*models.LeaderboardSnapshot, error)
}

func (m *MockLeaderboardRepository) ReplaceSnapshot(period string, entries []models.LeaderboardSnapshot) error {
	if m.ReplaceSnapshotFunc != nil {
		return m.ReplaceSnapshotFunc(period, entries)
	}
	return nil
}

func (m *MockLeaderboardRepository) GetSnapshot(period string) ([]models.LeaderboardSnapshot, error) {
	if m.GetSnapshotFunc != nil {
		return m.GetSnapshotFunc(period)
	}
	return []models.LeaderboardSnapshot{}, nil
}

func (m *MockLeaderboardRepository) GetUserEntry(period string, userID uint) (*models.LeaderboardSnapshot, error) {
	if m.GetUserEntryFunc != nil {
		return m.GetUserEntryFunc(period, userID)
	}
	return nil, nil
}

// MockAuditRepository is a simple mock for the audit repository
type MockAuditRepository struct {
	AppendFunc        func(entry *models.AuditEntry) error
	ListForEntityFunc func(entityType string, entityID uint) ([]models.AuditEntry, error)

	// Entries collects appended entries when AppendFunc is nil
	Entries []models.AuditEntry
}

func (m *MockAuditRepository) Append(entry *models.AuditEntry) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(entry)
	}
	m.Entries = append(m.Entries, *entry)
	return nil
}

func (m *MockAuditRepository) ListForEntity(entityType string, entityID uint) ([]models.AuditEntry, error) {
	if m.ListForEntityFunc != nil {
		return m.ListForEntityFunc(entityType, entityID)
	}
	return []models.AuditEntry{}, nil
}
