package badges

import (
	"context"
	"testing"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
	"github.com/huutrungle2001/moral-duel-api/test/mocks"
)

func testService(badgeRepo *mocks.MockBadgeRepository, rewardRepo *mocks.MockRewardRepository, argRepo *mocks.MockArgumentRepository, voteRepo *mocks.MockVoteRepository, userRepo *mocks.MockUserRepository) *Service {
	return NewServiceWithInterfaces(
		badgeRepo, rewardRepo, argRepo, voteRepo, userRepo,
		logger.New("error", "console", "stdout"),
	)
}

func TestDefaultCatalogCriteria(t *testing.T) {
	catalog := DefaultCatalog()
	if len(catalog) != 8 {
		t.Fatalf("expected 8 badges, got %d", len(catalog))
	}

	bySlug := make(map[string]models.Badge)
	for _, b := range catalog {
		bySlug[b.Slug] = b
	}

	svc := testService(&mocks.MockBadgeRepository{}, &mocks.MockRewardRepository{}, &mocks.MockArgumentRepository{}, &mocks.MockVoteRepository{}, &mocks.MockUserRepository{})

	firstWin := bySlug["first_win"]
	if firstWin.BonusPoints != 50 {
		t.Errorf("expected first_win bonus 50, got %d", firstWin.BonusPoints)
	}
	earned, err := svc.meetsCriteria(1, &firstWin)
	if err != nil {
		t.Fatalf("failed to evaluate first_win: %v", err)
	}
	if earned {
		t.Error("expected first_win unearned with zero wins")
	}

	wallet := bySlug["wallet_connected"]
	earned, err = svc.meetsCriteria(1, &wallet)
	if err != nil {
		t.Fatalf("failed to evaluate wallet_connected: %v", err)
	}
	if earned {
		t.Error("expected wallet_connected unearned without wallet")
	}
}

func TestEvaluateUserAwardsEarnedBadges(t *testing.T) {
	awarded := []string{}
	badgeRepo := &mocks.MockBadgeRepository{
		ListCatalogFunc: func() ([]models.Badge, error) {
			catalog := DefaultCatalog()
			for i := range catalog {
				catalog[i].ID = uint(i + 1)
			}
			return catalog, nil
		},
		AwardFunc: func(userID uint, badge *models.Badge, earnedAt time.Time) error {
			awarded = append(awarded, badge.Slug)
			return nil
		},
	}
	rewardRepo := &mocks.MockRewardRepository{
		CountWinsByUserFunc: func(userID uint) (int64, error) { return 5, nil },
	}
	voteRepo := &mocks.MockVoteRepository{
		CountByUserFunc: func(userID uint) (int64, error) { return 12, nil },
	}

	svc := testService(badgeRepo, rewardRepo, &mocks.MockArgumentRepository{}, voteRepo, &mocks.MockUserRepository{})

	n, err := svc.EvaluateUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("failed to evaluate user: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 badges awarded, got %d", n)
	}

	want := map[string]bool{"first_win": true, "five_wins": true}
	for _, slug := range awarded {
		if !want[slug] {
			t.Errorf("unexpected badge awarded: %s", slug)
		}
	}
}

func TestEvaluateUserSkipsAlreadyAwarded(t *testing.T) {
	awards := 0
	badgeRepo := &mocks.MockBadgeRepository{
		ListCatalogFunc: func() ([]models.Badge, error) {
			catalog := DefaultCatalog()
			for i := range catalog {
				catalog[i].ID = uint(i + 1)
			}
			return catalog, nil
		},
		HasAwardFunc: func(userID, badgeID uint) (bool, error) { return true, nil },
		AwardFunc: func(userID uint, badge *models.Badge, earnedAt time.Time) error {
			awards++
			return nil
		},
	}
	rewardRepo := &mocks.MockRewardRepository{
		CountWinsByUserFunc: func(userID uint) (int64, error) { return 10, nil },
	}

	svc := testService(badgeRepo, rewardRepo, &mocks.MockArgumentRepository{}, &mocks.MockVoteRepository{}, &mocks.MockUserRepository{})

	n, err := svc.EvaluateUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("failed to evaluate user: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no new awards, got %d", n)
	}
	if awards != 0 {
		t.Errorf("expected Award never called, called %d times", awards)
	}
}

func TestEvaluateUserWalletFlag(t *testing.T) {
	awarded := []string{}
	badgeRepo := &mocks.MockBadgeRepository{
		ListCatalogFunc: func() ([]models.Badge, error) {
			catalog := DefaultCatalog()
			for i := range catalog {
				catalog[i].ID = uint(i + 1)
			}
			return catalog, nil
		},
		AwardFunc: func(userID uint, badge *models.Badge, earnedAt time.Time) error {
			awarded = append(awarded, badge.Slug)
			return nil
		},
	}
	userRepo := &mocks.MockUserRepository{
		GetByIDFunc: func(id uint) (*models.User, error) {
			return &models.User{ID: id, WalletAddress: "dx1qtestwallet"}, nil
		},
	}

	svc := testService(badgeRepo, &mocks.MockRewardRepository{}, &mocks.MockArgumentRepository{}, &mocks.MockVoteRepository{}, userRepo)

	n, err := svc.EvaluateUser(context.Background(), 3)
	if err != nil {
		t.Fatalf("failed to evaluate user: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 badge, got %d (%v)", n, awarded)
	}
	if awarded[0] != "wallet_connected" {
		t.Errorf("expected wallet_connected, got %s", awarded[0])
	}
}

func TestEvaluateAllBadgesContinuesOnUserError(t *testing.T) {
	badgeRepo := &mocks.MockBadgeRepository{
		ListCatalogFunc: func() ([]models.Badge, error) {
			catalog := DefaultCatalog()
			for i := range catalog {
				catalog[i].ID = uint(i + 1)
			}
			return catalog, nil
		},
		HasAwardFunc: func(userID, badgeID uint) (bool, error) {
			if userID == 1 {
				return false, errStub
			}
			return false, nil
		},
	}
	rewardRepo := &mocks.MockRewardRepository{
		CountWinsByUserFunc: func(userID uint) (int64, error) { return 1, nil },
	}
	userRepo := &mocks.MockUserRepository{
		ListIDsFunc: func() ([]uint, error) { return []uint{1, 2}, nil },
	}

	svc := testService(badgeRepo, rewardRepo, &mocks.MockArgumentRepository{}, &mocks.MockVoteRepository{}, userRepo)

	n, err := svc.EvaluateAllBadges(context.Background())
	if err != nil {
		t.Fatalf("sweep should not fail on a single user error: %v", err)
	}
	// User 2 still earns first_win
	if n != 1 {
		t.Errorf("expected 1 badge awarded, got %d", n)
	}
}

type stubError string

func (e stubError) Error() string { return string(e) }

const errStub = stubError("boom")
