package repository

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

func testBadge(slug string, bonus int64) models.Badge {
	return models.Badge{
		Slug:        slug,
		Name:        slug,
		Description: "test badge",
		Icon:        "medal",
		BonusPoints: bonus,
		Criteria:    json.RawMessage(`{"metric":"wins","operator":">=","value":1}`),
	}
}

func TestBadgeRepository_SeedCatalog(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)

	if err := repo.SeedCatalog([]models.Badge{testBadge("first_win", 50)}); err != nil {
		t.Fatalf("SeedCatalog() failed: %v", err)
	}

	// A tuned badge survives a re-seed
	badge, err := repo.GetBySlug("first_win")
	if err != nil {
		t.Fatalf("GetBySlug() failed: %v", err)
	}
	db.Model(badge).Update("bonus_points", 75)

	if err := repo.SeedCatalog([]models.Badge{testBadge("first_win", 50), testBadge("dedicated", 100)}); err != nil {
		t.Fatalf("SeedCatalog() re-run failed: %v", err)
	}

	badge, err = repo.GetBySlug("first_win")
	if err != nil {
		t.Fatalf("GetBySlug() failed: %v", err)
	}
	if badge.BonusPoints != 75 {
		t.Errorf("Expected tuned bonus 75 to survive re-seed, got %d", badge.BonusPoints)
	}

	badges, err := repo.ListCatalog()
	if err != nil {
		t.Fatalf("ListCatalog() failed: %v", err)
	}
	if len(badges) != 2 {
		t.Errorf("Expected 2 badges, got %d", len(badges))
	}
}

func TestBadgeRepository_Award(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)

	alice := createTestUser(t, db, "alice")
	if err := repo.SeedCatalog([]models.Badge{testBadge("first_win", 50)}); err != nil {
		t.Fatalf("SeedCatalog() failed: %v", err)
	}
	badge, err := repo.GetBySlug("first_win")
	if err != nil {
		t.Fatalf("GetBySlug() failed: %v", err)
	}

	if err := repo.Award(alice.ID, badge, time.Now()); err != nil {
		t.Fatalf("Award() failed: %v", err)
	}

	// Bonus credited with the award
	var user models.User
	db.First(&user, alice.ID)
	if user.TotalPoints != 50 {
		t.Errorf("Expected 50 total points, got %d", user.TotalPoints)
	}

	// A second award is rejected by the unique index
	if err := repo.Award(alice.ID, badge, time.Now()); err == nil {
		t.Fatal("Expected duplicate award to be rejected")
	}

	// The failed transaction must not credit the bonus again
	db.First(&user, alice.ID)
	if user.TotalPoints != 50 {
		t.Errorf("Expected total points to stay 50, got %d", user.TotalPoints)
	}

	has, err := repo.HasAward(alice.ID, badge.ID)
	if err != nil {
		t.Fatalf("HasAward() failed: %v", err)
	}
	if !has {
		t.Error("Expected award to be recorded")
	}
}

func TestBadgeRepository_ListAwardsByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBadgeRepository(db)

	alice := createTestUser(t, db, "alice")
	if err := repo.SeedCatalog([]models.Badge{
		testBadge("first_win", 50),
		testBadge("dedicated", 100),
	}); err != nil {
		t.Fatalf("SeedCatalog() failed: %v", err)
	}

	first, _ := repo.GetBySlug("first_win")
	dedicated, _ := repo.GetBySlug("dedicated")

	if err := repo.Award(alice.ID, first, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Award() failed: %v", err)
	}
	if err := repo.Award(alice.ID, dedicated, time.Now()); err != nil {
		t.Fatalf("Award() failed: %v", err)
	}

	awards, err := repo.ListAwardsByUser(alice.ID)
	if err != nil {
		t.Fatalf("ListAwardsByUser() failed: %v", err)
	}
	if len(awards) != 2 {
		t.Fatalf("Expected 2 awards, got %d", len(awards))
	}
	if awards[0].Badge.Slug != "first_win" {
		t.Errorf("Expected earliest award first, got %q", awards[0].Badge.Slug)
	}
}
