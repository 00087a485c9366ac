package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// BadgeRepository handles badge catalog and award database operations.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// SeedCatalog inserts any catalog badges that do not exist yet. Existing
// badges are left untouched so operators can tune them in place.
func (r *BadgeRepository) SeedCatalog(badges []models.Badge) error {
	for i := range badges {
		var count int64
		err := r.db.Model(&models.Badge{}).
			Where("slug = ?", badges[i].Slug).
			Count(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check badge %s: %w", badges[i].Slug, err)
		}
		if count > 0 {
			continue
		}
		if err := r.db.Create(&badges[i]).Error; err != nil {
			return fmt.Errorf("failed to seed badge %s: %w", badges[i].Slug, err)
		}
	}
	return nil
}

// ListCatalog retrieves all badge definitions.
func (r *BadgeRepository) ListCatalog() ([]models.Badge, error) {
	var badges []models.Badge
	if err := r.db.Find(&badges).Error; err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// GetBySlug retrieves a badge definition.
func (r *BadgeRepository) GetBySlug(slug string) (*models.Badge, error) {
	var badge models.Badge
	if err := r.db.Where("slug = ?", slug).First(&badge).Error; err != nil {
		return nil, fmt.Errorf("failed to get badge %s: %w", slug, err)
	}
	return &badge, nil
}

// HasAward reports whether the user already earned the badge.
func (r *BadgeRepository) HasAward(userID, badgeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.BadgeAward{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check badge award: %w", err)
	}
	return count > 0, nil
}

// Award grants the badge and credits its bonus in one transaction. The unique
// index on (user_id, badge_id) rejects a concurrent duplicate, so the bonus is
// credited at most once per user per badge.
func (r *BadgeRepository) Award(userID uint, badge *models.Badge, earnedAt time.Time) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		award := &models.BadgeAward{
			UserID:      userID,
			BadgeID:     badge.ID,
			BonusPoints: badge.BonusPoints,
			EarnedAt:    earnedAt,
		}
		if err := tx.Create(award).Error; err != nil {
			return err
		}
		if badge.BonusPoints == 0 {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("total_points", gorm.Expr("total_points + ?", badge.BonusPoints)).Error
	})
	if err != nil {
		return fmt.Errorf("failed to award badge %s to user %d: %w", badge.Slug, userID, err)
	}
	return nil
}

// ListAwardsByUser retrieves a user's earned badges with definitions preloaded.
func (r *BadgeRepository) ListAwardsByUser(userID uint) ([]models.BadgeAward, error) {
	var awards []models.BadgeAward
	err := r.db.
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&awards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list badge awards for user %d: %w", userID, err)
	}
	return awards, nil
}

// SumBonusByUser sums badge bonus points earned inside a window. A zero until
// means no upper bound.
func (r *BadgeRepository) SumBonusByUser(since, until time.Time) (map[uint]int64, error) {
	type row struct {
		UserID uint
		Total  int64
	}
	query := r.db.Model(&models.BadgeAward{}).
		Select("user_id, SUM(bonus_points) AS total").
		Where("earned_at >= ?", since).
		Group("user_id")
	if !until.IsZero() {
		query = query.Where("earned_at < ?", until)
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to sum badge bonuses: %w", err)
	}

	totals := make(map[uint]int64, len(rows))
	for _, r := range rows {
		totals[r.UserID] = r.Total
	}
	return totals, nil
}
