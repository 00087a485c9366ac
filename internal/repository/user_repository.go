package repository

import (
	"fmt"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return &user, nil
}

// SetWallet attaches a payout wallet to the user.
func (r *UserRepository) SetWallet(id uint, address string) error {
	err := r.db.Model(&models.User{}).
		Where("id = ?", id).
		Update("wallet_address", address).Error
	if err != nil {
		return fmt.Errorf("failed to set wallet for user %d: %w", id, err)
	}
	return nil
}

// ListByPoints retrieves users ordered by their running point total.
func (r *UserRepository) ListByPoints(limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("total_points > 0").
		Order("total_points DESC, id ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users by points: %w", err)
	}
	return users, nil
}

// ListIDs retrieves the IDs of all users.
func (r *UserRepository) ListIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	return ids, nil
}
