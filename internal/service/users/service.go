// Package users manages platform user identity and wallets.
package users

import (
	"context"
	"fmt"

	"github.com/huutrungle2001/moral-duel-api/internal/models"
	"github.com/huutrungle2001/moral-duel-api/internal/repository"
	"github.com/huutrungle2001/moral-duel-api/pkg/logger"
)

// UserRepository interface for user operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	SetWallet(id uint, address string) error
}

// BadgeEvaluator re-checks badge criteria for one user after a profile change.
type BadgeEvaluator interface {
	EvaluateUser(ctx context.Context, userID uint) (int, error)
}

// Service handles user registration and wallet management.
type Service struct {
	userRepo UserRepository
	badges   BadgeEvaluator
	log      *logger.Logger
}

// NewService creates a new user service.
func NewService(userRepo *repository.UserRepository, badges BadgeEvaluator, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, badges: badges, log: log}
}

// NewServiceWithInterfaces creates a new user service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(userRepo UserRepository, badges BadgeEvaluator, log *logger.Logger) *Service {
	return &Service{userRepo: userRepo, badges: badges, log: log}
}

// Register creates a new user.
func (s *Service) Register(ctx context.Context, username, email string) (*models.User, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return nil, fmt.Errorf("username %q is taken", username)
	}

	user := &models.User{Username: username, Email: email}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	s.log.Info().Uint("user_id", user.ID).Str("username", username).Msg("User registered")
	return user, nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// ConnectWallet attaches a payout wallet to the user and re-evaluates their
// badges, which grants the wallet badge on first connect.
func (s *Service) ConnectWallet(ctx context.Context, userID uint, address string) (*models.User, error) {
	if address == "" {
		return nil, fmt.Errorf("wallet address is required")
	}
	if _, err := s.userRepo.GetByID(userID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetWallet(userID, address); err != nil {
		return nil, err
	}

	if s.badges != nil {
		if _, err := s.badges.EvaluateUser(ctx, userID); err != nil {
			s.log.Warn().Err(err).Uint("user_id", userID).Msg("Badge evaluation after wallet connect failed")
		}
	}

	s.log.Info().Uint("user_id", userID).Msg("Wallet connected")
	return s.userRepo.GetByID(userID)
}
