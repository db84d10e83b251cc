package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"prediction-escrow/internal/models"
	"prediction-escrow/internal/repository"
)

// AuthService handles authentication business logic
type AuthService struct {
	repo *repository.Repository
	log  *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(repo *repository.Repository, log *zap.Logger) *AuthService {
	return &AuthService{repo: repo, log: log}
}

// ProcessWalletLogin finds or creates a user by wallet address. signedAt is
// the timestamp the wallet signed; a value already used is rejected with
// repository.ErrStaleLogin.
func (s *AuthService) ProcessWalletLogin(ctx context.Context, walletAddress string, signedAt int64) (*models.User, error) {
	user, created, err := s.repo.FindOrCreateUser(ctx, walletAddress, signedAt)
	if errors.Is(err, repository.ErrStaleLogin) {
		s.log.Warn("replayed login rejected", zap.String("wallet", walletAddress), zap.Int64("signed_at", signedAt))
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to process login: %w", err)
	}

	if created {
		s.log.Info("new user created", zap.String("wallet", walletAddress), zap.Uint("user_id", user.ID))
	} else {
		s.log.Info("user logged in", zap.String("wallet", walletAddress), zap.Uint("user_id", user.ID))
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}
