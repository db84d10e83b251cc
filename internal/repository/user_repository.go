package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"prediction-escrow/internal/models"
	"prediction-escrow/internal/utils"
)

// ErrStaleLogin means the signed login timestamp is not newer than the last
// one accepted for the wallet.
var ErrStaleLogin = errors.New("login signature already used")

// FindOrCreateUser returns the user for wallet, creating it on first login.
// signedAt is the timestamp inside the login signature and must increase
// from one login to the next.
func (r *Repository) FindOrCreateUser(ctx context.Context, wallet string, signedAt int64) (*models.User, bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&user).Error
	now := time.Now()

	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{
			WalletAddress: wallet,
			Nickname:      utils.NicknameFor(wallet),
			LastLoginAt:   now,
			LastSignedAt:  signedAt,
		}
		if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, false, err
		}
		return &user, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND last_signed_at < ?", user.ID, signedAt).
		Updates(map[string]interface{}{
			"last_login_at":  now,
			"last_signed_at": signedAt,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, ErrStaleLogin
	}
	user.LastLoginAt = now
	user.LastSignedAt = signedAt
	return &user, false, nil
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
