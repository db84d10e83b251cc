package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"prediction-escrow/internal/models"
)

// GetBalance returns the balance of address; unknown accounts hold zero.
func (r *Repository) GetBalance(ctx context.Context, address string) (uint64, error) {
	var acct models.Account
	err := r.db.WithContext(ctx).Where("address = ?", address).First(&acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Credit adds amount to address, creating the account if needed
func (r *Repository) Credit(ctx context.Context, address string, amount uint64) error {
	acct := models.Account{Address: address, Balance: amount}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"balance":    gorm.Expr("accounts.balance + ?", amount),
			"updated_at": time.Now(),
		}),
	}).Create(&acct).Error
}

// Debit subtracts amount from address. It returns false when the account
// does not hold at least amount.
func (r *Repository) Debit(ctx context.Context, address string, amount uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Account{}).
		Where("address = ? AND balance >= ?", address, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// CreateTransfer appends a journal row
func (r *Repository) CreateTransfer(ctx context.Context, t *models.Transfer) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// GetTransfers returns journal rows touching address, newest first
func (r *Repository) GetTransfers(ctx context.Context, address string, limit int) ([]*models.Transfer, error) {
	var transfers []*models.Transfer
	err := r.db.WithContext(ctx).
		Where("from_address = ? OR to_address = ?", address, address).
		Order("timestamp DESC").
		Limit(limit).
		Find(&transfers).Error
	if err != nil {
		return nil, err
	}
	return transfers, nil
}
