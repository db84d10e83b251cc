package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is a balance holder: a wallet or a program-derived vault.
type Account struct {
	Address   string    `gorm:"primaryKey;size:44" json:"address"`
	Balance   uint64    `gorm:"not null;default:0" json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

type TransferKind string

const (
	TransferKindFunding  TransferKind = "FUNDING"
	TransferKindEntryFee TransferKind = "ENTRY_FEE"
	TransferKindPayout   TransferKind = "PAYOUT"
	TransferKindAirdrop  TransferKind = "AIRDROP"
)

// Transfer is the journal row written for every value movement.
type Transfer struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Instruction string       `gorm:"size:50;not null;index" json:"instruction"`
	Kind        TransferKind `gorm:"size:20;not null" json:"kind"`
	From        string       `gorm:"column:from_address;size:44;index" json:"from"`
	To          string       `gorm:"column:to_address;size:44;not null;index" json:"to"`
	Amount      uint64       `gorm:"not null" json:"amount"`
	Authority   string       `gorm:"size:44;not null" json:"authority"`
	Timestamp   int64        `gorm:"not null" json:"timestamp"`
}

func (Transfer) TableName() string {
	return "transfers"
}
