package models

import (
	"time"
)

type CompetitionState uint8

const (
	CompetitionStateActive   CompetitionState = 0
	CompetitionStateResolved CompetitionState = 1
)

func (s CompetitionState) String() string {
	switch s {
	case CompetitionStateActive:
		return "ACTIVE"
	case CompetitionStateResolved:
		return "RESOLVED"
	default:
		return "UNKNOWN"
	}
}

// ParseCompetitionState maps an API filter value to a state.
func ParseCompetitionState(s string) (CompetitionState, bool) {
	switch s {
	case "ACTIVE", "active":
		return CompetitionStateActive, true
	case "RESOLVED", "resolved":
		return CompetitionStateResolved, true
	}
	return 0, false
}

// Competition is stored at the address derived from ("competition", id).
// Amounts are lamports; times are unix seconds.
type Competition struct {
	Address       string           `gorm:"primaryKey;size:44" json:"address"`
	CompetitionID string           `gorm:"column:competition_id;uniqueIndex;size:50;not null" json:"id"`
	Creator       string           `gorm:"size:44;not null;index" json:"creator"`
	Token         string           `gorm:"size:20;not null" json:"token"`
	EndTime       int64            `gorm:"not null;index" json:"end_time"`
	EntryFee      uint64           `gorm:"not null" json:"entry_fee"`
	PrizePool     uint64           `gorm:"not null" json:"prize_pool"`
	State         CompetitionState `gorm:"not null;default:0;index" json:"state"`
	Winner        string           `gorm:"size:44;not null" json:"winner"`
	Bump          uint8            `gorm:"not null" json:"bump"`
	Vault         string           `gorm:"size:44;not null" json:"vault"`
	VaultBump     uint8            `gorm:"not null" json:"vault_bump"`
	Participants  int64            `gorm:"not null;default:0" json:"participants"`
	Payout        uint64           `gorm:"not null;default:0" json:"payout"`
	Residual      uint64           `gorm:"not null;default:0" json:"residual"`
	CreatedAt     int64            `gorm:"not null" json:"created_at"`
	ResolvedAt    *int64           `json:"resolved_at,omitempty"`
}

func (Competition) TableName() string {
	return "competitions"
}

// IsActive reports whether predictions may still be considered.
func (c *Competition) IsActive() bool {
	return c.State == CompetitionStateActive
}

// Expired reports whether now is past the prediction deadline.
func (c *Competition) Expired(now int64) bool {
	return now > c.EndTime
}

// EndsAt returns the deadline as a time.
func (c *Competition) EndsAt() time.Time {
	return time.Unix(c.EndTime, 0).UTC()
}

// Prediction is stored at the address derived from
// ("prediction", competition address, user).
type Prediction struct {
	Address     string `gorm:"primaryKey;size:44" json:"address"`
	Competition string `gorm:"size:44;not null;uniqueIndex:idx_prediction_competition_user" json:"competition"`
	User        string `gorm:"column:user_address;size:44;not null;uniqueIndex:idx_prediction_competition_user;index" json:"user"`
	Guess       uint64 `gorm:"not null" json:"guess"`
	Timestamp   int64  `gorm:"not null" json:"timestamp"`
	Bump        uint8  `gorm:"not null" json:"bump"`
}

func (Prediction) TableName() string {
	return "predictions"
}
