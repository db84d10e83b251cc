package models

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// CreateCompetitionRequest is the body of POST /api/competitions
type CreateCompetitionRequest struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	EndTime   int64  `json:"end_time"`
	EntryFee  uint64 `json:"entry_fee"`
	PrizePool uint64 `json:"prize_pool"`
}

// SubmitPredictionRequest is the body of POST /api/competitions/:id/predictions
type SubmitPredictionRequest struct {
	Guess uint64 `json:"guess"`
}

// ResolveCompetitionRequest is the body of POST /api/competitions/:id/resolve
type ResolveCompetitionRequest struct {
	Winner string `json:"winner" binding:"required"`
	Payout uint64 `json:"payout"`
}

// AirdropRequest is the body of POST /api/dev/airdrop
type AirdropRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount" binding:"required,gt=0,lte=1000000000000"`
}

// CompetitionResponse represents a competition in API responses
type CompetitionResponse struct {
	Competition
	StateName    string          `json:"state_name"`
	EndTimeISO   string          `json:"end_time_iso"`
	EntryFeeSOL  decimal.Decimal `json:"entry_fee_sol"`
	PrizePoolSOL decimal.Decimal `json:"prize_pool_sol"`
	PayoutSOL    decimal.Decimal `json:"payout_sol"`
	ResidualSOL  decimal.Decimal `json:"residual_sol"`
}

// NewCompetitionResponse decorates c with display fields.
func NewCompetitionResponse(c *Competition) CompetitionResponse {
	return CompetitionResponse{
		Competition:  *c,
		StateName:    c.State.String(),
		EndTimeISO:   c.EndsAt().Format(time.RFC3339),
		EntryFeeSOL:  LamportsToSOL(c.EntryFee),
		PrizePoolSOL: LamportsToSOL(c.PrizePool),
		PayoutSOL:    LamportsToSOL(c.Payout),
		ResidualSOL:  LamportsToSOL(c.Residual),
	}
}

// PredictionResponse represents a prediction in API responses
type PredictionResponse struct {
	Prediction
	GuessSOL     decimal.Decimal `json:"guess_sol"`
	TimestampISO string          `json:"timestamp_iso"`
}

func NewPredictionResponse(p *Prediction) PredictionResponse {
	return PredictionResponse{
		Prediction:   *p,
		GuessSOL:     LamportsToSOL(p.Guess),
		TimestampISO: time.Unix(p.Timestamp, 0).UTC().Format(time.RFC3339),
	}
}

// VaultResponse describes a competition's escrow account
type VaultResponse struct {
	CompetitionID string          `json:"competition_id"`
	Address       string          `json:"address"`
	Bump          uint8           `json:"bump"`
	Balance       uint64          `json:"balance"`
	BalanceSOL    decimal.Decimal `json:"balance_sol"`
	Residual      uint64          `json:"residual"`
	State         string          `json:"state"`
}

// BalanceResponse describes any ledger account
type BalanceResponse struct {
	Address    string          `json:"address"`
	Balance    uint64          `json:"balance"`
	BalanceSOL decimal.Decimal `json:"balance_sol"`
}

// LamportsToSOL converts minor units to a SOL amount for display.
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9)
}
