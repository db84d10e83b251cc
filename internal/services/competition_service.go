package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/errcode"
	"prediction-escrow/internal/ledger"
	"prediction-escrow/internal/models"
	"prediction-escrow/internal/repository"
	"prediction-escrow/internal/validation"
)

// CompetitionService runs the competition lifecycle: Create, SubmitPrediction
// and Resolve. Each is one ledger instruction.
type CompetitionService struct {
	ledger  *ledger.Ledger
	deriver *blockchain.Deriver
	vaults  *VaultService
	log     *zap.Logger
}

func NewCompetitionService(l *ledger.Ledger, deriver *blockchain.Deriver, vaults *VaultService, log *zap.Logger) *CompetitionService {
	return &CompetitionService{
		ledger:  l,
		deriver: deriver,
		vaults:  vaults,
		log:     log,
	}
}

// Create validates the parameters, allocates the competition record and moves
// the prize pool from creator into the vault.
func (s *CompetitionService) Create(ctx context.Context, creator solana.PublicKey, req *models.CreateCompetitionRequest) (*models.Competition, error) {
	var created *models.Competition

	accounts := append(s.competitionAccounts(req.ID), creator)
	err := s.ledger.Execute(ctx, "create_competition", accounts, func(tx *ledger.Tx) error {
		now := tx.CurrentTime()
		params := validation.CompetitionParams{
			ID:        req.ID,
			Token:     req.Token,
			EndTime:   req.EndTime,
			EntryFee:  req.EntryFee,
			PrizePool: req.PrizePool,
		}
		if err := validation.ValidateCompetitionParams(params, now); err != nil {
			return err
		}

		address, bump, err := s.deriver.CompetitionAddress(req.ID)
		if err != nil {
			return err
		}
		vault, vaultBump, err := s.vaults.VaultAddress(req.ID)
		if err != nil {
			return err
		}

		c := &models.Competition{
			Address:       address.String(),
			CompetitionID: req.ID,
			Creator:       creator.String(),
			Token:         req.Token,
			EndTime:       req.EndTime,
			EntryFee:      req.EntryFee,
			PrizePool:     req.PrizePool,
			State:         models.CompetitionStateActive,
			Winner:        solana.PublicKey{}.String(),
			Bump:          bump,
			Vault:         vault.String(),
			VaultBump:     vaultBump,
			CreatedAt:     now,
		}
		if err := tx.CreateCompetition(c); err != nil {
			return err
		}
		if err := s.vaults.Deposit(tx, creator, vault, req.PrizePool, models.TransferKindFunding); err != nil {
			return err
		}

		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("competition created",
		zap.String("competition_id", created.CompetitionID),
		zap.String("address", created.Address),
		zap.String("vault", created.Vault),
		zap.String("creator", created.Creator),
		zap.Uint64("prize_pool", created.PrizePool),
		zap.Uint64("entry_fee", created.EntryFee),
		zap.Int64("end_time", created.EndTime))
	return created, nil
}

// SubmitPrediction records user's guess and moves the entry fee into the
// vault. A resolved competition and one past its deadline are both reported
// as CompetitionClosed.
func (s *CompetitionService) SubmitPrediction(ctx context.Context, user solana.PublicKey, competitionID string, guess uint64) (*models.Prediction, error) {
	address, _, err := s.deriver.CompetitionAddress(competitionID)
	if err != nil {
		return nil, errcode.New(errcode.CompetitionNotFound)
	}
	vault, _, err := s.vaults.VaultAddress(competitionID)
	if err != nil {
		return nil, errcode.New(errcode.CompetitionNotFound)
	}
	predictionAddr, bump, err := s.deriver.PredictionAddress(address, user)
	if err != nil {
		return nil, err
	}

	var submitted *models.Prediction
	accounts := []solana.PublicKey{address, vault, user, predictionAddr}
	err = s.ledger.Execute(ctx, "submit_prediction", accounts, func(tx *ledger.Tx) error {
		now := tx.CurrentTime()
		c, err := tx.LoadCompetition(address)
		if err != nil {
			return err
		}
		if !c.IsActive() || c.Expired(now) {
			return errcode.New(errcode.CompetitionClosed)
		}
		if err := validation.ValidatePredictionGuess(guess); err != nil {
			return err
		}

		p := &models.Prediction{
			Address:     predictionAddr.String(),
			Competition: address.String(),
			User:        user.String(),
			Guess:       guess,
			Timestamp:   now,
			Bump:        bump,
		}
		if err := tx.CreatePrediction(p); err != nil {
			return err
		}
		if err := s.vaults.Deposit(tx, user, vault, c.EntryFee, models.TransferKindEntryFee); err != nil {
			return err
		}

		submitted = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("prediction submitted",
		zap.String("competition_id", competitionID),
		zap.String("prediction", submitted.Address),
		zap.String("user", submitted.User),
		zap.Uint64("guess", submitted.Guess))
	return submitted, nil
}

// Resolve declares the winner and pays payout out of the vault. Only the
// creator may resolve, and only once. The vault balance left after the
// payout is recorded as the residual.
func (s *CompetitionService) Resolve(ctx context.Context, caller solana.PublicKey, competitionID string, winner solana.PublicKey, payout uint64) (*models.Competition, error) {
	address, _, err := s.deriver.CompetitionAddress(competitionID)
	if err != nil {
		return nil, errcode.New(errcode.CompetitionNotFound)
	}
	vault, _, err := s.vaults.VaultAddress(competitionID)
	if err != nil {
		return nil, errcode.New(errcode.CompetitionNotFound)
	}

	var resolved *models.Competition
	accounts := []solana.PublicKey{address, vault, caller, winner}
	err = s.ledger.Execute(ctx, "resolve_competition", accounts, func(tx *ledger.Tx) error {
		c, err := tx.LoadCompetition(address)
		if err != nil {
			return err
		}
		if !c.IsActive() {
			return errcode.New(errcode.AlreadyResolved)
		}
		if c.Creator != caller.String() {
			return errcode.New(errcode.UnauthorizedAccess)
		}

		balance, err := tx.ReadBalance(vault)
		if err != nil {
			return err
		}
		if err := validation.ValidateResolveParams(winner, vault, payout, balance); err != nil {
			return err
		}

		if err := s.vaults.Release(tx, competitionID, winner, payout); err != nil {
			return err
		}
		residual, err := tx.ReadBalance(vault)
		if err != nil {
			return err
		}

		c.Winner = winner.String()
		if err := tx.MarkResolved(c, payout, residual); err != nil {
			return err
		}

		resolved = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("competition resolved",
		zap.String("competition_id", competitionID),
		zap.String("winner", resolved.Winner),
		zap.Uint64("payout", resolved.Payout),
		zap.Uint64("residual", resolved.Residual))
	if resolved.Residual > 0 {
		s.log.Warn("vault residual has no destination",
			zap.String("competition_id", competitionID),
			zap.String("vault", resolved.Vault),
			zap.Uint64("residual", resolved.Residual))
	}
	return resolved, nil
}

// GetCompetition returns the competition with the given id.
func (s *CompetitionService) GetCompetition(ctx context.Context, competitionID string) (*models.Competition, error) {
	var c *models.Competition
	err := s.ledger.Read(ctx, func(tx *ledger.Tx) error {
		var err error
		c, err = tx.GetCompetitionByID(competitionID)
		return err
	})
	return c, err
}

// ListCompetitions returns competitions matching f, newest first.
func (s *CompetitionService) ListCompetitions(ctx context.Context, f repository.CompetitionFilter) ([]*models.Competition, error) {
	var out []*models.Competition
	err := s.ledger.Read(ctx, func(tx *ledger.Tx) error {
		var err error
		out, err = tx.Repository().ListCompetitions(ctx, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return out, nil
}

// GetPredictions lists the predictions submitted to a competition.
func (s *CompetitionService) GetPredictions(ctx context.Context, competitionID string) ([]*models.Prediction, error) {
	var out []*models.Prediction
	err := s.ledger.Read(ctx, func(tx *ledger.Tx) error {
		c, err := tx.GetCompetitionByID(competitionID)
		if err != nil {
			return err
		}
		out, err = tx.Repository().GetPredictions(ctx, c.Address)
		return err
	})
	return out, err
}

// GetUserPrediction returns user's prediction in a competition, if any.
func (s *CompetitionService) GetUserPrediction(ctx context.Context, competitionID string, user solana.PublicKey) (*models.Prediction, bool, error) {
	var p *models.Prediction
	err := s.ledger.Read(ctx, func(tx *ledger.Tx) error {
		c, err := tx.GetCompetitionByID(competitionID)
		if err != nil {
			return err
		}
		p, err = tx.Repository().GetPrediction(ctx, c.Address, user.String())
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// GetVault describes the escrow account of a competition.
func (s *CompetitionService) GetVault(ctx context.Context, competitionID string) (*models.VaultResponse, error) {
	var resp *models.VaultResponse
	err := s.ledger.Read(ctx, func(tx *ledger.Tx) error {
		c, err := tx.GetCompetitionByID(competitionID)
		if err != nil {
			return err
		}
		vault, bump, err := s.vaults.VaultAddress(competitionID)
		if err != nil {
			return err
		}
		balance, err := tx.ReadBalance(vault)
		if err != nil {
			return err
		}
		resp = &models.VaultResponse{
			CompetitionID: competitionID,
			Address:       vault.String(),
			Bump:          bump,
			Balance:       balance,
			BalanceSOL:    models.LamportsToSOL(balance),
			Residual:      c.Residual,
			State:         c.State.String(),
		}
		return nil
	})
	return resp, err
}

// GetBalance reads any ledger account.
func (s *CompetitionService) GetBalance(ctx context.Context, address solana.PublicKey) (*models.BalanceResponse, error) {
	var balance uint64
	err := s.ledger.Read(ctx, func(tx *ledger.Tx) error {
		var err error
		balance, err = tx.ReadBalance(address)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.BalanceResponse{
		Address:    address.String(),
		Balance:    balance,
		BalanceSOL: models.LamportsToSOL(balance),
	}, nil
}

// Airdrop issues amount to an account. Development networks only.
func (s *CompetitionService) Airdrop(ctx context.Context, to solana.PublicKey, amount uint64) (*models.BalanceResponse, error) {
	if err := validation.ValidateAirdropAmount(amount); err != nil {
		return nil, err
	}
	err := s.ledger.Execute(ctx, "airdrop", []solana.PublicKey{to}, func(tx *ledger.Tx) error {
		return tx.Airdrop(to, amount)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("airdrop", zap.String("to", to.String()), zap.Uint64("amount", amount))
	return s.GetBalance(ctx, to)
}

// competitionAccounts lists the derived accounts of an id for locking. An id
// too long to derive fails validation before it is ever used as an address.
func (s *CompetitionService) competitionAccounts(competitionID string) []solana.PublicKey {
	var out []solana.PublicKey
	if addr, _, err := s.deriver.CompetitionAddress(competitionID); err == nil {
		out = append(out, addr)
	}
	if vault, _, err := s.vaults.VaultAddress(competitionID); err == nil {
		out = append(out, vault)
	}
	return out
}
