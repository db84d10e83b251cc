package services

import (
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/errcode"
	"prediction-escrow/internal/ledger"
	"prediction-escrow/internal/models"
)

// VaultService moves value into and out of competition vaults. Deposits are
// authorized by the payer; releases only by re-deriving the vault authority.
type VaultService struct {
	deriver *blockchain.Deriver
	log     *zap.Logger
}

func NewVaultService(deriver *blockchain.Deriver, log *zap.Logger) *VaultService {
	return &VaultService{deriver: deriver, log: log}
}

// VaultAddress returns the vault of competitionID and its bump.
func (s *VaultService) VaultAddress(competitionID string) (solana.PublicKey, uint8, error) {
	return s.deriver.VaultAddress(competitionID)
}

// Deposit moves amount from payer into vault on the payer's signature.
func (s *VaultService) Deposit(tx *ledger.Tx, payer, vault solana.PublicKey, amount uint64, kind models.TransferKind) error {
	return tx.Transfer(payer, vault, amount, kind, blockchain.SignerAuthorization{Signer: payer})
}

// Release pays amount out of the vault of competitionID. The vault authority
// is re-derived here, inside the instruction that validated the payout.
func (s *VaultService) Release(tx *ledger.Tx, competitionID string, to solana.PublicKey, amount uint64) error {
	vault, signer, err := s.deriver.VaultSigner(competitionID)
	if err != nil {
		return err
	}

	balance, err := tx.ReadBalance(vault)
	if err != nil {
		return err
	}
	if amount > balance {
		s.log.Warn("vault balance changed before release",
			zap.String("competition_id", competitionID),
			zap.Uint64("balance", balance),
			zap.Uint64("amount", amount))
		return errcode.New(errcode.InsufficientFunds)
	}

	return tx.Transfer(vault, to, amount, models.TransferKindPayout, signer)
}
