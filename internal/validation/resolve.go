package validation

import (
	"github.com/gagliardetto/solana-go"

	"prediction-escrow/internal/errcode"
)

// ValidateResolveParams checks a resolution against the vault and its balance
// read in the same instruction.
func ValidateResolveParams(winner, vault solana.PublicKey, payout, vaultBalance uint64) error {
	return Run(
		WinnerSet(winner),
		WinnerNotVault(winner, vault),
		PayoutPositive(payout),
		PayoutCovered(payout, vaultBalance),
		PayoutCapped(payout),
	)
}

// WinnerSet rejects the all-zero key used as the empty identity.
func WinnerSet(winner solana.PublicKey) Check {
	return func() error {
		if winner.IsZero() {
			return errcode.New(errcode.InvalidWinner)
		}
		return nil
	}
}

// WinnerNotVault rejects paying the vault back into itself.
func WinnerNotVault(winner, vault solana.PublicKey) Check {
	return func() error {
		if winner.Equals(vault) {
			return errcode.New(errcode.InvalidWinner)
		}
		return nil
	}
}

func PayoutPositive(payout uint64) Check {
	return func() error {
		if payout == 0 {
			return errcode.New(errcode.InvalidPayout)
		}
		return nil
	}
}

func PayoutCovered(payout, balance uint64) Check {
	return func() error {
		if payout > balance {
			return errcode.New(errcode.InsufficientFunds)
		}
		return nil
	}
}

func PayoutCapped(payout uint64) Check {
	return func() error {
		if payout > MaxPayout {
			return errcode.New(errcode.PayoutTooHigh)
		}
		return nil
	}
}
