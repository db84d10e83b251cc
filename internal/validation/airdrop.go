package validation

import "prediction-escrow/internal/errcode"

// ValidateAirdropAmount bounds a faucet credit to (0, MaxAirdrop].
func ValidateAirdropAmount(amount uint64) error {
	if amount == 0 || amount > MaxAirdrop {
		return errcode.New(errcode.InvalidAirdropAmount)
	}
	return nil
}
