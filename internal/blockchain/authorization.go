package blockchain

import (
	"github.com/gagliardetto/solana-go"
)

// Authorization proves the right to debit an account.
type Authorization interface {
	// Authorizes reports whether the proof covers debits from account.
	Authorizes(account, programID solana.PublicKey) bool
	// Authority names the party the proof stands for, for the transfer journal.
	Authority() string
}

// SignerAuthorization is the consent of an external key holder whose
// signature was verified before the instruction started.
type SignerAuthorization struct {
	Signer solana.PublicKey
}

func (a SignerAuthorization) Authorizes(account, _ solana.PublicKey) bool {
	return !a.Signer.IsZero() && a.Signer.Equals(account)
}

func (a SignerAuthorization) Authority() string {
	return a.Signer.String()
}

// DerivedAuthorization signs for a program-derived address. It is valid only
// if the seeds and bump recompute to the debited account under the program
// id, so no key material is involved.
type DerivedAuthorization struct {
	Seeds [][]byte
	Bump  uint8
}

func (a *DerivedAuthorization) Authorizes(account, programID solana.PublicKey) bool {
	if a == nil {
		return false
	}
	seeds := make([][]byte, 0, len(a.Seeds)+1)
	seeds = append(seeds, a.Seeds...)
	seeds = append(seeds, []byte{a.Bump})

	addr, err := solana.CreateProgramAddress(seeds, programID)
	if err != nil {
		return false
	}
	return addr.Equals(account)
}

func (a *DerivedAuthorization) Authority() string {
	return "program"
}
