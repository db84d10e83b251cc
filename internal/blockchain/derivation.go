package blockchain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed tags for program-derived accounts.
const (
	CompetitionSeed = "competition"
	VaultSeed       = "vault"
	PredictionSeed  = "prediction"
)

// Deriver computes program-derived addresses for a fixed program id. Any
// observer holding the program id can recompute the same addresses.
type Deriver struct {
	programID solana.PublicKey
}

// NewDeriver creates a deriver for the base58 program id.
func NewDeriver(programID string) (*Deriver, error) {
	pid, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("invalid program ID: %w", err)
	}
	return &Deriver{programID: pid}, nil
}

// ProgramID returns the derivation domain.
func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// CompetitionAddress derives the storage address of a competition record.
func (d *Deriver) CompetitionAddress(competitionID string) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(CompetitionSeeds(competitionID), d.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive competition PDA: %w", err)
	}
	return pda, bump, nil
}

// VaultAddress derives the vault address and its bump for a competition.
func (d *Deriver) VaultAddress(competitionID string) (solana.PublicKey, uint8, error) {
	pda, bump, err := solana.FindProgramAddress(VaultSeeds(competitionID), d.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive vault PDA: %w", err)
	}
	return pda, bump, nil
}

// PredictionAddress derives the storage address of the single prediction a
// user may hold in a competition.
func (d *Deriver) PredictionAddress(competition, user solana.PublicKey) (solana.PublicKey, uint8, error) {
	seeds := [][]byte{[]byte(PredictionSeed), competition.Bytes(), user.Bytes()}
	pda, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("failed to derive prediction PDA: %w", err)
	}
	return pda, bump, nil
}

// VaultSigner re-derives the vault of competitionID and returns the seeds
// that prove the program's authority over it.
func (d *Deriver) VaultSigner(competitionID string) (solana.PublicKey, *DerivedAuthorization, error) {
	vault, bump, err := d.VaultAddress(competitionID)
	if err != nil {
		return solana.PublicKey{}, nil, err
	}
	return vault, &DerivedAuthorization{Seeds: VaultSeeds(competitionID), Bump: bump}, nil
}

func CompetitionSeeds(competitionID string) [][]byte {
	return append([][]byte{[]byte(CompetitionSeed)}, chunkSeed([]byte(competitionID))...)
}

func VaultSeeds(competitionID string) [][]byte {
	return append([][]byte{[]byte(VaultSeed)}, chunkSeed([]byte(competitionID))...)
}

// chunkSeed splits b into MaxSeedLength pieces. Seeds are hashed as one
// concatenated byte string, so the split does not change the address.
func chunkSeed(b []byte) [][]byte {
	var out [][]byte
	for len(b) > solana.MaxSeedLength {
		out = append(out, b[:solana.MaxSeedLength])
		b = b[solana.MaxSeedLength:]
	}
	return append(out, b)
}
