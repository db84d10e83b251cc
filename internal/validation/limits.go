package validation

import "github.com/gagliardetto/solana-go"

// LamportsPerSOL is the number of minor units in one unit of base currency.
const LamportsPerSOL = solana.LAMPORTS_PER_SOL

const (
	MaxCompetitionIDLength = 50
	MaxTokenNameLength     = 20

	SecondsPerDay        int64 = 86400
	MaxCompetitionLength       = 30 * SecondsPerDay

	MaxPrizePool uint64 = 1_000 * LamportsPerSOL
	MaxEntryFee  uint64 = 10 * LamportsPerSOL
	MaxPayout    uint64 = 1_000 * LamportsPerSOL
	MaxAirdrop   uint64 = 1_000 * LamportsPerSOL

	MinGuess uint64 = 1 * LamportsPerSOL
	MaxGuess uint64 = 10_000 * LamportsPerSOL
)
