package validation

import (
	"unicode"

	"prediction-escrow/internal/errcode"
)

// CompetitionParams are the creator-supplied fields of a new competition.
type CompetitionParams struct {
	ID        string
	Token     string
	EndTime   int64
	EntryFee  uint64
	PrizePool uint64
}

// ValidateCompetitionParams checks p against the creation rules at now
// (unix seconds).
func ValidateCompetitionParams(p CompetitionParams, now int64) error {
	return Run(
		CompetitionIDNotEmpty(p.ID),
		CompetitionIDLength(p.ID),
		CompetitionIDCharset(p.ID),
		TokenNotEmpty(p.Token),
		TokenLength(p.Token),
		TokenCharset(p.Token),
		EndTimeInFuture(p.EndTime, now),
		EndTimeWithinWindow(p.EndTime, now),
		PrizePoolPositive(p.PrizePool),
		PrizePoolCapped(p.PrizePool),
		EntryFeeWithinPrizePool(p.EntryFee, p.PrizePool),
		EntryFeeCapped(p.EntryFee),
	)
}

func CompetitionIDNotEmpty(id string) Check {
	return func() error {
		if id == "" {
			return errcode.New(errcode.EmptyCompetitionID)
		}
		return nil
	}
}

// CompetitionIDLength limits the id to MaxCompetitionIDLength bytes.
func CompetitionIDLength(id string) Check {
	return func() error {
		if len(id) > MaxCompetitionIDLength {
			return errcode.New(errcode.CompetitionIDTooLong)
		}
		return nil
	}
}

// CompetitionIDCharset allows letters, digits, '_' and '-'.
func CompetitionIDCharset(id string) Check {
	return func() error {
		for _, r := range id {
			if !isAlphanumeric(r) && r != '_' && r != '-' {
				return errcode.New(errcode.InvalidCompetitionIDFormat)
			}
		}
		return nil
	}
}

func TokenNotEmpty(token string) Check {
	return func() error {
		if token == "" {
			return errcode.New(errcode.EmptyTokenName)
		}
		return nil
	}
}

func TokenLength(token string) Check {
	return func() error {
		if len(token) > MaxTokenNameLength {
			return errcode.New(errcode.TokenNameTooLong)
		}
		return nil
	}
}

// TokenCharset allows letters, digits and spaces.
func TokenCharset(token string) Check {
	return func() error {
		for _, r := range token {
			if !isAlphanumeric(r) && r != ' ' {
				return errcode.New(errcode.InvalidTokenNameFormat)
			}
		}
		return nil
	}
}

// EndTimeInFuture requires endTime strictly after now.
func EndTimeInFuture(endTime, now int64) Check {
	return func() error {
		if endTime <= now {
			return errcode.New(errcode.EndTimeInPast)
		}
		return nil
	}
}

// EndTimeWithinWindow caps endTime at now + 30 days, inclusive.
func EndTimeWithinWindow(endTime, now int64) Check {
	return func() error {
		if endTime > now+MaxCompetitionLength {
			return errcode.New(errcode.EndTimeTooFar)
		}
		return nil
	}
}

func PrizePoolPositive(prizePool uint64) Check {
	return func() error {
		if prizePool == 0 {
			return errcode.New(errcode.InvalidPrizePool)
		}
		return nil
	}
}

func PrizePoolCapped(prizePool uint64) Check {
	return func() error {
		if prizePool > MaxPrizePool {
			return errcode.New(errcode.PrizePoolTooHigh)
		}
		return nil
	}
}

func EntryFeeWithinPrizePool(entryFee, prizePool uint64) Check {
	return func() error {
		if entryFee > prizePool {
			return errcode.New(errcode.InvalidEntryFee)
		}
		return nil
	}
}

func EntryFeeCapped(entryFee uint64) Check {
	return func() error {
		if entryFee > MaxEntryFee {
			return errcode.New(errcode.EntryFeeTooHigh)
		}
		return nil
	}
}

// isAlphanumeric counts combining vowel signs and other Other_Alphabetic
// marks as letters.
func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.Is(unicode.Other_Alphabetic, r)
}
