package errcode

import (
	"errors"
	"fmt"
)

// Code identifies a failure kind surfaced verbatim to callers.
type Code int

const (
	// Competition state
	CompetitionClosed Code = iota + 1
	AlreadyResolved
	CompetitionNotEnded

	// Funds
	InsufficientFunds
	InvalidPrizePool
	PrizePoolTooHigh
	InvalidEntryFee
	EntryFeeTooHigh

	// Permissions
	UnauthorizedAccess

	// Time
	EndTimeInPast
	EndTimeTooFar

	// Competition parameters
	EmptyCompetitionID
	CompetitionIDTooLong
	InvalidCompetitionIDFormat
	EmptyTokenName
	TokenNameTooLong
	InvalidTokenNameFormat

	// Prediction parameters
	PredictionTooLow
	PredictionTooHigh

	// Resolution parameters
	InvalidWinner
	InvalidPayout
	PayoutTooHigh

	// Runtime
	CompetitionNotFound
	AccountAlreadyInUse
	MissingRequiredSignature
	InvalidIdentity
	BalanceOverflow
	InvalidAirdropAmount
)

// Group is the conceptual family a code belongs to.
type Group int

const (
	GroupValidation Group = iota
	GroupState
	GroupAuthorization
	GroupFunds
	GroupNotFound
	GroupConflict
)

type info struct {
	name    string
	message string
	group   Group
}

var codes = map[Code]info{
	CompetitionClosed:          {"CompetitionClosed", "Competition is closed", GroupState},
	AlreadyResolved:            {"AlreadyResolved", "Competition already resolved", GroupState},
	CompetitionNotEnded:        {"CompetitionNotEnded", "Competition has not ended yet", GroupState},
	InsufficientFunds:          {"InsufficientFunds", "Insufficient funds for payout", GroupFunds},
	InvalidPrizePool:           {"InvalidPrizePool", "Prize pool must be greater than zero", GroupValidation},
	PrizePoolTooHigh:           {"PrizePoolTooHigh", "Prize pool is too high (max 1000 SOL)", GroupValidation},
	InvalidEntryFee:            {"InvalidEntryFee", "Entry fee must be reasonable (between 0 and prize pool value)", GroupValidation},
	EntryFeeTooHigh:            {"EntryFeeTooHigh", "Entry fee is too high (max 10 SOL)", GroupValidation},
	UnauthorizedAccess:         {"UnauthorizedAccess", "Only the competition creator can resolve the competition", GroupAuthorization},
	EndTimeInPast:              {"EndTimeInPast", "End time must be in the future", GroupValidation},
	EndTimeTooFar:              {"EndTimeTooFar", "End time is too far in the future (max 30 days)", GroupValidation},
	EmptyCompetitionID:         {"EmptyCompetitionId", "Competition ID is empty", GroupValidation},
	CompetitionIDTooLong:       {"CompetitionIdTooLong", "Competition ID too long (max 50 characters)", GroupValidation},
	InvalidCompetitionIDFormat: {"InvalidCompetitionIdFormat", "Competition ID contains invalid characters", GroupValidation},
	EmptyTokenName:             {"EmptyTokenName", "Token name is empty", GroupValidation},
	TokenNameTooLong:           {"TokenNameTooLong", "Token name too long (max 20 characters)", GroupValidation},
	InvalidTokenNameFormat:     {"InvalidTokenNameFormat", "Token name contains invalid characters", GroupValidation},
	PredictionTooLow:           {"PredictionTooLow", "Prediction guess is too low (min 1 SOL)", GroupValidation},
	PredictionTooHigh:          {"PredictionTooHigh", "Prediction guess is too high (max 10,000 SOL)", GroupValidation},
	InvalidWinner:              {"InvalidWinner", "Winner cannot be the default public key", GroupValidation},
	InvalidPayout:              {"InvalidPayout", "Payout amount must be greater than zero", GroupValidation},
	PayoutTooHigh:              {"PayoutTooHigh", "Payout amount exceeds maximum allowed", GroupFunds},
	CompetitionNotFound:        {"CompetitionNotFound", "Competition not found", GroupNotFound},
	AccountAlreadyInUse:        {"AccountAlreadyInUse", "Account already in use", GroupConflict},
	MissingRequiredSignature:   {"MissingRequiredSignature", "Transfer is not authorized for the source account", GroupAuthorization},
	InvalidIdentity:            {"InvalidIdentity", "Identity is not a valid public key", GroupValidation},
	BalanceOverflow:            {"BalanceOverflow", "Credit would overflow the account balance", GroupFunds},
	InvalidAirdropAmount:       {"InvalidAirdropAmount", "Airdrop amount must be between 1 lamport and 1000 SOL", GroupValidation},
}

// String returns the stable name of the code.
func (c Code) String() string {
	if i, ok := codes[c]; ok {
		return i.name
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Message returns the human readable description.
func (c Code) Message() string {
	if i, ok := codes[c]; ok {
		return i.message
	}
	return "Operation failed"
}

// Group returns the family of the code.
func (c Code) Group() Group {
	return codes[c].group
}

// Error is an instruction failure tagged with its code.
type Error struct {
	Code Code
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Code.Message())
}

// New returns an *Error for code.
func New(code Code) error {
	return &Error{Code: code}
}

// Is reports whether err carries code anywhere in its chain.
func Is(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// CodeOf extracts the code from err.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}
