package validation

import "prediction-escrow/internal/errcode"

// ValidatePredictionGuess bounds a guess to [MinGuess, MaxGuess].
func ValidatePredictionGuess(guess uint64) error {
	return Run(GuessAtLeastMin(guess), GuessAtMostMax(guess))
}

func GuessAtLeastMin(guess uint64) Check {
	return func() error {
		if guess < MinGuess {
			return errcode.New(errcode.PredictionTooLow)
		}
		return nil
	}
}

func GuessAtMostMax(guess uint64) Check {
	return func() error {
		if guess > MaxGuess {
			return errcode.New(errcode.PredictionTooHigh)
		}
		return nil
	}
}
