// Package validation holds the stateless parameter checks run before any
// instruction touches storage or moves value.
//
// Each rule is an independent Check. Validators compose rules into a fixed
// order and stop at the first failure, so the reported error for a given
// input never changes.
package validation

// Check is a single predicate over already-captured parameters.
type Check func() error

// Run evaluates checks in order and returns the first failure.
func Run(checks ...Check) error {
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
