package pipeline

import "fmt"

// GenerationFailure reports that the generation capability errored for
// one role's turn. The stage runner surfaces it unmodified; only the
// Coordinator converts it into a degraded result.
type GenerationFailure struct {
	Role  string
	Cause error
}

func (e *GenerationFailure) Error() string {
	return fmt.Sprintf("generation failed for role %s: %v", e.Role, e.Cause)
}

func (e *GenerationFailure) Unwrap() error {
	return e.Cause
}
