package rag

import "fmt"

// PartialFailurePolicy selects what happens when the note store write
// succeeds and the following vector index write fails.
type PartialFailurePolicy string

const (
	// PolicySurface logs the inconsistency and returns ErrPartialWrite.
	// The committed note store write is kept.
	PolicySurface PartialFailurePolicy = "surface"

	// PolicyCompensate behaves like PolicySurface and additionally undoes
	// the note store write when the operation has a compensating action.
	PolicyCompensate PartialFailurePolicy = "compensate"
)

// Policies lists the accepted policy names.
var Policies = []PartialFailurePolicy{PolicySurface, PolicyCompensate}

// ParsePartialFailurePolicy validates s. An empty string selects PolicySurface.
func ParsePartialFailurePolicy(s string) (PartialFailurePolicy, error) {
	switch PartialFailurePolicy(s) {
	case "", PolicySurface:
		return PolicySurface, nil
	case PolicyCompensate:
		return PolicyCompensate, nil
	default:
		return "", fmt.Errorf("unknown partial failure policy: %q (supported: %v)", s, Policies)
	}
}
