package plonk

import "errors"

var (
	// ErrInvalidWitnessSize is returned when the witness does not hold
	// exactly three values per domain row. It is raised before any
	// transcript interaction.
	ErrInvalidWitnessSize = errors.New("plonk: witness size does not match the circuit")

	// ErrInvalidPermutation is returned when the copy-constraint grand
	// product does not close at 1, meaning the witness does not respect
	// the circuit wiring (or the index is malformed).
	ErrInvalidPermutation = errors.New("plonk: permutation grand product does not close at 1")

	// ErrQuotientDivision is returned when a division that must be exact
	// leaves a nonzero remainder; no valid quotient polynomial exists for
	// this witness.
	ErrQuotientDivision = errors.New("plonk: polynomial division leaves a nonzero remainder")
)
