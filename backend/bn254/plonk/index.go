package plonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/mengsuenyan/plonk/commitment"
	"github.com/mengsuenyan/plonk/polynomial"
)

// Gate records, for one row, the witness positions wired to the left,
// right and output columns.
type Gate struct {
	L, R, O int
}

// Index is the precompiled, read-only description of one circuit. It is
// produced by circuit compilation (out of scope here) and consumed by
// Prove; nothing in this package mutates it.
type Index struct {
	// Domain is the evaluation domain; its cardinality n fixes the
	// witness size at 3n.
	Domain *fft.Domain

	// NbPublic is the number of public input rows; the first NbPublic
	// left-wire values are the public part of the witness.
	NbPublic int

	// Gates gives the wire positions row by row. Rows beyond len(Gates)
	// are padding.
	Gates []Gate

	// Selector polynomials of the gate identity
	// qm*l*r + ql*l + qr*r + qo*o + qc + PI = 0.
	Ql, Qr, Qo, Qm, Qc polynomial.Polynomial

	// Sigma are the permutation polynomials in coefficient form, SigmaL
	// their evaluations on the domain, as the grand product consumes
	// them.
	Sigma  [3]polynomial.Polynomial
	SigmaL [3][]fr.Element

	// Sid holds the identity position labels 1, g, g^2, ... for the
	// first wire column.
	Sid []fr.Element

	// Shifter are the coset shift constants separating the identity
	// labels of the second and third wire columns from the first.
	Shifter [2]fr.Element

	// Srs is the commitment key.
	Srs *commitment.SRS

	// MaxPolySize is the chunk size of the commitment scheme; committed
	// polynomials evaluate chunk-wise with it.
	MaxPolySize int
}
