package plonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mengsuenyan/plonk/commitment"
)

// RandomOracles holds the Fiat-Shamir challenges in derivation order.
// Each field is written exactly once per proof construction and never
// reused across proofs.
type RandomOracles struct {
	Beta  fr.Element
	Gamma fr.Element
	Alpha fr.Element
	Zeta  fr.Element
	V     fr.Element
	U     fr.Element
}

// ProofEvaluations holds the values of every committed polynomial at one
// evaluation point. Values are chunked per the commitment scheme's
// convention: one scalar per MaxPolySize coefficients, recombined by the
// verifier with powers of the point.
type ProofEvaluations struct {
	L, R, O []fr.Element
	Z       []fr.Element
	T       []fr.Element

	Ql, Qr, Qo, Qm, Qc []fr.Element

	Sigma [3][]fr.Element
}

// Proof is the prover's output: commitments to the wire, permutation and
// quotient polynomials, one aggregated opening proof, the evaluations at
// zeta and zeta*g, and the public part of the witness. It is immutable
// once returned.
type Proof struct {
	LComm commitment.PolyComm
	RComm commitment.PolyComm
	OComm commitment.PolyComm
	ZComm commitment.PolyComm
	TComm commitment.PolyComm

	// Opening proves all evaluations in Evals at once.
	Opening commitment.OpeningProof

	// Evals[0] is taken at zeta, Evals[1] at zeta times the domain
	// generator.
	Evals [2]ProofEvaluations

	Public []fr.Element
}
