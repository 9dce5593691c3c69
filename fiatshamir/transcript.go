// Package fiatshamir implements the ordered transcript the prover uses to
// derive its challenges.
//
// Unlike a transcript keyed by challenge names, the state here is a plain
// byte accumulator: absorption order is the protocol, and absorbing the
// same data in a different order yields different challenges. Squeezing
// folds the digest back into the state so that consecutive challenges
// differ even with no absorption in between.
package fiatshamir

import (
	"crypto/sha256"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Transcript accumulates the proof's prior messages and derives scalar
// field challenges from them. It must not be shared across concurrent
// proof constructions.
type Transcript struct {
	state []byte
}

// New returns a transcript seeded with a domain separation label.
func New(label string) *Transcript {
	h := sha256.Sum256([]byte(label))
	return &Transcript{state: h[:]}
}

// AppendScalars absorbs scalar field elements in their big-endian regular
// form.
func (t *Transcript) AppendScalars(scalars ...fr.Element) {
	for i := range scalars {
		b := scalars[i].Bytes()
		t.state = append(t.state, b[:]...)
	}
}

// AppendPoints absorbs curve points in their uncompressed form.
func (t *Transcript) AppendPoints(points ...curve.G1Affine) {
	for i := range points {
		b := points[i].RawBytes()
		t.state = append(t.state, b[:]...)
	}
}

// ChallengeScalar derives a challenge from the absorbed state and commits
// the challenge itself back into the state.
func (t *Transcript) ChallengeScalar() fr.Element {
	digest := sha256.Sum256(t.state)
	t.state = append(t.state, digest[:]...)

	var c fr.Element
	c.SetBytes(digest[:])
	return c
}

// Snapshot returns an independent copy of the transcript. The copy and
// the original evolve separately; each branch is squeezed at most once
// per protocol fork.
func (t *Transcript) Snapshot() *Transcript {
	state := make([]byte, len(t.state), len(t.state)+sha256.Size)
	copy(state, t.state)
	return &Transcript{state: state}
}
