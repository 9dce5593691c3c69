// Package plonk implements the PLONK proof construction over bn254.
//
// Prove turns a satisfying witness and a precompiled circuit index into
// a succinct proof. The protocol is a strict sequence of commit, absorb
// and challenge steps; nothing may be reordered across an absorption
// boundary, and every challenge depends on all prior messages.
package plonk

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/mengsuenyan/plonk/commitment"
	"github.com/mengsuenyan/plonk/fiatshamir"
	"github.com/mengsuenyan/plonk/internal/utils"
	"github.com/mengsuenyan/plonk/logger"
	"github.com/mengsuenyan/plonk/polynomial"
)

// transcriptLabel seeds the Fiat-Shamir transcript; prover and verifier
// must agree on it.
const transcriptLabel = "plonk-bn254"

// Prove constructs a proof that witness satisfies the circuit described
// by index. witness holds the left, right and output wire values in
// three consecutive blocks of n = index.Domain.Cardinality entries.
//
// The construction either returns a valid proof or a terminal error;
// there is no partial output. With a fixed option-provided randomness
// source the result is fully deterministic.
func Prove(index *Index, witness []fr.Element, opts ...ProverOption) (*Proof, error) {
	log := logger.Logger().With().
		Str("curve", "bn254").
		Int("nbConstraints", len(index.Gates)).
		Str("backend", "plonk").Logger()
	start := time.Now()

	cfg, err := newProverConfig(opts...)
	if err != nil {
		return nil, fmt.Errorf("get prover options: %w", err)
	}

	n := int(index.Domain.Cardinality)
	if len(witness) != 3*n {
		return nil, ErrInvalidWitnessSize
	}

	var oracles RandomOracles
	fs := fiatshamir.New(transcriptLabel)
	proof := &Proof{}

	// public input polynomial; its evaluations cancel the public wire
	// values in the gate identity
	public := make([]fr.Element, index.NbPublic)
	copy(public, witness[:index.NbPublic])
	p := polynomial.FromEvaluations(public, index.Domain).Neg()

	// interpolate the wire columns and blind them off-domain
	l, r, o, err := computeBlindedLRO(index, witness, cfg.rng)
	if err != nil {
		return nil, err
	}

	if err := commitToLRO(l, r, o, proof, index.Srs); err != nil {
		return nil, err
	}

	// round 1: bind the public inputs and wire commitments, draw beta
	// and gamma
	fs.AppendScalars(public...)
	fs.AppendPoints(proof.LComm.Unshifted...)
	fs.AppendPoints(proof.RComm.Unshifted...)
	fs.AppendPoints(proof.OComm.Unshifted...)
	oracles.Beta = fs.ChallengeScalar()
	oracles.Gamma = fs.ChallengeScalar()

	// round 2: permutation grand product, draw alpha
	z, err := computeZ(index, witness, oracles.Beta, oracles.Gamma)
	if err != nil {
		return nil, err
	}
	// doubling the multi exp task count keeps this commitment from
	// straggling behind the rest of the round
	if proof.ZComm, err = index.Srs.Commit(z, 0, runtime.NumCPU()*2); err != nil {
		return nil, err
	}
	fs.AppendPoints(proof.ZComm.Unshifted...)
	oracles.Alpha = fs.ChallengeScalar()

	// round 3: quotient polynomial, draw zeta
	t, err := computeQuotient(index, l, r, o, z, p, oracles.Alpha, oracles.Beta, oracles.Gamma)
	if err != nil {
		return nil, err
	}
	tBound := 3*n + 3
	if proof.TComm, err = index.Srs.Commit(t, tBound); err != nil {
		return nil, err
	}
	fs.AppendPoints(proof.TComm.Unshifted...)
	oracles.Zeta = fs.ChallengeScalar()

	// evaluate everything at zeta and at the next-row point zeta*g
	var zetaShifted fr.Element
	zetaShifted.Mul(&oracles.Zeta, &index.Domain.Generator)
	points := []fr.Element{oracles.Zeta, zetaShifted}

	var wgEvals sync.WaitGroup
	wgEvals.Add(1)
	go func() {
		proof.Evals[1] = evaluateAll(index, l, r, o, z, t, points[1])
		wgEvals.Done()
	}()
	proof.Evals[0] = evaluateAll(index, l, r, o, z, t, points[0])
	wgEvals.Wait()

	// the opening proof forks the transcript before the evaluation-phase
	// challenges so its internal challenges stay independent of v and u
	fsBeforeEval := fs.Snapshot()
	oracles.V = fs.ChallengeScalar()
	oracles.U = fs.ChallengeScalar()

	proof.Opening, err = index.Srs.Open(
		[]commitment.BoundedPoly{
			{P: l},
			{P: r},
			{P: o},
			{P: z},
			{P: t, Bound: tBound},

			{P: index.Ql},
			{P: index.Qr},
			{P: index.Qo},
			{P: index.Qm},
			{P: index.Qc},

			{P: index.Sigma[0]},
			{P: index.Sigma[1]},
			{P: index.Sigma[2]},
		},
		points,
		oracles.V,
		oracles.U,
		fsBeforeEval,
		cfg.rng,
	)
	if err != nil {
		return nil, err
	}

	proof.Public = public

	log.Debug().Dur("took", time.Since(start)).Msg("prover done")
	return proof, nil
}

// computeBlindedLRO gathers the wire columns in gate order, interpolates
// them and adds an independent random degree-1 multiple of the vanishing
// polynomial to each. Domain evaluations are unchanged; every off-domain
// evaluation the verifier may sample is randomized.
//
// The three columns draw from rng in l, r, o order so a seeded source
// reproduces the same polynomials.
func computeBlindedLRO(index *Index, witness []fr.Element, rng io.Reader) (l, r, o polynomial.Polynomial, err error) {
	n := int(index.Domain.Cardinality)
	ll := make([]fr.Element, n)
	lr := make([]fr.Element, n)
	lo := make([]fr.Element, n)
	for i, gate := range index.Gates {
		ll[i] = witness[gate.L]
		lr[i] = witness[gate.R]
		lo[i] = witness[gate.O]
	}

	blind := func(evals []fr.Element) (polynomial.Polynomial, error) {
		q, err := polynomial.Random(1, rng)
		if err != nil {
			return nil, err
		}
		c := polynomial.FromEvaluations(evals, index.Domain)
		return c.Add(q.MulByVanishing(index.Domain)), nil
	}

	if l, err = blind(ll); err != nil {
		return nil, nil, nil, err
	}
	if r, err = blind(lr); err != nil {
		return nil, nil, nil, err
	}
	if o, err = blind(lo); err != nil {
		return nil, nil, nil, err
	}
	return l, r, o, nil
}

// commitToLRO commits to the three wire polynomials in parallel.
func commitToLRO(l, r, o polynomial.Polynomial, proof *Proof, srs *commitment.SRS) error {
	nbTasks := runtime.NumCPU() / 2

	var g errgroup.Group
	g.Go(func() error {
		var err error
		proof.LComm, err = srs.Commit(l, 0, nbTasks)
		return err
	})
	g.Go(func() error {
		var err error
		proof.RComm, err = srs.Commit(r, 0, nbTasks)
		return err
	})
	g.Go(func() error {
		var err error
		proof.OComm, err = srs.Commit(o, 0, nbTasks)
		return err
	})
	return g.Wait()
}

// computeZ builds the copy-constraint grand product
//
//	z[0] = 1
//	z[j+1] = z[j] * prod_c (w_c[j] + beta*id_c[j] + gamma)
//	              / prod_c (w_c[j] + beta*sigma_c[j] + gamma)
//
// over the three wire columns, with the identity labels of the second
// and third columns pushed onto disjoint cosets by the index's shift
// constants. For a witness respecting the wiring the product telescopes
// back to 1 at row n; anything else aborts the construction before a
// commitment to an unprovable z is produced.
func computeZ(index *Index, witness []fr.Element, beta, gamma fr.Element) (polynomial.Polynomial, error) {
	n := int(index.Domain.Cardinality)

	// denominators, inverted in one batched pass instead of n field
	// inversions
	den := make([]fr.Element, n)
	utils.Parallelize(n, func(start, end int) {
		var f [3]fr.Element
		for j := start; j < end; j++ {
			for c := 0; c < 3; c++ {
				f[c].Mul(&index.SigmaL[c][j], &beta).
					Add(&f[c], &witness[j+c*n]).
					Add(&f[c], &gamma)
			}
			den[j].Mul(&f[0], &f[1]).Mul(&den[j], &f[2])
		}
	})
	den = fr.BatchInvert(den)

	z := make([]fr.Element, n+1)
	z[0].SetOne()
	var f [3]fr.Element
	var sid fr.Element
	for j := 0; j < n; j++ {
		sid.Mul(&index.Sid[j], &beta)
		f[0].Add(&sid, &witness[j]).Add(&f[0], &gamma)
		f[1].Mul(&sid, &index.Shifter[0]).
			Add(&f[1], &witness[j+n]).Add(&f[1], &gamma)
		f[2].Mul(&sid, &index.Shifter[1]).
			Add(&f[2], &witness[j+2*n]).Add(&f[2], &gamma)

		z[j+1].Mul(&z[j], &f[0]).
			Mul(&z[j+1], &f[1]).
			Mul(&z[j+1], &f[2]).
			Mul(&z[j+1], &den[j])
	}

	if !z[n].IsOne() {
		return nil, ErrInvalidPermutation
	}

	// the closing entry is redundant once checked
	return polynomial.FromEvaluations(z[:n], index.Domain), nil
}

// computeQuotient assembles the quotient certifying the three protocol
// identities on the whole domain:
//
//	gate:        t1 = l*r*qm + l*ql + r*qr + o*qo + qc + PI
//	permutation: t2 - t3, identity side against permuted side
//	boundary:    t4 = (z-1)/(X-1), asserting z(1) = 1
//
// t = (t1 + alpha*(t2-t3))/(X^n-1) + alpha^2*t4. Alpha folds the three
// checks into one random linear combination; both divisions must be
// exact, a nonzero remainder means some constraint does not hold.
func computeQuotient(index *Index, l, r, o, z, p polynomial.Polynomial, alpha, beta, gamma fr.Element) (polynomial.Polynomial, error) {
	// gate identity
	t1 := polynomial.Mul(polynomial.Mul(l, r), index.Qm).
		Add(polynomial.Mul(l, index.Ql)).
		Add(polynomial.Mul(r, index.Qr)).
		Add(polynomial.Mul(o, index.Qo)).
		Add(index.Qc).
		Add(p)

	// identity side: each column meets its identity labels, shifted on
	// the second and third cosets
	var bs1, bs2 fr.Element
	bs1.Mul(&beta, &index.Shifter[0])
	bs2.Mul(&beta, &index.Shifter[1])
	t2 := polynomial.Mul(polynomial.Mul(
		l.Add(polynomial.Polynomial{gamma, beta}),
		r.Add(polynomial.Polynomial{gamma, bs1})),
		o.Add(polynomial.Polynomial{gamma, bs2}))
	t2 = polynomial.Mul(t2, z)

	// permuted side, against z at the next row
	zNext := z.Clone()
	for i := range zNext {
		zNext[i].Mul(&zNext[i], &index.Sid[i])
	}
	gammaPoly := polynomial.Polynomial{gamma}
	t3 := polynomial.Mul(polynomial.Mul(
		l.Add(gammaPoly).Add(index.Sigma[0].Scale(beta)),
		r.Add(gammaPoly).Add(index.Sigma[1].Scale(beta))),
		o.Add(gammaPoly).Add(index.Sigma[2].Scale(beta)))
	t3 = polynomial.Mul(t3, zNext)

	// boundary: z-1 must vanish at 1
	one := fr.One()
	var minusOne fr.Element
	minusOne.Neg(&one)
	t4, rem, err := polynomial.Div(
		z.Sub(polynomial.Polynomial{one}),
		polynomial.Polynomial{minusOne, one},
	)
	if err != nil || !rem.IsZero() {
		return nil, ErrQuotientDivision
	}

	t, rem2 := t1.Add(t2.Sub(t3).Scale(alpha)).DivByVanishing(index.Domain)
	if !rem2.IsZero() {
		return nil, ErrQuotientDivision
	}

	var alphaSq fr.Element
	alphaSq.Square(&alpha)
	return t.Add(t4.Scale(alphaSq)), nil
}

// evaluateAll evaluates the twelve committed polynomials at x, chunked
// per the commitment scheme's convention.
func evaluateAll(index *Index, l, r, o, z, t polynomial.Polynomial, x fr.Element) ProofEvaluations {
	size := index.MaxPolySize
	return ProofEvaluations{
		L: l.ChunkedEval(x, size),
		R: r.ChunkedEval(x, size),
		O: o.ChunkedEval(x, size),
		Z: z.ChunkedEval(x, size),
		T: t.ChunkedEval(x, size),

		Ql: index.Ql.ChunkedEval(x, size),
		Qr: index.Qr.ChunkedEval(x, size),
		Qo: index.Qo.ChunkedEval(x, size),
		Qm: index.Qm.ChunkedEval(x, size),
		Qc: index.Qc.ChunkedEval(x, size),

		Sigma: [3][]fr.Element{
			index.Sigma[0].ChunkedEval(x, size),
			index.Sigma[1].ChunkedEval(x, size),
			index.Sigma[2].ChunkedEval(x, size),
		},
	}
}
