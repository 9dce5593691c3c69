package plonk_test

import (
	"math/big"
	mrand "math/rand"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mengsuenyan/plonk/backend/bn254/plonk"
	"github.com/mengsuenyan/plonk/commitment"
	"github.com/mengsuenyan/plonk/fiatshamir"
	"github.com/mengsuenyan/plonk/polynomial"
)

const testDomainSize = 8

// testCircuit builds the index and a satisfying witness for a toy
// circuit:
//
//	row 0: public input row, ql=1
//	row 1: multiplication x*y = m, with x wired to the public input
//	row 2: addition m + 5 = s, with m wired to row 1's output
//	rows 3..7: padding
func testCircuit(tb testing.TB) (*plonk.Index, []fr.Element) {
	tb.Helper()

	const n = testDomainSize
	domain := fft.NewDomain(n)
	srs, err := commitment.NewSRS(32)
	require.NoError(tb, err)

	one := fr.One()
	var minusOne fr.Element
	minusOne.Neg(&one)

	var ql, qr, qo, qm, qc [n]fr.Element
	ql[0] = one
	qm[1] = one
	qo[1] = minusOne
	ql[2] = one
	qr[2] = one
	qo[2] = minusOne

	// identity labels are the domain points; the second and third
	// columns live on shifted cosets
	sid := make([]fr.Element, n)
	sid[0].SetOne()
	for i := 1; i < n; i++ {
		sid[i].Mul(&sid[i-1], &domain.Generator)
	}
	var k1, k2 fr.Element
	k1.SetUint64(5)
	k2.SetUint64(25)
	shift := [3]fr.Element{one, k1, k2}

	// wiring as 2-cycles over (column, row) positions
	type pos struct{ c, j int }
	var sigma [3][n]pos
	for c := 0; c < 3; c++ {
		for j := 0; j < n; j++ {
			sigma[c][j] = pos{c, j}
		}
	}
	swap := func(a, b pos) {
		sigma[a.c][a.j], sigma[b.c][b.j] = b, a
	}
	swap(pos{0, 0}, pos{0, 1}) // x is the public input
	swap(pos{2, 1}, pos{0, 2}) // m flows into the addition row

	var sigmaL [3][]fr.Element
	var sigmaP [3]polynomial.Polynomial
	for c := 0; c < 3; c++ {
		sigmaL[c] = make([]fr.Element, n)
		for j := 0; j < n; j++ {
			s := sigma[c][j]
			sigmaL[c][j].Mul(&shift[s.c], &sid[s.j])
		}
		sigmaP[c] = polynomial.FromEvaluations(sigmaL[c], domain)
	}

	gates := make([]plonk.Gate, n)
	for j := range gates {
		gates[j] = plonk.Gate{L: j, R: n + j, O: 2*n + j}
	}

	index := &plonk.Index{
		Domain:      domain,
		NbPublic:    1,
		Gates:       gates,
		Ql:          polynomial.FromEvaluations(ql[:], domain),
		Qr:          polynomial.FromEvaluations(qr[:], domain),
		Qo:          polynomial.FromEvaluations(qo[:], domain),
		Qm:          polynomial.FromEvaluations(qm[:], domain),
		Qc:          polynomial.FromEvaluations(qc[:], domain),
		Sigma:       sigmaP,
		SigmaL:      sigmaL,
		Sid:         sid,
		Shifter:     [2]fr.Element{k1, k2},
		Srs:         srs,
		MaxPolySize: 32,
	}

	// x=3 (public), y=4, m=12, s=17
	witness := make([]fr.Element, 3*n)
	witness[0].SetUint64(3)
	witness[1].SetUint64(3)
	witness[n+1].SetUint64(4)
	witness[2*n+1].SetUint64(12)
	witness[2].SetUint64(12)
	witness[n+2].SetUint64(5)
	witness[2*n+2].SetUint64(17)

	return index, witness
}

// replayOracles re-derives the challenges the way a verifier would, from
// the proof's public content in absorption order.
func replayOracles(proof *plonk.Proof) plonk.RandomOracles {
	var oracles plonk.RandomOracles
	fs := fiatshamir.New(plonk.TranscriptLabel)
	fs.AppendScalars(proof.Public...)
	fs.AppendPoints(proof.LComm.Unshifted...)
	fs.AppendPoints(proof.RComm.Unshifted...)
	fs.AppendPoints(proof.OComm.Unshifted...)
	oracles.Beta = fs.ChallengeScalar()
	oracles.Gamma = fs.ChallengeScalar()
	fs.AppendPoints(proof.ZComm.Unshifted...)
	oracles.Alpha = fs.ChallengeScalar()
	fs.AppendPoints(proof.TComm.Unshifted...)
	oracles.Zeta = fs.ChallengeScalar()
	oracles.V = fs.ChallengeScalar()
	oracles.U = fs.ChallengeScalar()
	return oracles
}

// combineChunks recombines a chunked evaluation at x into a single
// scalar.
func combineChunks(ev []fr.Element, x fr.Element, chunkSize int) fr.Element {
	var xn fr.Element
	xn.Exp(x, big.NewInt(int64(chunkSize)))
	var res fr.Element
	for i := len(ev) - 1; i >= 0; i-- {
		res.Mul(&res, &xn).Add(&res, &ev[i])
	}
	return res
}

func TestProver(t *testing.T) {
	index, witness := testCircuit(t)

	proof, err := plonk.Prove(index, witness)
	require.NoError(t, err)
	require.Len(t, proof.Public, 1)
	require.NotNil(t, proof.TComm.Shifted, "quotient commitment carries a degree bound")

	oracles := replayOracles(proof)
	size := index.MaxPolySize
	zeta := oracles.Zeta
	var zetaNext fr.Element
	zetaNext.Mul(&zeta, &index.Domain.Generator)

	l := combineChunks(proof.Evals[0].L, zeta, size)
	r := combineChunks(proof.Evals[0].R, zeta, size)
	o := combineChunks(proof.Evals[0].O, zeta, size)
	z := combineChunks(proof.Evals[0].Z, zeta, size)
	tEval := combineChunks(proof.Evals[0].T, zeta, size)
	zNext := combineChunks(proof.Evals[1].Z, zetaNext, size)

	ql := combineChunks(proof.Evals[0].Ql, zeta, size)
	qr := combineChunks(proof.Evals[0].Qr, zeta, size)
	qo := combineChunks(proof.Evals[0].Qo, zeta, size)
	qm := combineChunks(proof.Evals[0].Qm, zeta, size)
	qc := combineChunks(proof.Evals[0].Qc, zeta, size)
	var sigma [3]fr.Element
	for c := 0; c < 3; c++ {
		sigma[c] = combineChunks(proof.Evals[0].Sigma[c], zeta, size)
	}

	one := fr.One()
	pEval := polynomial.FromEvaluations(proof.Public, index.Domain).Neg().Eval(zeta)

	// gate identity
	var t1, tmp fr.Element
	t1.Mul(&qm, &l).Mul(&t1, &r)
	tmp.Mul(&ql, &l)
	t1.Add(&t1, &tmp)
	tmp.Mul(&qr, &r)
	t1.Add(&t1, &tmp)
	tmp.Mul(&qo, &o)
	t1.Add(&t1, &tmp)
	t1.Add(&t1, &qc).Add(&t1, &pEval)

	// permutation identity, identity side
	var t2, f fr.Element
	f.Mul(&oracles.Beta, &zeta).Add(&f, &l).Add(&f, &oracles.Gamma)
	t2.Set(&f)
	f.Mul(&oracles.Beta, &index.Shifter[0]).Mul(&f, &zeta).
		Add(&f, &r).Add(&f, &oracles.Gamma)
	t2.Mul(&t2, &f)
	f.Mul(&oracles.Beta, &index.Shifter[1]).Mul(&f, &zeta).
		Add(&f, &o).Add(&f, &oracles.Gamma)
	t2.Mul(&t2, &f).Mul(&t2, &z)

	// permutation identity, permuted side
	var t3 fr.Element
	f.Mul(&oracles.Beta, &sigma[0]).Add(&f, &l).Add(&f, &oracles.Gamma)
	t3.Set(&f)
	f.Mul(&oracles.Beta, &sigma[1]).Add(&f, &r).Add(&f, &oracles.Gamma)
	t3.Mul(&t3, &f)
	f.Mul(&oracles.Beta, &sigma[2]).Add(&f, &o).Add(&f, &oracles.Gamma)
	t3.Mul(&t3, &f).Mul(&t3, &zNext)

	// boundary identity
	var boundary, den fr.Element
	boundary.Sub(&z, &one)
	den.Sub(&zeta, &one).Inverse(&den)
	boundary.Mul(&boundary, &den)

	var vanishing fr.Element
	vanishing.Exp(zeta, big.NewInt(int64(index.Domain.Cardinality)))
	vanishing.Sub(&vanishing, &one)

	var lhs, rhs fr.Element
	lhs.Mul(&tEval, &vanishing)

	rhs.Sub(&t2, &t3).Mul(&rhs, &oracles.Alpha).Add(&rhs, &t1)
	var alphaSq fr.Element
	alphaSq.Square(&oracles.Alpha)
	tmp.Mul(&alphaSq, &boundary).Mul(&tmp, &vanishing)
	rhs.Add(&rhs, &tmp)

	require.True(t, lhs.Equal(&rhs), "evaluations at zeta do not satisfy the linearized identity")
}

func TestInvalidWitnessSize(t *testing.T) {
	index, witness := testCircuit(t)

	_, err := plonk.Prove(index, witness[:len(witness)-1])
	require.ErrorIs(t, err, plonk.ErrInvalidWitnessSize)

	_, err = plonk.Prove(index, append(witness, fr.Element{}))
	require.ErrorIs(t, err, plonk.ErrInvalidWitnessSize)
}

func TestBrokenCopyConstraint(t *testing.T) {
	index, witness := testCircuit(t)
	const n = testDomainSize

	// x = 5 breaks x == public input while every gate stays satisfied:
	// 5*4 = 20, 20 + 5 = 25
	witness[1].SetUint64(5)
	witness[2*n+1].SetUint64(20)
	witness[2].SetUint64(20)
	witness[2*n+2].SetUint64(25)

	_, err := plonk.Prove(index, witness)
	require.ErrorIs(t, err, plonk.ErrInvalidPermutation)
}

func TestBrokenGate(t *testing.T) {
	index, witness := testCircuit(t)
	const n = testDomainSize

	// m = 13 breaks the multiplication row while the wiring (and the
	// addition row, 13 + 5 = 18) stays consistent
	witness[2*n+1].SetUint64(13)
	witness[2].SetUint64(13)
	witness[2*n+2].SetUint64(18)

	_, err := plonk.Prove(index, witness)
	require.ErrorIs(t, err, plonk.ErrQuotientDivision)
}

// g1Comparers let go-cmp compare curve points through their Equal method
// without calling it on a nil *G1Affine receiver; the unbounded
// commitments of a proof carry nil Shifted pointers.
var g1Comparers = cmp.Options{
	cmp.Comparer(func(a, b curve.G1Affine) bool { return a.Equal(&b) }),
	cmp.Comparer(func(a, b *curve.G1Affine) bool {
		if a == nil || b == nil {
			return a == b
		}
		return a.Equal(b)
	}),
}

func TestDeterministicWithFixedRNG(t *testing.T) {
	index, witness := testCircuit(t)

	p1, err := plonk.Prove(index, witness, plonk.WithRNG(mrand.New(mrand.NewSource(42))))
	require.NoError(t, err)
	p2, err := plonk.Prove(index, witness, plonk.WithRNG(mrand.New(mrand.NewSource(42))))
	require.NoError(t, err)

	// only the quotient commitment is bounded; the nil Shifted fields of
	// the others must still compare cleanly
	require.Nil(t, p1.LComm.Shifted)
	require.NotNil(t, p1.TComm.Shifted)
	require.Empty(t, cmp.Diff(p1, p2, g1Comparers), "same seed must reproduce the proof bit for bit")

	p3, err := plonk.Prove(index, witness, plonk.WithRNG(mrand.New(mrand.NewSource(43))))
	require.NoError(t, err)
	require.False(t, p1.LComm.Unshifted[0].Equal(&p3.LComm.Unshifted[0]),
		"different blinding must change the wire commitments")
}

func TestBlindingPreservesDomainEvaluations(t *testing.T) {
	index, witness := testCircuit(t)
	const n = testDomainSize

	lA, rA, oA, err := plonk.ComputeBlindedLRO(index, witness, mrand.New(mrand.NewSource(1)))
	require.NoError(t, err)
	lB, rB, oB, err := plonk.ComputeBlindedLRO(index, witness, mrand.New(mrand.NewSource(2)))
	require.NoError(t, err)

	x := fr.One()
	for j := 0; j < n; j++ {
		gate := index.Gates[j]
		for _, col := range []struct {
			p   polynomial.Polynomial
			q   polynomial.Polynomial
			val fr.Element
		}{
			{lA, lB, witness[gate.L]},
			{rA, rB, witness[gate.R]},
			{oA, oB, witness[gate.O]},
		} {
			ev := col.p.Eval(x)
			require.True(t, ev.Equal(&col.val), "blinding changed an in-domain evaluation")
			ev = col.q.Eval(x)
			require.True(t, ev.Equal(&col.val), "blinding changed an in-domain evaluation")
		}
		x.Mul(&x, &index.Domain.Generator)
	}

	// off-domain the two blindings must disagree
	var off fr.Element
	off.SetUint64(0xdeadbeef)
	evA := lA.Eval(off)
	evB := lB.Eval(off)
	require.False(t, evA.Equal(&evB), "off-domain evaluations must depend on the blinding")
}

func TestReturnedEvaluationsMatchPolynomials(t *testing.T) {
	index, witness := testCircuit(t)

	proof, err := plonk.Prove(index, witness, plonk.WithRNG(mrand.New(mrand.NewSource(7))))
	require.NoError(t, err)

	// replay the construction with the same seed: the blinding draws
	// come first and in l, r, o order, so the polynomials coincide
	l, r, o, err := plonk.ComputeBlindedLRO(index, witness, mrand.New(mrand.NewSource(7)))
	require.NoError(t, err)

	oracles := replayOracles(proof)
	z, err := plonk.ComputeZ(index, witness, oracles.Beta, oracles.Gamma)
	require.NoError(t, err)
	p := polynomial.FromEvaluations(proof.Public, index.Domain).Neg()
	tPoly, err := plonk.ComputeQuotient(index, l, r, o, z, p, oracles.Alpha, oracles.Beta, oracles.Gamma)
	require.NoError(t, err)

	var zetaNext fr.Element
	zetaNext.Mul(&oracles.Zeta, &index.Domain.Generator)
	points := [2]fr.Element{oracles.Zeta, zetaNext}

	size := index.MaxPolySize
	for i, x := range points {
		want := plonk.ProofEvaluations{
			L:  l.ChunkedEval(x, size),
			R:  r.ChunkedEval(x, size),
			O:  o.ChunkedEval(x, size),
			Z:  z.ChunkedEval(x, size),
			T:  tPoly.ChunkedEval(x, size),
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
		require.Empty(t, cmp.Diff(want, proof.Evals[i]))
	}
}

func BenchmarkProver(b *testing.B) {
	index, witness := testCircuit(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := plonk.Prove(index, witness); err != nil {
			b.Fatal(err)
		}
	}
}
