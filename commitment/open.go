package commitment

import (
	"io"
	"math/big"
	"math/bits"
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mengsuenyan/plonk/fiatshamir"
	"github.com/mengsuenyan/plonk/internal/utils"
	"github.com/mengsuenyan/plonk/polynomial"
)

// BoundedPoly pairs a polynomial with its declared degree bound; Bound
// <= 0 means none. The bound must match the one used at commit time.
type BoundedPoly struct {
	P     polynomial.Polynomial
	Bound int
}

// OpeningProof is the aggregated inner-product opening proof. LR holds
// the per-round cross terms, Delta, Z1 and Z2 close the argument
// Schnorr-style over the blinding base, and SG is the fully folded
// commitment basis point.
type OpeningProof struct {
	LR    [][2]curve.G1Affine
	Delta curve.G1Affine
	Z1    fr.Element
	Z2    fr.Element
	SG    curve.G1Affine
}

// Open proves the evaluations of a batch of polynomials at a batch of
// points, all in one inner-product argument.
//
// The batch is collapsed into a single vector: chunks (and shifted
// copies, for bounded polynomials) are combined with powers of v, in the
// order they appear; the evaluation vector combines the points' power
// sequences with powers of u. The transcript ts drives the argument's
// internal challenges and is expected to be a snapshot forked from the
// proof transcript before v and u were drawn. rng blinds the per-round
// cross terms; it must be cryptographically secure for zero knowledge to
// hold.
func (srs *SRS) Open(polys []BoundedPoly, points []fr.Element, v, u fr.Element, ts *fiatshamir.Transcript, rng io.Reader) (OpeningProof, error) {
	size := len(srs.G)

	a, err := srs.combinePolynomials(polys, v)
	if err != nil {
		return OpeningProof{}, err
	}
	b := combinePoints(points, u, size)

	// the combined inner product binds the claimed evaluations; the
	// auxiliary base point is derived from it through the transcript
	ip := innerProduct(a, b)
	ts.AppendScalars(ip)
	chal := ts.ChallengeScalar()
	chalBytes := chal.Bytes()
	uBase, err := curve.HashToG1(chalBytes[:], []byte(dstU))
	if err != nil {
		return OpeningProof{}, err
	}

	g := make([]curve.G1Affine, size)
	copy(g, srs.G)

	rounds := bits.TrailingZeros(uint(size))
	proof := OpeningProof{LR: make([][2]curve.G1Affine, 0, rounds)}
	cfg := ecc.MultiExpConfig{NbTasks: runtime.NumCPU() / 2}

	// accumulated blinding of the folded commitment
	var blind fr.Element

	for m := size; m > 1; m /= 2 {
		half := m / 2
		aLo, aHi := a[:half], a[half:m]
		bLo, bHi := b[:half], b[half:m]
		gLo, gHi := g[:half], g[half:m]

		lRand, err := utils.RandomFrElement(rng)
		if err != nil {
			return OpeningProof{}, err
		}
		rRand, err := utils.RandomFrElement(rng)
		if err != nil {
			return OpeningProof{}, err
		}

		// cross terms: l = <aLo,gHi> + lRand*H + <aLo,bHi>*U and the
		// mirrored r, each blinded over H
		var l, r curve.G1Affine
		if _, err := l.MultiExp(gHi, aLo, cfg); err != nil {
			return OpeningProof{}, err
		}
		if _, err := r.MultiExp(gLo, aHi, cfg); err != nil {
			return OpeningProof{}, err
		}
		ipL := innerProduct(aLo, bHi)
		ipR := innerProduct(aHi, bLo)
		l.Add(&l, scaledPoint(&srs.H, &lRand))
		l.Add(&l, scaledPoint(&uBase, &ipL))
		r.Add(&r, scaledPoint(&srs.H, &rRand))
		r.Add(&r, scaledPoint(&uBase, &ipR))

		proof.LR = append(proof.LR, [2]curve.G1Affine{l, r})
		ts.AppendPoints(l, r)
		x := ts.ChallengeScalar()
		var xInv fr.Element
		xInv.Inverse(&x)

		// fold: a <- aLo + x*aHi, b <- bLo + xInv*bHi, g <- gLo + xInv*gHi
		xInvBig := new(big.Int)
		xInv.BigInt(xInvBig)
		utils.Parallelize(half, func(start, end int) {
			var t fr.Element
			var pt curve.G1Affine
			for i := start; i < end; i++ {
				t.Mul(&x, &aHi[i])
				aLo[i].Add(&aLo[i], &t)
				t.Mul(&xInv, &bHi[i])
				bLo[i].Add(&bLo[i], &t)
				pt.ScalarMultiplication(&gHi[i], xInvBig)
				gLo[i].Add(&gLo[i], &pt)
			}
		})

		// the folded commitment picks up xInv*l + x*r; track its H part
		var t fr.Element
		t.Mul(&xInv, &lRand)
		blind.Add(&blind, &t)
		t.Mul(&x, &rRand)
		blind.Add(&blind, &t)

		a, b, g = a[:half], b[:half], g[:half]
	}

	// Schnorr closure over the remaining scalar a[0]
	dRand, err := utils.RandomFrElement(rng)
	if err != nil {
		return OpeningProof{}, err
	}
	rDelta, err := utils.RandomFrElement(rng)
	if err != nil {
		return OpeningProof{}, err
	}

	var base curve.G1Affine
	base.Add(&g[0], scaledPoint(&uBase, &b[0]))
	proof.Delta.Add(scaledPoint(&base, &dRand), scaledPoint(&srs.H, &rDelta))

	ts.AppendPoints(proof.Delta)
	c := ts.ChallengeScalar()

	proof.Z1.Mul(&c, &a[0]).Add(&proof.Z1, &dRand)
	proof.Z2.Mul(&c, &blind).Add(&proof.Z2, &rDelta)
	proof.SG = g[0]

	return proof, nil
}

// combinePolynomials collapses the batch into one vector of basis length
// with powers of v, respecting chunking and degree-bound shifts.
func (srs *SRS) combinePolynomials(polys []BoundedPoly, v fr.Element) ([]fr.Element, error) {
	size := len(srs.G)
	a := make([]fr.Element, size)

	var scale fr.Element
	scale.SetOne()
	var t fr.Element

	for _, bp := range polys {
		if bp.Bound > 0 && len(bp.P) > bp.Bound {
			return nil, ErrDegreeBound
		}
		nbChunks := (len(bp.P) + size - 1) / size
		if nbChunks == 0 {
			nbChunks = 1
		}
		for i := 0; i < nbChunks; i++ {
			chunk := chunkOf(bp.P, i, size)
			for j := range chunk {
				t.Mul(&chunk[j], &scale)
				a[j].Add(&a[j], &t)
			}
			scale.Mul(&scale, &v)
		}
		if bp.Bound > 0 {
			offset := (size - bp.Bound%size) % size
			chunk := chunkOf(bp.P, nbChunks-1, size)
			if offset+len(chunk) > size {
				return nil, ErrDegreeBound
			}
			for j := range chunk {
				t.Mul(&chunk[j], &scale)
				a[offset+j].Add(&a[offset+j], &t)
			}
			scale.Mul(&scale, &v)
		}
	}

	return a, nil
}

// combinePoints builds the evaluation vector b, b[i] = sum_j u^j *
// points[j]^i.
func combinePoints(points []fr.Element, u fr.Element, size int) []fr.Element {
	b := make([]fr.Element, size)
	var uPow fr.Element
	uPow.SetOne()
	var t fr.Element
	for _, x := range points {
		var xPow fr.Element
		xPow.SetOne()
		for i := 0; i < size; i++ {
			t.Mul(&uPow, &xPow)
			b[i].Add(&b[i], &t)
			xPow.Mul(&xPow, &x)
		}
		uPow.Mul(&uPow, &u)
	}
	return b
}

func innerProduct(a, b []fr.Element) fr.Element {
	var res, t fr.Element
	for i := range a {
		t.Mul(&a[i], &b[i])
		res.Add(&res, &t)
	}
	return res
}

func scaledPoint(p *curve.G1Affine, s *fr.Element) *curve.G1Affine {
	var sBig big.Int
	s.BigInt(&sBig)
	var res curve.G1Affine
	res.ScalarMultiplication(p, &sBig)
	return &res
}
