// Package polynomial implements dense univariate polynomial arithmetic
// over the bn254 scalar field.
//
// Polynomials are kept in coefficient form; conversion from evaluations
// on a multiplicative subgroup goes through gnark-crypto's FFT. The
// divisions return their remainder so callers can enforce exactness,
// which the prover's soundness checks rely on.
package polynomial

import (
	"errors"
	"io"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/mengsuenyan/plonk/internal/utils"
)

// ErrZeroDivisor is returned when dividing by the zero polynomial.
var ErrZeroDivisor = errors.New("polynomial: division by zero polynomial")

// Polynomial is a dense polynomial; p[i] is the coefficient of X^i.
type Polynomial []fr.Element

// FromEvaluations interpolates the polynomial taking the given values on
// the domain. evals may be shorter than the domain; missing entries are
// zero.
func FromEvaluations(evals []fr.Element, domain *fft.Domain) Polynomial {
	p := make(Polynomial, domain.Cardinality)
	copy(p, evals)
	domain.FFTInverse(p, fft.DIF)
	fft.BitReverse(p)
	return p
}

// Random returns a polynomial of the given degree with coefficients drawn
// from rng. The leading coefficient may be zero; degree bounds the result,
// it is not guaranteed exactly.
func Random(degree int, rng io.Reader) (Polynomial, error) {
	p := make(Polynomial, degree+1)
	for i := range p {
		var err error
		if p[i], err = utils.RandomFrElement(rng); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p Polynomial) Clone() Polynomial {
	res := make(Polynomial, len(p))
	copy(res, p)
	return res
}

// Degree returns the degree of p, -1 for the zero polynomial.
func (p Polynomial) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsZero() {
			return i
		}
	}
	return -1
}

func (p Polynomial) IsZero() bool {
	return p.Degree() == -1
}

// Eval evaluates p at x.
func (p Polynomial) Eval(x fr.Element) fr.Element {
	var r fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		r.Mul(&r, &x).Add(&r, &p[i])
	}
	return r
}

// ChunkedEval evaluates p chunk by chunk, one value per chunkSize
// coefficients. This mirrors how the commitment scheme splits a
// polynomial larger than its basis: the verifier recombines the values
// with powers of x^chunkSize.
func (p Polynomial) ChunkedEval(x fr.Element, chunkSize int) []fr.Element {
	if len(p) == 0 {
		return make([]fr.Element, 1)
	}
	nbChunks := (len(p) + chunkSize - 1) / chunkSize
	res := make([]fr.Element, nbChunks)
	for i := 0; i < nbChunks; i++ {
		end := (i + 1) * chunkSize
		if end > len(p) {
			end = len(p)
		}
		res[i] = Polynomial(p[i*chunkSize : end]).Eval(x)
	}
	return res
}

// Add returns p+q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	small, large := p, q
	if len(q) < len(p) {
		small, large = q, p
	}
	res := large.Clone()
	for i := range small {
		res[i].Add(&res[i], &small[i])
	}
	return res
}

// Sub returns p-q.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	size := len(p)
	if len(q) > size {
		size = len(q)
	}
	res := make(Polynomial, size)
	copy(res, p)
	for i := range q {
		res[i].Sub(&res[i], &q[i])
	}
	return res
}

// Scale returns v*p.
func (p Polynomial) Scale(v fr.Element) Polynomial {
	res := make(Polynomial, len(p))
	for i := range p {
		res[i].Mul(&p[i], &v)
	}
	return res
}

// Neg returns -p.
func (p Polynomial) Neg() Polynomial {
	res := make(Polynomial, len(p))
	for i := range p {
		res[i].Neg(&p[i])
	}
	return res
}

// Mul returns the product p*q, computed by FFT on a domain sized for the
// result.
func Mul(p, q Polynomial) Polynomial {
	dp, dq := p.Degree(), q.Degree()
	if dp == -1 || dq == -1 {
		return Polynomial{}
	}
	size := ecc.NextPowerOfTwo(uint64(dp + dq + 1))
	domain := fft.NewDomain(size)

	lp := make([]fr.Element, size)
	lq := make([]fr.Element, size)
	copy(lp, p[:dp+1])
	copy(lq, q[:dq+1])

	domain.FFT(lp, fft.DIF)
	domain.FFT(lq, fft.DIF)
	utils.Parallelize(int(size), func(start, end int) {
		for i := start; i < end; i++ {
			lp[i].Mul(&lp[i], &lq[i])
		}
	})
	domain.FFTInverse(lp, fft.DIT)

	return Polynomial(lp[:dp+dq+1])
}

// Div returns the euclidean quotient and remainder of p by q.
func Div(p, q Polynomial) (quo, rem Polynomial, err error) {
	dq := q.Degree()
	if dq == -1 {
		return nil, nil, ErrZeroDivisor
	}
	dp := p.Degree()
	if dp < dq {
		return Polynomial{}, p.Clone(), nil
	}

	var invLead fr.Element
	invLead.Inverse(&q[dq])

	r := p.Clone()[:dp+1]
	quo = make(Polynomial, dp-dq+1)
	for i := dp; i >= dq; i-- {
		if r[i].IsZero() {
			continue
		}
		var c, t fr.Element
		c.Mul(&r[i], &invLead)
		quo[i-dq] = c
		for j := 0; j <= dq; j++ {
			t.Mul(&c, &q[j])
			r[i-dq+j].Sub(&r[i-dq+j], &t)
		}
	}
	return quo, r[:dq], nil
}

// DivByVanishing divides p by X^n-1, n the domain cardinality. The
// synthetic division is linear in len(p).
func (p Polynomial) DivByVanishing(domain *fft.Domain) (quo, rem Polynomial) {
	n := int(domain.Cardinality)
	rem = p.Clone()
	if len(rem) <= n {
		return Polynomial{}, rem
	}
	quo = make(Polynomial, len(rem)-n)
	for i := len(rem) - 1; i >= n; i-- {
		quo[i-n] = rem[i]
		rem[i-n].Add(&rem[i-n], &rem[i])
	}
	return quo, rem[:n]
}

// MulByVanishing returns p*(X^n-1), n the domain cardinality.
func (p Polynomial) MulByVanishing(domain *fft.Domain) Polynomial {
	n := int(domain.Cardinality)
	res := make(Polynomial, len(p)+n)
	for i := range p {
		res[i+n].Add(&res[i+n], &p[i])
		res[i].Sub(&res[i], &p[i])
	}
	return res
}
