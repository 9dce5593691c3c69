// Package commitment implements the discrete-log polynomial commitment
// scheme backing the prover: chunked Pedersen commitments over bn254
// with optional degree bounds, and one aggregated inner-product opening
// proof for a batch of polynomials at a batch of points.
package commitment

import (
	"encoding/binary"
	"errors"
	"sync"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"

	"github.com/mengsuenyan/plonk/internal/utils"
)

var (
	// ErrSRSSize is returned when the requested basis size is not a
	// power of two; the opening argument halves its vectors each round.
	ErrSRSSize = errors.New("commitment: srs size must be a nonzero power of two")

	// ErrDegreeBound is returned when a polynomial exceeds its declared
	// degree bound.
	ErrDegreeBound = errors.New("commitment: polynomial larger than its degree bound")
)

const (
	dstG = "plonk-commitment-srs-g"
	dstH = "plonk-commitment-srs-h"
	dstU = "plonk-commitment-open-u"
)

// SRS holds the commitment bases. There is no secret behind them: each
// point is derived by hashing to the curve, so anyone can re-create or
// extend the basis.
type SRS struct {
	// G are the commitment bases; len(G) is the maximum number of
	// coefficients a single chunk commits to.
	G []curve.G1Affine

	// H is the base used by the opening proof's blinding terms.
	H curve.G1Affine
}

// NewSRS derives a basis of the given size. size must be a power of two.
func NewSRS(size int) (*SRS, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, ErrSRSSize
	}

	srs := &SRS{G: make([]curve.G1Affine, size)}

	var mu sync.Mutex
	var firstErr error
	utils.Parallelize(size, func(start, end int) {
		var msg [8]byte
		for i := start; i < end; i++ {
			binary.BigEndian.PutUint64(msg[:], uint64(i))
			p, err := curve.HashToG1(msg[:], []byte(dstG))
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			srs.G[i] = p
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}

	h, err := curve.HashToG1([]byte{}, []byte(dstH))
	if err != nil {
		return nil, err
	}
	srs.H = h

	return srs, nil
}
