package commitment

import (
	"runtime"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/mengsuenyan/plonk/polynomial"
)

// PolyComm is a commitment to a polynomial. Polynomials larger than the
// basis commit chunk by chunk into Unshifted. When a degree bound was
// declared, Shifted additionally commits to the last chunk placed at the
// top of the basis, which lets a verifier check the bound.
type PolyComm struct {
	Unshifted []curve.G1Affine
	Shifted   *curve.G1Affine
}

// Commit commits to p. bound > 0 declares a degree bound, meaning p has
// at most bound coefficients; bound <= 0 commits without one. nbTasks
// optionally caps the parallelism of the multi exponentiations.
func (srs *SRS) Commit(p polynomial.Polynomial, bound int, nbTasks ...int) (PolyComm, error) {
	cfg := ecc.MultiExpConfig{NbTasks: runtime.NumCPU()}
	if len(nbTasks) == 1 {
		cfg.NbTasks = nbTasks[0]
	}

	size := len(srs.G)
	if bound > 0 && len(p) > bound {
		return PolyComm{}, ErrDegreeBound
	}

	nbChunks := (len(p) + size - 1) / size
	if nbChunks == 0 {
		nbChunks = 1 // commitment to the zero polynomial is the zero point
	}

	res := PolyComm{Unshifted: make([]curve.G1Affine, nbChunks)}
	for i := 0; i < nbChunks; i++ {
		chunk := chunkOf(p, i, size)
		if len(chunk) == 0 {
			continue // zero value is the point at infinity
		}
		if _, err := res.Unshifted[i].MultiExp(srs.G[:len(chunk)], chunk, cfg); err != nil {
			return PolyComm{}, err
		}
	}

	if bound > 0 {
		// commit to the last chunk shifted to the top of the basis, so
		// that its degree cannot exceed bound modulo the chunk size
		offset := (size - bound%size) % size
		chunk := chunkOf(p, nbChunks-1, size)
		if offset+len(chunk) > size {
			return PolyComm{}, ErrDegreeBound
		}
		var shifted curve.G1Affine
		if len(chunk) > 0 {
			if _, err := shifted.MultiExp(srs.G[offset:offset+len(chunk)], chunk, cfg); err != nil {
				return PolyComm{}, err
			}
		}
		res.Shifted = &shifted
	}

	return res, nil
}

func chunkOf(p polynomial.Polynomial, i, size int) []fr.Element {
	start := i * size
	if start >= len(p) {
		return nil
	}
	end := start + size
	if end > len(p) {
		end = len(p)
	}
	return p[start:end]
}
