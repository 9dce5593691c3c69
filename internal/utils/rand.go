package utils

import (
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// RandomFrElement samples a scalar field element from rng. Reading 48
// bytes before the modular reduction keeps the bias negligible.
func RandomFrElement(rng io.Reader) (fr.Element, error) {
	var buf [48]byte
	var res fr.Element
	if _, err := io.ReadFull(rng, buf[:]); err != nil {
		return res, err
	}
	res.SetBytes(buf[:])
	return res, nil
}
