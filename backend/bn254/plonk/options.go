package plonk

import (
	"crypto/rand"
	"io"
)

// ProverOption defines option for altering the behavior of the prover.
type ProverOption func(*proverConfig) error

type proverConfig struct {
	rng io.Reader
}

// WithRNG replaces the randomness source used for the blinding terms and
// the opening proof. The default is crypto/rand; anything predictable
// voids zero knowledge and is only meant for reproducible tests.
func WithRNG(r io.Reader) ProverOption {
	return func(cfg *proverConfig) error {
		cfg.rng = r
		return nil
	}
}

func newProverConfig(opts ...ProverOption) (proverConfig, error) {
	cfg := proverConfig{rng: rand.Reader}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return proverConfig{}, err
		}
	}
	return cfg, nil
}
