package security

import (
	"github.com/matthewhartstonge/argon2"
)

// Argon2Hasher hashes and verifies low-entropy secrets such as passwords and
// one-time codes using salted argon2id.
type Argon2Hasher struct {
	config argon2.Config
}

// Argon2Params tunes the cost of an Argon2Hasher.
type Argon2Params struct {
	TimeCost    uint32 `env:"ARGON2_TIME_COST"   envDefault:"3"`
	MemoryCost  uint32 `env:"ARGON2_MEMORY_COST" envDefault:"65536"`
	Parallelism uint8  `env:"ARGON2_PARALLELISM" envDefault:"4"`
}

// NewArgon2Hasher creates a hasher. Zero-valued params keep the library defaults.
func NewArgon2Hasher(params Argon2Params) *Argon2Hasher {
	cfg := argon2.DefaultConfig()
	if params.TimeCost > 0 {
		cfg.TimeCost = params.TimeCost
	}
	if params.MemoryCost > 0 {
		cfg.MemoryCost = params.MemoryCost
	}
	if params.Parallelism > 0 {
		cfg.Parallelism = params.Parallelism
	}

	return &Argon2Hasher{config: cfg}
}

// Hash returns the encoded argon2id digest of secret.
func (h *Argon2Hasher) Hash(secret string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(secret))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// Verify reports whether secret matches digest. A malformed digest is a mismatch.
func (h *Argon2Hasher) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}

	ok, err := argon2.VerifyEncoded([]byte(secret), []byte(digest))
	if err != nil {
		return false
	}

	return ok
}
