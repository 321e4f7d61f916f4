// Package fingerprint provides content digests used to detect file changes.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"golang.org/x/crypto/blake2b"

	"fv-go/internal/config"
	"fv-go/internal/fv"
)

// Hasher fingerprints content with a cryptographic hash function.
type Hasher struct {
	name    string
	newHash func() hash.Hash
}

var _ fv.Fingerprinter = (*Hasher)(nil)

// SHA256 returns a Hasher producing 64-character SHA-256 hex digests.
func SHA256() *Hasher {
	return &Hasher{name: "sha256", newHash: sha256.New}
}

// BLAKE2b returns a Hasher producing 64-character BLAKE2b-256 hex digests.
func BLAKE2b() *Hasher {
	return &Hasher{
		name: "blake2b",
		newHash: func() hash.Hash {
			// New256 only fails for keys longer than 64 bytes.
			h, _ := blake2b.New256(nil)
			return h
		},
	}
}

// Name returns the algorithm name as used in config.
func (h *Hasher) Name() string { return h.name }

// Fingerprint consumes r and returns the lowercase hex digest of its bytes.
func (h *Hasher) Fingerprint(r io.Reader) (string, error) {
	d := h.newHash()
	if _, err := io.Copy(d, r); err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return hex.EncodeToString(d.Sum(nil)), nil
}

// NewFromConfig selects a Hasher by algorithm name. Empty means sha256.
func NewFromConfig(cfg config.FingerprintConfig) (*Hasher, error) {
	switch cfg.Algorithm {
	case "", "sha256":
		return SHA256(), nil
	case "blake2b":
		return BLAKE2b(), nil
	default:
		return nil, fmt.Errorf("unknown fingerprint algorithm: %q", cfg.Algorithm)
	}
}
