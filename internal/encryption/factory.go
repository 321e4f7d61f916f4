package encryption

import (
	"fmt"

	"fv-go/internal/config"
	"fv-go/internal/fv"
)

// NewEncryptorFromConfig returns the configured Encryptor, or nil when
// snapshots are stored in plaintext.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (fv.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewTestEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
