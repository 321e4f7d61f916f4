package encryption

import (
	"fmt"
	"io"
	"sync"

	"filippo.io/age"

	"fv-go/internal/config"
	"fv-go/internal/fv"
)

// AgeEncryptor seals snapshots to an X25519 recipient with filippo.io/age.
// The public key sits next to a private key that is itself sealed with the
// user's passphrase, so backups never need the passphrase but restores do.
type AgeEncryptor struct {
	publicKeyPath  string
	privateKeyPath string

	mu        sync.Mutex
	recipient age.Recipient
}

var _ fv.Encryptor = (*AgeEncryptor)(nil)

// NewAgeEncryptor creates an AgeEncryptor for the configured key paths.
func NewAgeEncryptor(cfg config.EncryptionConfig) *AgeEncryptor {
	return &AgeEncryptor{
		publicKeyPath:  cfg.PublicKeyPath,
		privateKeyPath: cfg.PrivateKeyPath,
	}
}

// Setup generates a key pair. Existing keys are never overwritten, since
// doing so would make earlier snapshots unreadable.
func (e *AgeEncryptor) Setup(passphrase string) error {
	if fileExists(e.publicKeyPath) || fileExists(e.privateKeyPath) {
		return ErrAlreadyConfigured
	}
	if passphrase == "" {
		return fmt.Errorf("passphrase must not be empty")
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return fmt.Errorf("generating key pair: %w", err)
	}

	if err := writePrivateKey(e.privateKeyPath, identity, passphrase); err != nil {
		return err
	}
	return writePublicKey(e.publicKeyPath, identity.Recipient())
}

// Encrypt writes r sealed to the configured public key into w.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	recipient, err := e.loadRecipient()
	if err != nil {
		return err
	}

	sealed, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.Copy(sealed, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}
	if err := sealed.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// Unlock opens the private key. A wrong passphrase yields ErrWrongPassphrase.
func (e *AgeEncryptor) Unlock(passphrase string) (fv.DecryptionContext, error) {
	identity, err := readIdentity(e.privateKeyPath, passphrase)
	if err != nil {
		return nil, err
	}
	return &AgeDecryptionContext{identity: identity}, nil
}

// IsConfigured reports whether both key files exist.
func (e *AgeEncryptor) IsConfigured() bool {
	return fileExists(e.publicKeyPath) && fileExists(e.privateKeyPath)
}

func (e *AgeEncryptor) loadRecipient() (age.Recipient, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.recipient != nil {
		return e.recipient, nil
	}
	recipient, err := readRecipient(e.publicKeyPath)
	if err != nil {
		return nil, err
	}
	e.recipient = recipient
	return recipient, nil
}

// AgeDecryptionContext holds an unlocked identity for the rest of the session.
type AgeDecryptionContext struct {
	identity age.Identity
}

var _ fv.DecryptionContext = (*AgeDecryptionContext)(nil)

// Decrypt writes the plaintext of the age ciphertext in r to w.
func (c *AgeDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	plain, err := age.Decrypt(r, c.identity)
	if err != nil {
		return fmt.Errorf("opening ciphertext: %w", err)
	}
	if _, err := io.Copy(w, plain); err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}
	return nil
}
