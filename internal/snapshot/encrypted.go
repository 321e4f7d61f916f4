package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"fv-go/internal/fv"
)

// UnlockFunc returns the decryption context for an EncryptedStore. It is
// called at most once, on the first read.
type UnlockFunc func() (fv.DecryptionContext, error)

// EncryptedStore encrypts snapshots before handing them to the wrapped store
// and decrypts them on the way back.
type EncryptedStore struct {
	inner     fv.SnapshotStore
	encryptor fv.Encryptor
	unlock    UnlockFunc

	mu  sync.Mutex
	ctx fv.DecryptionContext
}

// NewEncryptedStore wraps inner. unlock is deferred until a snapshot is read,
// so backups never prompt for a passphrase.
func NewEncryptedStore(inner fv.SnapshotStore, encryptor fv.Encryptor, unlock UnlockFunc) *EncryptedStore {
	return &EncryptedStore{inner: inner, encryptor: encryptor, unlock: unlock}
}

func (s *EncryptedStore) EnsureRoot() error {
	if !s.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys not found, run 'fv config keygen' first")
	}
	return s.inner.EnsureRoot()
}

// WriteSnapshot encrypts size plaintext bytes from r and stores the ciphertext under key.
func (s *EncryptedStore) WriteSnapshot(key string, r io.Reader, size int64) error {
	plain := &countingReader{r: r}
	var sealed bytes.Buffer
	if err := s.encryptor.Encrypt(plain, &sealed); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if plain.n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, plain.n)
	}
	return s.inner.WriteSnapshot(key, &sealed, int64(sealed.Len()))
}

// ReadSnapshot fetches the ciphertext for key and writes the plaintext to w.
func (s *EncryptedStore) ReadSnapshot(key string, w io.Writer) error {
	var sealed bytes.Buffer
	if err := s.inner.ReadSnapshot(key, &sealed); err != nil {
		return err
	}

	dc, err := s.decryptionContext()
	if err != nil {
		return err
	}
	if err := dc.Decrypt(&sealed, w); err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return nil
}

func (s *EncryptedStore) DeleteSnapshot(key string) error {
	return s.inner.DeleteSnapshot(key)
}

func (s *EncryptedStore) decryptionContext() (fv.DecryptionContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx != nil {
		return s.ctx, nil
	}
	if s.unlock == nil {
		return nil, fmt.Errorf("no unlock function configured")
	}
	dc, err := s.unlock()
	if err != nil {
		return nil, fmt.Errorf("unlocking private key: %w", err)
	}
	s.ctx = dc
	return dc, nil
}

var _ fv.SnapshotStore = (*EncryptedStore)(nil)
