package encryption

import (
	"bytes"
	"fmt"
	"io"

	"fv-go/internal/fv"
)

// testMagic marks content produced by TestEncryptor.
var testMagic = []byte("FVTEST\x00\x01")

// TestEncryptor frames content with a fixed marker instead of encrypting it.
// Output is deterministic and differs from the input, which is all tests of
// the encrypted store need.
type TestEncryptor struct {
	configured bool
}

var _ fv.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{configured: true}
}

func (e *TestEncryptor) Setup(passphrase string) error {
	e.configured = true
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testMagic); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (fv.DecryptionContext, error) {
	return TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return e.configured
}

// TestDecryptionContext strips the marker written by TestEncryptor.
type TestDecryptionContext struct{}

var _ fv.DecryptionContext = TestDecryptionContext{}

func (TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	marker := make([]byte, len(testMagic))
	if _, err := io.ReadFull(r, marker); err != nil {
		return fmt.Errorf("reading marker: %w", err)
	}
	if !bytes.Equal(marker, testMagic) {
		return fmt.Errorf("content was not produced by TestEncryptor")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
