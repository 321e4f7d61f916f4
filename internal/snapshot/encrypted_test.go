package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"fv-go/internal/encryption"
	"fv-go/internal/fv"
)

func TestEncryptedStore_RoundTrip(t *testing.T) {
	inner := NewMemoryStore()
	enc := encryption.NewTestEncryptor()
	unlocks := 0
	store := NewEncryptedStore(inner, enc, func() (fv.DecryptionContext, error) {
		unlocks++
		return enc.Unlock("")
	})

	if err := store.WriteSnapshot("notes.txt_v1", strings.NewReader("secret"), 6); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	var raw bytes.Buffer
	if err := inner.ReadSnapshot("notes.txt_v1", &raw); err != nil {
		t.Fatal(err)
	}
	if raw.String() == "secret" {
		t.Error("inner store holds plaintext")
	}

	for i := 0; i < 2; i++ {
		var buf bytes.Buffer
		if err := store.ReadSnapshot("notes.txt_v1", &buf); err != nil {
			t.Fatalf("ReadSnapshot() error = %v", err)
		}
		if buf.String() != "secret" {
			t.Errorf("ReadSnapshot() = %q, want %q", buf.String(), "secret")
		}
	}
	if unlocks != 1 {
		t.Errorf("unlock called %d times, want 1", unlocks)
	}
}

func TestEncryptedStore_WriteDoesNotUnlock(t *testing.T) {
	store := NewEncryptedStore(NewMemoryStore(), encryption.NewTestEncryptor(), func() (fv.DecryptionContext, error) {
		t.Fatal("unlock called during write")
		return nil, nil
	})

	if err := store.WriteSnapshot("k", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}
}

func TestEncryptedStore_SizeMismatch(t *testing.T) {
	inner := NewMemoryStore()
	store := NewEncryptedStore(inner, encryption.NewTestEncryptor(), nil)

	if err := store.WriteSnapshot("k", strings.NewReader("abc"), 7); err == nil {
		t.Fatal("WriteSnapshot() expected size mismatch error")
	}
	if len(inner.Keys()) != 0 {
		t.Errorf("inner keys = %v, want none", inner.Keys())
	}
}

func TestEncryptedStore_MissingKeyPassesThrough(t *testing.T) {
	store := NewEncryptedStore(NewMemoryStore(), encryption.NewTestEncryptor(), nil)

	var buf bytes.Buffer
	if err := store.ReadSnapshot("absent", &buf); !errors.Is(err, fv.ErrSnapshotNotFound) {
		t.Errorf("ReadSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
	if err := store.DeleteSnapshot("absent"); !errors.Is(err, fv.ErrSnapshotNotFound) {
		t.Errorf("DeleteSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestEncryptedStore_UnlockFailure(t *testing.T) {
	inner := NewMemoryStore()
	enc := encryption.NewTestEncryptor()
	store := NewEncryptedStore(inner, enc, func() (fv.DecryptionContext, error) {
		return nil, errors.New("wrong passphrase")
	})

	if err := store.WriteSnapshot("k", strings.NewReader("x"), 1); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := store.ReadSnapshot("k", &buf); err == nil {
		t.Fatal("ReadSnapshot() expected unlock error")
	}
}
