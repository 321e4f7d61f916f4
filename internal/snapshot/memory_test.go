package snapshot

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"fv-go/internal/fv"
)

func TestMemoryStore_WriteAndRead(t *testing.T) {
	store := NewMemoryStore()

	tests := []struct {
		name    string
		key     string
		content string
	}{
		{name: "simple content", key: "notes.txt_v1", content: "hello world"},
		{name: "empty content", key: "empty.txt_v1", content: ""},
		{name: "large content", key: "large.bin_v1", content: strings.Repeat("x", 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.WriteSnapshot(tt.key, strings.NewReader(tt.content), int64(len(tt.content))); err != nil {
				t.Fatalf("WriteSnapshot() error = %v", err)
			}

			var buf bytes.Buffer
			if err := store.ReadSnapshot(tt.key, &buf); err != nil {
				t.Fatalf("ReadSnapshot() error = %v", err)
			}
			if got := buf.String(); got != tt.content {
				t.Errorf("ReadSnapshot() = %q, want %q", got, tt.content)
			}
		})
	}
}

func TestMemoryStore_SizeMismatch(t *testing.T) {
	store := NewMemoryStore()

	if err := store.WriteSnapshot("k", strings.NewReader("abc"), 10); err == nil {
		t.Fatal("WriteSnapshot() expected size mismatch error")
	}
	if len(store.Keys()) != 0 {
		t.Errorf("Keys() = %v, want none after failed write", store.Keys())
	}
}

func TestMemoryStore_MissingKey(t *testing.T) {
	store := NewMemoryStore()

	var buf bytes.Buffer
	if err := store.ReadSnapshot("absent", &buf); !errors.Is(err, fv.ErrSnapshotNotFound) {
		t.Errorf("ReadSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
	if err := store.DeleteSnapshot("absent"); !errors.Is(err, fv.ErrSnapshotNotFound) {
		t.Errorf("DeleteSnapshot() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	if err := store.WriteSnapshot("a_v1", strings.NewReader("A"), 1); err != nil {
		t.Fatal(err)
	}
	if err := store.WriteSnapshot("a_v2", strings.NewReader("B"), 1); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteSnapshot("a_v1"); err != nil {
		t.Fatalf("DeleteSnapshot() error = %v", err)
	}

	keys := store.Keys()
	if len(keys) != 1 || keys[0] != "a_v2" {
		t.Errorf("Keys() = %v, want [a_v2]", keys)
	}
}
