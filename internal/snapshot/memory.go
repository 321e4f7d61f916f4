package snapshot

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"fv-go/internal/fv"
)

// MemoryStore keeps snapshots in a map. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// EnsureRoot always succeeds for the in-memory store.
func (m *MemoryStore) EnsureRoot() error {
	return nil
}

// WriteSnapshot stores the bytes read from r under key.
func (m *MemoryStore) WriteSnapshot(key string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

// ReadSnapshot copies the bytes stored under key to w.
func (m *MemoryStore) ReadSnapshot(key string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", fv.ErrSnapshotNotFound, key)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot removes key from the store.
func (m *MemoryStore) DeleteSnapshot(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return fmt.Errorf("%w: %s", fv.ErrSnapshotNotFound, key)
	}
	delete(m.data, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ fv.SnapshotStore = (*MemoryStore)(nil)
