package testutil

import (
	"io"
	"sync"

	"fv-go/internal/fv"
)

// FaultyStore wraps a SnapshotStore and returns the configured errors instead
// of delegating. A nil error field means the call passes through.
type FaultyStore struct {
	fv.SnapshotStore

	mu        sync.Mutex
	WriteErr  error
	ReadErr   error
	DeleteErr error
}

func NewFaultyStore(inner fv.SnapshotStore) *FaultyStore {
	return &FaultyStore{SnapshotStore: inner}
}

func (s *FaultyStore) WriteSnapshot(key string, r io.Reader, size int64) error {
	s.mu.Lock()
	err := s.WriteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.SnapshotStore.WriteSnapshot(key, r, size)
}

func (s *FaultyStore) ReadSnapshot(key string, w io.Writer) error {
	s.mu.Lock()
	err := s.ReadErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.SnapshotStore.ReadSnapshot(key, w)
}

func (s *FaultyStore) DeleteSnapshot(key string) error {
	s.mu.Lock()
	err := s.DeleteErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.SnapshotStore.DeleteSnapshot(key)
}

// FaultyIndex wraps an Index and fails appends or removals on demand.
type FaultyIndex struct {
	fv.Index

	AppendErr error
	RemoveErr error
}

func NewFaultyIndex(inner fv.Index) *FaultyIndex {
	return &FaultyIndex{Index: inner}
}

func (i *FaultyIndex) AppendVersion(v *fv.Version, nextSeq int) error {
	if i.AppendErr != nil {
		return i.AppendErr
	}
	return i.Index.AppendVersion(v, nextSeq)
}

func (i *FaultyIndex) RemoveVersion(fileName, versionID string) error {
	if i.RemoveErr != nil {
		return i.RemoveErr
	}
	return i.Index.RemoveVersion(fileName, versionID)
}

var (
	_ fv.SnapshotStore = (*FaultyStore)(nil)
	_ fv.Index         = (*FaultyIndex)(nil)
)
