package fv

import (
	"errors"
	"fmt"
	"slices"
)

// DeleteVersion removes versionID from the file's history and deletes its bytes.
//
// Metadata consistency never waits on storage cleanup: the record is removed
// from the index and the history first. If the bytes are already gone that is
// logged and treated as success; any other storage failure is returned wrapping
// ErrStorageIO, with the record already removed.
func (s *VersionStore) DeleteVersion(fileName, versionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[fileName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrHistoryNotFound, fileName)
	}
	i, v := history.Find(versionID)
	if v == nil {
		return fmt.Errorf("%w: %s of %s", ErrVersionNotFound, versionID, fileName)
	}

	if err := s.index.RemoveVersion(fileName, versionID); err != nil {
		return fmt.Errorf("removing version from index: %w", err)
	}
	history.Versions = slices.Delete(history.Versions, i, i+1)

	if err := s.store.DeleteSnapshot(v.StorageKey); err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			s.logger.Warn("snapshot already missing", "file", fileName, "version", versionID, "key", v.StorageKey)
			return nil
		}
		s.logger.Error("deleting snapshot", "key", v.StorageKey, "error", err)
		return storageError("deleting snapshot", v.StorageKey, err)
	}

	s.logger.Info("version deleted", "file", fileName, "version", versionID)
	return nil
}
