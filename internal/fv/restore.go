package fv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
)

// RestoreVersion overwrites the file's restore target with the bytes of versionID
// and returns the path written. The target depends on the RestorePolicy:
// <RestoreDir>/<fileName> by default, or the version's original source path.
func (s *VersionStore) RestoreVersion(fileName, versionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.lookup(fileName, versionID)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(s.opts.RestoreDir, fileName)
	if s.opts.RestorePolicy == RestorePolicySource && v.SourcePath != "" {
		dest = v.SourcePath
	}

	if err := s.restore(v, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// RestoreVersionTo writes the bytes of versionID to dest, replacing any existing file.
func (s *VersionStore) RestoreVersionTo(fileName, versionID, dest string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.lookup(fileName, versionID)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("resolving destination: %w", err)
	}
	if err := s.restore(v, abs); err != nil {
		return "", err
	}
	return abs, nil
}

// lookup finds a version by exact id. Callers must hold s.mu.
func (s *VersionStore) lookup(fileName, versionID string) (*Version, error) {
	history, ok := s.histories[fileName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHistoryNotFound, fileName)
	}
	_, v := history.Find(versionID)
	if v == nil {
		return nil, fmt.Errorf("%w: %s of %s", ErrVersionNotFound, versionID, fileName)
	}
	return v, nil
}

// DefaultFileMode is used for restored files whose version carries no permission bits.
const DefaultFileMode fs.FileMode = 0644

func (s *VersionStore) restore(v *Version, dest string) error {
	perm := v.Mode.Perm()
	if perm == 0 {
		perm = DefaultFileMode
	}

	var readErr error
	err := s.fsmgr.WriteFileAtomic(dest, perm, func(w io.Writer) error {
		readErr = s.store.ReadSnapshot(v.StorageKey, w)
		return readErr
	})
	if readErr != nil {
		if errors.Is(readErr, ErrSnapshotNotFound) {
			s.logger.Error("snapshot missing for version", "file", v.FileName, "version", v.VersionID, "key", v.StorageKey)
			return fmt.Errorf("%w: %s %s: %w", ErrOrphanedRecord, v.FileName, v.VersionID, readErr)
		}
		return storageError("reading snapshot", v.StorageKey, readErr)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}

	s.logger.Info("version restored", "file", v.FileName, "version", v.VersionID, "dest", dest, "mode", perm)
	return nil
}
