package fv

import (
	"errors"
	"fmt"
)

// Backup snapshots the file at sourcePath.
//
// The content is captured once through the staging area and fingerprinted.
// If the newest version of the file already has that fingerprint, nothing is
// written and the newest version is returned together with ErrNoChange.
// Otherwise the next version id is assigned, the capture is written to the
// snapshot store, the version is recorded in the index and finally appended to
// the in-memory history. A failed write leaves no record behind; a failed index
// update removes the written bytes again.
func (s *VersionStore) Backup(sourcePath string) (*Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.fsmgr.Resolve(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("resolving source: %w", err)
	}
	if path.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}
	if s.fsmgr.IsIgnored(path) {
		return nil, fmt.Errorf("%w: %s", ErrIgnored, path)
	}

	capture, err := s.capture(path)
	if err != nil {
		return nil, err
	}
	defer capture.Release()

	fingerprint, err := s.fingerprintCapture(capture)
	if err != nil {
		return nil, err
	}

	fileName := path.Name()
	history, known := s.histories[fileName]
	if !known {
		history = NewHistory(fileName)
	}

	if latest := history.Latest(); latest != nil && latest.Fingerprint == fingerprint {
		s.logger.Info("no changes detected", "file", fileName, "version", latest.VersionID)
		return latest.clone(), ErrNoChange
	}

	seq := s.nextSeq(history)
	versionID := FormatVersionID(seq)
	v := &Version{
		ID:          s.idgen.New(),
		FileName:    fileName,
		VersionID:   versionID,
		CreatedAt:   s.clock.Now(),
		Fingerprint: fingerprint,
		StorageKey:  StorageKey(fileName, versionID),
		Size:        capture.Size(),
		SourcePath:  path.String(),
		Mode:        DefaultFileMode,
	}
	if info := path.Info(); info != nil {
		v.Mode = info.Mode().Perm()
	}

	if err := s.writeCapture(v.StorageKey, capture); err != nil {
		return nil, err
	}

	nextSeq := max(history.NextSeq, seq+1)
	if err := s.index.AppendVersion(v, nextSeq); err != nil {
		if delErr := s.store.DeleteSnapshot(v.StorageKey); delErr != nil && !errors.Is(delErr, ErrSnapshotNotFound) {
			s.logger.Error("removing unrecorded snapshot", "key", v.StorageKey, "error", delErr)
		}
		return nil, fmt.Errorf("recording version in index: %w", err)
	}

	history.Versions = append(history.Versions, v)
	history.NextSeq = nextSeq
	s.histories[fileName] = history

	s.logger.Info("backup created", "file", fileName, "version", versionID, "size", v.Size)
	return v.clone(), nil
}

// capture copies the source into the staging area.
func (s *VersionStore) capture(path *Path) (Capture, error) {
	c, err := s.staging.Capture(path)
	if err != nil {
		return nil, fmt.Errorf("capturing source: %w", err)
	}
	return c, nil
}

func (s *VersionStore) fingerprintCapture(c Capture) (string, error) {
	r, err := c.Open()
	if err != nil {
		return "", fmt.Errorf("opening capture: %w", err)
	}
	defer r.Close()

	fp, err := s.fingerprint.Fingerprint(r)
	if err != nil {
		return "", fmt.Errorf("fingerprinting source: %w", err)
	}
	return fp, nil
}

func (s *VersionStore) writeCapture(key string, c Capture) error {
	r, err := c.Open()
	if err != nil {
		return fmt.Errorf("opening capture: %w", err)
	}
	defer r.Close()

	if err := s.store.WriteSnapshot(key, r, c.Size()); err != nil {
		return storageError("writing snapshot", key, err)
	}
	return nil
}
