package fv

import "errors"

var (
	// ErrSourceNotFound is returned when the file to back up does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrNoChange signals that the source matches the newest stored version.
	// It is a no-op outcome, not a failure.
	ErrNoChange = errors.New("no changes detected")

	// ErrHistoryNotFound is returned when a file name has never been backed up.
	ErrHistoryNotFound = errors.New("no history for file")

	// ErrVersionNotFound is returned when a version id is absent from a history.
	ErrVersionNotFound = errors.New("version not found")

	// ErrStorageIO wraps failures of the snapshot store other than a missing key.
	ErrStorageIO = errors.New("snapshot storage error")

	// ErrOrphanedRecord is returned when a version's snapshot bytes are missing from storage.
	ErrOrphanedRecord = errors.New("orphaned version record")

	// ErrSnapshotNotFound is returned by SnapshotStore implementations for unknown keys.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrIgnored is returned when the source path matches an ignore pattern.
	ErrIgnored = errors.New("file is ignored")
)
