package fv

import (
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"
)

// Version is one immutable snapshot of a file's bytes at a point in time.
type Version struct {
	ID          string      // opaque unique id, index primary key
	FileName    string      // logical identity: base name of the source path
	VersionID   string      // "v1", "v2", ... unique within the file's history
	CreatedAt   time.Time   // when the snapshot was taken
	Fingerprint string      // lowercase hex digest of the captured bytes
	StorageKey  string      // key of the snapshot bytes in the SnapshotStore
	Size        int64       // snapshot size in bytes
	SourcePath  string      // absolute path the snapshot was captured from
	Mode        fs.FileMode // permission bits of the source, reapplied on restore
}

// String formats the version as "v1 | 2006-01-02 15:04:05 | Hash: <fingerprint>".
func (v *Version) String() string {
	return fmt.Sprintf("%s | %s | Hash: %s", v.VersionID, v.CreatedAt.Format("2006-01-02 15:04:05"), v.Fingerprint)
}

// clone returns a copy so callers never hold pointers into a History.
func (v *Version) clone() *Version {
	c := *v
	return &c
}

// History is the ordered sequence of versions for one file name, oldest first.
// NextSeq is the next sequence number handed out under IDPolicyMonotonic; it never decreases.
type History struct {
	FileName string
	Versions []*Version
	NextSeq  int
}

// NewHistory creates an empty history for fileName.
func NewHistory(fileName string) *History {
	return &History{
		FileName: fileName,
		NextSeq:  1,
	}
}

// Latest returns the most recently appended version, or nil if the history is empty.
func (h *History) Latest() *Version {
	if len(h.Versions) == 0 {
		return nil
	}
	return h.Versions[len(h.Versions)-1]
}

// Find returns the position and version with an exact versionID match.
// It is a linear scan: histories are small and their growth is the user's responsibility.
// Returns -1 and nil if no version matches.
func (h *History) Find(versionID string) (int, *Version) {
	for i, v := range h.Versions {
		if v.VersionID == versionID {
			return i, v
		}
	}
	return -1, nil
}

// FormatVersionID renders a sequence number as a version id ("v" + seq).
func FormatVersionID(seq int) string {
	return "v" + strconv.Itoa(seq)
}

// ParseVersionID extracts the sequence number from a version id.
// Returns false if id is not of the form "v<positive integer>".
func ParseVersionID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, "v")
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

// StorageKey returns the snapshot key for a version: fileName + "_" + versionID.
func StorageKey(fileName, versionID string) string {
	return fileName + "_" + versionID
}
