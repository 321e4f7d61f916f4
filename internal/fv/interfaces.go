package fv

import (
	"io"
	"io/fs"
	"time"
)

// Fingerprinter computes a stable content digest used for change detection.
// Implementations must be deterministic and side-effect free, and must return
// an error if r cannot be fully consumed.
type Fingerprinter interface {
	// Fingerprint returns a fixed-length lowercase hex digest of everything read from r.
	Fingerprint(r io.Reader) (string, error)
}

// SnapshotStore is the storage backend holding snapshot bytes.
// Keys are opaque strings chosen by VersionStore. Reads and deletes of
// unknown keys return an error wrapping ErrSnapshotNotFound.
type SnapshotStore interface {
	// EnsureRoot creates the backup root (directory, bucket prefix, ...) if absent.
	EnsureRoot() error

	// WriteSnapshot stores size bytes read from r under key, replacing any existing bytes.
	WriteSnapshot(key string, r io.Reader, size int64) error

	// ReadSnapshot writes the bytes stored under key to w.
	ReadSnapshot(key string, w io.Writer) error

	// DeleteSnapshot removes the bytes stored under key.
	DeleteSnapshot(key string) error
}

// Index persists version metadata so histories survive process restarts.
// NopIndex keeps everything in memory only.
type Index interface {
	// LoadHistories returns every known history keyed by file name, versions oldest first.
	LoadHistories() (map[string]*History, error)

	// AppendVersion records a new version and sets its file's next sequence number.
	AppendVersion(v *Version, nextSeq int) error

	// RemoveVersion deletes a version record. The file itself stays known.
	RemoveVersion(fileName, versionID string) error

	// Close releases the index.
	Close() error
}

// Capture is a frozen copy of a source file held while it is fingerprinted and stored.
type Capture interface {
	// Open returns a fresh reader over the captured bytes.
	Open() (io.ReadCloser, error)

	// Size returns the number of captured bytes.
	Size() int64

	// Release discards the captured bytes. Safe to call more than once.
	Release() error
}

// StagingArea copies a source file into a Capture so the fingerprinted bytes
// and the stored bytes are guaranteed to be the same. A file that changes
// while it is being copied is rejected.
type StagingArea interface {
	Capture(path *Path) (Capture, error)
}

// FilesystemManager abstracts access to source and destination files
// so the store can be tested without touching the real filesystem.
type FilesystemManager interface {
	// Resolve makes rawPath absolute and stats it. A missing path yields
	// an error wrapping ErrSourceNotFound; special files are rejected.
	Resolve(rawPath string) (*Path, error)

	// Open opens a resolved file for reading.
	Open(path *Path) (io.ReadCloser, error)

	// Stat returns fresh file info for a resolved path.
	Stat(path *Path) (fs.FileInfo, error)

	// IsIgnored reports whether the path matches a configured ignore pattern.
	IsIgnored(path *Path) bool

	// WriteFileAtomic replaces the file at path with whatever write produces.
	// The previous content is left untouched if write fails.
	WriteFileAtomic(path string, perm fs.FileMode, write func(w io.Writer) error) error
}

// Encryptor encrypts snapshot content with a public key and unlocks
// a DecryptionContext from a passphrase for reading it back.
type Encryptor interface {
	// Setup generates and stores a key pair protected by passphrase.
	Setup(passphrase string) error

	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock returns a DecryptionContext, or an error if the passphrase is wrong.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether the key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for a session.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// Logger is the structured logger used by the store. Args are slog-style key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Clock abstracts time so tests are deterministic.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique record ids.
type IDGenerator interface {
	New() string
}
