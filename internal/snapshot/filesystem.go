package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fv-go/internal/fv"
)

// FileSystemStore keeps each snapshot as a plain file directly inside the
// backup root:
//
//	<root>/
//	  notes.txt_v1
//	  notes.txt_v2
type FileSystemStore struct {
	root string
}

// NewFileSystemStore returns a store rooted at root. The directory is created
// by EnsureRoot.
func NewFileSystemStore(root string) *FileSystemStore {
	return &FileSystemStore{root: root}
}

// Root returns the backup root directory.
func (s *FileSystemStore) Root() string {
	return s.root
}

// EnsureRoot creates the backup root if it does not exist.
func (s *FileSystemStore) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("creating backup root: %w", err)
	}
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("backup root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("backup root is not a directory: %s", s.root)
	}
	return nil
}

// WriteSnapshot writes r to <root>/<key> via a temp file and rename, so a
// failed write never leaves a partial snapshot behind.
func (s *FileSystemStore) WriteSnapshot(key string, r io.Reader, size int64) error {
	destPath, err := s.path(key)
	if err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

// ReadSnapshot copies <root>/<key> to w.
func (s *FileSystemStore) ReadSnapshot(key string, w io.Writer) error {
	srcPath, err := s.path(key)
	if err != nil {
		return err
	}

	f, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", fv.ErrSnapshotNotFound, key)
		}
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	return nil
}

// DeleteSnapshot removes <root>/<key>.
func (s *FileSystemStore) DeleteSnapshot(key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", fv.ErrSnapshotNotFound, key)
		}
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}

// path maps key to a file inside root. Keys that would escape the root are rejected.
func (s *FileSystemStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid snapshot key: %q", key)
	}
	return filepath.Join(s.root, key), nil
}

var _ fv.SnapshotStore = (*FileSystemStore)(nil)
