package fs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"fv-go/internal/fv"
)

const tempFilePrefix = ".fv-tmp-"

// OSFilesystemManager is the real filesystem implementation of fv.FilesystemManager.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that ignores paths matched by ignore.
// A nil matcher applies only the default patterns.
func NewOSFilesystemManager(ignore *IgnoreMatcher) *OSFilesystemManager {
	if ignore == nil {
		ignore = NewIgnoreMatcher(nil)
	}
	return &OSFilesystemManager{ignore: ignore}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*fv.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", fv.ErrSourceNotFound, absPath)
		}
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return fv.NewPath(absPath, info), nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *fv.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path)
	}
	return os.Open(path.String())
}

// Stat returns fresh file info for a path.
func (m *OSFilesystemManager) Stat(path *fv.Path) (fs.FileInfo, error) {
	return os.Stat(path.String())
}

// IsIgnored reports whether path matches one of the ignore patterns.
func (m *OSFilesystemManager) IsIgnored(path *fv.Path) bool {
	return m.ignore.Match(path.String())
}

// WriteFileAtomic writes to a temp file next to path and renames it into
// place once write succeeds. Missing parent directories are created.
func (m *OSFilesystemManager) WriteFileAtomic(path string, perm fs.FileMode, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, tempFilePrefix+"*")
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

	if err := write(tmpFile); err != nil {
		tmpFile.Close()
		return err
	}
	if err := tmpFile.Chmod(perm); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}

	success = true
	return nil
}

var _ fv.FilesystemManager = (*OSFilesystemManager)(nil)
