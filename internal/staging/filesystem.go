package staging

import (
	"fmt"
	"io"
	"os"

	"fv-go/internal/fv"
)

// NewFileSystemStagingArea creates a staging area that keeps each capture in a
// temp file under stagingDir:
//
//	<staging_dir>/
//	  capture-<random>   (one per in-flight backup)
func NewFileSystemStagingArea(fsmgr fv.FilesystemManager, stagingDir string, maxSize int64) (fv.StagingArea, error) {
	if err := os.MkdirAll(stagingDir, 0700); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}

	return &stagingArea{
		fsmgr:   fsmgr,
		store:   fileStore{dir: stagingDir},
		maxSize: maxSize,
	}, nil
}

type fileStore struct {
	dir string
}

func (s fileStore) Store(r io.Reader) (fv.Capture, error) {
	f, err := os.CreateTemp(s.dir, "capture-*")
	if err != nil {
		return nil, fmt.Errorf("creating capture file: %w", err)
	}

	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("writing capture file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("closing capture file: %w", err)
	}

	return &fileCapture{path: f.Name(), size: size}, nil
}

type fileCapture struct {
	path string
	size int64
}

func (c *fileCapture) Open() (io.ReadCloser, error) {
	return os.Open(c.path)
}

func (c *fileCapture) Size() int64 { return c.size }

// Release removes the capture file. Missing files are not an error.
func (c *fileCapture) Release() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing capture file: %w", err)
	}
	return nil
}
