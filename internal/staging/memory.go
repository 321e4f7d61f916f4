package staging

import (
	"bytes"
	"fmt"
	"io"

	"fv-go/internal/fv"
)

// NewMemoryStagingArea creates a staging area that keeps captures in memory.
// maxSize is the largest file that can be captured; zero means unlimited.
func NewMemoryStagingArea(fsmgr fv.FilesystemManager, maxSize int64) fv.StagingArea {
	return &stagingArea{
		fsmgr:   fsmgr,
		store:   memoryStore{},
		maxSize: maxSize,
	}
}

type memoryStore struct{}

func (memoryStore) Store(r io.Reader) (fv.Capture, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	return &memoryCapture{data: data, size: int64(len(data))}, nil
}

type memoryCapture struct {
	data     []byte
	size     int64
	released bool
}

func (c *memoryCapture) Open() (io.ReadCloser, error) {
	if c.released {
		return nil, fmt.Errorf("capture already released")
	}
	return io.NopCloser(bytes.NewReader(c.data)), nil
}

func (c *memoryCapture) Size() int64 { return c.size }

func (c *memoryCapture) Release() error {
	c.data = nil
	c.released = true
	return nil
}
