package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"fv-go/internal/fv"
)

var (
	// ErrTooLarge is returned when a source file exceeds the staging max size.
	ErrTooLarge = errors.New("file exceeds staging max size")

	// ErrChangedDuringCapture is returned when the source was modified while it was copied.
	ErrChangedDuringCapture = errors.New("file changed during capture")
)

// stagingArea implements fv.StagingArea on top of a captureStore.
type stagingArea struct {
	fsmgr   fv.FilesystemManager
	store   captureStore
	maxSize int64 // 0 means unlimited
	mu      sync.Mutex
}

var _ fv.StagingArea = (*stagingArea)(nil)

// Capture copies path into the store. The file is stat'ed before and after
// the copy and the capture is discarded if anything changed in between.
func (s *stagingArea) Capture(path *fv.Path) (fv.Capture, error) {
	limited := s.maxSize > 0
	before := path.Info()
	if limited && before != nil && before.Size() > s.maxSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, before.Size(), s.maxSize)
	}

	f, err := s.fsmgr.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	var r io.Reader = f
	if limited {
		r = io.LimitReader(f, s.maxSize+1)
	}

	s.mu.Lock()
	c, err := s.store.Store(r)
	s.mu.Unlock()
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("storing capture: %w", err)
	}

	if limited && c.Size() > s.maxSize {
		c.Release()
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.maxSize)
	}

	after, err := s.fsmgr.Stat(path)
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("re-stat file: %w", err)
	}

	if err := validateUnchanged(before, after, c.Size()); err != nil {
		c.Release()
		return nil, fmt.Errorf("%w: %s: %w", ErrChangedDuringCapture, path, err)
	}

	return c, nil
}

// validateUnchanged compares the stat taken at resolve time with the one taken
// after copying. Access time is ignored since our own read may update it.
func validateUnchanged(before, after fs.FileInfo, captured int64) error {
	if after.Size() != captured {
		return fmt.Errorf("read %d bytes, file now has %d", captured, after.Size())
	}
	if before == nil {
		return nil
	}
	if before.Size() != after.Size() {
		return fmt.Errorf("size changed: %d -> %d", before.Size(), after.Size())
	}
	if before.Mode() != after.Mode() {
		return fmt.Errorf("mode changed: %v -> %v", before.Mode(), after.Mode())
	}
	if !before.ModTime().Equal(after.ModTime()) {
		return fmt.Errorf("mtime changed: %v -> %v", before.ModTime(), after.ModTime())
	}
	ctime1, ok1 := changeTime(before)
	ctime2, ok2 := changeTime(after)
	if ok1 && ok2 && !ctime1.Equal(ctime2) {
		return fmt.Errorf("ctime changed: %v -> %v", ctime1, ctime2)
	}
	return nil
}
