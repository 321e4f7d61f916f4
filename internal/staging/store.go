package staging

import (
	"io"

	"fv-go/internal/fv"
)

// captureStore holds the bytes of captures. Implementations only deal with
// storage; size limits and change detection live in stagingArea.
type captureStore interface {
	// Store copies everything from r into a new capture.
	Store(r io.Reader) (fv.Capture, error)
}
