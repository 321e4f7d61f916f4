package snapshot

import (
	"fmt"
	"path/filepath"

	"fv-go/internal/config"
	"fv-go/internal/fv"
)

// NewStoreFromConfig creates a SnapshotStore based on the store config type.
// A relative filesystem root is resolved against the working directory.
func NewStoreFromConfig(cfg config.StoreConfig) (fv.SnapshotStore, error) {
	switch cfg.Type {
	case "filesystem", "":
		if cfg.Root == "" {
			return nil, fmt.Errorf("filesystem store requires root to be set")
		}
		root, err := filepath.Abs(cfg.Root)
		if err != nil {
			return nil, fmt.Errorf("resolving store root: %w", err)
		}
		return NewFileSystemStore(root), nil
	case "memory":
		return NewMemoryStore(), nil
	case "s3":
		return NewS3StoreFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}
