package staging

import (
	"fmt"

	"fv-go/internal/config"
	"fv-go/internal/fv"
)

// NewStagingAreaFromConfig creates a StagingArea implementation based on the config type.
// A max_size of zero or less captures files of any size.
func NewStagingAreaFromConfig(cfg config.StagingConfig, fsmgr fv.FilesystemManager) (fv.StagingArea, error) {
	maxSize := max(cfg.MaxSize, 0)

	switch cfg.Type {
	case "memory", "":
		return NewMemoryStagingArea(fsmgr, maxSize), nil
	case "filesystem":
		if cfg.StagingDir == "" {
			return nil, fmt.Errorf("filesystem staging area requires staging_dir to be set")
		}
		return NewFileSystemStagingArea(fsmgr, cfg.StagingDir, maxSize)
	default:
		return nil, fmt.Errorf("unknown staging area type: %s", cfg.Type)
	}
}
