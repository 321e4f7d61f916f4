package database

import (
	"fmt"
	"os"
	"path/filepath"

	"fv-go/internal/config"
	"fv-go/internal/fv"
)

// NewIndexFromConfig creates the version index for the configured type.
// "none" keeps metadata in memory only.
func NewIndexFromConfig(cfg config.IndexConfig, hostID string) (fv.Index, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite index")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteDatabase(filepath.Join(cfg.DataDir, hostID+".db"))
	case "memory":
		return NewSQLiteDatabase(":memory:")
	case "none", "":
		return fv.NopIndex{}, nil
	default:
		return nil, fmt.Errorf("unknown index type: %s", cfg.Type)
	}
}
