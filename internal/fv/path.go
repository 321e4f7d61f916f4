package fv

import (
	"io/fs"
	"path/filepath"
)

// Path is a resolved source path with the stat info captured at resolution time.
// Paths are created by FilesystemManager.Resolve.
type Path struct {
	absPath string
	info    fs.FileInfo
}

// NewPath creates a Path. Intended for FilesystemManager implementations.
func NewPath(absPath string, info fs.FileInfo) *Path {
	return &Path{absPath: absPath, info: info}
}

func (p *Path) String() string { return p.absPath }

// Name returns the base name, which is the file's logical identity.
func (p *Path) Name() string { return filepath.Base(p.absPath) }

func (p *Path) IsDir() bool { return p.info != nil && p.info.IsDir() }

// Info returns the stat info from when the path was resolved.
func (p *Path) Info() fs.FileInfo { return p.info }
