package testutil

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"fv-go/internal/fv"
)

// MockFile represents a file in the mock filesystem.
type MockFile struct {
	Content     []byte
	Permissions fs.FileMode
	ModTime     time.Time
	IsDirectory bool
}

// MockFilesystemManager is an in-memory filesystem for testing. Files written
// through WriteFileAtomic land in the same map, so a restored file can be
// backed up again.
type MockFilesystemManager struct {
	mu      sync.Mutex
	files   map[string]*MockFile
	ignored map[string]bool
	// base is the fake modification time, bumped on every change so
	// rewrites are always visible to stat comparisons.
	base time.Time

	// WriteErr, when set, is returned by WriteFileAtomic before anything is written.
	WriteErr error
}

// NewMockFilesystemManager creates a new mock filesystem.
func NewMockFilesystemManager() *MockFilesystemManager {
	return &MockFilesystemManager{
		files:   make(map[string]*MockFile),
		ignored: make(map[string]bool),
		base:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *MockFilesystemManager) tick() time.Time {
	m.base = m.base.Add(time.Second)
	return m.base
}

// AddFile adds or replaces a file. path must be absolute.
func (m *MockFilesystemManager) AddFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{
		Content:     bytes.Clone(content),
		Permissions: 0644,
		ModTime:     m.tick(),
	}
}

// AddDirectory adds a directory to the mock filesystem.
func (m *MockFilesystemManager) AddDirectory(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{
		Permissions: 0755 | fs.ModeDir,
		ModTime:     m.tick(),
		IsDirectory: true,
	}
}

// RemoveFile deletes a file from the mock filesystem.
func (m *MockFilesystemManager) RemoveFile(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
}

// Ignore marks path as matching an ignore pattern.
func (m *MockFilesystemManager) Ignore(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ignored[path] = true
}

// Chmod sets the permission bits of an existing file and bumps its mtime.
func (m *MockFilesystemManager) Chmod(path string, perm fs.FileMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.files[path]; ok {
		f.Permissions = perm
		f.ModTime = m.tick()
	}
}

// Mode returns the permission bits of path.
func (m *MockFilesystemManager) Mode(path string) (fs.FileMode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok {
		return 0, false
	}
	return f.Permissions, true
}

// Content returns the current bytes of path.
func (m *MockFilesystemManager) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok || f.IsDirectory {
		return nil, false
	}
	return bytes.Clone(f.Content), true
}

func (m *MockFilesystemManager) Resolve(rawPath string) (*fv.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[absPath]
	if !ok {
		return nil, fmt.Errorf("%w: %s", fv.ErrSourceNotFound, absPath)
	}
	return fv.NewPath(absPath, newMockFileInfo(absPath, file)), nil
}

func (m *MockFilesystemManager) Open(path *fv.Path) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if file.IsDirectory {
		return nil, fmt.Errorf("cannot open directory: %s", path)
	}
	return io.NopCloser(bytes.NewReader(file.Content)), nil
}

func (m *MockFilesystemManager) Stat(path *fv.Path) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.files[path.String()]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return newMockFileInfo(path.String(), file), nil
}

func (m *MockFilesystemManager) IsIgnored(path *fv.Path) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ignored[path.String()]
}

func (m *MockFilesystemManager) WriteFileAtomic(path string, perm fs.FileMode, write func(w io.Writer) error) error {
	if m.WriteErr != nil {
		return m.WriteErr
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = &MockFile{
		Content:     buf.Bytes(),
		Permissions: perm,
		ModTime:     m.tick(),
	}
	return nil
}

// mockFileInfo implements fs.FileInfo
type mockFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func newMockFileInfo(path string, f *MockFile) *mockFileInfo {
	return &mockFileInfo{
		name:    filepath.Base(path),
		size:    int64(len(f.Content)),
		mode:    f.Permissions,
		modTime: f.ModTime,
		isDir:   f.IsDirectory,
	}
}

func (m *mockFileInfo) Name() string       { return m.name }
func (m *mockFileInfo) Size() int64        { return m.size }
func (m *mockFileInfo) Mode() fs.FileMode  { return m.mode }
func (m *mockFileInfo) ModTime() time.Time { return m.modTime }
func (m *mockFileInfo) IsDir() bool        { return m.isDir }
func (m *mockFileInfo) Sys() any           { return nil }

// Compile-time check
var _ fv.FilesystemManager = (*MockFilesystemManager)(nil)
