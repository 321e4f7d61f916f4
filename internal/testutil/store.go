package testutil

import (
	"testing"

	"fv-go/internal/fingerprint"
	"fv-go/internal/fv"
	"fv-go/internal/snapshot"
	"fv-go/internal/staging"
)

const (
	// DefaultStagingMaxSize is the max capture size for test stores (10MB).
	DefaultStagingMaxSize = 10 * 1024 * 1024

	// RestoreDir is the restore directory used by test stores.
	RestoreDir = "/restore"
)

// Env bundles a VersionStore with the test doubles behind it.
type Env struct {
	Store   *fv.VersionStore
	FS      *MockFilesystemManager
	Storage *FaultyStore
	Memory  *snapshot.MemoryStore
	Index   *FaultyIndex
	Clock   *StubClock
	IDs     *StubIDGenerator
}

// NewEnv builds a VersionStore over a mock filesystem, in-memory staging,
// an in-memory snapshot store and the given index (NopIndex if nil).
func NewEnv(t *testing.T, index fv.Index, opts fv.Options) *Env {
	t.Helper()
	env := &Env{
		FS:     NewMockFilesystemManager(),
		Memory: snapshot.NewMemoryStore(),
		Clock:  FixedClock(),
		IDs:    NewStubIDGenerator(),
	}
	if index == nil {
		index = fv.NopIndex{}
	}
	env.Storage = NewFaultyStore(env.Memory)
	env.Index = NewFaultyIndex(index)
	if opts.RestoreDir == "" {
		opts.RestoreDir = RestoreDir
	}
	env.Store = env.Open(t, opts)
	return env
}

// Open creates another VersionStore over the same collaborators, as a restarted process would.
func (e *Env) Open(t *testing.T, opts fv.Options) *fv.VersionStore {
	t.Helper()
	if opts.RestoreDir == "" {
		opts.RestoreDir = RestoreDir
	}
	s, err := fv.NewVersionStore(
		e.Index,
		staging.NewMemoryStagingArea(e.FS, DefaultStagingMaxSize),
		e.Storage,
		e.FS,
		fingerprint.SHA256(),
		fv.NewNopLogger(),
		e.Clock,
		e.IDs,
		opts,
	)
	if err != nil {
		t.Fatalf("NewVersionStore() error = %v", err)
	}
	return s
}
