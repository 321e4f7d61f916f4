package fv

import (
	"fmt"
	"os"
	"sort"
	"sync"
)

// IDPolicy selects how version ids are assigned.
type IDPolicy string

const (
	// IDPolicyMonotonic uses a per-file counter that never decreases, so an id
	// is never handed out twice even after deletions.
	IDPolicyMonotonic IDPolicy = "monotonic"

	// IDPolicyCount derives the id from the current history length ("v" + (len+1)).
	// A deleted id can come back, but never while the same id is still present.
	IDPolicyCount IDPolicy = "count"
)

// RestorePolicy selects where RestoreVersion writes a file.
type RestorePolicy string

const (
	// RestorePolicyWorkDir writes <RestoreDir>/<fileName>.
	RestorePolicyWorkDir RestorePolicy = "workdir"

	// RestorePolicySource writes back to the path the version was captured from.
	RestorePolicySource RestorePolicy = "source"
)

// Options tunes VersionStore behaviour. The zero value is usable.
type Options struct {
	IDPolicy      IDPolicy
	RestorePolicy RestorePolicy
	// RestoreDir is the directory used by RestorePolicyWorkDir. Empty means
	// the process working directory at construction time.
	RestoreDir string
}

// VersionStore owns the mapping from file name to version history, the
// snapshot store and the index. Operations are serialised by a single mutex;
// concurrent use from several processes is not supported.
type VersionStore struct {
	index       Index
	staging     StagingArea
	store       SnapshotStore
	fsmgr       FilesystemManager
	fingerprint Fingerprinter
	logger      Logger
	clock       Clock
	idgen       IDGenerator
	opts        Options

	mu        sync.Mutex
	histories map[string]*History
}

// NewVersionStore creates a VersionStore, ensures the snapshot root exists and
// loads any histories already recorded in the index.
func NewVersionStore(index Index, staging StagingArea, store SnapshotStore, fsmgr FilesystemManager, fingerprint Fingerprinter, logger Logger, clock Clock, idgen IDGenerator, opts Options) (*VersionStore, error) {
	if opts.IDPolicy == "" {
		opts.IDPolicy = IDPolicyMonotonic
	}
	if opts.RestorePolicy == "" {
		opts.RestorePolicy = RestorePolicyWorkDir
	}
	switch opts.IDPolicy {
	case IDPolicyMonotonic, IDPolicyCount:
	default:
		return nil, fmt.Errorf("unknown id policy: %q", opts.IDPolicy)
	}
	switch opts.RestorePolicy {
	case RestorePolicyWorkDir, RestorePolicySource:
	default:
		return nil, fmt.Errorf("unknown restore policy: %q", opts.RestorePolicy)
	}
	if opts.RestoreDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		opts.RestoreDir = wd
	}

	if err := store.EnsureRoot(); err != nil {
		return nil, fmt.Errorf("ensuring backup root: %w", err)
	}

	histories, err := index.LoadHistories()
	if err != nil {
		return nil, fmt.Errorf("loading histories: %w", err)
	}

	return &VersionStore{
		index:       index,
		staging:     staging,
		store:       store,
		fsmgr:       fsmgr,
		fingerprint: fingerprint,
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
		opts:        opts,
		histories:   histories,
	}, nil
}

// ListVersions returns copies of the versions recorded for fileName, oldest first.
// An unknown name or an empty history yields an empty slice, not an error.
func (s *VersionStore) ListVersions(fileName string) []*Version {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.histories[fileName]
	if !ok {
		return []*Version{}
	}
	out := make([]*Version, len(history.Versions))
	for i, v := range history.Versions {
		out[i] = v.clone()
	}
	return out
}

// HasHistory reports whether fileName has ever been backed up.
// It stays true after all of the file's versions are deleted.
func (s *VersionStore) HasHistory(fileName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.histories[fileName]
	return ok
}

// Files returns every known file name, sorted.
func (s *VersionStore) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.histories))
	for name := range s.histories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// nextSeq picks the sequence number for the next version of h.
func (s *VersionStore) nextSeq(h *History) int {
	if s.opts.IDPolicy == IDPolicyCount {
		seq := len(h.Versions) + 1
		for {
			if _, v := h.Find(FormatVersionID(seq)); v == nil {
				return seq
			}
			seq++
		}
	}
	seq := h.NextSeq
	if seq < 1 {
		seq = 1
	}
	return seq
}

// storageError tags a backend failure so callers can match ErrStorageIO.
func storageError(action, key string, err error) error {
	return fmt.Errorf("%s %s: %w: %w", action, key, ErrStorageIO, err)
}
