package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"fv-go/internal/config"
	"fv-go/internal/database"
	"fv-go/internal/encryption"
	"fv-go/internal/fingerprint"
	"fv-go/internal/fs"
	"fv-go/internal/fv"
	"fv-go/internal/snapshot"
	"fv-go/internal/staging"
)

// ignoreFileName is read from the base directory, one pattern per line,
// in addition to filesystem.ignore.
const ignoreFileName = "ignore"

// ErrNoOperationLog is returned by History when the index does not record operations.
var ErrNoOperationLog = errors.New("operation history requires index type \"sqlite\" or \"memory\"")

// PassphraseFunc supplies the passphrase that unlocks the private key.
type PassphraseFunc func() (string, error)

// Options are the per-invocation settings that do not come from the config file.
type Options struct {
	// Operation and Parameters describe the CLI command for the operation log.
	Operation  string
	Parameters string

	// Verbose copies log output to Stderr.
	Verbose bool
	Stderr  io.Writer

	// Passphrase is called the first time an encrypted snapshot is read.
	Passphrase PassphraseFunc
}

// FVApp is the application layer between the CLI and VersionStore.
// It constructs all dependencies from config, records the running operation
// and releases everything on Close.
type FVApp struct {
	cfg     *config.Config
	store   *fv.VersionStore
	index   fv.Index
	oplog   *database.SQLiteDatabase
	op      *Operation
	logFile *os.File
}

// NewFVApp creates a fully wired FVApp from the given config.
// The caller must call Close when done.
func NewFVApp(cfg *config.Config, opts Options) (*FVApp, error) {
	patterns := slices.Clone(cfg.Filesystem.Ignore)
	if cfg.BaseDir != "" {
		fromFile, err := fs.ParseIgnoreFile(filepath.Join(cfg.BaseDir, ignoreFileName))
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, fromFile...)
	}
	fsmgr := fs.NewOSFilesystemManager(fs.NewIgnoreMatcher(patterns))

	sa, err := staging.NewStagingAreaFromConfig(cfg.Staging, fsmgr)
	if err != nil {
		return nil, fmt.Errorf("creating staging area: %w", err)
	}

	store, err := snapshot.NewStoreFromConfig(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil {
		store = snapshot.NewEncryptedStore(store, enc, unlocker(enc, opts.Passphrase))
	}

	hasher, err := fingerprint.NewFromConfig(cfg.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("creating fingerprinter: %w", err)
	}

	index, err := database.NewIndexFromConfig(cfg.Index, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}

	oplog, _ := index.(*database.SQLiteDatabase)
	if oplog != nil {
		if err := oplog.CheckMigrations(); err != nil {
			index.Close()
			return nil, fmt.Errorf("index schema out of date: %w", err)
		}
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	logger, logFile, err := newLogger(cfg.LogDir, opID, opts.Verbose, stderr)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	vs, err := fv.NewVersionStore(index, sa, store, fsmgr, hasher, &slogAdapter{l: logger},
		fv.RealClock{}, fv.UUIDGenerator{}, fv.Options{
			IDPolicy:      fv.IDPolicy(cfg.Versioning.IDPolicy),
			RestorePolicy: fv.RestorePolicy(cfg.Versioning.RestorePolicy),
			RestoreDir:    cfg.Versioning.RestoreDir,
		})
	if err != nil {
		index.Close()
		if logFile != nil {
			logFile.Close()
		}
		return nil, err
	}

	return &FVApp{
		cfg:     cfg,
		store:   vs,
		index:   index,
		oplog:   oplog,
		op:      NewOperation(opts.Operation, opts.Parameters),
		logFile: logFile,
	}, nil
}

func unlocker(enc fv.Encryptor, passphrase PassphraseFunc) snapshot.UnlockFunc {
	return func() (fv.DecryptionContext, error) {
		if passphrase == nil {
			return nil, fmt.Errorf("snapshots are encrypted and no passphrase is available")
		}
		p, err := passphrase()
		if err != nil {
			return nil, fmt.Errorf("reading passphrase: %w", err)
		}
		return enc.Unlock(p)
	}
}

// persistOperation saves the operation to the operation log, giving it an id.
// Only commands that change state are recorded.
func (a *FVApp) persistOperation() error {
	if a.oplog == nil || a.op.Persisted() {
		return nil
	}
	dbOp, err := a.oplog.CreateOperation(a.op.Operation, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = dbOp.ID
	return nil
}

// record marks the operation as failed for real errors. ErrNoChange is a success.
func (a *FVApp) record(err error) {
	if err != nil && !errors.Is(err, fv.ErrNoChange) {
		a.op.Status = StatusError
	}
}

// Backup snapshots the file at rawPath.
func (a *FVApp) Backup(rawPath string) (*fv.Version, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	v, err := a.store.Backup(rawPath)
	a.record(err)
	return v, err
}

// ListVersions returns the versions of fileName, oldest first.
func (a *FVApp) ListVersions(fileName string) []*fv.Version {
	return a.store.ListVersions(fileName)
}

// Files returns every file name with a history.
func (a *FVApp) Files() []string {
	return a.store.Files()
}

// Restore writes versionID of fileName to dest, or to the configured restore
// target when dest is empty. Returns the path written.
func (a *FVApp) Restore(fileName, versionID, dest string) (string, error) {
	if err := a.persistOperation(); err != nil {
		return "", err
	}
	var (
		path string
		err  error
	)
	if dest != "" {
		path, err = a.store.RestoreVersionTo(fileName, versionID, dest)
	} else {
		path, err = a.store.RestoreVersion(fileName, versionID)
	}
	a.record(err)
	return path, err
}

// Delete removes versionID from fileName's history.
func (a *FVApp) Delete(fileName, versionID string) error {
	if err := a.persistOperation(); err != nil {
		return err
	}
	err := a.store.DeleteVersion(fileName, versionID)
	a.record(err)
	return err
}

// History returns the most recent recorded operations, newest first.
func (a *FVApp) History(limit int) ([]*database.Operation, error) {
	if a.oplog == nil {
		return nil, ErrNoOperationLog
	}
	return a.oplog.ListOperations(limit)
}

// Close finishes the operation record and closes the index and log file.
func (a *FVApp) Close() error {
	var firstErr error

	if a.oplog != nil && a.op.Persisted() {
		if err := a.oplog.FinishOperation(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing operation: %w", err)
		}
	}

	if err := a.index.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing index: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// SetupEncryption generates the key pair for the configured encryptor.
func SetupEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return fmt.Errorf("encryption is disabled, set encryption.type = \"age\" first")
	}
	return enc.Setup(passphrase)
}
