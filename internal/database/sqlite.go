package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"fv-go/internal/database/migrations"
	"fv-go/internal/fv"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Operation is one recorded CLI invocation.
type Operation struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt sql.NullTime
	Operation  string
	Parameters string
	Status     string
}

// SQLiteDatabase implements fv.Index using SQLite and additionally records
// the operations run against it.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase opens the database at path and migrates it to the latest schema.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteDatabase{db: db, path: path}, nil
}

// NewSQLiteDatabaseFromDB wraps an existing database connection.
// The caller is responsible for ensuring the connection is properly configured.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return &SQLiteDatabase{db: db}
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Version index

// LoadHistories reads every file and its versions in insertion order.
func (s *SQLiteDatabase) LoadHistories() (map[string]*fv.History, error) {
	ctx := context.Background()
	histories := make(map[string]*fv.History)

	rows, err := s.db.QueryContext(ctx, selectFiles)
	if err != nil {
		return nil, fmt.Errorf("loading files: %w", err)
	}
	for rows.Next() {
		h := &fv.History{}
		if err := rows.Scan(&h.FileName, &h.NextSeq); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		histories[h.FileName] = h
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("loading files: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, selectVersions)
	if err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v := &fv.Version{}
		var mode uint32
		err := rows.Scan(&v.ID, &v.FileName, &v.VersionID, &v.CreatedAt,
			&v.Fingerprint, &v.StorageKey, &v.Size, &v.SourcePath, &mode)
		if err != nil {
			return nil, fmt.Errorf("scanning version: %w", err)
		}
		v.Mode = fs.FileMode(mode)
		h, ok := histories[v.FileName]
		if !ok {
			return nil, fmt.Errorf("version %s references unknown file %q", v.VersionID, v.FileName)
		}
		h.Versions = append(h.Versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading versions: %w", err)
	}

	return histories, nil
}

// AppendVersion records v and raises its file's next_seq to nextSeq. The
// counter never goes down, so a smaller nextSeq leaves it unchanged.
func (s *SQLiteDatabase) AppendVersion(v *fv.Version, nextSeq int) error {
	ctx := context.Background()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, upsertFile, v.FileName, nextSeq, v.CreatedAt); err != nil {
		return fmt.Errorf("upserting file: %w", err)
	}

	_, err = tx.ExecContext(ctx, insertVersion,
		v.ID, v.FileName, v.VersionID, v.CreatedAt, v.Fingerprint, v.StorageKey, v.Size, v.SourcePath, uint32(v.Mode.Perm()))
	if err != nil {
		return fmt.Errorf("inserting version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// RemoveVersion deletes one version record. The file row and its counter stay.
func (s *SQLiteDatabase) RemoveVersion(fileName, versionID string) error {
	res, err := s.db.ExecContext(context.Background(), deleteVersion, fileName, versionID)
	if err != nil {
		return fmt.Errorf("deleting version: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting version: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", fv.ErrVersionNotFound, fileName, versionID)
	}
	return nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateOperation(operation string, parameters string) (*Operation, error) {
	startedAt := time.Now()
	res, err := s.db.ExecContext(context.Background(), insertOperation, startedAt, operation, parameters)
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("creating operation: %w", err)
	}
	return &Operation{
		ID:         id,
		StartedAt:  startedAt,
		Operation:  operation,
		Parameters: parameters,
		Status:     "running",
	}, nil
}

func (s *SQLiteDatabase) FinishOperation(id int64, status string) error {
	finishedAt := sql.NullTime{Time: time.Now(), Valid: true}
	if _, err := s.db.ExecContext(context.Background(), finishOperation, finishedAt, status, id); err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

// ListOperations returns the most recent operations, newest first.
func (s *SQLiteDatabase) ListOperations(limit int) ([]*Operation, error) {
	rows, err := s.db.QueryContext(context.Background(), selectOperations, limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	defer rows.Close()

	var ops []*Operation
	for rows.Next() {
		op := &Operation{}
		if err := rows.Scan(&op.ID, &op.StartedAt, &op.FinishedAt, &op.Operation, &op.Parameters, &op.Status); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}

func (s *SQLiteDatabase) MaxOperationID() (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(context.Background(), selectMaxOperationID).Scan(&id); err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

var _ fv.Index = (*SQLiteDatabase)(nil)
