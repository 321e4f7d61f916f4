package database

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"fv-go/internal/fv"
)

// newTestDB creates a new in-memory database with schema applied.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func newVersion(fileName string, seq int, createdAt time.Time) *fv.Version {
	versionID := fv.FormatVersionID(seq)
	return &fv.Version{
		ID:          uuid.New().String(),
		FileName:    fileName,
		VersionID:   versionID,
		CreatedAt:   createdAt,
		Fingerprint: "abc123",
		StorageKey:  fv.StorageKey(fileName, versionID),
		Size:        42,
		SourcePath:  "/home/user/" + fileName,
		Mode:        0640,
	}
}

func TestSQLiteDatabase_LoadHistories(t *testing.T) {
	t.Run("empty database", func(t *testing.T) {
		db := newTestDB(t)

		histories, err := db.LoadHistories()
		if err != nil {
			t.Fatalf("LoadHistories() error = %v", err)
		}
		if len(histories) != 0 {
			t.Errorf("LoadHistories() = %d histories, want 0", len(histories))
		}
	})

	t.Run("round trip preserves fields and order", func(t *testing.T) {
		db := newTestDB(t)
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		v1 := newVersion("notes.txt", 1, base)
		v2 := newVersion("notes.txt", 2, base.Add(time.Minute))
		other := newVersion("todo.md", 1, base.Add(2*time.Minute))

		for i, v := range []*fv.Version{v1, other, v2} {
			seq, _ := fv.ParseVersionID(v.VersionID)
			if err := db.AppendVersion(v, seq+1); err != nil {
				t.Fatalf("AppendVersion(%d) error = %v", i, err)
			}
		}

		histories, err := db.LoadHistories()
		if err != nil {
			t.Fatalf("LoadHistories() error = %v", err)
		}
		if len(histories) != 2 {
			t.Fatalf("LoadHistories() = %d histories, want 2", len(histories))
		}

		notes := histories["notes.txt"]
		if notes == nil {
			t.Fatal("notes.txt history missing")
		}
		if notes.NextSeq != 3 {
			t.Errorf("NextSeq = %d, want 3", notes.NextSeq)
		}
		if len(notes.Versions) != 2 {
			t.Fatalf("notes.txt has %d versions, want 2", len(notes.Versions))
		}

		got := notes.Versions[0]
		if got.ID != v1.ID || got.VersionID != "v1" || got.Fingerprint != v1.Fingerprint ||
			got.StorageKey != "notes.txt_v1" || got.Size != v1.Size || got.SourcePath != v1.SourcePath ||
			got.Mode != v1.Mode {
			t.Errorf("Versions[0] = %+v, want %+v", got, v1)
		}
		if !got.CreatedAt.Equal(v1.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, v1.CreatedAt)
		}
		if notes.Versions[1].VersionID != "v2" {
			t.Errorf("Versions[1].VersionID = %q, want v2", notes.Versions[1].VersionID)
		}
	})
}

func TestSQLiteDatabase_AppendVersion(t *testing.T) {
	t.Run("next_seq never decreases", func(t *testing.T) {
		db := newTestDB(t)
		now := time.Now()

		if err := db.AppendVersion(newVersion("a.txt", 5, now), 6); err != nil {
			t.Fatalf("AppendVersion() error = %v", err)
		}
		if err := db.AppendVersion(newVersion("a.txt", 1, now), 2); err != nil {
			t.Fatalf("AppendVersion() error = %v", err)
		}

		histories, err := db.LoadHistories()
		if err != nil {
			t.Fatalf("LoadHistories() error = %v", err)
		}
		if got := histories["a.txt"].NextSeq; got != 6 {
			t.Errorf("NextSeq = %d, want 6", got)
		}
	})

	t.Run("duplicate version id is rejected", func(t *testing.T) {
		db := newTestDB(t)
		now := time.Now()

		if err := db.AppendVersion(newVersion("a.txt", 1, now), 2); err != nil {
			t.Fatalf("AppendVersion() error = %v", err)
		}
		if err := db.AppendVersion(newVersion("a.txt", 1, now), 2); err == nil {
			t.Error("AppendVersion() expected error for duplicate version id")
		}

		histories, err := db.LoadHistories()
		if err != nil {
			t.Fatalf("LoadHistories() error = %v", err)
		}
		if n := len(histories["a.txt"].Versions); n != 1 {
			t.Errorf("a.txt has %d versions, want 1", n)
		}
	})
}

func TestSQLiteDatabase_RemoveVersion(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	for seq := 1; seq <= 2; seq++ {
		if err := db.AppendVersion(newVersion("a.txt", seq, now), seq+1); err != nil {
			t.Fatalf("AppendVersion() error = %v", err)
		}
	}

	if err := db.RemoveVersion("a.txt", "v1"); err != nil {
		t.Fatalf("RemoveVersion() error = %v", err)
	}

	err := db.RemoveVersion("a.txt", "v1")
	if !errors.Is(err, fv.ErrVersionNotFound) {
		t.Errorf("RemoveVersion() twice error = %v, want ErrVersionNotFound", err)
	}

	histories, err := db.LoadHistories()
	if err != nil {
		t.Fatalf("LoadHistories() error = %v", err)
	}
	h := histories["a.txt"]
	if len(h.Versions) != 1 || h.Versions[0].VersionID != "v2" {
		t.Errorf("remaining versions = %v, want [v2]", h.Versions)
	}
	if h.NextSeq != 3 {
		t.Errorf("NextSeq = %d, want 3 after delete", h.NextSeq)
	}

	// Removing the last version keeps the file known.
	if err := db.RemoveVersion("a.txt", "v2"); err != nil {
		t.Fatalf("RemoveVersion() error = %v", err)
	}
	histories, err = db.LoadHistories()
	if err != nil {
		t.Fatalf("LoadHistories() error = %v", err)
	}
	if h, ok := histories["a.txt"]; !ok || len(h.Versions) != 0 {
		t.Errorf("a.txt history = %+v, want empty but present", h)
	}
}

func TestSQLiteDatabase_Operations(t *testing.T) {
	db := newTestDB(t)

	maxID, err := db.MaxOperationID()
	if err != nil {
		t.Fatalf("MaxOperationID() error = %v", err)
	}
	if maxID != 0 {
		t.Errorf("MaxOperationID() = %d, want 0", maxID)
	}

	first, err := db.CreateOperation("backup", "notes.txt")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if first.ID == 0 || first.Status != "running" {
		t.Errorf("CreateOperation() = %+v", first)
	}
	second, err := db.CreateOperation("restore", "notes.txt v1")
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}

	if err := db.FinishOperation(first.ID, "success"); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}

	ops, err := db.ListOperations(10)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("ListOperations() = %d operations, want 2", len(ops))
	}
	if ops[0].ID != second.ID || ops[0].Status != "running" || ops[0].FinishedAt.Valid {
		t.Errorf("ops[0] = %+v, want running restore", ops[0])
	}
	if ops[1].ID != first.ID || ops[1].Status != "success" || !ops[1].FinishedAt.Valid {
		t.Errorf("ops[1] = %+v, want finished backup", ops[1])
	}
	if ops[1].Parameters != "notes.txt" {
		t.Errorf("ops[1].Parameters = %q", ops[1].Parameters)
	}

	limited, err := db.ListOperations(1)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("ListOperations(1) = %d operations", len(limited))
	}

	maxID, err = db.MaxOperationID()
	if err != nil {
		t.Fatalf("MaxOperationID() error = %v", err)
	}
	if maxID != second.ID {
		t.Errorf("MaxOperationID() = %d, want %d", maxID, second.ID)
	}
}

func TestSQLiteDatabase_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")

	db, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if err := db.AppendVersion(newVersion("a.txt", 1, time.Now()), 2); err != nil {
		t.Fatalf("AppendVersion() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := NewSQLiteDatabase(path)
	if err != nil {
		t.Fatalf("reopening database: %v", err)
	}
	defer reopened.Close()

	if err := reopened.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() error = %v", err)
	}
	histories, err := reopened.LoadHistories()
	if err != nil {
		t.Fatalf("LoadHistories() error = %v", err)
	}
	if len(histories["a.txt"].Versions) != 1 {
		t.Errorf("reopened database lost versions: %+v", histories)
	}
}
