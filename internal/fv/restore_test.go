package fv_test

import (
	"errors"
	"io/fs"
	"testing"

	"fv-go/internal/fv"
	"fv-go/internal/testutil"
)

func backupContents(t *testing.T, env *testutil.Env, path string, contents ...string) {
	t.Helper()
	for _, c := range contents {
		env.FS.AddFile(path, []byte(c))
		if _, err := env.Store.Backup(path); err != nil {
			t.Fatalf("Backup(%q) error = %v", c, err)
		}
	}
}

func TestVersionStore_RestoreVersion(t *testing.T) {
	t.Run("writes the version to the restore directory", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})
		backupContents(t, env, notesPath, "first", "second")

		dest, err := env.Store.RestoreVersion("notes.txt", "v1")
		if err != nil {
			t.Fatalf("RestoreVersion() error = %v", err)
		}
		if dest != "/restore/notes.txt" {
			t.Errorf("RestoreVersion() dest = %q, want /restore/notes.txt", dest)
		}
		got, ok := env.FS.Content(dest)
		if !ok || string(got) != "first" {
			t.Errorf("restored content = %q, want %q", got, "first")
		}

		// Source is untouched by the default policy.
		src, _ := env.FS.Content(notesPath)
		if string(src) != "second" {
			t.Errorf("source content = %q, want %q", src, "second")
		}
	})

	t.Run("overwrites an existing destination", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})
		backupContents(t, env, notesPath, "first", "second")
		env.FS.AddFile("/restore/notes.txt", []byte("stale"))

		if _, err := env.Store.RestoreVersion("notes.txt", "v2"); err != nil {
			t.Fatalf("RestoreVersion() error = %v", err)
		}
		got, _ := env.FS.Content("/restore/notes.txt")
		if string(got) != "second" {
			t.Errorf("restored content = %q, want %q", got, "second")
		}
	})

	t.Run("source policy writes back to the captured path", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{RestorePolicy: fv.RestorePolicySource})
		backupContents(t, env, notesPath, "first", "second")

		dest, err := env.Store.RestoreVersion("notes.txt", "v1")
		if err != nil {
			t.Fatalf("RestoreVersion() error = %v", err)
		}
		if dest != notesPath {
			t.Errorf("RestoreVersion() dest = %q, want %q", dest, notesPath)
		}
		got, _ := env.FS.Content(notesPath)
		if string(got) != "first" {
			t.Errorf("restored content = %q, want %q", got, "first")
		}

		// The restored content differs from the newest version, so it is backed up again.
		v, err := env.Store.Backup(notesPath)
		if err != nil {
			t.Fatalf("Backup() after restore error = %v", err)
		}
		if v.VersionID != "v3" {
			t.Errorf("VersionID = %q, want v3", v.VersionID)
		}
	})

	t.Run("explicit destination", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})
		backupContents(t, env, notesPath, "first")

		dest, err := env.Store.RestoreVersionTo("notes.txt", "v1", "/tmp/out/notes.old")
		if err != nil {
			t.Fatalf("RestoreVersionTo() error = %v", err)
		}
		if dest != "/tmp/out/notes.old" {
			t.Errorf("RestoreVersionTo() dest = %q", dest)
		}
		got, _ := env.FS.Content(dest)
		if string(got) != "first" {
			t.Errorf("restored content = %q, want %q", got, "first")
		}
	})
}

func TestVersionStore_RestoreVersion_KeepsMode(t *testing.T) {
	const script = "/home/user/run.sh"

	env := testutil.NewEnv(t, nil, fv.Options{RestorePolicy: fv.RestorePolicySource})
	env.FS.AddFile(script, []byte("#!/bin/sh\necho hi\n"))
	env.FS.Chmod(script, 0755)

	v, err := env.Store.Backup(script)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if v.Mode != 0755 {
		t.Errorf("Version.Mode = %v, want %v", v.Mode, fs.FileMode(0755))
	}

	// AddFile resets the permissions to 0644.
	env.FS.AddFile(script, []byte("broken"))

	if _, err := env.Store.RestoreVersion("run.sh", "v1"); err != nil {
		t.Fatalf("RestoreVersion() error = %v", err)
	}
	if mode, _ := env.FS.Mode(script); mode != 0755 {
		t.Errorf("restored mode = %v, want %v", mode, fs.FileMode(0755))
	}

	dest, err := env.Store.RestoreVersionTo("run.sh", "v1", "/tmp/run.sh")
	if err != nil {
		t.Fatalf("RestoreVersionTo() error = %v", err)
	}
	if mode, _ := env.FS.Mode(dest); mode != 0755 {
		t.Errorf("mode at %s = %v, want %v", dest, mode, fs.FileMode(0755))
	}
}

func TestVersionStore_RestoreVersion_DefaultMode(t *testing.T) {
	env := testutil.NewEnv(t, nil, fv.Options{})
	backupContents(t, env, notesPath, "first")

	if _, err := env.Store.RestoreVersion("notes.txt", "v1"); err != nil {
		t.Fatalf("RestoreVersion() error = %v", err)
	}
	if mode, _ := env.FS.Mode("/restore/notes.txt"); mode != fv.DefaultFileMode {
		t.Errorf("restored mode = %v, want %v", mode, fv.DefaultFileMode)
	}
}

func TestVersionStore_RestoreVersion_Errors(t *testing.T) {
	t.Run("unknown file", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})

		_, err := env.Store.RestoreVersion("ghost.txt", "v1")
		if !errors.Is(err, fv.ErrHistoryNotFound) {
			t.Errorf("RestoreVersion() error = %v, want ErrHistoryNotFound", err)
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})
		backupContents(t, env, notesPath, "first")

		for _, id := range []string{"v2", "V1", "1", "v01", ""} {
			_, err := env.Store.RestoreVersion("notes.txt", id)
			if !errors.Is(err, fv.ErrVersionNotFound) {
				t.Errorf("RestoreVersion(%q) error = %v, want ErrVersionNotFound", id, err)
			}
		}
	})

	t.Run("missing snapshot bytes", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})
		backupContents(t, env, notesPath, "first")
		if err := env.Memory.DeleteSnapshot("notes.txt_v1"); err != nil {
			t.Fatal(err)
		}

		_, err := env.Store.RestoreVersion("notes.txt", "v1")
		if !errors.Is(err, fv.ErrOrphanedRecord) {
			t.Errorf("RestoreVersion() error = %v, want ErrOrphanedRecord", err)
		}
		if !errors.Is(err, fv.ErrSnapshotNotFound) {
			t.Errorf("RestoreVersion() error = %v, want ErrSnapshotNotFound", err)
		}
		if _, ok := env.FS.Content("/restore/notes.txt"); ok {
			t.Error("destination written despite missing snapshot")
		}
	})

	t.Run("storage read failure", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})
		backupContents(t, env, notesPath, "first")
		env.Storage.ReadErr = errors.New("connection reset")

		_, err := env.Store.RestoreVersion("notes.txt", "v1")
		if !errors.Is(err, fv.ErrStorageIO) {
			t.Errorf("RestoreVersion() error = %v, want ErrStorageIO", err)
		}
		if errors.Is(err, fv.ErrOrphanedRecord) {
			t.Error("read failure reported as orphaned record")
		}
	})

	t.Run("destination write failure", func(t *testing.T) {
		env := testutil.NewEnv(t, nil, fv.Options{})
		backupContents(t, env, notesPath, "first")
		env.FS.WriteErr = errors.New("read-only filesystem")

		_, err := env.Store.RestoreVersion("notes.txt", "v1")
		if err == nil {
			t.Fatal("RestoreVersion() expected error")
		}
		if errors.Is(err, fv.ErrStorageIO) || errors.Is(err, fv.ErrOrphanedRecord) {
			t.Errorf("RestoreVersion() error = %v, want a destination error", err)
		}
	})
}
