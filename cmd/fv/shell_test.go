package main

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"fv-go/internal/fv"
)

// fakeStore records the calls made by the shell.
type fakeStore struct {
	versions map[string][]*fv.Version
	calls    []string
}

func (f *fakeStore) Backup(rawPath string) (*fv.Version, error) {
	f.calls = append(f.calls, "backup "+rawPath)
	switch rawPath {
	case "/missing":
		return nil, fmt.Errorf("resolving source: %w", fv.ErrSourceNotFound)
	case "/same":
		return &fv.Version{VersionID: "v1"}, fv.ErrNoChange
	}
	return &fv.Version{VersionID: "v2"}, nil
}

func (f *fakeStore) ListVersions(fileName string) []*fv.Version {
	f.calls = append(f.calls, "list "+fileName)
	return f.versions[fileName]
}

func (f *fakeStore) Restore(fileName, versionID, dest string) (string, error) {
	f.calls = append(f.calls, "restore "+fileName+" "+versionID)
	if versionID != "v1" {
		return "", fv.ErrVersionNotFound
	}
	return "/restore/" + fileName, nil
}

func (f *fakeStore) Delete(fileName, versionID string) error {
	f.calls = append(f.calls, "delete "+fileName+" "+versionID)
	if _, ok := f.versions[fileName]; !ok {
		return fv.ErrHistoryNotFound
	}
	return nil
}

func runShell(t *testing.T, store *fakeStore, input string) string {
	t.Helper()
	var out bytes.Buffer
	sh := &shell{in: bufio.NewReader(strings.NewReader(input)), out: &out, store: store}
	if err := sh.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	return out.String()
}

func TestShell(t *testing.T) {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	versions := map[string][]*fv.Version{
		"notes.txt": {{VersionID: "v1", CreatedAt: created, Fingerprint: "abc"}},
	}

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "backup",
			input: "1\n/home/notes.txt\n5\n",
			want:  []string{"Backup successful. Version: v2", "Exiting..."},
		},
		{
			name:  "backup without changes",
			input: "1\n/same\n5\n",
			want:  []string{"No changes detected. Backup not needed."},
		},
		{
			name:  "backup of a missing file",
			input: "1\n/missing\n5\n",
			want:  []string{"File does not exist."},
		},
		{
			name:  "view versions",
			input: "2\nnotes.txt\n5\n",
			want:  []string{"v1 | 2024-01-15 10:30:00 | Hash: abc"},
		},
		{
			name:  "view unknown file",
			input: "2\nghost.txt\n5\n",
			want:  []string{"No versions found for this file."},
		},
		{
			name:  "restore",
			input: "3\nnotes.txt\nv1\n5\n",
			want:  []string{"Restored version v1 to /restore/notes.txt"},
		},
		{
			name:  "restore unknown version",
			input: "3\nnotes.txt\nv7\n5\n",
			want:  []string{"Version not found."},
		},
		{
			name:  "delete",
			input: "4\nnotes.txt\nv1\n5\n",
			want:  []string{"Deleted version v1 of file notes.txt"},
		},
		{
			name:  "delete from unknown file",
			input: "4\nghost.txt\nv1\n5\n",
			want:  []string{"No versions found for this file."},
		},
		{
			name:  "invalid choice keeps looping",
			input: "9\nabc\n5\n",
			want:  []string{"Invalid choice.", "Exiting..."},
		},
		{
			name:  "end of input exits",
			input: "2\nnotes.txt",
			want:  []string{"v1 | 2024-01-15 10:30:00 | Hash: abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := runShell(t, &fakeStore{versions: versions}, tt.input)
			if !strings.Contains(out, "==== Smart File Backup & Version Control ====") {
				t.Errorf("menu not printed:\n%s", out)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestShell_InvalidChoiceCount(t *testing.T) {
	out := runShell(t, &fakeStore{}, "0\n6\nbackup\n5\n")
	if n := strings.Count(out, "Invalid choice."); n != 3 {
		t.Errorf("Invalid choice printed %d times, want 3", n)
	}
}

func TestShell_StopsAfterExit(t *testing.T) {
	store := &fakeStore{}
	runShell(t, store, "5\n1\n/home/notes.txt\n")
	if len(store.calls) != 0 {
		t.Errorf("calls after exit: %v", store.calls)
	}
}
