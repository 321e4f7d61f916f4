package fv_test

import (
	"testing"
	"time"

	"fv-go/internal/fv"
)

func TestParseVersionID(t *testing.T) {
	tests := []struct {
		id     string
		want   int
		wantOK bool
	}{
		{"v1", 1, true},
		{"v42", 42, true},
		{"v0", 0, false},
		{"v-1", 0, false},
		{"1", 0, false},
		{"V1", 0, false},
		{"v", 0, false},
		{"vx", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := fv.ParseVersionID(tt.id)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseVersionID(%q) = %d, %v; want %d, %v", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFormatVersionID(t *testing.T) {
	if got := fv.FormatVersionID(7); got != "v7" {
		t.Errorf("FormatVersionID(7) = %q, want v7", got)
	}
	if seq, ok := fv.ParseVersionID(fv.FormatVersionID(123)); !ok || seq != 123 {
		t.Errorf("ParseVersionID(FormatVersionID(123)) = %d, %v", seq, ok)
	}
}

func TestStorageKey(t *testing.T) {
	if got := fv.StorageKey("notes.txt", "v3"); got != "notes.txt_v3" {
		t.Errorf("StorageKey() = %q, want notes.txt_v3", got)
	}
}

func TestVersion_String(t *testing.T) {
	v := &fv.Version{
		VersionID:   "v2",
		CreatedAt:   time.Date(2024, 1, 15, 10, 30, 5, 0, time.UTC),
		Fingerprint: "abc123",
	}
	want := "v2 | 2024-01-15 10:30:05 | Hash: abc123"
	if got := v.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestHistory(t *testing.T) {
	h := fv.NewHistory("notes.txt")
	if h.Latest() != nil {
		t.Error("Latest() of empty history should be nil")
	}
	if h.NextSeq != 1 {
		t.Errorf("NextSeq = %d, want 1", h.NextSeq)
	}

	h.Versions = append(h.Versions, &fv.Version{VersionID: "v1"}, &fv.Version{VersionID: "v2"})
	if got := h.Latest(); got.VersionID != "v2" {
		t.Errorf("Latest() = %s, want v2", got.VersionID)
	}
	if i, v := h.Find("v1"); i != 0 || v == nil {
		t.Errorf("Find(v1) = %d, %v", i, v)
	}
	if i, v := h.Find("v3"); i != -1 || v != nil {
		t.Errorf("Find(v3) = %d, %v; want -1, nil", i, v)
	}
}
