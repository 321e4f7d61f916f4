package fv

import (
	"time"

	"github.com/google/uuid"
)

// NopLogger discards all output.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (*NopLogger) Debug(string, ...any) {}
func (*NopLogger) Info(string, ...any)  {}
func (*NopLogger) Warn(string, ...any)  {}
func (*NopLogger) Error(string, ...any) {}

// NopIndex is the in-memory-only baseline: nothing is persisted, so all
// version metadata is lost when the process exits.
type NopIndex struct{}

func (NopIndex) LoadHistories() (map[string]*History, error) { return map[string]*History{}, nil }
func (NopIndex) AppendVersion(*Version, int) error           { return nil }
func (NopIndex) RemoveVersion(string, string) error          { return nil }
func (NopIndex) Close() error                                { return nil }

// RealClock returns the wall-clock time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

var (
	_ Logger      = (*NopLogger)(nil)
	_ Index       = NopIndex{}
	_ Clock       = RealClock{}
	_ IDGenerator = UUIDGenerator{}
)
