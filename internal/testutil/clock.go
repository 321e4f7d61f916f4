package testutil

import (
	"fmt"
	"sync"
	"time"
)

// Epoch is the time every StubClock from FixedClock starts at.
var Epoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

// StubClock hands out version timestamps. With a zero step it is frozen;
// otherwise each Now call returns the current time and then moves it on by
// step, so consecutive backups get distinct, increasing CreatedAt values.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// FixedClock returns a frozen clock at Epoch.
func FixedClock() *StubClock {
	return &StubClock{now: Epoch}
}

// SteppingClock returns a clock at Epoch that advances by step after every reading.
func SteppingClock(step time.Duration) *StubClock {
	return &StubClock{now: Epoch, step: step}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Advance moves the clock forward by d, e.g. to simulate time between backups.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// StubIDGenerator hands out version record ids "rec-1", "rec-2", ... An Env
// shares one generator across reopened stores so ids stay unique in the index.
type StubIDGenerator struct {
	mu   sync.Mutex
	last int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last++
	return fmt.Sprintf("rec-%d", g.last)
}

// Issued reports how many ids have been handed out.
func (g *StubIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
