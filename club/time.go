package club

import (
	"sync"
	"time"
)

// =============================================================================
// TIMESTAMP - Milliseconds since the Unix epoch
// =============================================================================

// Timestamp is an instant in canonical millisecond units. The engine never
// reads the wall clock directly; every operation captures "now" once from an
// injected Clock at entry.
type Timestamp int64

func (t Timestamp) Before(other Timestamp) bool { return t < other }
func (t Timestamp) After(other Timestamp) bool  { return t > other }
func (t Timestamp) Add(ms int64) Timestamp      { return t + Timestamp(ms) }

func (t Timestamp) Time() time.Time { return time.UnixMilli(int64(t)).UTC() }

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339) }

// TimestampOf converts a wall-clock time to a Timestamp.
func TimestampOf(t time.Time) Timestamp { return Timestamp(t.UnixMilli()) }

// =============================================================================
// TICK CONVERSIONS - Raw counts to canonical milliseconds
// =============================================================================
// A month is 30 days and a year 365 days by club convention; billing windows
// are defined in these units, not calendar months.

const (
	millisPerSecond int64 = 1000
	millisPerMinute int64 = 60 * millisPerSecond
	millisPerHour   int64 = 60 * millisPerMinute
	millisPerDay    int64 = 24 * millisPerHour
	millisPerWeek   int64 = 7 * millisPerDay
	millisPerMonth  int64 = 30 * millisPerDay
	millisPerYear   int64 = 365 * millisPerDay
)

func Seconds(n int64) int64 { return n * millisPerSecond }
func Minutes(n int64) int64 { return n * millisPerMinute }
func Hours(n int64) int64   { return n * millisPerHour }
func Days(n int64) int64    { return n * millisPerDay }
func Weeks(n int64) int64   { return n * millisPerWeek }
func Months(n int64) int64  { return n * millisPerMonth }
func Years(n int64) int64   { return n * millisPerYear }

// =============================================================================
// CLOCK - Injected time source
// =============================================================================

// Clock supplies the current time. Implementations must be monotonically
// non-decreasing across calls.
type Clock interface {
	Now() Timestamp
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() Timestamp { return TimestampOf(time.Now()) }

// ManualClock is a settable clock for tests and demo scenarios.
type ManualClock struct {
	mu  sync.Mutex
	now Timestamp
}

func NewManualClock(start Timestamp) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() Timestamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by ms milliseconds.
func (c *ManualClock) Advance(ms int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(ms)
}

// Set jumps the clock to a specific instant. Setting the clock backwards
// violates the monotonicity contract; Set keeps the later of the two.
func (c *ManualClock) Set(at Timestamp) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if at.After(c.now) {
		c.now = at
	}
}
