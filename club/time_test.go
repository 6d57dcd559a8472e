package club

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// TICK CONVERSION TESTS
// =============================================================================

func TestConversions_CanonicalMilliseconds(t *testing.T) {
	assert.Equal(t, int64(1000), Seconds(1))
	assert.Equal(t, int64(60_000), Minutes(1))
	assert.Equal(t, int64(3_600_000), Hours(1))
	assert.Equal(t, int64(86_400_000), Days(1))
	assert.Equal(t, int64(604_800_000), Weeks(1))
	assert.Equal(t, int64(2_592_000_000), Months(1))
	assert.Equal(t, int64(31_536_000_000), Years(1))
}

func TestConversions_ComposeLinearly(t *testing.T) {
	assert.Equal(t, Days(30), Months(1), "a month is exactly 30 days")
	assert.Equal(t, Days(7), Weeks(1))
	assert.Equal(t, Days(365), Years(1))
	assert.Equal(t, Hours(24), Days(1))
	assert.Equal(t, Days(10), 10*Days(1))
}

// =============================================================================
// TIMESTAMP TESTS
// =============================================================================

func TestTimestamp_Ordering(t *testing.T) {
	base := Timestamp(1_000_000)
	later := base.Add(Days(1))

	assert.True(t, base.Before(later))
	assert.True(t, later.After(base))
	assert.False(t, base.After(base), "a timestamp is not after itself")
	assert.False(t, base.Before(base))
}

func TestTimestamp_RoundTripsWallClock(t *testing.T) {
	at := time.Date(2026, time.March, 10, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, at, TimestampOf(at).Time())
}

// =============================================================================
// MANUAL CLOCK TESTS
// =============================================================================

func TestManualClock_AdvanceIsMonotonic(t *testing.T) {
	clock := NewManualClock(Timestamp(5000))
	assert.Equal(t, Timestamp(5000), clock.Now())

	clock.Advance(Days(3))
	assert.Equal(t, Timestamp(5000).Add(Days(3)), clock.Now())

	// Setting backwards keeps the later instant.
	clock.Set(Timestamp(0))
	assert.Equal(t, Timestamp(5000).Add(Days(3)), clock.Now())
}
