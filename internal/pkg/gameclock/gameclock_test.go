package gameclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKeyUsesInvestigationZone(t *testing.T) {
	// 2024-03-01 20:00 UTC is already 2024-03-02 01:30 in UTC+05:30.
	utc := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-02", DateKey(utc))

	earlier := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-01", DateKey(earlier))
}

func TestDateKeyIgnoresHostZone(t *testing.T) {
	zone := time.FixedZone("UTC-08:00", -8*3600)
	hostLocal := time.Date(2024, 3, 1, 23, 0, 0, 0, zone)
	// 23:00 at UTC-8 is 07:00 UTC next day, 12:30 at UTC+05:30.
	assert.Equal(t, "2024-03-02", DateKey(hostLocal))
}

func TestMidnightBoundary(t *testing.T) {
	before := time.Date(2024, 3, 1, 23, 59, 0, 0, InvestigationZone)
	after := time.Date(2024, 3, 2, 0, 1, 0, 0, InvestigationZone)

	assert.Equal(t, "2024-03-01", DateKey(before))
	assert.Equal(t, "2024-03-02", DateKey(after))
	assert.NotEqual(t, DateKey(before), DateKey(after))
}

func TestDaysSince(t *testing.T) {
	start := time.Date(2024, 3, 1, 22, 0, 0, 0, InvestigationZone)

	assert.Equal(t, 0, DaysSince(start, start))
	// Two hours later crosses midnight, so a full investigation day elapsed.
	assert.Equal(t, 1, DaysSince(start, start.Add(2*time.Hour)))
	assert.Equal(t, 3, DaysSince(start, start.AddDate(0, 0, 3)))
	// A clock that went backwards must not yield negative days.
	assert.Equal(t, 0, DaysSince(start, start.Add(-48*time.Hour)))
}

func TestFixedClock(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	clock := Fixed(now)
	assert.Equal(t, now, clock.Now())
	assert.Equal(t, now, clock.Now())
}
