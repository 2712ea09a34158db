package gameclock

import "time"

// The investigation day boundary is fixed to UTC+05:30 so the once-per-day
// gate behaves identically regardless of where the server is deployed.
var InvestigationZone = time.FixedZone("UTC+05:30", 5*3600+30*60)

const dateLayout = "2006-01-02"

// Clock abstracts wall-clock time so tests can pin it around midnight
// boundaries.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func System() Clock {
	return systemClock{}
}

// Fixed returns a Clock frozen at t.
func Fixed(t time.Time) Clock {
	return fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time {
	return c.t
}

// DateKey truncates t to a calendar date in the investigation zone.
// Stored on progress records and compared lazily on every gate check.
func DateKey(t time.Time) string {
	return t.In(InvestigationZone).Format(dateLayout)
}

// DaysSince returns the number of whole calendar days elapsed between start
// and now in the investigation zone. Day 0 is the day the case was created.
func DaysSince(start, now time.Time) int {
	s := midnightOf(start)
	n := midnightOf(now)
	if n.Before(s) {
		return 0
	}
	return int(n.Sub(s).Hours() / 24)
}

func midnightOf(t time.Time) time.Time {
	local := t.In(InvestigationZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, InvestigationZone)
}
