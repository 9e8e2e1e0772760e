// Package slot implements the capacity-bounded time-slot engine behind the
// reservation calendar: the treatment item registry, the per-doctor capacity
// ledger, the forward-fill allocator, the one-bucket-ahead preview and the
// materializer that turns an allocation into reservation parts.
//
// Nothing in this package performs I/O. Callers load a Ledger from their
// store, run the engine, then persist what it returns.
package slot

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	DefaultGranularity = 30 * time.Minute
	DefaultOpen        = 9*time.Hour + 30*time.Minute
	DefaultLastStart   = 20*time.Hour + 30*time.Minute
	DefaultCapacity    = 6
)

// Bucket identifies one fixed-length time slot on one day. The doctor is
// kept beside it by the ledger, not inside it.
type Bucket struct {
	Date string `json:"date" example:"2025-01-15"`
	Time string `json:"time" example:"10:00"`
}

func (b Bucket) String() string {
	return b.Date + " " + b.Time
}

// Grid holds the fixed daily bucket sequence and the capacity of each bucket.
type Grid struct {
	Granularity time.Duration
	Open        time.Duration // start of the first bucket, from midnight
	LastStart   time.Duration // start of the last bucket, inclusive
	Capacity    int
}

// DefaultGrid returns the clinic defaults: 30 minute buckets from 09:30 to
// 20:30 with 6 units each.
func DefaultGrid() Grid {
	return Grid{
		Granularity: DefaultGranularity,
		Open:        DefaultOpen,
		LastStart:   DefaultLastStart,
		Capacity:    DefaultCapacity,
	}
}

// Check reports whether the grid parameters describe a usable day.
func (g Grid) Check() error {
	switch {
	case g.Granularity <= 0 || g.Granularity%time.Minute != 0:
		return fmt.Errorf("granularity must be a positive whole number of minutes, got %s", g.Granularity)
	case g.Open < 0 || g.LastStart >= 24*time.Hour:
		return fmt.Errorf("operating window %s-%s is outside the day", clock(g.Open), clock(g.LastStart))
	case g.LastStart < g.Open:
		return fmt.Errorf("last bucket %s starts before opening %s", clock(g.LastStart), clock(g.Open))
	case (g.LastStart-g.Open)%g.Granularity != 0:
		return fmt.Errorf("last bucket %s is not aligned to %s buckets from %s", clock(g.LastStart), g.Granularity, clock(g.Open))
	case g.Capacity <= 0:
		return fmt.Errorf("capacity must be positive, got %d", g.Capacity)
	}
	return nil
}

// Len is the number of buckets per day.
func (g Grid) Len() int {
	return int((g.LastStart-g.Open)/g.Granularity) + 1
}

// Times lists the bucket start times of one day in order.
func (g Grid) Times() []string {
	times := make([]string, 0, g.Len())
	for off := g.Open; off <= g.LastStart; off += g.Granularity {
		times = append(times, clock(off))
	}
	return times
}

// First returns the first bucket of the given date.
func (g Grid) First(date string) Bucket {
	return Bucket{Date: date, Time: clock(g.Open)}
}

// Validate checks that b names a real date and a bucket start on the grid.
func (g Grid) Validate(b Bucket) error {
	if _, err := time.Parse(dateLayout, b.Date); err != nil {
		return fmt.Errorf("%w: malformed date %q", ErrInvalidRequest, b.Date)
	}
	off, err := parseClock(b.Time)
	if err != nil {
		return fmt.Errorf("%w: malformed time %q", ErrInvalidRequest, b.Time)
	}
	if off < g.Open || off > g.LastStart || (off-g.Open)%g.Granularity != 0 {
		return fmt.Errorf("%w: %s is not a bucket start", ErrInvalidRequest, b)
	}
	return nil
}

// Floor maps an arbitrary clock time to the bucket containing it, so a
// reservation asked for 10:10 lands in the 10:00 bucket. Times before opening
// or after the last bucket ends are rejected.
func (g Grid) Floor(date, hhmm string) (Bucket, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return Bucket{}, fmt.Errorf("%w: malformed date %q", ErrInvalidRequest, date)
	}
	off, err := parseClock(hhmm)
	if err != nil {
		return Bucket{}, fmt.Errorf("%w: malformed time %q", ErrInvalidRequest, hhmm)
	}
	if off < g.Open || off >= g.LastStart+g.Granularity {
		return Bucket{}, fmt.Errorf("%w: %s is outside clinic hours", ErrInvalidRequest, hhmm)
	}
	off -= (off - g.Open) % g.Granularity
	return Bucket{Date: date, Time: clock(off)}, nil
}

// Next returns the bucket after b. After the last bucket of a day it wraps to
// the first bucket of the next calendar day. b must be valid.
func (g Grid) Next(b Bucket) Bucket {
	if n, ok := g.NextSameDay(b); ok {
		return n
	}
	day, _ := time.Parse(dateLayout, b.Date)
	return g.First(day.AddDate(0, 0, 1).Format(dateLayout))
}

// NextSameDay returns the bucket after b on the same day, or false when b is
// the terminal bucket.
func (g Grid) NextSameDay(b Bucket) (Bucket, bool) {
	off, _ := parseClock(b.Time)
	if off+g.Granularity > g.LastStart {
		return Bucket{}, false
	}
	return Bucket{Date: b.Date, Time: clock(off + g.Granularity)}, true
}

// Compare orders buckets chronologically: -1, 0 or +1.
func Compare(a, b Bucket) int {
	switch {
	case a.Date < b.Date:
		return -1
	case a.Date > b.Date:
		return 1
	case a.Time < b.Time:
		return -1
	case a.Time > b.Time:
		return 1
	}
	return 0
}

// DaysBetween counts calendar days from a to b.
func DaysBetween(a, b string) int {
	da, errA := time.Parse(dateLayout, a)
	db, errB := time.Parse(dateLayout, b)
	if errA != nil || errB != nil {
		return 0
	}
	return int(db.Sub(da).Hours() / 24)
}

// ParseClock parses "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	return parseClock(s)
}

// FormatClock renders an offset from midnight as "HH:MM".
func FormatClock(d time.Duration) string {
	return clock(d)
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, err
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func clock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}
