package slot

import "fmt"

// Roster answers whether a doctor is known to the clinic.
type Roster interface {
	Has(doctor string) bool
}

// DoctorSet is a fixed Roster.
type DoctorSet map[string]bool

// NewDoctorSet builds a roster from names.
func NewDoctorSet(names ...string) DoctorSet {
	s := make(DoctorSet, len(names))
	for _, n := range names {
		s[n] = true
	}
	return s
}

// Has implements Roster.
func (s DoctorSet) Has(doctor string) bool {
	return s[doctor]
}

// AllocationQuery asks for Units to be placed for Doctor starting at Start.
// ExcludeRecordID leaves that record's own holdings out of the free-capacity
// reading, so a reservation being re-placed never blocks itself.
type AllocationQuery struct {
	Doctor          string
	Start           Bucket
	Units           int
	ExcludeRecordID string
}

// Allocator places units into consecutive buckets with a forward greedy
// fill. It reads the ledger and never writes it.
type Allocator struct {
	Grid   Grid
	Ledger *Ledger
	Roster Roster

	// MaxOverflowDays bounds how many days past the start date the fill may
	// spill. Zero means no bound: the fill keeps walking forward until every
	// unit is placed.
	MaxOverflowDays int
}

// Allocate returns the buckets and per-bucket units that absorb q.Units. The
// result is deterministic for a given ledger state and has no side effects.
func (a *Allocator) Allocate(q AllocationQuery) ([]Placement, error) {
	if err := a.check(q.Doctor, q.Start, q.Units); err != nil {
		return nil, err
	}

	var out []Placement
	remaining := q.Units
	cursor := q.Start
	for {
		if a.MaxOverflowDays > 0 && DaysBetween(q.Start.Date, cursor.Date) > a.MaxOverflowDays {
			return nil, fmt.Errorf("%w: %d of %d units for %s unplaced within %d days of %s",
				ErrInsufficientCapacity, remaining, q.Units, q.Doctor, a.MaxOverflowDays, q.Start)
		}
		available := a.Ledger.Remaining(q.Doctor, cursor, q.ExcludeRecordID)
		if take := min(remaining, available); take > 0 {
			out = append(out, Placement{Bucket: cursor, Units: take})
			remaining -= take
		}
		if remaining == 0 {
			return out, nil
		}
		cursor = a.Grid.Next(cursor)
	}
}

func (a *Allocator) check(doctor string, b Bucket, units int) error {
	if units <= 0 {
		return fmt.Errorf("%w: required units must be positive, got %d", ErrInvalidRequest, units)
	}
	if doctor == "" || (a.Roster != nil && !a.Roster.Has(doctor)) {
		return fmt.Errorf("%w: unknown doctor %q", ErrInvalidRequest, doctor)
	}
	return a.Grid.Validate(b)
}
