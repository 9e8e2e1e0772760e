package slot

import "fmt"

// Part is the share of a reservation held in one bucket. Every part after the
// first is a continuation, which the calendar draws joined to the one before.
type Part struct {
	Bucket         Bucket `json:"bucket"`
	Units          int    `json:"units"`
	IsContinuation bool   `json:"is_continuation"`
}

// Record is a reservation as the engine sees it.
type Record struct {
	ID            string   `json:"id"`
	PatientID     uint     `json:"patient_id"`
	Doctor        string   `json:"doctor"`
	Items         []string `json:"items"`
	VisitType     string   `json:"visit_type,omitempty"`
	Memo          string   `json:"memo,omitempty"`
	RequiredUnits int      `json:"required_units"`
	Canceled      bool     `json:"canceled"`
	Parts         []Part   `json:"parts"`
}

// TotalUnits sums the units over all parts.
func (r Record) TotalUnits() int {
	total := 0
	for _, p := range r.Parts {
		total += p.Units
	}
	return total
}

// Placements converts the parts back to placements.
func (r Record) Placements() []Placement {
	out := make([]Placement, len(r.Parts))
	for i, p := range r.Parts {
		out[i] = Placement{Bucket: p.Bucket, Units: p.Units}
	}
	return out
}

// Materializer turns allocations into parts and keeps the ledger in step.
type Materializer struct {
	Ledger *Ledger
}

// Materialize stamps continuation flags onto the allocation, writes it to
// the ledger in one step and returns the updated record. rec.RequiredUnits
// must equal the allocated total.
func (m *Materializer) Materialize(rec Record, placements []Placement) (Record, error) {
	if rec.ID == "" {
		return Record{}, fmt.Errorf("%w: record has no id", ErrInvalidRequest)
	}
	if len(placements) == 0 {
		return Record{}, fmt.Errorf("%w: empty allocation for record %s", ErrInvalidRequest, rec.ID)
	}
	total := 0
	parts := make([]Part, len(placements))
	for i, p := range placements {
		total += p.Units
		parts[i] = Part{Bucket: p.Bucket, Units: p.Units, IsContinuation: i > 0}
	}
	if total != rec.RequiredUnits {
		return Record{}, fmt.Errorf("%w: allocation holds %d units, record %s requires %d", ErrInvalidRequest, total, rec.ID, rec.RequiredUnits)
	}
	if err := m.Ledger.Commit(rec.ID, rec.Doctor, placements); err != nil {
		return Record{}, err
	}
	rec.Parts = parts
	rec.Canceled = false
	return rec, nil
}

// Cancel marks rec canceled and returns its units to the ledger. Canceling
// an already canceled record changes nothing and reports false.
func (m *Materializer) Cancel(rec Record) (Record, bool) {
	if rec.Canceled {
		return rec, false
	}
	for _, p := range rec.Parts {
		// negative deltas never fail
		_ = m.Ledger.Apply(rec.Doctor, p.Bucket, rec.ID, -p.Units)
	}
	rec.Canceled = true
	return rec, true
}
