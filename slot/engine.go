package slot

import "fmt"

// Request is a booking or edit as submitted by the calendar.
type Request struct {
	Doctor    string
	Items     []string
	VisitType string
	Start     Bucket
}

// Engine wires the registry, allocator, previewer and materializer over one
// ledger. It does not serialize callers; the booking layer holds a per-doctor
// lock around every Book, Edit and Cancel.
type Engine struct {
	Grid     Grid
	Policy   Policy
	Registry *Registry
	Ledger   *Ledger

	allocator    Allocator
	previewer    Previewer
	materializer Materializer
}

// NewEngine builds an engine. roster may be nil to accept any doctor name.
func NewEngine(grid Grid, policy Policy, reg *Registry, ledger *Ledger, roster Roster, maxOverflowDays int) (*Engine, error) {
	if err := grid.Check(); err != nil {
		return nil, err
	}
	if reg == nil || ledger == nil {
		return nil, fmt.Errorf("engine needs a registry and a ledger")
	}
	if ledger.Capacity() != grid.Capacity {
		return nil, fmt.Errorf("ledger capacity %d does not match grid capacity %d", ledger.Capacity(), grid.Capacity)
	}
	return &Engine{
		Grid:         grid,
		Policy:       policy,
		Registry:     reg,
		Ledger:       ledger,
		allocator:    Allocator{Grid: grid, Ledger: ledger, Roster: roster, MaxOverflowDays: maxOverflowDays},
		previewer:    Previewer{Grid: grid, Ledger: ledger, Roster: roster},
		materializer: Materializer{Ledger: ledger},
	}, nil
}

// Quote prices an item set.
func (e *Engine) Quote(items []string, visitType string) (int, error) {
	return RequiredUnits(e.Registry, e.Policy, e.Grid.Capacity, items, visitType)
}

// Allocate exposes the allocator.
func (e *Engine) Allocate(q AllocationQuery) ([]Placement, error) {
	return e.allocator.Allocate(q)
}

// Preview exposes the one-bucket-ahead preview.
func (e *Engine) Preview(q PreviewQuery) (PreviewResult, error) {
	return e.previewer.Preview(q)
}

// DayAvailability lists every bucket of a day for a requirement.
func (e *Engine) DayAvailability(doctor, date string, units int, excludeRecordID string) ([]BucketAvailability, error) {
	return e.previewer.DayAvailability(doctor, date, units, excludeRecordID)
}

// Book prices req, allocates it and materializes rec with the result.
func (e *Engine) Book(rec Record, req Request) (Record, error) {
	units, err := e.Quote(req.Items, req.VisitType)
	if err != nil {
		return Record{}, err
	}
	placements, err := e.allocator.Allocate(AllocationQuery{Doctor: req.Doctor, Start: req.Start, Units: units})
	if err != nil {
		return Record{}, err
	}
	rec.Doctor = req.Doctor
	rec.Items = NormalizeItems(req.Items)
	rec.VisitType = req.VisitType
	rec.RequiredUnits = units
	return e.materializer.Materialize(rec, placements)
}

// Edit re-places an existing record. Its old parts leave the ledger before
// the new allocation is computed, so its own previous slots are free to it.
// If the new placement fails the old holdings are restored. Canceled records
// cannot be edited.
func (e *Engine) Edit(rec Record, req Request) (Record, error) {
	if rec.Canceled {
		return Record{}, fmt.Errorf("%w: record %s is canceled", ErrInvalidRequest, rec.ID)
	}
	units, err := e.Quote(req.Items, req.VisitType)
	if err != nil {
		return Record{}, err
	}
	if err := e.allocator.check(req.Doctor, req.Start, units); err != nil {
		return Record{}, err
	}

	released := e.Ledger.Release(rec.ID)
	restore := func() {
		for _, p := range released {
			e.Ledger.Load(rec.Doctor, rec.ID, p.Bucket, p.Units)
		}
	}

	placements, err := e.allocator.Allocate(AllocationQuery{Doctor: req.Doctor, Start: req.Start, Units: units, ExcludeRecordID: rec.ID})
	if err != nil {
		restore()
		return Record{}, err
	}
	next := rec
	next.Doctor = req.Doctor
	next.Items = NormalizeItems(req.Items)
	next.VisitType = req.VisitType
	next.RequiredUnits = units
	out, err := e.materializer.Materialize(next, placements)
	if err != nil {
		restore()
		return Record{}, err
	}
	return out, nil
}

// Cancel releases rec. It is idempotent.
func (e *Engine) Cancel(rec Record) (Record, bool) {
	return e.materializer.Cancel(rec)
}
