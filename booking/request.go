package booking

import (
	"context"

	"github.com/ariebrainware/clinic-reservation/slot"
)

// BookRequest is a booking or edit as it arrives from the calendar. Time may
// be any clock time inside opening hours; it is rounded down to its bucket.
type BookRequest struct {
	PatientID uint
	Doctor    string
	Items     []string
	VisitType string
	Date      string
	Time      string
	Memo      string
}

func (r BookRequest) slotRequest(start slot.Bucket) slot.Request {
	return slot.Request{Doctor: r.Doctor, Items: r.Items, VisitType: r.VisitType, Start: start}
}

// PreviewRequest asks whether a click on a bucket would book. ExcludeID is
// set while editing so the reservation's own parts count as free.
type PreviewRequest struct {
	Doctor    string
	Items     []string
	VisitType string
	Date      string
	Time      string
	ExcludeID string
}

// Quote prices an item set without touching any calendar.
func (s *Service) Quote(ctx context.Context, items []string, visitType string) (int, error) {
	reg, err := s.items.Registry()
	if err != nil {
		return 0, err
	}
	return slot.RequiredUnits(reg, s.settings.Policy, s.settings.Grid.Capacity, items, visitType)
}

// Preview answers whether the request can be booked at its bucket. It reads
// without locking; the answer may be stale by the time a booking commits.
func (s *Service) Preview(ctx context.Context, req PreviewRequest) (slot.PreviewResult, error) {
	start, err := s.settings.Grid.Floor(req.Date, req.Time)
	if err != nil {
		return slot.PreviewResult{}, err
	}
	units, err := s.Quote(ctx, req.Items, req.VisitType)
	if err != nil {
		return slot.PreviewResult{}, err
	}
	engine, err := s.engineFor(ctx, start.Date, req.Doctor)
	if err != nil {
		return slot.PreviewResult{}, err
	}
	return engine.Preview(slot.PreviewQuery{Doctor: req.Doctor, Bucket: start, Units: units, ExcludeRecordID: req.ExcludeID})
}

// DayAvailability previews the request at every bucket of a day and returns
// the per-bucket answers together with the quoted units.
func (s *Service) DayAvailability(ctx context.Context, req PreviewRequest) ([]slot.BucketAvailability, int, error) {
	g := s.settings.Grid
	if err := g.Validate(g.First(req.Date)); err != nil {
		return nil, 0, err
	}
	units, err := s.Quote(ctx, req.Items, req.VisitType)
	if err != nil {
		return nil, 0, err
	}
	engine, err := s.engineFor(ctx, req.Date, req.Doctor)
	if err != nil {
		return nil, 0, err
	}
	day, err := engine.DayAvailability(req.Doctor, req.Date, units, req.ExcludeID)
	if err != nil {
		return nil, 0, err
	}
	return day, units, nil
}
