package slot

import "fmt"

// Range is the share of a reservation that lands in one bucket.
type Range struct {
	Bucket Bucket `json:"bucket"`
	Units  int    `json:"units"`
}

// PreviewQuery asks whether Units could be booked starting at Bucket.
type PreviewQuery struct {
	Doctor          string
	Bucket          Bucket
	Units           int
	ExcludeRecordID string
}

// PreviewResult is the answer the calendar shows before a commit.
type PreviewResult struct {
	CanBook   bool   `json:"can_book"`
	Current   Range  `json:"current_range"`
	Overflow  *Range `json:"overflow_range,omitempty"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// BucketAvailability describes one bucket in a day view.
type BucketAvailability struct {
	Time      string `json:"time"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
	Bookable  bool   `json:"bookable"`
	Overflow  int    `json:"overflow,omitempty"`
}

// Previewer answers "can I click here" questions. It looks exactly one
// bucket ahead on the same day; the allocator, not the preview, decides
// final placement.
type Previewer struct {
	Grid   Grid
	Ledger *Ledger
	Roster Roster
}

// Preview evaluates q against the current ledger without changing it.
func (p *Previewer) Preview(q PreviewQuery) (PreviewResult, error) {
	if q.Units <= 0 {
		return PreviewResult{}, fmt.Errorf("%w: required units must be positive, got %d", ErrInvalidRequest, q.Units)
	}
	if q.Doctor == "" || (p.Roster != nil && !p.Roster.Has(q.Doctor)) {
		return PreviewResult{}, fmt.Errorf("%w: unknown doctor %q", ErrInvalidRequest, q.Doctor)
	}
	if err := p.Grid.Validate(q.Bucket); err != nil {
		return PreviewResult{}, err
	}

	free := p.Ledger.Remaining(q.Doctor, q.Bucket, q.ExcludeRecordID)
	res := PreviewResult{Remaining: free, Current: Range{Bucket: q.Bucket}}

	if q.Units <= free {
		res.CanBook = true
		res.Current.Units = q.Units
		res.Message = fmt.Sprintf("bookable (%d units)", q.Units)
		return res, nil
	}
	if free == 0 {
		res.Message = "bucket full"
		return res, nil
	}

	overflow := q.Units - free
	next, ok := p.Grid.NextSameDay(q.Bucket)
	if !ok {
		res.Message = "last bucket of the day, overflow cannot spill"
		return res, nil
	}
	nextFree := p.Ledger.Remaining(q.Doctor, next, q.ExcludeRecordID)
	if overflow > nextFree {
		res.Message = fmt.Sprintf("not bookable: %d units needed, %d here + %d in %s", q.Units, free, nextFree, next.Time)
		return res, nil
	}

	res.CanBook = true
	res.Current.Units = free
	res.Overflow = &Range{Bucket: next, Units: overflow}
	res.Message = fmt.Sprintf("bookable (%d units here + %d units at %s)", free, overflow, next.Time)
	return res, nil
}

// DayAvailability runs the preview for every bucket of date.
func (p *Previewer) DayAvailability(doctor, date string, units int, excludeRecordID string) ([]BucketAvailability, error) {
	out := make([]BucketAvailability, 0, p.Grid.Len())
	for _, t := range p.Grid.Times() {
		b := Bucket{Date: date, Time: t}
		res, err := p.Preview(PreviewQuery{Doctor: doctor, Bucket: b, Units: units, ExcludeRecordID: excludeRecordID})
		if err != nil {
			return nil, err
		}
		av := BucketAvailability{
			Time:      t,
			Used:      p.Ledger.UsedExcluding(doctor, b, excludeRecordID),
			Remaining: res.Remaining,
			Bookable:  res.CanBook,
		}
		if res.Overflow != nil {
			av.Overflow = res.Overflow.Units
		}
		out = append(out, av)
	}
	return out, nil
}
