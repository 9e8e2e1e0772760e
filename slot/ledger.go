package slot

import (
	"fmt"
	"sort"
	"sync"
)

// Placement is a number of units placed in one bucket.
type Placement struct {
	Bucket Bucket `json:"bucket"`
	Units  int    `json:"units"`
}

type ledgerKey struct {
	doctor string
	bucket Bucket
}

// Ledger tracks, per doctor and bucket, the units held by each reservation
// record. Usage is always the sum of the holdings, so a record can be left
// out of a reading or released wholesale.
type Ledger struct {
	mu       sync.RWMutex
	capacity int
	held     map[ledgerKey]map[string]int
	byRecord map[string]map[ledgerKey]struct{}
}

// NewLedger returns an empty ledger whose buckets hold capacity units each.
func NewLedger(capacity int) *Ledger {
	return &Ledger{
		capacity: capacity,
		held:     make(map[ledgerKey]map[string]int),
		byRecord: make(map[string]map[ledgerKey]struct{}),
	}
}

// Capacity is the per-bucket limit.
func (l *Ledger) Capacity() int {
	return l.capacity
}

// Used returns the units consumed in a bucket by all records.
func (l *Ledger) Used(doctor string, b Bucket) int {
	return l.UsedExcluding(doctor, b, "")
}

// UsedExcluding returns the units consumed in a bucket by every record other
// than recordID. An empty recordID excludes nothing.
func (l *Ledger) UsedExcluding(doctor string, b Bucket, recordID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.usedLocked(ledgerKey{doctor, b}, recordID)
}

// Remaining is the free capacity of a bucket, never below zero.
func (l *Ledger) Remaining(doctor string, b Bucket, recordID string) int {
	free := l.capacity - l.UsedExcluding(doctor, b, recordID)
	if free < 0 {
		return 0
	}
	return free
}

func (l *Ledger) usedLocked(k ledgerKey, exclude string) int {
	total := 0
	for id, units := range l.held[k] {
		if exclude != "" && id == exclude {
			continue
		}
		total += units
	}
	return total
}

// Apply changes the units recordID holds in a bucket. Negative deltas clamp
// at zero. A positive delta that would take the bucket over capacity returns
// ErrCapacityViolation and leaves the ledger untouched.
func (l *Ledger) Apply(doctor string, b Bucket, recordID string, delta int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := ledgerKey{doctor, b}
	if delta > 0 {
		if used := l.usedLocked(k, ""); used+delta > l.capacity {
			return fmt.Errorf("%w: %s %s holds %d/%d, cannot add %d", ErrCapacityViolation, doctor, b, used, l.capacity, delta)
		}
	}
	l.addLocked(k, recordID, delta)
	return nil
}

// Commit applies every placement for recordID or none of them.
func (l *Ledger) Commit(recordID, doctor string, placements []Placement) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending := make(map[ledgerKey]int, len(placements))
	for _, p := range placements {
		if p.Units <= 0 {
			return fmt.Errorf("%w: placement %s has %d units", ErrCapacityViolation, p.Bucket, p.Units)
		}
		k := ledgerKey{doctor, p.Bucket}
		pending[k] += p.Units
		if used := l.usedLocked(k, ""); used+pending[k] > l.capacity {
			return fmt.Errorf("%w: %s %s holds %d/%d, cannot add %d", ErrCapacityViolation, doctor, p.Bucket, used, l.capacity, pending[k])
		}
	}
	for k, units := range pending {
		l.addLocked(k, recordID, units)
	}
	return nil
}

// Load records stored usage without enforcing capacity: the store is the
// authority. It reports whether the bucket is now over capacity.
func (l *Ledger) Load(doctor, recordID string, b Bucket, units int) (overfull bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := ledgerKey{doctor, b}
	l.addLocked(k, recordID, units)
	return l.usedLocked(k, "") > l.capacity
}

// Release removes everything recordID holds and returns it per bucket, in
// chronological order.
func (l *Ledger) Release(recordID string) []Placement {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Placement
	for k := range l.byRecord[recordID] {
		if units := l.held[k][recordID]; units > 0 {
			out = append(out, Placement{Bucket: k.bucket, Units: units})
		}
		delete(l.held[k], recordID)
		if len(l.held[k]) == 0 {
			delete(l.held, k)
		}
	}
	delete(l.byRecord, recordID)
	sort.Slice(out, func(i, j int) bool { return Compare(out[i].Bucket, out[j].Bucket) < 0 })
	return out
}

// Holdings lists what recordID holds, in chronological order.
func (l *Ledger) Holdings(recordID string) []Placement {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Placement
	for k := range l.byRecord[recordID] {
		out = append(out, Placement{Bucket: k.bucket, Units: l.held[k][recordID]})
	}
	sort.Slice(out, func(i, j int) bool { return Compare(out[i].Bucket, out[j].Bucket) < 0 })
	return out
}

// Day returns the usage of every bucket of date for doctor, keyed by time.
func (l *Ledger) Day(doctor, date string) map[string]int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]int)
	for k := range l.held {
		if k.doctor == doctor && k.bucket.Date == date {
			out[k.bucket.Time] = l.usedLocked(k, "")
		}
	}
	return out
}

func (l *Ledger) addLocked(k ledgerKey, recordID string, delta int) {
	holders := l.held[k]
	if holders == nil {
		holders = make(map[string]int)
		l.held[k] = holders
	}
	units := holders[recordID] + delta
	if units <= 0 {
		delete(holders, recordID)
		if len(holders) == 0 {
			delete(l.held, k)
		}
		if keys := l.byRecord[recordID]; keys != nil {
			delete(keys, k)
			if len(keys) == 0 {
				delete(l.byRecord, recordID)
			}
		}
		return
	}
	holders[recordID] = units
	keys := l.byRecord[recordID]
	if keys == nil {
		keys = make(map[ledgerKey]struct{})
		l.byRecord[recordID] = keys
	}
	keys[k] = struct{}{}
}
