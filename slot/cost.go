package slot

import (
	"fmt"
	"strings"
)

// Policy holds the pricing knobs that are not per-item.
type Policy struct {
	// FollowUpMarkers flag a visit type as a repeat/follow-up visit. A
	// compound reservation of that type costs FollowUpSurcharge extra units.
	FollowUpMarkers   []string
	FollowUpSurcharge int
}

// DefaultPolicy adds one unit to compound follow-up visits.
func DefaultPolicy() Policy {
	return Policy{
		FollowUpMarkers:   []string{"follow-up", "repeat"},
		FollowUpSurcharge: 1,
	}
}

// IsFollowUp reports whether visitType carries a follow-up marker.
func (p Policy) IsFollowUp(visitType string) bool {
	lower := strings.ToLower(visitType)
	for _, m := range p.FollowUpMarkers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// NormalizeItems trims names, drops empties and collapses duplicates while
// keeping first-occurrence order.
func NormalizeItems(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

// RequiredUnits prices a reservation. A single item costs its standalone
// cost. Several items cost the sum of their compound costs plus the follow-up
// surcharge when visitType asks for it. The result saturates at capacity: a
// reservation never records more than one full bucket.
func RequiredUnits(reg *Registry, policy Policy, capacity int, items []string, visitType string) (int, error) {
	items = NormalizeItems(items)
	if len(items) == 0 {
		return 0, fmt.Errorf("%w: no treatment items requested", ErrInvalidRequest)
	}
	if capacity <= 0 {
		return 0, fmt.Errorf("%w: capacity must be positive", ErrInvalidRequest)
	}

	var total int
	if len(items) == 1 {
		total = reg.Cost(items[0], false)
	} else {
		for _, it := range items {
			total += reg.Cost(it, true)
		}
		if policy.IsFollowUp(visitType) {
			total += policy.FollowUpSurcharge
		}
	}
	if total > capacity {
		total = capacity
	}
	return total, nil
}
