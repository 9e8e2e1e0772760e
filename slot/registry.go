package slot

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TreatmentItem is one bookable item and the capacity it consumes.
type TreatmentItem struct {
	Name           string `json:"name"`
	StandaloneCost int    `json:"standalone_cost"`
	CompoundCost   int    `json:"compound_cost"`
	Category       string `json:"category"`
	Active         bool   `json:"active"`
	SortOrder      int    `json:"sort_order"`
}

// Cost returns the units consumed alone or combined with other items.
func (it TreatmentItem) Cost(compound bool) int {
	if compound && it.CompoundCost > 0 {
		return it.CompoundCost
	}
	return it.StandaloneCost
}

// FallbackRule prices an item name the registry does not know. A rule
// matches when the lowercased name contains every marker in All and, when
// Any is non-empty, at least one marker in Any. Markers match whole words
// only, so "new" does not match "renewal".
type FallbackRule struct {
	Name       string   `json:"name" mapstructure:"name"`
	All        []string `json:"all" mapstructure:"all"`
	Any        []string `json:"any" mapstructure:"any"`
	Standalone int      `json:"standalone" mapstructure:"standalone"`
	Compound   int      `json:"compound" mapstructure:"compound"`
}

func (r FallbackRule) matches(lower string) bool {
	for _, s := range r.All {
		if !containsWord(lower, strings.ToLower(s)) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return len(r.All) > 0
	}
	for _, s := range r.Any {
		if containsWord(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in s with no letter or digit
// directly before or after it.
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; from <= len(s)-len(word); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		from = start + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func (r FallbackRule) cost(compound bool) int {
	if compound && r.Compound > 0 {
		return r.Compound
	}
	return r.Standalone
}

// DefaultFallbackUnits prices a name no rule recognizes.
const DefaultFallbackUnits = 1

// DefaultFallbackRules is the rule table for records that predate the item
// registry. Order matters: the first matching rule wins.
func DefaultFallbackRules() []FallbackRule {
	return []FallbackRule{
		{Name: "herbal-new", All: []string{"herbal"}, Any: []string{"new", "initial"}, Standalone: 6, Compound: 6},
		{Name: "herbal-phone", All: []string{"herbal"}, Any: []string{"phone", "telephone"}, Standalone: 1, Compound: 1},
		{Name: "herbal-visit", All: []string{"herbal"}, Any: []string{"follow-up", "visit"}, Standalone: 3, Compound: 3},
		{Name: "follow-up", All: []string{"follow-up"}, Standalone: 2, Compound: 1},
		{Name: "keyword", Any: []string{"acupuncture", "chuna", "cupping", "moxibustion", "pharmacopuncture"}, Standalone: 1, Compound: 1},
	}
}

// DefaultItems is the built-in catalogue used when no catalogue is configured.
func DefaultItems() []TreatmentItem {
	return []TreatmentItem{
		{Name: "acupuncture", StandaloneCost: 1, CompoundCost: 1, Category: "basic", Active: true, SortOrder: 1},
		{Name: "chuna", StandaloneCost: 1, CompoundCost: 1, Category: "basic", Active: true, SortOrder: 2},
		{Name: "cupping", StandaloneCost: 1, CompoundCost: 1, Category: "basic", Active: true, SortOrder: 3},
		{Name: "moxibustion", StandaloneCost: 1, CompoundCost: 1, Category: "basic", Active: true, SortOrder: 4},
		{Name: "pharmacopuncture", StandaloneCost: 1, CompoundCost: 1, Category: "basic", Active: true, SortOrder: 5},
		{Name: "follow-up", StandaloneCost: 2, CompoundCost: 1, Category: "follow-up", Active: true, SortOrder: 10},
		{Name: "herbal follow-up (visit)", StandaloneCost: 3, CompoundCost: 3, Category: "herbal", Active: true, SortOrder: 20},
		{Name: "herbal follow-up (phone)", StandaloneCost: 1, CompoundCost: 1, Category: "herbal", Active: true, SortOrder: 21},
		{Name: "new herbal consultation", StandaloneCost: 6, CompoundCost: 6, Category: "herbal", Active: true, SortOrder: 22},
		{Name: "herbal initial visit", StandaloneCost: 6, CompoundCost: 6, Category: "herbal", Active: true, SortOrder: 23},
	}
}

// Registry maps item names to capacity costs. It is immutable once built and
// safe to share between goroutines.
type Registry struct {
	items map[string]TreatmentItem
	rules []FallbackRule
}

// NewRegistry validates the catalogue and returns a registry. Names must be
// unique and costs positive; a zero compound cost means "same as standalone".
func NewRegistry(items []TreatmentItem, rules []FallbackRule) (*Registry, error) {
	r := &Registry{items: make(map[string]TreatmentItem, len(items))}
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			return nil, fmt.Errorf("treatment item name is empty")
		}
		if _, dup := r.items[it.Name]; dup {
			return nil, fmt.Errorf("duplicate treatment item %q", it.Name)
		}
		if it.StandaloneCost <= 0 {
			return nil, fmt.Errorf("treatment item %q: standalone cost must be positive, got %d", it.Name, it.StandaloneCost)
		}
		if it.CompoundCost < 0 {
			return nil, fmt.Errorf("treatment item %q: compound cost must not be negative, got %d", it.Name, it.CompoundCost)
		}
		if it.CompoundCost == 0 {
			it.CompoundCost = it.StandaloneCost
		}
		r.items[it.Name] = it
	}
	for _, rule := range rules {
		if rule.Standalone <= 0 {
			return nil, fmt.Errorf("fallback rule %q: standalone cost must be positive", rule.Name)
		}
		if len(rule.All) == 0 && len(rule.Any) == 0 {
			return nil, fmt.Errorf("fallback rule %q has no pattern", rule.Name)
		}
	}
	r.rules = append([]FallbackRule(nil), rules...)
	return r, nil
}

// Resolve looks up an active item by exact name.
func (r *Registry) Resolve(name string) (TreatmentItem, bool) {
	it, ok := r.items[strings.TrimSpace(name)]
	if !ok || !it.Active {
		return TreatmentItem{}, false
	}
	return it, true
}

// Cost prices one item. Unregistered or inactive names go through the
// fallback table, and anything still unmatched costs DefaultFallbackUnits.
func (r *Registry) Cost(name string, compound bool) int {
	if it, ok := r.Resolve(name); ok {
		return it.Cost(compound)
	}
	if rule, ok := r.Fallback(name); ok {
		return rule.cost(compound)
	}
	return DefaultFallbackUnits
}

// Fallback returns the first rule matching name.
func (r *Registry) Fallback(name string) (FallbackRule, bool) {
	lower := strings.ToLower(name)
	for _, rule := range r.rules {
		if rule.matches(lower) {
			return rule, true
		}
	}
	return FallbackRule{}, false
}

// ActiveItems returns active items ordered by SortOrder, then name.
func (r *Registry) ActiveItems() []TreatmentItem {
	out := make([]TreatmentItem, 0, len(r.items))
	for _, it := range r.items {
		if it.Active {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ByCategory groups active items by category, keeping SortOrder inside each
// group. Categories without active items are omitted.
func (r *Registry) ByCategory() map[string][]TreatmentItem {
	groups := make(map[string][]TreatmentItem)
	for _, it := range r.ActiveItems() {
		groups[it.Category] = append(groups[it.Category], it)
	}
	return groups
}

// ParseItems splits a free-text item string such as "acupuncture, chuna+cupping"
// into trimmed names, dropping empty entries.
func ParseItems(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '+' || r == '/'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
