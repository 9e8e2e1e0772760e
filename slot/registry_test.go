package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry(DefaultItems(), DefaultFallbackRules())
	require.NoError(t, err)
	return reg
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry([]TreatmentItem{{Name: "", StandaloneCost: 1}}, nil)
	assert.Error(t, err)

	_, err = NewRegistry([]TreatmentItem{{Name: "a", StandaloneCost: 1}, {Name: "a", StandaloneCost: 2}}, nil)
	assert.Error(t, err)

	_, err = NewRegistry([]TreatmentItem{{Name: "a", StandaloneCost: 0}}, nil)
	assert.Error(t, err)

	_, err = NewRegistry(nil, []FallbackRule{{Name: "empty", Standalone: 1}})
	assert.Error(t, err)
}

func TestRegistry_CompoundDefaultsToStandalone(t *testing.T) {
	reg, err := NewRegistry([]TreatmentItem{{Name: "massage", StandaloneCost: 2, Active: true}}, nil)
	require.NoError(t, err)

	it, ok := reg.Resolve("massage")
	require.True(t, ok)
	assert.Equal(t, 2, it.CompoundCost)
	assert.Equal(t, 2, reg.Cost("massage", true))
}

func TestRegistry_InactiveItemsAreNotResolved(t *testing.T) {
	reg, err := NewRegistry([]TreatmentItem{
		{Name: "old herbal package", StandaloneCost: 4, Active: false},
		{Name: "acupuncture", StandaloneCost: 1, Active: true},
	}, DefaultFallbackRules())
	require.NoError(t, err)

	_, ok := reg.Resolve("old herbal package")
	assert.False(t, ok)
	// falls through to the rule table, which has no marker here -> default
	assert.Equal(t, DefaultFallbackUnits, reg.Cost("old herbal package", false))
	assert.Len(t, reg.ActiveItems(), 1)
}

func TestRegistry_FallbackRules(t *testing.T) {
	reg, err := NewRegistry(nil, DefaultFallbackRules())
	require.NoError(t, err)

	tests := []struct {
		name       string
		standalone int
		compound   int
		rule       string
	}{
		{"Herbal consultation - new patient", 6, 6, "herbal-new"},
		{"herbal initial", 6, 6, "herbal-new"},
		{"herbal follow-up by phone", 1, 1, "herbal-phone"},
		{"herbal follow-up (in-person visit)", 3, 3, "herbal-visit"},
		{"follow-up", 2, 1, "follow-up"},
		{"back pain follow-up", 2, 1, "follow-up"},
		{"Acupuncture (lower back)", 1, 1, "keyword"},
		{"moxibustion", 1, 1, "keyword"},
		{"something unheard of", 1, 1, ""},
		{"herbal consultation (renewal)", 1, 1, ""},
		{"herbal telephone check", 1, 1, "herbal-phone"},
		{"initially herbal", 1, 1, ""},
		{"herbal follow-up, new prescription", 6, 6, "herbal-new"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.standalone, reg.Cost(tt.name, false))
			assert.Equal(t, tt.compound, reg.Cost(tt.name, true))
			rule, ok := reg.Fallback(tt.name)
			if tt.rule == "" {
				assert.False(t, ok)
				return
			}
			assert.True(t, ok)
			assert.Equal(t, tt.rule, rule.Name)
		})
	}
}

func TestRegistry_RegisteredItemBeatsRules(t *testing.T) {
	reg, err := NewRegistry([]TreatmentItem{{Name: "follow-up", StandaloneCost: 4, CompoundCost: 2, Active: true}}, DefaultFallbackRules())
	require.NoError(t, err)
	assert.Equal(t, 4, reg.Cost("follow-up", false))
	assert.Equal(t, 2, reg.Cost("follow-up", true))
}

func TestRegistry_ByCategory(t *testing.T) {
	reg := newDefaultRegistry(t)
	groups := reg.ByCategory()

	assert.Len(t, groups["basic"], 5)
	assert.Equal(t, "acupuncture", groups["basic"][0].Name)
	assert.Len(t, groups["herbal"], 4)
	assert.Len(t, groups["follow-up"], 1)
}

func TestParseItems(t *testing.T) {
	assert.Equal(t, []string{"acupuncture", "chuna", "cupping"}, ParseItems("acupuncture, chuna+cupping"))
	assert.Equal(t, []string{"herbal follow-up (visit)"}, ParseItems(" herbal follow-up (visit) "))
	assert.Empty(t, ParseItems(" , + / "))
}
