package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiredUnits(t *testing.T) {
	reg := newDefaultRegistry(t)
	policy := DefaultPolicy()

	tests := []struct {
		name      string
		items     []string
		visitType string
		want      int
	}{
		{"single basic item", []string{"acupuncture"}, "", 1},
		{"single follow-up uses standalone cost", []string{"follow-up"}, "", 2},
		{"compound follow-up uses compound cost", []string{"follow-up", "acupuncture"}, "", 2},
		{"compound with repeat marker", []string{"acupuncture", "herbal follow-up (visit)"}, "repeat visit", 5},
		{"compound without marker", []string{"acupuncture", "herbal follow-up (visit)"}, "first visit", 4},
		{"single item ignores marker", []string{"herbal follow-up (visit)"}, "follow-up", 3},
		{"saturates at capacity", []string{"new herbal consultation", "acupuncture", "chuna"}, "", 6},
		{"duplicates collapse", []string{"acupuncture", "acupuncture"}, "", 1},
		{"unknown item costs one", []string{"aroma therapy"}, "", 1},
		{"unregistered name falls back", []string{"herbal initial (walk-in)"}, "", 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RequiredUnits(reg, policy, 6, tt.items, tt.visitType)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequiredUnits_Rejects(t *testing.T) {
	reg := newDefaultRegistry(t)

	_, err := RequiredUnits(reg, DefaultPolicy(), 6, nil, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = RequiredUnits(reg, DefaultPolicy(), 6, []string{" ", ""}, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = RequiredUnits(reg, DefaultPolicy(), 0, []string{"acupuncture"}, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPolicy_IsFollowUp(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.IsFollowUp("Follow-Up"))
	assert.True(t, p.IsFollowUp("repeat patient"))
	assert.False(t, p.IsFollowUp("initial"))
	assert.False(t, Policy{FollowUpMarkers: []string{""}}.IsFollowUp("anything"))
}

func TestNormalizeItems(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, NormalizeItems([]string{" b", "a", "b ", ""}))
}
