package slot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	b1000 = Bucket{Date: "2025-01-15", Time: "10:00"}
	b1030 = Bucket{Date: "2025-01-15", Time: "10:30"}
	b1100 = Bucket{Date: "2025-01-15", Time: "11:00"}
)

func TestLedger_ApplyAndUsed(t *testing.T) {
	l := NewLedger(6)

	require.NoError(t, l.Apply("dr-kim", b1000, "r1", 4))
	require.NoError(t, l.Apply("dr-kim", b1000, "r2", 2))

	assert.Equal(t, 6, l.Used("dr-kim", b1000))
	assert.Equal(t, 2, l.UsedExcluding("dr-kim", b1000, "r1"))
	assert.Equal(t, 0, l.Remaining("dr-kim", b1000, ""))
	assert.Equal(t, 4, l.Remaining("dr-kim", b1000, "r1"))
	assert.Equal(t, 0, l.Used("dr-lee", b1000), "doctors are independent")
}

func TestLedger_ApplyRejectsOverCapacity(t *testing.T) {
	l := NewLedger(6)
	require.NoError(t, l.Apply("dr-kim", b1000, "r1", 5))

	err := l.Apply("dr-kim", b1000, "r2", 2)
	assert.ErrorIs(t, err, ErrCapacityViolation)
	assert.Equal(t, 5, l.Used("dr-kim", b1000), "failed apply must not change usage")
}

func TestLedger_NegativeDeltaClampsAtZero(t *testing.T) {
	l := NewLedger(6)
	require.NoError(t, l.Apply("dr-kim", b1000, "r1", 3))

	require.NoError(t, l.Apply("dr-kim", b1000, "r1", -10))
	assert.Equal(t, 0, l.Used("dr-kim", b1000))
	assert.Empty(t, l.Holdings("r1"))

	require.NoError(t, l.Apply("dr-kim", b1030, "r9", -1))
	assert.Equal(t, 0, l.Used("dr-kim", b1030))
}

func TestLedger_CommitIsAllOrNothing(t *testing.T) {
	l := NewLedger(6)
	require.NoError(t, l.Apply("dr-kim", b1030, "other", 5))

	err := l.Commit("r1", "dr-kim", []Placement{{Bucket: b1000, Units: 4}, {Bucket: b1030, Units: 2}})
	assert.ErrorIs(t, err, ErrCapacityViolation)
	assert.Equal(t, 0, l.Used("dr-kim", b1000))
	assert.Equal(t, 5, l.Used("dr-kim", b1030))

	require.NoError(t, l.Commit("r1", "dr-kim", []Placement{{Bucket: b1000, Units: 4}, {Bucket: b1030, Units: 1}}))
	assert.Equal(t, 4, l.Used("dr-kim", b1000))
	assert.Equal(t, 6, l.Used("dr-kim", b1030))
}

func TestLedger_CommitRejectsDuplicateBucketOverflow(t *testing.T) {
	l := NewLedger(6)
	err := l.Commit("r1", "dr-kim", []Placement{{Bucket: b1000, Units: 4}, {Bucket: b1000, Units: 4}})
	assert.ErrorIs(t, err, ErrCapacityViolation)
	assert.Equal(t, 0, l.Used("dr-kim", b1000))
}

func TestLedger_ReleaseReturnsChronologicalHoldings(t *testing.T) {
	l := NewLedger(6)
	require.NoError(t, l.Commit("r1", "dr-kim", []Placement{{Bucket: b1100, Units: 1}, {Bucket: b1000, Units: 2}}))
	require.NoError(t, l.Apply("dr-kim", b1000, "r2", 3))

	released := l.Release("r1")
	assert.Equal(t, []Placement{{Bucket: b1000, Units: 2}, {Bucket: b1100, Units: 1}}, released)
	assert.Equal(t, 3, l.Used("dr-kim", b1000))
	assert.Equal(t, 0, l.Used("dr-kim", b1100))
	assert.Empty(t, l.Release("r1"))
}

func TestLedger_LoadReportsOverfull(t *testing.T) {
	l := NewLedger(6)
	assert.False(t, l.Load("dr-kim", "r1", b1000, 4))
	assert.True(t, l.Load("dr-kim", "r2", b1000, 3))
	assert.Equal(t, 7, l.Used("dr-kim", b1000))
	assert.Equal(t, 0, l.Remaining("dr-kim", b1000, ""))
}

func TestLedger_Day(t *testing.T) {
	l := NewLedger(6)
	require.NoError(t, l.Apply("dr-kim", b1000, "r1", 2))
	require.NoError(t, l.Apply("dr-kim", b1030, "r1", 1))
	require.NoError(t, l.Apply("dr-kim", Bucket{Date: "2025-01-16", Time: "10:00"}, "r3", 5))
	require.NoError(t, l.Apply("dr-lee", b1000, "r2", 6))

	assert.Equal(t, map[string]int{"10:00": 2, "10:30": 1}, l.Day("dr-kim", "2025-01-15"))
}
