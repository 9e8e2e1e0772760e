package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultGrid_Times(t *testing.T) {
	g := DefaultGrid()
	times := g.Times()

	assert.NoError(t, g.Check())
	assert.Equal(t, 23, g.Len())
	assert.Len(t, times, 23)
	assert.Equal(t, "09:30", times[0])
	assert.Equal(t, "10:00", times[1])
	assert.Equal(t, "20:30", times[len(times)-1])
}

func TestGrid_Check(t *testing.T) {
	tests := []struct {
		name string
		mod  func(g *Grid)
	}{
		{"zero granularity", func(g *Grid) { g.Granularity = 0 }},
		{"sub-minute granularity", func(g *Grid) { g.Granularity = 90 * time.Second }},
		{"last before open", func(g *Grid) { g.LastStart = 8 * time.Hour }},
		{"misaligned last bucket", func(g *Grid) { g.LastStart = 20*time.Hour + 15*time.Minute }},
		{"past midnight", func(g *Grid) { g.LastStart = 24 * time.Hour }},
		{"zero capacity", func(g *Grid) { g.Capacity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGrid()
			tt.mod(&g)
			assert.Error(t, g.Check())
		})
	}
}

func TestGrid_Validate(t *testing.T) {
	g := DefaultGrid()

	assert.NoError(t, g.Validate(Bucket{Date: "2025-01-15", Time: "10:00"}))
	assert.NoError(t, g.Validate(Bucket{Date: "2025-01-15", Time: "20:30"}))

	for _, b := range []Bucket{
		{Date: "2025-01-15", Time: "09:00"},
		{Date: "2025-01-15", Time: "10:10"},
		{Date: "2025-01-15", Time: "21:00"},
		{Date: "2025-13-01", Time: "10:00"},
		{Date: "15/01/2025", Time: "10:00"},
		{Date: "2025-01-15", Time: "ten"},
	} {
		err := g.Validate(b)
		assert.ErrorIs(t, err, ErrInvalidRequest, "bucket %v", b)
	}
}

func TestGrid_Floor(t *testing.T) {
	g := DefaultGrid()

	b, err := g.Floor("2025-01-15", "10:10")
	assert.NoError(t, err)
	assert.Equal(t, Bucket{Date: "2025-01-15", Time: "10:00"}, b)

	b, err = g.Floor("2025-01-15", "09:45")
	assert.NoError(t, err)
	assert.Equal(t, "09:30", b.Time)

	b, err = g.Floor("2025-01-15", "20:59")
	assert.NoError(t, err)
	assert.Equal(t, "20:30", b.Time)

	_, err = g.Floor("2025-01-15", "21:00")
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = g.Floor("2025-01-15", "09:29")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGrid_Next(t *testing.T) {
	g := DefaultGrid()

	assert.Equal(t, Bucket{Date: "2025-01-15", Time: "10:30"}, g.Next(Bucket{Date: "2025-01-15", Time: "10:00"}))
	// wraps past the last bucket into the next calendar day
	assert.Equal(t, Bucket{Date: "2025-01-16", Time: "09:30"}, g.Next(Bucket{Date: "2025-01-15", Time: "20:30"}))
	assert.Equal(t, Bucket{Date: "2025-03-01", Time: "09:30"}, g.Next(Bucket{Date: "2025-02-28", Time: "20:30"}))

	_, ok := g.NextSameDay(Bucket{Date: "2025-01-15", Time: "20:30"})
	assert.False(t, ok)
	n, ok := g.NextSameDay(Bucket{Date: "2025-01-15", Time: "20:00"})
	assert.True(t, ok)
	assert.Equal(t, "20:30", n.Time)
}

func TestGrid_CustomGranularity(t *testing.T) {
	g := Grid{Granularity: 10 * time.Minute, Open: 9 * time.Hour, LastStart: 9*time.Hour + 50*time.Minute, Capacity: 3}
	assert.NoError(t, g.Check())
	assert.Equal(t, []string{"09:00", "09:10", "09:20", "09:30", "09:40", "09:50"}, g.Times())

	b, err := g.Floor("2025-01-15", "09:27")
	assert.NoError(t, err)
	assert.Equal(t, "09:20", b.Time)
}

func TestCompareAndDaysBetween(t *testing.T) {
	a := Bucket{Date: "2025-01-15", Time: "20:30"}
	b := Bucket{Date: "2025-01-16", Time: "09:30"}
	assert.Equal(t, -1, Compare(a, b))
	assert.Equal(t, 1, Compare(b, a))
	assert.Equal(t, 0, Compare(a, a))

	assert.Equal(t, 1, DaysBetween("2025-01-15", "2025-01-16"))
	assert.Equal(t, 31, DaysBetween("2025-01-01", "2025-02-01"))
}
