package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freshConfig clears the singleton before and after the test.
func freshConfig(t *testing.T) {
	t.Helper()
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)
}

// Test that LoadConfig returns a non-nil config and respects APPENV=test
func TestLoadConfigAndConnectMySQL_TestEnv(t *testing.T) {
	freshConfig(t)
	t.Setenv("APPENV", "test")

	cfg := LoadConfig()
	require.NotNil(t, cfg)

	db, err := ConnectMySQL()
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, "sqlite", db.Dialector.Name())
}

func TestLoadConfig_Defaults(t *testing.T) {
	freshConfig(t)
	for _, k := range []string{"SLOT_DURATION_MINUTES", "CLINIC_OPEN", "CLINIC_LAST_SLOT", "SLOT_CAPACITY",
		"MAX_OVERFLOW_DAYS", "FOLLOW_UP_MARKERS", "DOCTORS", "ITEM_CACHE_TTL", "REDIS_ADDR"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, 30, cfg.SlotDurationMinutes)
	assert.Equal(t, "09:30", cfg.ClinicOpen)
	assert.Equal(t, "20:30", cfg.ClinicLastSlot)
	assert.Equal(t, 6, cfg.SlotCapacity)
	assert.Equal(t, 0, cfg.MaxOverflowDays)
	assert.Equal(t, []string{"follow-up", "repeat"}, cfg.FollowUpMarkers)
	assert.Equal(t, 5*time.Minute, cfg.ItemCacheTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)

	g, err := cfg.Grid()
	require.NoError(t, err)
	assert.Equal(t, 23, g.Len())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	freshConfig(t)
	t.Setenv("SLOT_DURATION_MINUTES", "15")
	t.Setenv("CLINIC_OPEN", "09:00")
	t.Setenv("CLINIC_LAST_SLOT", "17:45")
	t.Setenv("SLOT_CAPACITY", "4")
	t.Setenv("MAX_OVERFLOW_DAYS", "7")
	t.Setenv("FOLLOW_UP_MARKERS", "revisit, again")
	t.Setenv("DOCTORS", "dr-kim, dr-lee,")
	t.Setenv("ITEM_CACHE_TTL", "30s")

	cfg := LoadConfig()
	assert.Equal(t, 7, cfg.MaxOverflowDays)
	assert.Equal(t, []string{"dr-kim", "dr-lee"}, cfg.Doctors)
	assert.Equal(t, 30*time.Second, cfg.ItemCacheTTL)
	assert.True(t, cfg.Policy().IsFollowUp("patient revisit"))

	g, err := cfg.Grid()
	require.NoError(t, err)
	assert.Equal(t, 4, g.Capacity)
	assert.Equal(t, 36, g.Len())
}

func TestConfig_GridRejectsBadHours(t *testing.T) {
	cfg := &Config{SlotDurationMinutes: 30, ClinicOpen: "nine", ClinicLastSlot: "20:30", SlotCapacity: 6}
	_, err := cfg.Grid()
	assert.Error(t, err)

	cfg = &Config{SlotDurationMinutes: 30, ClinicOpen: "09:30", ClinicLastSlot: "20:15", SlotCapacity: 6}
	_, err = cfg.Grid()
	assert.Error(t, err)
}

func TestLoadCatalog_Default(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, c.Items, 10)
	assert.Len(t, c.FallbackRules, 5)
}

func TestLoadCatalog_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.yaml")
	yaml := `items:
  - name: acupuncture
    standalone_cost: 1
    compound_cost: 1
    category: basic
    active: true
    sort_order: 1
  - name: herbal package
    standalone_cost: 4
    category: herbal
    sort_order: 2
  - name: old package
    standalone_cost: 2
    active: false
fallback_rules:
  - name: herbal
    all: [herbal]
    standalone: 3
    compound: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, c.Items, 3)
	assert.Equal(t, "herbal package", c.Items[1].Name)
	assert.Equal(t, 4, c.Items[1].StandaloneCost)
	assert.True(t, c.Items[1].Active, "active defaults to true")
	assert.False(t, c.Items[2].Active)
	require.Len(t, c.FallbackRules, 1)
	assert.Equal(t, []string{"herbal"}, c.FallbackRules[0].All)
	assert.Equal(t, 2, c.FallbackRules[0].Compound)
}

func TestLoadCatalog_Errors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - name: free\n    standalone_cost: 0\n"), 0o600))
	_, err = LoadCatalog(path)
	assert.Error(t, err)
}
