package geocoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupByID(t *testing.T) {
	results := []Result{
		{ID: "a", Importance: 0.9},
		{ID: "b", Importance: 0.8},
		{ID: "a", Importance: 0.7},
		{ID: "c", Importance: 0.5},
		{ID: "b", Importance: 0.4},
	}

	deduped := dedupByID(results)

	require.Len(t, deduped, 3)
	assert.Equal(t, "a", deduped[0].ID)
	assert.Equal(t, 0.9, deduped[0].Importance)
	assert.Equal(t, "b", deduped[1].ID)
	assert.Equal(t, "c", deduped[2].ID)

	// Deduplication is idempotent.
	assert.Equal(t, deduped, dedupByID(deduped))
}

func TestSortByImportanceStable(t *testing.T) {
	results := []Result{
		{ID: "low", Importance: 0.1},
		{ID: "tie1", Importance: 0.5},
		{ID: "tie2", Importance: 0.5},
		{ID: "high", Importance: 0.9},
	}

	sortByImportance(results)

	assert.Equal(t, "high", results[0].ID)
	assert.Equal(t, "tie1", results[1].ID)
	assert.Equal(t, "tie2", results[2].ID)
	assert.Equal(t, "low", results[3].ID)
}

func TestApplyBias(t *testing.T) {
	e := New(nil)

	results := []Result{
		{ID: "us", Country: "US", Importance: 0.5},
		{ID: "de", Country: "de", Importance: 0.5},
		{ID: "top", Country: "FR", Importance: 0.98},
	}

	e.applyBias(results, "DE")

	assert.Equal(t, 0.5, results[0].Importance)
	assert.InDelta(t, 0.6, results[1].Importance, 1e-9, "bias matches case-insensitively")
	assert.Equal(t, 0.98, results[2].Importance)

	// Boost clamps at 1.
	clamped := []Result{{ID: "x", Country: "DE", Importance: 0.95}}
	e.applyBias(clamped, "de")
	assert.Equal(t, 1.0, clamped[0].Importance)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, clampLimit(0))
	assert.Equal(t, DefaultLimit, clampLimit(-3))
	assert.Equal(t, 1, clampLimit(1))
	assert.Equal(t, MaxLimit, clampLimit(MaxLimit))
	assert.Equal(t, MaxLimit, clampLimit(MaxLimit+1))
	assert.Equal(t, MaxLimit, clampLimit(500))
}
