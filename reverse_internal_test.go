package geocoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gersmaps/geocoder/shard"
)

func TestBuildHierarchy(t *testing.T) {
	// Candidates arrive ascending by area, as the shard query returns them.
	pool := []shard.ReverseRow{
		{GERSID: "n1", Subtype: "neighborhood", Name: "Back Bay", Area: 2},
		{GERSID: "l1", Subtype: "locality", Name: "Boston", Area: 120},
		{GERSID: "c1", Subtype: "county", Name: "Suffolk", Area: 150},
		{GERSID: "r1", Subtype: "region", Name: "Massachusetts", Area: 27000},
		{GERSID: "x1", Subtype: "country", Name: "United States", Area: 9.8e6},
	}

	t.Run("most specific candidate", func(t *testing.T) {
		h := buildHierarchy(pool, pool[0])

		require.Len(t, h, 5)
		assert.Equal(t, "neighborhood", h[0].Subtype)
		assert.Equal(t, "locality", h[1].Subtype)
		assert.Equal(t, "county", h[2].Subtype)
		assert.Equal(t, "region", h[3].Subtype)
		assert.Equal(t, "country", h[4].Subtype)
	})

	t.Run("coarser candidate excludes finer divisions", func(t *testing.T) {
		h := buildHierarchy(pool, pool[2])

		require.Len(t, h, 3)
		assert.Equal(t, "county", h[0].Subtype)
		assert.Equal(t, "region", h[1].Subtype)
		assert.Equal(t, "country", h[2].Subtype)
	})

	t.Run("duplicate subtype keeps smallest area", func(t *testing.T) {
		dup := append([]shard.ReverseRow{
			{GERSID: "l0", Subtype: "locality", Name: "Inner", Area: 50},
		}, pool...)

		h := buildHierarchy(dup, dup[0])

		require.NotEmpty(t, h)
		assert.Equal(t, "l0", h[0].ID, "smaller-area locality wins its subtype slot")
		for _, entry := range h[1:] {
			assert.NotEqual(t, "locality", entry.Subtype)
		}
	})

	t.Run("unknown subtype sorts first", func(t *testing.T) {
		mixed := []shard.ReverseRow{
			{GERSID: "u1", Subtype: "planning_area", Name: "Zone 9", Area: 10},
			{GERSID: "l1", Subtype: "locality", Name: "Town", Area: 100},
		}

		h := buildHierarchy(mixed, mixed[0])

		require.Len(t, h, 2)
		assert.Equal(t, "planning_area", h[0].Subtype)
		assert.Equal(t, "locality", h[1].Subtype)
	})
}

func TestHaversineKM(t *testing.T) {
	assert.Equal(t, 0.0, haversineKM(42.36, -71.06, 42.36, -71.06))

	// Boston to New York, roughly 306 km on the mean-radius sphere.
	d := haversineKM(42.3601, -71.0589, 40.7128, -74.0060)
	assert.InDelta(t, 306, d, 2)

	// Symmetric.
	assert.Equal(t, d, haversineKM(40.7128, -74.0060, 42.3601, -71.0589))

	// Rounded to two decimals.
	assert.Equal(t, d, math.Round(d*100)/100)
}
