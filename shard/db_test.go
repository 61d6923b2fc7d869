package shard_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gersmaps/geocoder/internal/testutil"
	"github.com/gersmaps/geocoder/shard"
)

func forwardFixture(t *testing.T) []byte {
	t.Helper()
	return testutil.BuildForwardShard(t, []testutil.ForwardRecord{
		{
			GERSID: "08b2a100d2c4", Type: "locality", Name: "Boston",
			Lat: 42.3601, Lon: -71.0589,
			BBox:       [4]float64{-71.19, 42.22, -70.92, 42.40},
			Population: 650000, HasPopulation: true,
			Country: "US", Region: "US-MA",
		},
		{
			GERSID: "08b2a100aaaa", Type: "address", Name: "123 Main St",
			Lat: 42.3581, Lon: -71.0603,
			BBox:       [4]float64{-71.0604, 42.3580, -71.0602, 42.3582},
			SearchText: "123 main st boston",
		},
	})
}

func TestOpenBytes_SearchRoundTrip(t *testing.T) {
	ctx := context.Background()

	db, err := shard.OpenBytes(forwardFixture(t), "HEAD")
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Search(ctx, `"boston"`, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for _, r := range rows {
		assert.NotEmpty(t, r.GERSID)
		assert.Negative(t, r.BM25) // FTS5 bm25() is negative for matches
	}

	// The address row carries no population
	var addr shard.Row
	for _, r := range rows {
		if r.Type == "address" {
			addr = r
		}
	}
	assert.False(t, addr.HasPopulation)
	assert.Empty(t, addr.Country)
}

func TestOpenBytes_Zstd(t *testing.T) {
	ctx := context.Background()

	compressed := testutil.CompressZstd(t, forwardFixture(t))
	db, err := shard.OpenBytes(compressed, "HEAD")
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Search(ctx, `"boston"`, 10)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestOpenBytes_Corrupt(t *testing.T) {
	var corrupt *shard.CorruptError

	_, err := shard.OpenBytes([]byte("definitely not a database"), "HEAD")
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "HEAD", corrupt.Shard)

	_, err = shard.OpenBytes(nil, "US")
	require.ErrorAs(t, err, &corrupt)
}

func TestDB_Count(t *testing.T) {
	ctx := context.Background()

	db, err := shard.OpenBytes(forwardFixture(t), "HEAD")
	require.NoError(t, err)
	defer db.Close()

	n, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestDB_Metadata(t *testing.T) {
	ctx := context.Background()

	db, err := shard.OpenBytes(forwardFixture(t), "HEAD")
	require.NoError(t, err)
	defer db.Close()

	value, ok, err := db.Metadata(ctx, "release")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "test-fixture", value)

	_, ok, err = db.Metadata(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDB_Reverse(t *testing.T) {
	ctx := context.Background()

	payload := testutil.BuildReverseShard(t, []testutil.ReverseRecord{
		{
			GERSID: "country-us", Subtype: "country", Name: "United States",
			Lat: 39.8, Lon: -98.5,
			BBox: [4]float64{-125, 24, -66, 49}, Area: 1475,
			Country: "US",
		},
		{
			GERSID: "locality-boston", Subtype: "locality", Name: "Boston",
			Lat: 42.3601, Lon: -71.0589,
			BBox: [4]float64{-71.19, 42.22, -70.92, 42.40}, Area: 0.0486,
			Country: "US", Region: "US-MA",
		},
	})

	db, err := shard.OpenBytes(payload, "HEAD")
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Reverse(ctx, 42.36, -71.05, 50)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Ascending by area: most specific first
	assert.Equal(t, "locality-boston", rows[0].GERSID)
	assert.Equal(t, "country-us", rows[1].GERSID)

	// A point outside every bbox yields an empty, non-error result
	rows, err = db.Reverse(ctx, 48.85, 2.35, 50)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
