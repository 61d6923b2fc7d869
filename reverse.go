package geocoder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gersmaps/geocoder/blobstore"
	"github.com/gersmaps/geocoder/catalog"
	"github.com/gersmaps/geocoder/shard"
)

// subtypePriority orders division subtypes from most granular to least.
// Unknown subtypes sort first.
var subtypePriority = map[string]int{
	"neighborhood": 1,
	"macrohood":    2,
	"locality":     3,
	"localadmin":   4,
	"county":       5,
	"region":       6,
	"country":      7,
}

// ReverseOptions tunes a reverse lookup.
type ReverseOptions struct {
	// Country selects a country-specific reverse shard to try before
	// the HEAD shard. Failures and empty results fall back to HEAD.
	Country string
}

// Reverse resolves a coordinate to the administrative divisions whose
// bounding boxes contain it, most specific first, each with a computed
// containment hierarchy.
//
// Bounding-box containment is an approximation: near bbox corners it may
// include divisions the point is not truly inside, which is why every
// result carries ConfidenceBBox. No covering division is a valid empty
// result, not an error.
func (e *Engine) Reverse(ctx context.Context, lat, lon float64, optFns ...func(*ReverseOptions)) ([]ReverseResult, error) {
	start := time.Now()

	results, err := e.reverse(ctx, lat, lon, optFns)

	e.opts.metrics.RecordReverse(len(results), time.Since(start), err)
	e.opts.logger.LogReverse(ctx, lat, lon, len(results), time.Since(start), err)

	return results, err
}

func (e *Engine) reverse(ctx context.Context, lat, lon float64, optFns []func(*ReverseOptions)) ([]ReverseResult, error) {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 ||
		math.IsNaN(lat) || math.IsNaN(lon) {
		return nil, &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}

	var opts ReverseOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}

	version, err := e.Version(ctx)
	if err != nil {
		return nil, err
	}

	candidates, err := e.reverseCandidates(ctx, version, lat, lon, opts)
	if err != nil {
		return nil, err
	}

	results := make([]ReverseResult, 0, len(candidates))
	for _, row := range candidates {
		results = append(results, ReverseResult{
			ID:         row.GERSID,
			Name:       row.Name,
			Subtype:    row.Subtype,
			Lat:        row.Lat,
			Lon:        row.Lon,
			BBox:       [4]float64{row.BBoxXMin, row.BBoxYMin, row.BBoxXMax, row.BBoxYMax},
			DistanceKM: haversineKM(lat, lon, row.Lat, row.Lon),
			Confidence: ConfidenceBBox,
			Hierarchy:  buildHierarchy(candidates, row),
		})
	}
	return results, nil
}

// reverseCandidates queries the reverse index, trying the country shard
// first when requested and falling back to HEAD. Only a HEAD failure is
// an error, surfaced as ErrServiceUnavailable.
func (e *Engine) reverseCandidates(ctx context.Context, version string, lat, lon float64, opts ReverseOptions) ([]shard.ReverseRow, error) {
	country := strings.ToUpper(strings.TrimSpace(opts.Country))
	if country != "" && country != HeadShardID {
		rows, err := e.queryReverseShard(ctx, version, country, lat, lon, true)
		if err != nil {
			if !errors.Is(err, blobstore.ErrNotFound) {
				e.opts.logger.LogShardSkipped(ctx, country, err)
			}
		} else if len(rows) > 0 {
			return rows, nil
		}
	}

	rows, err := e.queryReverseShard(ctx, version, HeadShardID, lat, lon, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
	}
	return rows, nil
}

func (e *Engine) queryReverseShard(ctx context.Context, version, shardID string, lat, lon float64, optional bool) ([]shard.ReverseRow, error) {
	start := time.Now()

	rows, err := e.queryReverseRows(ctx, version, shardID, lat, lon)
	e.opts.metrics.RecordShardQuery(shardID, optional, time.Since(start), err)

	return rows, err
}

func (e *Engine) queryReverseRows(ctx context.Context, version, shardID string, lat, lon float64) ([]shard.ReverseRow, error) {
	db, err := e.shards.Load(ctx, version, catalog.KindReverse, shardID)
	if err != nil {
		return nil, err
	}
	defer db.Release()

	return db.Reverse(ctx, lat, lon, e.opts.candidateLimit)
}

// buildHierarchy derives the containment chain of r from the shared
// candidate pool: r itself plus every coarser candidate already fetched,
// one entry per subtype (smallest area wins), ordered by subtype
// specificity.
//
// The pool arrives ascending by area, so the first occurrence of a
// subtype is the smallest-area one.
func buildHierarchy(pool []shard.ReverseRow, r shard.ReverseRow) []HierarchyEntry {
	seen := make(map[string]struct{}, len(pool))
	entries := make([]HierarchyEntry, 0, 4)

	for _, c := range pool {
		if c.Area < r.Area {
			continue
		}
		if _, ok := seen[c.Subtype]; ok {
			continue
		}
		seen[c.Subtype] = struct{}{}
		entries = append(entries, HierarchyEntry{
			ID:      c.GERSID,
			Subtype: c.Subtype,
			Name:    c.Name,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return subtypePriority[entries[i].Subtype] < subtypePriority[entries[j].Subtype]
	})

	return entries
}

const earthRadiusKM = 6371.0

// haversineKM computes the great-circle distance between two points on
// the mean-radius sphere, rounded to two decimals.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const deg = math.Pi / 180

	dLat := (lat2 - lat1) * deg
	dLon := (lon2 - lon1) * deg

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*deg)*math.Cos(lat2*deg)*math.Sin(dLon/2)*math.Sin(dLon/2)
	d := 2 * earthRadiusKM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return math.Round(d*100) / 100
}
