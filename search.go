package geocoder

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/gersmaps/geocoder/catalog"
	"github.com/gersmaps/geocoder/query"
)

// SearchRequest describes one forward-geocoding query.
type SearchRequest struct {
	// Query is free-form place or address text.
	Query string

	// Limit bounds the result count; clamped to 1..MaxLimit,
	// DefaultLimit when zero.
	Limit int

	// BiasCountry is the caller's inferred ISO country code. When set,
	// a matching country shard is queried alongside HEAD and results
	// from that country gain an importance boost.
	BiasCountry string

	// Autocomplete makes the final token a prefix match.
	Autocomplete bool
}

// Search executes a ranked full-text query across the HEAD shard and,
// when available, the bias country's shard.
//
// A query reducible to zero tokens returns an empty list without touching
// storage. A failing country shard is logged and skipped; only HEAD
// failures fail the request.
func (e *Engine) Search(ctx context.Context, req SearchRequest) ([]Result, error) {
	start := time.Now()

	results, err := e.search(ctx, req)

	e.opts.metrics.RecordSearch(len(results), time.Since(start), err)
	e.opts.logger.LogSearch(ctx, req.Query, len(results), time.Since(start), err)

	return results, err
}

func (e *Engine) search(ctx context.Context, req SearchRequest) ([]Result, error) {
	// The length cap counts characters, not bytes, so multi-byte
	// scripts get the full budget.
	if n := utf8.RuneCountInString(req.Query); n > e.opts.maxQueryLength {
		return nil, &ErrQueryTooLong{Length: n, Max: e.opts.maxQueryLength}
	}

	tokens := query.Normalize(req.Query)
	if len(tokens) == 0 {
		return []Result{}, nil
	}
	match := query.BuildMatch(tokens, req.Autocomplete)

	limit := clampLimit(req.Limit)
	fetchLimit := limit * e.opts.fetchMultiplier
	if fetchLimit < e.opts.fetchFloor {
		fetchLimit = e.opts.fetchFloor
	}

	version, err := e.Version(ctx)
	if err != nil {
		return nil, err
	}

	country := strings.ToUpper(strings.TrimSpace(req.BiasCountry))

	var headResults, countryResults []Result

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		headResults, err = e.queryShard(gctx, version, HeadShardID, match, fetchLimit, false)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
		}
		return nil
	})

	if country != "" && country != HeadShardID {
		g.Go(func() error {
			ok, err := e.shards.Exists(gctx, version, catalog.KindForward, country)
			if err != nil {
				e.opts.logger.LogShardSkipped(gctx, country, err)
				return nil
			}
			if !ok {
				return nil
			}
			results, err := e.queryShard(gctx, version, country, match, fetchLimit, true)
			if err != nil {
				e.opts.logger.LogShardSkipped(gctx, country, err)
				return nil
			}
			countryResults = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := append(headResults, countryResults...)

	// Order by importance before dedup so the better-scored duplicate
	// survives, then bias and re-sort.
	sortByImportance(all)
	all = dedupByID(all)
	if country != "" {
		e.applyBias(all, country)
		sortByImportance(all)
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// queryShard runs the full-text query against one shard and maps rows to
// scored results.
func (e *Engine) queryShard(ctx context.Context, version, shardID, match string, fetchLimit int, optional bool) ([]Result, error) {
	start := time.Now()

	results, err := e.queryShardRows(ctx, version, shardID, match, fetchLimit)
	e.opts.metrics.RecordShardQuery(shardID, optional, time.Since(start), err)

	return results, err
}

func (e *Engine) queryShardRows(ctx context.Context, version, shardID, match string, fetchLimit int) ([]Result, error) {
	db, err := e.shards.Load(ctx, version, catalog.KindForward, shardID)
	if err != nil {
		return nil, err
	}
	defer db.Release()

	rows, err := db.Search(ctx, match, fetchLimit)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		boosted := e.opts.ranking.BoostedScore(row.BM25, row.Population, row.HasPopulation, row.Type)
		results = append(results, Result{
			ID:         row.GERSID,
			Name:       row.Name,
			Type:       row.Type,
			Lat:        row.Lat,
			Lon:        row.Lon,
			BBox:       [4]float64{row.BBoxXMin, row.BBoxYMin, row.BBoxXMax, row.BBoxYMax},
			Importance: e.opts.ranking.Importance(boosted),
			Country:    row.Country,
			Region:     row.Region,
		})
	}
	return results, nil
}

// applyBias raises the importance of results from the bias country.
// Importance stays clamped to 1.
func (e *Engine) applyBias(results []Result, country string) {
	for i := range results {
		if strings.EqualFold(results[i].Country, country) {
			results[i].Importance += e.opts.ranking.BiasBoost
			if results[i].Importance > 1 {
				results[i].Importance = 1
			}
		}
	}
}

// dedupByID drops later occurrences of an identifier, preserving order.
// Idempotent: a deduplicated list passes through unchanged.
func dedupByID(results []Result) []Result {
	seen := make(map[string]struct{}, len(results))
	out := results[:0]
	for _, r := range results {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func sortByImportance(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Importance > results[j].Importance
	})
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
