package query

import "math"

// TypeAddress is the record type tag of address rows in mixed shards.
// Address matches are already narrowed by house-number and street tokens,
// so they receive no popularity boost.
const TypeAddress = "address"

// RankingConfig carries the tunable ranking constants.
//
// The values are empirically chosen, not derived; treat them as knobs.
type RankingConfig struct {
	// PopulationBoost scales the log-population offset subtracted from
	// the BM25 score of populated places.
	PopulationBoost float64

	// FlatBoost is subtracted from the BM25 score of non-address records
	// without a population count, approximating "a place, not a street
	// address".
	FlatBoost float64

	// ImportanceDivisor normalizes a boosted score into 0..1 importance.
	ImportanceDivisor float64

	// BiasBoost is added to the importance of results matching the
	// caller's bias country before re-sorting.
	BiasBoost float64
}

// DefaultRankingConfig returns the production ranking constants.
func DefaultRankingConfig() RankingConfig {
	return RankingConfig{
		PopulationBoost:   2.0,
		FlatBoost:         2.0,
		ImportanceDivisor: 50.0,
		BiasBoost:         0.1,
	}
}

// BoostedScore adjusts a BM25 relevance score (lower = better) by the
// population boost. Populated places are boosted by
// PopulationBoost·ln(population+1); unpopulated non-address records get
// the flat boost; address records pass through unchanged.
func (c RankingConfig) BoostedScore(bm25 float64, population int64, hasPopulation bool, recordType string) float64 {
	if recordType == TypeAddress {
		return bm25
	}
	if hasPopulation && population > 0 {
		return bm25 - c.PopulationBoost*math.Log(float64(population)+1)
	}
	return bm25 - c.FlatBoost
}

// Importance maps a boosted score onto 0..1, higher = more important.
func (c RankingConfig) Importance(boosted float64) float64 {
	imp := -boosted / c.ImportanceDivisor
	if imp < 0 {
		return 0
	}
	if imp > 1 {
		return 1
	}
	return imp
}
