// Package query prepares full-text queries and scores their results.
//
// Free-form input is normalized into tokens and rendered as an FTS5 MATCH
// expression; all terms match exactly except the final one, which becomes
// a prefix term in autocomplete mode. Raw BM25 relevance from the shard's
// full-text engine is adjusted by a population boost so that well-known
// places outrank obscure exact-text matches, then normalized into a 0..1
// importance value used for bias re-sorting.
//
// The boost constants are empirically chosen and carried in RankingConfig
// rather than hard-coded; callers may tune them.
package query
