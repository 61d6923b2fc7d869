// Package api exposes the geocoding engine over HTTP.
//
// It provides JSON and GeoJSON renderings of forward and reverse
// lookups, a health endpoint, access logging and per-request
// identifiers. The server holds no state beyond the engine it wraps.
package api
