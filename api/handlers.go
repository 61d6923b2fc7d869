package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/gersmaps/geocoder"
)

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	text := q.Get("q")
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter: q")
		return
	}

	// Autocomplete is on unless the caller switches it off.
	req := geocoder.SearchRequest{
		Query:        text,
		Autocomplete: parseBoolDefault(q.Get("autocomplete"), true),
		BiasCountry:  requestCountry(r),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		req.Limit = limit
	}

	results, err := s.engine.Search(r.Context(), req)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	if q.Get("format") == "geojson" {
		writeJSON(w, http.StatusOK, searchFeatureCollection(results))
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (s *Server) handleReverse(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing lat")
		return
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid or missing lon")
		return
	}

	country := requestCountry(r)
	results, err := s.engine.Reverse(r.Context(), lat, lon,
		func(o *geocoder.ReverseOptions) { o.Country = country })
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	if q.Get("format") == "geojson" {
		writeJSON(w, http.StatusOK, reverseFeatureCollection(results))
		return
	}
	writeJSON(w, http.StatusOK, reverseResponse{Results: results})
}

// writeEngineError maps engine errors to HTTP status codes.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, geocoder.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, geocoder.ErrServiceUnavailable):
		s.logger.Error("dataset unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "dataset unavailable")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// requestCountry infers a country bias for the request: an explicit
// country parameter wins, then edge-provided geo headers.
func requestCountry(r *http.Request) string {
	if c := r.URL.Query().Get("country"); c != "" {
		return strings.ToUpper(c)
	}
	if c := r.Header.Get("CF-IPCountry"); c != "" && c != "XX" {
		return strings.ToUpper(c)
	}
	if c := r.Header.Get("X-Country"); c != "" {
		return strings.ToUpper(c)
	}
	return ""
}

// parseBoolDefault interprets common true/false spellings, keeping
// fallback for an absent or unrecognized value.
func parseBoolDefault(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}
