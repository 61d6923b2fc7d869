package api

import (
	"encoding/json"
	"net/http"

	"github.com/gersmaps/geocoder"
)

type searchResponse struct {
	Results []geocoder.Result `json:"results"`
}

type reverseResponse struct {
	Results []geocoder.ReverseResult `json:"results"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// featureCollection is a GeoJSON FeatureCollection of Point features.
type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   pointGeometry  `json:"geometry"`
	Properties map[string]any `json:"properties"`
	BBox       []float64      `json:"bbox,omitempty"`
}

type pointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"` // lon, lat
}

func searchFeatureCollection(results []geocoder.Result) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(results))}
	for _, r := range results {
		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: pointGeometry{Type: "Point", Coordinates: [2]float64{r.Lon, r.Lat}},
			BBox:     r.BBox[:],
			Properties: map[string]any{
				"id":         r.ID,
				"name":       r.Name,
				"type":       r.Type,
				"importance": r.Importance,
				"country":    r.Country,
				"region":     r.Region,
			},
		})
	}
	return fc
}

func reverseFeatureCollection(results []geocoder.ReverseResult) featureCollection {
	fc := featureCollection{Type: "FeatureCollection", Features: make([]feature, 0, len(results))}
	for _, r := range results {
		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: pointGeometry{Type: "Point", Coordinates: [2]float64{r.Lon, r.Lat}},
			BBox:     r.BBox[:],
			Properties: map[string]any{
				"id":          r.ID,
				"name":        r.Name,
				"subtype":     r.Subtype,
				"distance_km": r.DistanceKM,
				"confidence":  r.Confidence,
				"hierarchy":   r.Hierarchy,
			},
		})
	}
	return fc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
