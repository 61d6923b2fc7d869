package geocoder

// Result is one forward-geocoding match.
type Result struct {
	// ID is the entity's GERS identifier: stable, globally unique,
	// opaque, and preserved across dataset versions.
	ID string `json:"id"`

	Name string `json:"name"`
	Type string `json:"type"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`

	// BBox is the axis-aligned bounding box [xmin, ymin, xmax, ymax].
	BBox [4]float64 `json:"bbox"`

	// Importance is the normalized 0..1 forward-ranking value derived
	// from the boosted relevance score. Results are ordered descending
	// by it.
	Importance float64 `json:"importance"`

	Country string `json:"country,omitempty"`
	Region  string `json:"region,omitempty"`
}

// Confidence values attached to reverse results. Only ConfidenceBBox is
// produced today; the others are reserved for precise-containment paths.
const (
	ConfidenceBBox        = "bbox"
	ConfidenceExact       = "exact"
	ConfidenceApproximate = "approximate"
)

// ReverseResult is one administrative division whose bounding box
// contains the query point.
type ReverseResult struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Subtype string  `json:"subtype"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`

	BBox [4]float64 `json:"bbox"`

	// DistanceKM is the great-circle distance from the query point to
	// the division's centroid, rounded to two decimals. Informational;
	// ordering is by specificity, not distance.
	DistanceKM float64 `json:"distance_km"`

	// Confidence reports the containment method; always ConfidenceBBox
	// for results produced by the bounding-box resolver.
	Confidence string `json:"confidence"`

	// Hierarchy lists this division and its containing divisions,
	// most specific first, one entry per subtype.
	Hierarchy []HierarchyEntry `json:"hierarchy"`
}

// HierarchyEntry is one level of a reverse result's containment chain.
type HierarchyEntry struct {
	ID      string `json:"id"`
	Subtype string `json:"subtype"`
	Name    string `json:"name"`
}
