package domain

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Build Coordinates from a [lon, lat] pair; ok is false for malformed input.
func CoordsFromList(v []float64) (Coordinates, bool) {
	if len(v) < 2 {
		return Coordinates{}, false
	}
	return Coordinates{Lon: v[0], Lat: v[1]}, true
}
