package domain

// Marker is a user-placed georeferenced point of interest. Photos are loaded
// separately through the photo store, never embedded here.
type Marker struct {
	ID        string
	Latitude  float64
	Longitude float64
}

// Photo references image bytes attached to exactly one marker. The URI is
// opaque to the engine; it is stored and returned but never interpreted.
type Photo struct {
	ID       string
	URI      string
	MarkerID string
}

// Position is a live coordinate sample from a position provider.
type Position struct {
	Latitude  float64
	Longitude float64
}
