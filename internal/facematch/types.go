package facematch

// Descriptor is a fixed-length numeric feature vector describing one face
// sample. The length is not fixed by this package; it only requires that
// every pair of descriptors compared within a single call agree on it.
type Descriptor []float32

// Identity represents one enrolled person inside a gallery snapshot: an
// opaque identifier, display attributes carried through to match results,
// and the reference descriptors collected for that person. An identity
// with no descriptors is skipped during matching.
type Identity struct {
	ID          string
	Name        string
	Code        string
	Email       string
	Descriptors []Descriptor
}

// Result describes the winning identity for a single probe. Confidence is
// derived as 1 - Distance and is intentionally not clamped, so distances
// above 1.0 yield negative confidence rather than a misleading zero.
type Result struct {
	IdentityID string
	Name       string
	Code       string
	Email      string
	Distance   float64
	Confidence float64
}
