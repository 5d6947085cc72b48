package facematch

import "fmt"

// DimensionError reports two descriptors of different lengths. Mismatched
// vectors are never truncated, padded or skipped; the comparison that hit
// them fails instead. When the mismatch surfaces from a gallery scan,
// Probe, IdentityID and Sample identify the exact pair that collided.
type DimensionError struct {
	Probe      int    // index of the probe within its batch
	IdentityID string // identity owning the gallery descriptor, empty outside a scan
	Sample     int    // index of the descriptor within the identity
	Want       int    // length of the probe vector
	Got        int    // length of the gallery vector
}

func (e *DimensionError) Error() string {
	if e.IdentityID != "" {
		return fmt.Sprintf("descriptor dimension mismatch: probe %d has %d values but descriptor %d of identity %q has %d",
			e.Probe, e.Want, e.Sample, e.IdentityID, e.Got)
	}
	return fmt.Sprintf("descriptor dimension mismatch: expected %d values, got %d", e.Want, e.Got)
}
