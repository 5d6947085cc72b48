package facematch

import "math"

// EuclideanDistance calculates the Euclidean distance between two
// descriptors of equal length. Squared differences accumulate in float64
// to keep rounding error small on long vectors. Returns a *DimensionError
// if the lengths differ.
func EuclideanDistance(a, b Descriptor) (float64, error) {
	if len(a) != len(b) {
		return 0, &DimensionError{Want: len(a), Got: len(b)}
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}

	return math.Sqrt(sum), nil
}
