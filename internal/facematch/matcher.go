// Package facematch implements exact nearest-neighbor matching of face
// descriptors against a gallery of enrolled identities. The gallery is a
// snapshot passed in by the caller; the package keeps no state and never
// mutates its inputs, so a single call is safe from concurrent goroutines.
package facematch

import (
	"errors"
	"sync"
)

// DefaultThreshold is the distance below which a probe counts as a match.
// The comparison is strict: a best distance exactly equal to the threshold
// produces no match.
const DefaultThreshold = 0.6

// Match compares every probe against every descriptor of every identity in
// the gallery and returns one entry per probe, in probe order. A nil entry
// means nothing in the gallery came closer than the threshold.
//
// The scan is exhaustive: the winner for a probe is the globally closest
// (identity, descriptor) pair across the whole gallery, and ties go to the
// pair encountered first in gallery order, so repeated calls on the same
// inputs return identical results. A descriptor length mismatch anywhere
// aborts the entire call with a *DimensionError; partial results are never
// returned.
func Match(gallery []Identity, probes []Descriptor, threshold float64) ([]*Result, error) {
	results := make([]*Result, len(probes))
	errs := make([]error, len(probes))

	// Probes are independent of each other, so they fan out. Each probe
	// scans the gallery sequentially to keep tie-breaking deterministic.
	var wg sync.WaitGroup
	for i := range probes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = matchProbe(gallery, probes[i], i, threshold)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}

// matchProbe finds the gallery descriptor closest to a single probe.
func matchProbe(gallery []Identity, probe Descriptor, probeIndex int, threshold float64) (*Result, error) {
	var (
		best     *Identity
		bestDist float64
		found    bool
	)

	for gi := range gallery {
		identity := &gallery[gi]
		for si, sample := range identity.Descriptors {
			dist, err := EuclideanDistance(probe, sample)
			if err != nil {
				var dimErr *DimensionError
				if errors.As(err, &dimErr) {
					dimErr.Probe = probeIndex
					dimErr.IdentityID = identity.ID
					dimErr.Sample = si
				}
				return nil, err
			}

			// Strictly smaller only, so the first pair at any given
			// distance keeps the win.
			if !found || dist < bestDist {
				found = true
				bestDist = dist
				best = identity
			}
		}
	}

	if !found || bestDist >= threshold {
		return nil, nil
	}

	return &Result{
		IdentityID: best.ID,
		Name:       best.Name,
		Code:       best.Code,
		Email:      best.Email,
		Distance:   bestDist,
		Confidence: 1 - bestDist,
	}, nil
}
