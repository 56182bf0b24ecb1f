// Package smoothing computes the per-section target elevation profile
// along a spline, per spec.md §4.7: seed profile, Butterworth or box
// longitudinal filter, global leveling, and max-slope enforcement.
package smoothing

import (
	"math"

	"github.com/woozymasta/terra-road-forge/internal/errs"
)

// FilterKind selects the longitudinal smoothing filter, a tagged variant
// per spec.md §9 ("dynamic dispatch over blend/filter families... a
// small closed set of functions outperforms a virtual table").
type FilterKind int

const (
	FilterButterworth FilterKind = iota
	FilterBox
)

// Config bundles the C8 parameters from the configuration surface
// (spec.md §6).
type Config struct {
	Filter                  FilterKind
	ButterworthFilterOrder  int // 2..5
	SmoothingWindowSize     int // odd
	GlobalLevelingStrength  float64 // [0,1]
	TerrainAffectedRangeM   float64
	RoadMaxSlopeDegrees     float64
}

// Validate enforces the documented safety relationships from spec.md
// §4.7 step 3 and §7 ("ValidationError... surfaced at load time").
func (c Config) Validate() error {
	if c.SmoothingWindowSize%2 == 0 {
		return errs.NewValidationError("SmoothingWindowSize", "must be odd")
	}
	if c.ButterworthFilterOrder < 2 || c.ButterworthFilterOrder > 5 {
		return errs.NewValidationError("ButterworthFilterOrder", "must be in [2,5]")
	}
	if c.GlobalLevelingStrength < 0 || c.GlobalLevelingStrength > 1 {
		return errs.NewValidationError("GlobalLevelingStrength", "must be in [0,1]")
	}
	if c.GlobalLevelingStrength > 0.5 && c.TerrainAffectedRangeM < 15 {
		return errs.NewValidationError("GlobalLevelingStrength", "values > 0.5 require TerrainAffectedRangeMeters >= 15")
	}
	if c.GlobalLevelingStrength > 0.3 && c.TerrainAffectedRangeM < 12 {
		return errs.NewValidationError("GlobalLevelingStrength", "values > 0.3 require TerrainAffectedRangeMeters >= 12")
	}
	return nil
}

// SeedProfile takes, at each cross-section, the median of a small set of
// perpendicular terrain samples within halfWidth of the centerline.
// perpendicularSamples[i] holds the samples already gathered for section
// i (the caller owns sampling geometry; this stays a pure numeric step).
func SeedProfile(perpendicularSamples [][]float64) []float64 {
	out := make([]float64, len(perpendicularSamples))
	for i, samples := range perpendicularSamples {
		out[i] = median(samples)
	}
	return out
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64{}, xs...)
	insertionSort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func insertionSort(xs []float64) {
	for i := 1; i < len(xs); i++ {
		v := xs[i]
		j := i - 1
		for j >= 0 && xs[j] > v {
			xs[j+1] = xs[j]
			j--
		}
		xs[j+1] = v
	}
}

// Filter applies the configured longitudinal filter to profile, reading
// distances (cumulative arc length, meters, one per profile sample, same
// length and strictly increasing) to determine sample spacing for the
// Butterworth cutoff derivation.
func Filter(profile []float64, distances []float64, cfg Config) []float64 {
	switch cfg.Filter {
	case FilterBox:
		return boxFilter(profile, cfg.SmoothingWindowSize)
	default:
		return butterworthFilter(profile, distances, cfg.ButterworthFilterOrder, cfg.SmoothingWindowSize)
	}
}

// boxFilter is a symmetric moving average, grounded on the teacher
// pack's SmoothSpherical box-blur idiom: at each sample, average itself
// with the fixed-radius neighborhood read from an unmodified snapshot.
func boxFilter(profile []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	radius := window / 2
	n := len(profile)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		count := 0
		for k := -radius; k <= radius; k++ {
			j := i + k
			if j < 0 || j >= n {
				continue
			}
			sum += profile[j]
			count++
		}
		out[i] = sum / float64(count)
	}
	return out
}

// GlobalLevel blends profile toward target (network-wide or spline-wide
// mean elevation) with the configured strength, per spec.md §4.7 step 3.
func GlobalLevel(profile []float64, target, strength float64) []float64 {
	out := make([]float64, len(profile))
	for i, v := range profile {
		out[i] = v*(1-strength) + target*strength
	}
	return out
}

// EnforceMaxSlope clamps consecutive elevation differences so that
// |Δz| <= dx * tan(maxSlopeDegrees), iterating until no further change
// or the iteration budget is spent, per spec.md §4.7 step 4.
//
// When the budget is exhausted with a violation still present, the
// caller should surface errs.ConstraintUnsatisfiableError and keep this
// best-effort result (spec.md §7 policy).
func EnforceMaxSlope(profile []float64, distances []float64, maxSlopeDegrees float64, maxIterations int) (out []float64, satisfied bool) {
	out = append([]float64{}, profile...)
	maxSlope := math.Tan(maxSlopeDegrees * math.Pi / 180)

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i := 0; i+1 < len(out); i++ {
			dx := distances[i+1] - distances[i]
			if dx <= 0 {
				continue
			}
			dz := out[i+1] - out[i]
			maxDz := dx * maxSlope
			if math.Abs(dz) > maxDz {
				excess := (math.Abs(dz) - maxDz) / 2
				if dz > 0 {
					out[i] += excess
					out[i+1] -= excess
				} else {
					out[i] -= excess
					out[i+1] += excess
				}
				changed = true
			}
		}
		if !changed {
			return out, true
		}
	}
	return out, false
}
