// Package blend paints the finalized road cross-sections into the
// working terrain heightmap: an exactly-flat protected road surface and
// a blend annulus that eases back to the original terrain, per spec.md
// §4.9.
package blend

import (
	"math"

	"github.com/woozymasta/terra-road-forge/internal/junction"
	"github.com/woozymasta/terra-road-forge/internal/raster"
	"github.com/woozymasta/terra-road-forge/internal/roadnet"
)

// BlendFunction reuses the four tagged blend shapes already defined for
// junction tapering (spec.md §9: one small closed set of blend/filter
// variants serving every family that needs one, not a second copy).
type BlendFunction = junction.BlendFunction

const (
	Linear  = junction.BlendLinear
	Cosine  = junction.BlendCosine
	Cubic   = junction.BlendCubic
	Quintic = junction.BlendQuintic
)

// Config bundles the C10 parameters from the configuration surface.
type Config struct {
	TerrainAffectedRangeM        float64
	SideMaxSlopeDegrees          float64
	BlendFunction                BlendFunction
	SmoothingMaskExtensionM      float64
	SmoothingKernelSize          int
	SmoothingSigma               float64
	SmoothingIterations          int
}

// sectionSpan holds one spline's cross-sections in order; target_elevation
// is interpolated between consecutive sections by the projected fraction
// along each segment.
type sectionSpan struct {
	sections []roadnet.CrossSection
}

// Blend paints net's cross-sections into working (mutated in place),
// reading original for the pre-road elevation and exclusion for
// always-forbidden pixels (e.g. water), per spec.md §4.9. pixelToMeters
// converts pixel distances to meters. Returns the protection mask
// recording every pixel set to an exact road elevation.
func Blend(working *raster.Heightmap, original *raster.Heightmap, net *roadnet.UnifiedRoadNetwork, exclusion *raster.Mask, pixelToMeters float64, cfg Config) *raster.Mask {
	protection := raster.NewMask(working.Size)

	for _, spline := range net.Splines {
		if len(spline.CrossSections) < 2 {
			continue
		}
		span := sectionSpan{sections: gatherSections(net, spline.CrossSections)}
		paintSpan(working, original, exclusion, protection, span, pixelToMeters, cfg)
	}

	if cfg.SmoothingMaskExtensionM > 0 && cfg.SmoothingIterations > 0 {
		applyAnnulusSmoothing(working, protection, exclusion, pixelToMeters, cfg)
	}

	return protection
}

func gatherSections(net *roadnet.UnifiedRoadNetwork, indices []roadnet.CrossSectionIndex) []roadnet.CrossSection {
	out := make([]roadnet.CrossSection, len(indices))
	for i, idx := range indices {
		out[i] = net.CrossSections[idx]
	}
	return out
}

// paintSpan walks the bounding box of span's corridor (road width plus
// twice the affected range, in pixels) and, for each pixel, finds the
// nearest point along the polyline of sections to get perpendicular
// distance d and interpolated target elevation, applying spec.md §4.9's
// two-zone rule.
func paintSpan(working, original *raster.Heightmap, exclusion *raster.Mask, protection *raster.Mask, span sectionSpan, pixelToMeters float64, cfg Config) {
	sections := span.sections
	if len(sections) < 2 {
		return
	}

	maxHalfWidth := 0.0
	for _, s := range sections {
		half := s.EffectiveRoadWidth/2 + cfg.TerrainAffectedRangeM
		if half > maxHalfWidth {
			maxHalfWidth = half
		}
	}
	marginPx := int(math.Ceil(maxHalfWidth/pixelToMeters)) + 1

	minX, minY, maxX, maxY := boundingBoxPixels(sections, pixelToMeters, marginPx, working.Size)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if exclusion != nil && exclusion.At(x, y) {
				continue
			}
			if protection.At(x, y) {
				continue
			}
			worldPt := roadnet.Point2{X: float64(x) * pixelToMeters, Y: float64(y) * pixelToMeters}
			d, target, found := nearestOnSpan(sections, worldPt)
			if !found {
				continue
			}
			halfWidth := effectiveWidthAt(sections, worldPt) / 2
			if d <= halfWidth {
				working.Set(x, y, target)
				protection.Set(x, y, true)
				continue
			}
			if d > halfWidth+cfg.TerrainAffectedRangeM {
				continue
			}
			t := (d - halfWidth) / cfg.TerrainAffectedRangeM
			w := cfg.BlendFunction.Eval(t)
			candidate := (1-w)*target + w*original.At(x, y)
			candidate = clampSideSlope(candidate, target, d-halfWidth, cfg.SideMaxSlopeDegrees)
			working.Set(x, y, candidate)
		}
	}
}

// nearestOnSpan projects pt onto the polyline formed by consecutive
// section centers, returning the perpendicular distance and the
// target_elevation linearly interpolated by arc-length fraction along
// the nearest segment.
func nearestOnSpan(sections []roadnet.CrossSection, pt roadnet.Point2) (dist float64, target float64, found bool) {
	best := math.Inf(1)
	for i := 0; i+1 < len(sections); i++ {
		a, b := sections[i], sections[i+1]
		d, frac := perpendicularDistanceAndFraction(a.CenterXY, b.CenterXY, pt)
		if d < best {
			best = d
			target = a.TargetElevation + (b.TargetElevation-a.TargetElevation)*frac
			found = true
		}
	}
	return best, target, found
}

func effectiveWidthAt(sections []roadnet.CrossSection, pt roadnet.Point2) float64 {
	best := math.Inf(1)
	width := sections[0].EffectiveRoadWidth
	for i := 0; i+1 < len(sections); i++ {
		a, b := sections[i], sections[i+1]
		d, frac := perpendicularDistanceAndFraction(a.CenterXY, b.CenterXY, pt)
		if d < best {
			best = d
			width = a.EffectiveRoadWidth + (b.EffectiveRoadWidth-a.EffectiveRoadWidth)*frac
		}
	}
	return width
}

// perpendicularDistanceAndFraction returns the distance from pt to
// segment a-b and the fractional position (clamped to [0,1]) of the
// closest point along it.
func perpendicularDistanceAndFraction(a, b, pt roadnet.Point2) (float64, float64) {
	ab := b.Sub(a)
	abLen2 := ab.X*ab.X + ab.Y*ab.Y
	if abLen2 < 1e-12 {
		return pt.Sub(a).Length(), 0
	}
	ap := pt.Sub(a)
	frac := (ap.X*ab.X + ap.Y*ab.Y) / abLen2
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	closest := a.Add(ab.Scale(frac))
	return pt.Sub(closest).Length(), frac
}

// clampSideSlope limits candidate's deviation from the road-side target
// so the implied slope from the road edge out to this pixel
// (distanceFromRoadEdge) does not exceed tan(SideMaxSlopeDegrees), per
// spec.md §4.9.
func clampSideSlope(candidate, target, distanceFromRoadEdge, maxSlopeDegrees float64) float64 {
	if distanceFromRoadEdge <= 0 {
		return target
	}
	maxDelta := distanceFromRoadEdge * math.Tan(maxSlopeDegrees*math.Pi/180)
	delta := candidate - target
	if delta > maxDelta {
		return target + maxDelta
	}
	if delta < -maxDelta {
		return target - maxDelta
	}
	return candidate
}

func boundingBoxPixels(sections []roadnet.CrossSection, pixelToMeters float64, marginPx, size int) (minX, minY, maxX, maxY int) {
	minX, minY = size, size
	maxX, maxY = 0, 0
	for _, s := range sections {
		px := int(s.CenterXY.X / pixelToMeters)
		py := int(s.CenterXY.Y / pixelToMeters)
		if px-marginPx < minX {
			minX = px - marginPx
		}
		if py-marginPx < minY {
			minY = py - marginPx
		}
		if px+marginPx > maxX {
			maxX = px + marginPx
		}
		if py+marginPx > maxY {
			maxY = py + marginPx
		}
	}
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > size-1 {
		maxX = size - 1
	}
	if maxY > size-1 {
		maxY = size - 1
	}
	return
}
