package roadnet

import (
	"github.com/woozymasta/terra-road-forge/internal/errs"
	"github.com/woozymasta/terra-road-forge/internal/raster"
)

// SampleConfig configures cross-section placement, per spec.md §4.6.
type SampleConfig struct {
	CrossSectionIntervalMeters float64
	RoadWidthMeters            float64
	RoadSurfaceWidthMeters     float64 // 0 = use RoadWidthMeters
	MetersPerPixel             float64
}

// EffectiveWidth resolves the painted road surface width: narrower than
// the blend corridor when RoadSurfaceWidthMeters is set.
func (c SampleConfig) EffectiveWidth() float64 {
	if c.RoadSurfaceWidthMeters > 0 {
		return c.RoadSurfaceWidthMeters
	}
	return c.RoadWidthMeters
}

// SampleCrossSections places cross-sections along spline at fixed
// arc-length interval (first and last points always included), sampling
// terrain elevation via bilinear interpolation. Appends the sections
// into net and returns their stable indices in spline order.
func SampleCrossSections(net *UnifiedRoadNetwork, splineID SplineIndex, terrain *raster.Heightmap, pixelToMeters float64, cfg SampleConfig) ([]CrossSectionIndex, error) {
	spline := &net.Splines[splineID]
	ctrl := spline.Polyline
	if len(ctrl) < 2 {
		return nil, &errs.GeometricDegenerateError{EntityID: splineEntityID(splineID), Reason: "fewer than 2 control points"}
	}

	_, lengths := ArcLengthTable(ctrl, spline.Tension, spline.Continuity, spline.Bias, 16)
	totalLenPixels := lengths[len(lengths)-1]
	totalLenMeters := totalLenPixels * pixelToMeters
	if totalLenMeters <= 0 {
		return nil, &errs.GeometricDegenerateError{EntityID: splineEntityID(splineID), Reason: "zero length"}
	}

	interval := cfg.CrossSectionIntervalMeters
	if interval <= 0 {
		interval = totalLenMeters
	}
	numSamples := int(totalLenMeters/interval) + 1
	if float64(numSamples-1)*interval < totalLenMeters-1e-9 {
		numSamples++ // room for the final section at the spline's end
	}
	if numSamples < 2 {
		numSamples = 2
	}

	params, _ := ArcLengthTable(ctrl, spline.Tension, spline.Continuity, spline.Bias, 16)

	var indices []CrossSectionIndex
	for i := 0; i < numSamples; i++ {
		distM := float64(i) * interval
		if i == numSamples-1 || distM > totalLenMeters {
			distM = totalLenMeters
		}
		distPixels := distM / pixelToMeters
		t := ParamAtArcLength(params, lengths, distPixels)

		center := EvalTCB(ctrl, spline.Tension, spline.Continuity, spline.Bias, t)
		tangent := TangentTCB(ctrl, spline.Tension, spline.Continuity, spline.Bias, t)
		normal := RotateRight(tangent)

		elev := terrain.Bilinear(center.X, center.Y)

		cs := CrossSection{
			OwnerSplineID:           splineID,
			LocalIndex:              i,
			CenterXY:                center,
			Tangent:                 tangent,
			Normal:                  normal,
			DistanceAlongSpline:     distM,
			EffectiveRoadWidth:      cfg.EffectiveWidth(),
			SampledTerrainElevation: elev,
			TargetElevation:         elev,
		}

		idx, err := net.AddCrossSection(cs)
		if err != nil {
			return nil, err
		}
		indices = append(indices, idx)
	}

	spline.TotalLengthM = totalLenMeters
	return indices, nil
}

func splineEntityID(id SplineIndex) string {
	return "spline#" + itoaSmall(int(id))
}

func itoaSmall(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
