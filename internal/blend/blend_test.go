package blend

import (
	"math"
	"testing"

	"github.com/woozymasta/terra-road-forge/internal/raster"
	"github.com/woozymasta/terra-road-forge/internal/roadnet"
)

func straightSpline(t *testing.T, width, targetElev float64) *roadnet.UnifiedRoadNetwork {
	t.Helper()
	net := roadnet.NewUnifiedRoadNetwork()
	id := net.AddSpline(roadnet.Spline{Polyline: []roadnet.Point2{{20, 128}, {236, 128}}})
	for i := 0; i <= 10; i++ {
		x := 20 + float64(i)*21.6
		_, err := net.AddCrossSection(roadnet.CrossSection{
			OwnerSplineID:       id,
			LocalIndex:          i,
			CenterXY:            roadnet.Point2{X: x, Y: 128},
			Tangent:             roadnet.Point2{X: 1, Y: 0},
			Normal:              roadnet.Point2{X: 0, Y: -1},
			DistanceAlongSpline: float64(i) * 21.6,
			EffectiveRoadWidth:  width,
			TargetElevation:     targetElev,
		})
		if err != nil {
			t.Fatalf("AddCrossSection: %v", err)
		}
	}
	return net
}

func TestBlendPaintsExactRoadSurfaceFlat(t *testing.T) {
	net := straightSpline(t, 8, 50)
	working := raster.NewHeightmap(256)
	original := raster.NewHeightmap(256)
	for i := range original.Data {
		original.Data[i] = 10
	}
	copy(working.Data, original.Data)

	cfg := Config{TerrainAffectedRangeM: 15, SideMaxSlopeDegrees: 30, BlendFunction: Cosine}
	protection := Blend(working, original, net, nil, 1.0, cfg)

	if protection.Count() == 0 {
		t.Fatal("expected some pixels marked protected")
	}
	// Centerline pixel must read exactly the target elevation.
	if v := working.At(128, 128); math.Abs(v-50) > 1e-9 {
		t.Fatalf("centerline elevation = %v, want 50", v)
	}
	if !protection.At(128, 128) {
		t.Fatal("centerline pixel should be protected")
	}
}

func TestBlendAnnulusRecoversOriginalBeyondRange(t *testing.T) {
	net := straightSpline(t, 8, 50)
	working := raster.NewHeightmap(256)
	original := raster.NewHeightmap(256)
	for i := range original.Data {
		original.Data[i] = 10
	}
	copy(working.Data, original.Data)

	cfg := Config{TerrainAffectedRangeM: 15, SideMaxSlopeDegrees: 89, BlendFunction: Linear}
	Blend(working, original, net, nil, 1.0, cfg)

	// Far from the road (>23m perpendicular), elevation should be
	// unchanged from original.
	far := working.At(128, 200)
	if math.Abs(far-10) > 1e-6 {
		t.Fatalf("far-field elevation = %v, want unchanged 10", far)
	}
}

func TestBlendRespectsExclusionMask(t *testing.T) {
	net := straightSpline(t, 8, 50)
	working := raster.NewHeightmap(256)
	original := raster.NewHeightmap(256)
	for i := range original.Data {
		original.Data[i] = 10
	}
	copy(working.Data, original.Data)

	exclusion := raster.NewMask(256)
	exclusion.Set(128, 128, true)

	cfg := Config{TerrainAffectedRangeM: 15, SideMaxSlopeDegrees: 30, BlendFunction: Cosine}
	protection := Blend(working, original, net, exclusion, 1.0, cfg)

	if protection.At(128, 128) {
		t.Fatal("excluded pixel must never be protected or modified")
	}
	if working.At(128, 128) != 10 {
		t.Fatal("excluded pixel must retain its original elevation")
	}
}

func TestBlendAnnulusMonotoneTowardOriginal(t *testing.T) {
	net := straightSpline(t, 8, 50)
	working := raster.NewHeightmap(256)
	original := raster.NewHeightmap(256)
	for i := range original.Data {
		original.Data[i] = 10
	}
	copy(working.Data, original.Data)

	cfg := Config{TerrainAffectedRangeM: 15, SideMaxSlopeDegrees: 89, BlendFunction: Linear}
	Blend(working, original, net, nil, 1.0, cfg)

	// Walking away from the centerline, elevation should move
	// monotonically from 50 toward 10 across the annulus.
	prev := working.At(128, 128)
	for dy := 1; dy <= 20; dy++ {
		v := working.At(128, 128+dy)
		if v > prev+1e-9 {
			t.Fatalf("elevation increased away from road at dy=%d: %v > %v", dy, v, prev)
		}
		prev = v
	}
}

func TestClampSideSlopeLimitsDeviation(t *testing.T) {
	got := clampSideSlope(100, 10, 1, 45) // max delta = tan(45)=1
	if math.Abs(got-11) > 1e-9 {
		t.Fatalf("clampSideSlope = %v, want 11", got)
	}
	got = clampSideSlope(10.5, 10, 1, 45)
	if math.Abs(got-10.5) > 1e-9 {
		t.Fatalf("clampSideSlope should pass through small deviations, got %v", got)
	}
}
