package junction

import (
	"math"
	"testing"

	"github.com/woozymasta/terra-road-forge/internal/roadnet"
)

// buildPerpendicularSplines creates two splines crossing at (50,50): one
// running west-to-east at elevation 0, the other south-to-north at
// elevation 10, each with cross-sections at 10m spacing.
func buildPerpendicularSplines(t *testing.T) (*roadnet.UnifiedRoadNetwork, roadnet.SplineIndex, roadnet.SplineIndex) {
	t.Helper()
	net := roadnet.NewUnifiedRoadNetwork()

	ewID := net.AddSpline(roadnet.Spline{Polyline: []roadnet.Point2{{0, 50}, {100, 50}}})
	for i := 0; i <= 5; i++ {
		d := float64(i) * 10
		_, err := net.AddCrossSection(roadnet.CrossSection{
			OwnerSplineID:       ewID,
			LocalIndex:          i,
			CenterXY:            roadnet.Point2{X: d, Y: 50},
			Tangent:             roadnet.Point2{X: 1, Y: 0},
			Normal:              roadnet.Point2{X: 0, Y: -1},
			DistanceAlongSpline: d,
			EffectiveRoadWidth:  8,
			TargetElevation:     0,
		})
		if err != nil {
			t.Fatalf("AddCrossSection: %v", err)
		}
	}
	net.Splines[ewID].TotalLengthM = 50

	nsID := net.AddSpline(roadnet.Spline{Polyline: []roadnet.Point2{{50, 0}, {50, 100}}})
	for i := 0; i <= 5; i++ {
		d := float64(i) * 10
		_, err := net.AddCrossSection(roadnet.CrossSection{
			OwnerSplineID:       nsID,
			LocalIndex:          i,
			CenterXY:            roadnet.Point2{X: 50, Y: d},
			Tangent:             roadnet.Point2{X: 0, Y: 1},
			Normal:              roadnet.Point2{X: 1, Y: 0},
			DistanceAlongSpline: d,
			EffectiveRoadWidth:  8,
			TargetElevation:     10,
		})
		if err != nil {
			t.Fatalf("AddCrossSection: %v", err)
		}
	}
	net.Splines[nsID].TotalLengthM = 50

	return net, ewID, nsID
}

func TestDetectJunctionsFindsIntersection(t *testing.T) {
	net, ewID, nsID := buildPerpendicularSplines(t)
	cfg := Config{DetectionRadiusM: 5}
	ids := DetectJunctions(net, cfg, nil)
	if len(ids) != 1 {
		t.Fatalf("got %d junctions, want 1", len(ids))
	}
	j := net.Junctions[ids[0]]
	if len(j.MemberSplineIDs) != 2 {
		t.Fatalf("got %d member splines, want 2", len(j.MemberSplineIDs))
	}
	found := map[roadnet.SplineIndex]bool{}
	for _, id := range j.MemberSplineIDs {
		found[id] = true
	}
	if !found[ewID] || !found[nsID] {
		t.Fatal("expected both splines as junction members")
	}
}

func TestHarmonizeBlendsAcrossJunctionAndRecoversAtDistance(t *testing.T) {
	net, _, _ := buildPerpendicularSplines(t)
	cfg := Config{
		DetectionRadiusM:            5,
		BlendDistanceM:              20,
		BlendFunction:               BlendCosine,
		EnableJunctionHarmonization: true,
	}
	ids := DetectJunctions(net, cfg, nil)
	Harmonize(net, ids, cfg)

	j := net.Junctions[ids[0]]
	if j.HarmonizedElevation == nil {
		t.Fatal("expected HarmonizedElevation to be set")
	}
	// Equal-length splines -> weighted mean of 0 and 10 is 5.
	if math.Abs(*j.HarmonizedElevation-5) > 1e-9 {
		t.Fatalf("harmonized elevation = %v, want 5", *j.HarmonizedElevation)
	}

	for _, s := range net.Splines {
		center := nearestEndpoint(net, &net.Splines[s.ID], j.LocationXY)
		if math.Abs(center.TargetElevation-5) > 1e-3 {
			t.Fatalf("spline %d elevation at junction = %v, want ~5", s.ID, center.TargetElevation)
		}

		// The far endpoint, 50m away (beyond BlendDistanceM=20), must
		// have recovered its own pre-harmonization target.
		far := &net.CrossSections[s.CrossSections[len(s.CrossSections)-1]]
		if far == center {
			far = &net.CrossSections[s.CrossSections[0]]
		}
		var want float64
		if s.ID == 0 {
			want = 0
		} else {
			want = 10
		}
		if math.Abs(far.TargetElevation-want) > 1e-3 {
			t.Fatalf("spline %d far endpoint = %v, want %v", s.ID, far.TargetElevation, want)
		}
	}
}

func TestHarmonizeSkippedWhenDisabled(t *testing.T) {
	net, _, _ := buildPerpendicularSplines(t)
	cfg := Config{DetectionRadiusM: 5, BlendDistanceM: 20, EnableJunctionHarmonization: false}
	ids := DetectJunctions(net, cfg, nil)
	Harmonize(net, ids, cfg)
	if net.Junctions[ids[0]].HarmonizedElevation != nil {
		t.Fatal("expected no harmonization when disabled")
	}
}

func TestOSMHintTakesPriorityOverCentroid(t *testing.T) {
	net, _, _ := buildPerpendicularSplines(t)
	hint := roadnet.JunctionHint{Location: roadnet.Point2{X: 51, Y: 49}}
	ids := DetectJunctions(net, Config{DetectionRadiusM: 5}, []roadnet.JunctionHint{hint})
	j := net.Junctions[ids[0]]
	if !j.FromOSMHint {
		t.Fatal("expected FromOSMHint to be true")
	}
	if j.LocationXY != hint.Location {
		t.Fatalf("got location %v, want hint location %v", j.LocationXY, hint.Location)
	}
}

func TestBlendFunctionEvalEndpoints(t *testing.T) {
	for _, fn := range []BlendFunction{BlendLinear, BlendCosine, BlendCubic, BlendQuintic} {
		if v := fn.Eval(0); math.Abs(v) > 1e-9 {
			t.Fatalf("%v.Eval(0) = %v, want 0", fn, v)
		}
		if v := fn.Eval(1); math.Abs(v-1) > 1e-9 {
			t.Fatalf("%v.Eval(1) = %v, want 1", fn, v)
		}
	}
}

func TestApplyEndpointTaperBlendsUnjunctionedEndpoint(t *testing.T) {
	net := roadnet.NewUnifiedRoadNetwork()
	id := net.AddSpline(roadnet.Spline{Polyline: []roadnet.Point2{{0, 0}, {40, 0}}})
	for i := 0; i <= 4; i++ {
		d := float64(i) * 10
		net.AddCrossSection(roadnet.CrossSection{
			OwnerSplineID:           id,
			LocalIndex:              i,
			CenterXY:                roadnet.Point2{X: d, Y: 0},
			Tangent:                 roadnet.Point2{X: 1, Y: 0},
			Normal:                  roadnet.Point2{X: 0, Y: -1},
			DistanceAlongSpline:     d,
			EffectiveRoadWidth:      8,
			TargetElevation:         20,
			SampledTerrainElevation: 0,
		})
	}
	cfg := Config{
		EnableEndpointTaper:          true,
		EndpointTaperDistanceM:       15,
		EndpointTerrainBlendStrength: 1.0,
	}
	ApplyEndpointTaper(net, map[roadnet.SplineIndex]bool{}, cfg)

	first := net.CrossSections[net.Splines[id].CrossSections[0]]
	if math.Abs(first.TargetElevation-0) > 1e-9 {
		t.Fatalf("first cross-section target = %v, want 0 (full terrain blend at the endpoint)", first.TargetElevation)
	}
	middle := net.CrossSections[net.Splines[id].CrossSections[2]]
	if math.Abs(middle.TargetElevation-20) > 1e-9 {
		t.Fatalf("middle cross-section target = %v, want unchanged 20", middle.TargetElevation)
	}
}
