package roadnet

import (
	"math"
	"testing"

	"github.com/woozymasta/terra-road-forge/internal/raster"
)

func straightRoadMask(size, y0, y1, x0, x1 int) *raster.Mask {
	m := raster.NewMask(size)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.Set(x, y, true)
		}
	}
	return m
}

func TestSkeletonizeStraightRoadStaysConnected(t *testing.T) {
	m := straightRoadMask(64, 28, 36, 4, 60)
	skel := Skeletonize(m)
	if skel.Count() == 0 {
		t.Fatal("expected a non-empty skeleton for a straight road mask")
	}
}

func TestExtractFromMaskProducesASpline(t *testing.T) {
	m := straightRoadMask(64, 28, 36, 4, 60)
	cfg := ExtractConfig{
		JunctionAngleThresholdDeg:       30,
		BridgeEndpointMaxDistancePixels: 2,
		DensifyMaxSpacingPixels:         4,
		SimplifyTolerancePixels:         1,
		MinPathLengthPixels:             10,
		Tension:                         0,
		Continuity:                      0,
		Bias:                            0,
	}
	splines := ExtractFromMask(m, cfg)
	if len(splines) == 0 {
		t.Fatal("expected at least one extracted spline from a straight road mask")
	}
}

func TestSimplifyDouglasPeuckerKeepsEndpoints(t *testing.T) {
	line := []Point2{{0, 0}, {1, 0.01}, {2, -0.01}, {3, 0}, {10, 0}}
	out := simplifyDouglasPeucker(line, 0.5)
	if out[0] != line[0] || out[len(out)-1] != line[len(line)-1] {
		t.Fatal("simplify must preserve both endpoints")
	}
	if len(out) >= len(line) {
		t.Fatalf("expected simplification to reduce point count, got %d from %d", len(out), len(line))
	}
}

func TestDetectRoundaboutOnCircle(t *testing.T) {
	const n = 32
	pts := make([]Point2, 0, n+1)
	for i := 0; i <= n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Point2{X: 10 * math.Cos(theta), Y: 10 * math.Sin(theta)})
	}
	if !detectRoundabout(pts) {
		t.Fatal("expected a closed near-circular polyline to be detected as a roundabout")
	}
}

func TestDetectRoundaboutOnStraightLine(t *testing.T) {
	line := []Point2{{0, 0}, {10, 0}, {20, 0}, {30, 0}}
	if detectRoundabout(line) {
		t.Fatal("a straight line must not be detected as a roundabout")
	}
}
