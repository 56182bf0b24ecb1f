package roadmesh

import (
	"math"
	"testing"

	"github.com/woozymasta/terra-road-forge/internal/roadnet"
)

func straightSections(n int, width float64) []roadnet.CrossSection {
	out := make([]roadnet.CrossSection, n)
	for i := 0; i < n; i++ {
		d := float64(i) * 10
		out[i] = roadnet.CrossSection{
			CenterXY:            roadnet.Point2{X: d, Y: 0},
			Tangent:             roadnet.Point2{X: 1, Y: 0},
			Normal:              roadnet.Point2{X: 0, Y: 1},
			DistanceAlongSpline: d,
			EffectiveRoadWidth:  width,
			TargetElevation:     5,
		}
	}
	return out
}

func TestBuildTwoVertexRibbonTriangleCount(t *testing.T) {
	sections := straightSections(5, 8)
	cfg := Config{TextureRepeatMetersU: 10, BaseHeightM: 100}
	mesh := Build(sections, roadnet.Point2{}, cfg)

	// 4 sections of ribbon * 2 triangles/quad = 8 triangles.
	if got, want := mesh.NumTriangles(), 8; got != want {
		t.Fatalf("got %d triangles, want %d", got, want)
	}
}

func TestBuildFourVertexRibbonTriangleCount(t *testing.T) {
	sections := straightSections(3, 8)
	cfg := Config{TextureRepeatMetersU: 10, BaseHeightM: 0, UseInnerProfile: true, InnerProfileWidthFrac: 0.5}
	mesh := Build(sections, roadnet.Point2{}, cfg)

	// 2 spans * 3 quads (left-inner, inner-inner, inner-right) * 2 tris.
	if got, want := mesh.NumTriangles(), 2*3*2; got != want {
		t.Fatalf("got %d triangles, want %d", got, want)
	}
}

func TestBuildAppliesBaseHeightOffset(t *testing.T) {
	sections := straightSections(2, 8)
	cfg := Config{TextureRepeatMetersU: 10, BaseHeightM: 100}
	mesh := Build(sections, roadnet.Point2{}, cfg)

	for _, v := range mesh.Vertices {
		if math.Abs(v.Position.Z-105) > 1e-9 {
			t.Fatalf("vertex Z = %v, want 105 (target 5 + base 100)", v.Position.Z)
		}
	}
}

func TestBuildAppliesBankAngle(t *testing.T) {
	sections := straightSections(2, 8)
	for i := range sections {
		sections[i].BankAngleRad = math.Pi / 4 // 45 degrees
	}
	cfg := Config{TextureRepeatMetersU: 10}
	mesh := Build(sections, roadnet.Point2{}, cfg)

	// FlatNormals gives every triangle its own three vertices; the first
	// triangle is (ringA.left, ringB.left, ringB.right), so [0] is a
	// left-edge vertex and [2] a right-edge vertex.
	// left edge raised, right edge lowered, by half_width*tan(45) = 4.
	left := mesh.Vertices[0]
	right := mesh.Vertices[2]
	if math.Abs(left.Position.Z-9) > 1e-6 {
		t.Fatalf("left edge Z = %v, want 9 (5 + 4)", left.Position.Z)
	}
	if math.Abs(right.Position.Z-1) > 1e-6 {
		t.Fatalf("right edge Z = %v, want 1 (5 - 4)", right.Position.Z)
	}
}

func TestBuildWorldOriginOffset(t *testing.T) {
	sections := straightSections(2, 8)
	cfg := Config{TextureRepeatMetersU: 10}
	mesh := Build(sections, roadnet.Point2{X: 5, Y: 0}, cfg)
	if math.Abs(mesh.Vertices[0].Position.X-(-5)) > 1e-9 {
		t.Fatalf("got X = %v, want -5 after origin offset", mesh.Vertices[0].Position.X)
	}
}

func TestBuildShouldersEmitsStrips(t *testing.T) {
	sections := straightSections(3, 8)
	cfg := Config{TextureRepeatMetersU: 10, IncludeShoulders: true, ShoulderWidthM: 2, ShoulderDropM: 0.3}
	mesh := BuildShoulders(sections, roadnet.Point2{}, cfg)
	if mesh.NumTriangles() == 0 {
		t.Fatal("expected shoulder strip triangles")
	}
}

func TestBuildShouldersSkippedWhenDisabled(t *testing.T) {
	sections := straightSections(3, 8)
	cfg := Config{TextureRepeatMetersU: 10, IncludeShoulders: false}
	mesh := BuildShoulders(sections, roadnet.Point2{}, cfg)
	if mesh.NumTriangles() != 0 {
		t.Fatal("expected no triangles when shoulders disabled")
	}
}

func TestBuildCurbsEmitsStrips(t *testing.T) {
	sections := straightSections(3, 8)
	cfg := Config{TextureRepeatMetersU: 10, IncludeCurbs: true, CurbWidthM: 0.3, CurbRiseM: 0.15}
	mesh := BuildCurbs(sections, roadnet.Point2{}, cfg)
	if mesh.NumTriangles() == 0 {
		t.Fatal("expected curb strip triangles")
	}
}

func TestBuildCurbsRiseAboveRoadSurface(t *testing.T) {
	sections := straightSections(2, 8)
	cfg := Config{TextureRepeatMetersU: 10, IncludeCurbs: true, CurbWidthM: 0.3, CurbRiseM: 0.15}
	mesh := BuildCurbs(sections, roadnet.Point2{}, cfg)
	for _, v := range mesh.Vertices {
		if v.Position.Z < 5-1e-9 {
			t.Fatalf("curb vertex Z = %v, want >= road target elevation 5", v.Position.Z)
		}
	}
}

func TestBuildCurbsSkippedWhenDisabled(t *testing.T) {
	sections := straightSections(3, 8)
	cfg := Config{TextureRepeatMetersU: 10, IncludeCurbs: false}
	mesh := BuildCurbs(sections, roadnet.Point2{}, cfg)
	if mesh.NumTriangles() != 0 {
		t.Fatal("expected no triangles when curbs disabled")
	}
}

func TestBuildTooFewSectionsYieldsEmptyMesh(t *testing.T) {
	mesh := Build(straightSections(1, 8), roadnet.Point2{}, Config{TextureRepeatMetersU: 10})
	if mesh.NumTriangles() != 0 {
		t.Fatal("expected empty mesh for a single cross-section")
	}
}
