package meshbuild

import (
	"math"
	"testing"
)

func TestAddQuadWindingCCW(t *testing.T) {
	m := New(4, 2)
	a := m.AddVertex(Vertex{Position: Vec3{0, 0, 0}})
	b := m.AddVertex(Vertex{Position: Vec3{1, 0, 0}})
	c := m.AddVertex(Vertex{Position: Vec3{1, 1, 0}})
	d := m.AddVertex(Vertex{Position: Vec3{0, 1, 0}})
	m.AddQuad(a, b, c, d)

	if m.NumTriangles() != 2 {
		t.Fatalf("got %d triangles, want 2", m.NumTriangles())
	}

	m.FlatNormals()
	for _, v := range m.Vertices {
		if v.Normal.Z <= 0 {
			t.Fatalf("expected +Z-facing normal for CCW XY quad, got %v", v.Normal)
		}
	}
}

func TestBoxBounds(t *testing.T) {
	m := Box(1, 2, 3)
	min, max := m.Bounds()
	want := Vec3{1, 2, 3}
	if math.Abs(max.X-want.X) > 1e-9 || math.Abs(max.Y-want.Y) > 1e-9 || math.Abs(max.Z-want.Z) > 1e-9 {
		t.Fatalf("max = %v, want %v", max, want)
	}
	if math.Abs(min.X+want.X) > 1e-9 {
		t.Fatalf("min.X = %v, want %v", min.X, -want.X)
	}
}

func TestExtrudeStraightRibbonQuadCount(t *testing.T) {
	profile := []ProfilePoint{{Right: -1, Up: 0, U: 0}, {Right: 1, Up: 0, U: 1}}
	path := []PathFrame{
		OrthonormalFrame(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 0, 1}),
		OrthonormalFrame(Vec3{0, 10, 0}, Vec3{1, 0, 0}, Vec3{0, 0, 1}),
		OrthonormalFrame(Vec3{0, 20, 0}, Vec3{1, 0, 0}, Vec3{0, 0, 1}),
	}
	m := Extrude(profile, path, func(i int) float64 { return float64(i) * 10 })

	wantTris := (len(path) - 1) * (len(profile) - 1) * 2
	if m.NumTriangles() != wantTris {
		t.Fatalf("got %d triangles, want %d", m.NumTriangles(), wantTris)
	}
	if len(m.Vertices) != len(profile)*len(path) {
		t.Fatalf("got %d vertices, want %d", len(m.Vertices), len(profile)*len(path))
	}
}

func TestSmoothNormalsAveragesSharedVertex(t *testing.T) {
	// Two coplanar triangles sharing an edge should end up with identical
	// (averaged) normals on every vertex, since both faces share the same
	// plane normal.
	m := New(4, 2)
	a := m.AddVertex(Vertex{Position: Vec3{0, 0, 0}})
	b := m.AddVertex(Vertex{Position: Vec3{1, 0, 0}})
	c := m.AddVertex(Vertex{Position: Vec3{1, 1, 0}})
	d := m.AddVertex(Vertex{Position: Vec3{0, 1, 0}})
	m.AddQuad(a, b, c, d)
	m.SmoothNormals()

	n0 := m.Vertices[0].Normal
	for _, v := range m.Vertices[1:] {
		if math.Abs(v.Normal.X-n0.X) > 1e-9 || math.Abs(v.Normal.Y-n0.Y) > 1e-9 || math.Abs(v.Normal.Z-n0.Z) > 1e-9 {
			t.Fatalf("smoothed normals disagree: %v vs %v", v.Normal, n0)
		}
	}
}

func TestMergeOffsetsIndices(t *testing.T) {
	a := Box(1, 1, 1)
	b := Box(1, 1, 1)
	combined := New(0, 0)
	combined.Merge(a)
	combined.Merge(b)

	if len(combined.Vertices) != len(a.Vertices)+len(b.Vertices) {
		t.Fatalf("vertex count = %d, want %d", len(combined.Vertices), len(a.Vertices)+len(b.Vertices))
	}
	for _, idx := range combined.Triangles {
		if idx < 0 || idx >= len(combined.Vertices) {
			t.Fatalf("triangle index %d out of range [0,%d)", idx, len(combined.Vertices))
		}
	}
}
