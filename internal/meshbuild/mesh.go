// Package meshbuild is the shared vertex/triangle accumulator used by the
// road mesh builder and the Collada exporter: a single growable
// Vertex/Triangle buffer plus extrude, loft, primitive, and normal-
// recomputation helpers, grounded on the terrain-mesh vertex/index
// accumulator idiom (position + normal + UV per vertex, a flat index
// buffer, position-keyed normal smoothing).
package meshbuild

import "math"

// Vec3 is a 3-D vector in the pipeline's Z-up working space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3    { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3    { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < 1e-12 {
		return Vec3{0, 0, 1}
	}
	return v.Scale(1 / l)
}

// UV is a 2-D texture coordinate.
type UV struct{ U, V float64 }

// Vertex is one mesh sample: position, normal, and texture coordinate.
type Vertex struct {
	Position Vec3
	Normal   Vec3
	UV       UV
}

// Mesh is a growable vertex buffer plus a flat triangle index buffer,
// three indices per triangle, CCW winding.
type Mesh struct {
	Vertices  []Vertex
	Triangles []int
}

// New returns an empty mesh with vertex/triangle capacity hints.
func New(vertexHint, triHint int) *Mesh {
	return &Mesh{
		Vertices:  make([]Vertex, 0, vertexHint),
		Triangles: make([]int, 0, triHint*3),
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v Vertex) int {
	m.Vertices = append(m.Vertices, v)
	return len(m.Vertices) - 1
}

// AddTriangle appends one CCW triangle by vertex index.
func (m *Mesh) AddTriangle(a, b, c int) {
	m.Triangles = append(m.Triangles, a, b, c)
}

// AddQuad appends two CCW triangles covering quad a-b-c-d (a,b,c,d in
// ring order).
func (m *Mesh) AddQuad(a, b, c, d int) {
	m.AddTriangle(a, b, c)
	m.AddTriangle(a, c, d)
}

// NumTriangles returns the triangle count.
func (m *Mesh) NumTriangles() int { return len(m.Triangles) / 3 }

// Merge appends another mesh's vertices and triangles, offsetting indices.
func (m *Mesh) Merge(other *Mesh) {
	base := len(m.Vertices)
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, idx := range other.Triangles {
		m.Triangles = append(m.Triangles, idx+base)
	}
}

// Transform applies an affine 4x4-equivalent (rotation+translation, no
// scale) to every vertex: rot is applied to position and normal, trans
// only to position.
func (m *Mesh) Transform(rot func(Vec3) Vec3, trans Vec3) {
	for i := range m.Vertices {
		m.Vertices[i].Position = rot(m.Vertices[i].Position).Add(trans)
		m.Vertices[i].Normal = rot(m.Vertices[i].Normal).Normalize()
	}
}

// FlatNormals recomputes one normal per triangle and assigns it to all
// three corner vertices by duplicating vertices (no sharing), giving hard
// edges. Use for debug/box-like geometry.
func (m *Mesh) FlatNormals() {
	verts := make([]Vertex, 0, len(m.Triangles))
	for t := 0; t < m.NumTriangles(); t++ {
		ia, ib, ic := m.Triangles[t*3], m.Triangles[t*3+1], m.Triangles[t*3+2]
		a, b, c := m.Vertices[ia].Position, m.Vertices[ib].Position, m.Vertices[ic].Position
		n := b.Sub(a).Cross(c.Sub(a)).Normalize()
		for k, idx := range [3]int{ia, ib, ic} {
			v := m.Vertices[idx]
			v.Normal = n
			verts = append(verts, v)
			m.Triangles[t*3+k] = len(verts) - 1
		}
	}
	m.Vertices = verts
}

// SmoothNormals averages face normals at every shared vertex position,
// the same position-keyed accumulation the teacher pack's terrain
// smoothing pass uses.
func (m *Mesh) SmoothNormals() {
	const eps = 1e-6
	key := func(p Vec3) [3]int64 {
		return [3]int64{
			int64(math.Round(p.X / eps)),
			int64(math.Round(p.Y / eps)),
			int64(math.Round(p.Z / eps)),
		}
	}

	sums := make(map[[3]int64]Vec3, len(m.Vertices))
	faceNormal := func(t int) Vec3 {
		ia, ib, ic := m.Triangles[t*3], m.Triangles[t*3+1], m.Triangles[t*3+2]
		a, b, c := m.Vertices[ia].Position, m.Vertices[ib].Position, m.Vertices[ic].Position
		return b.Sub(a).Cross(c.Sub(a)).Normalize()
	}

	for t := 0; t < m.NumTriangles(); t++ {
		n := faceNormal(t)
		for _, idx := range m.Triangles[t*3 : t*3+3] {
			k := key(m.Vertices[idx].Position)
			sums[k] = sums[k].Add(n)
		}
	}
	for k, v := range sums {
		sums[k] = v.Normalize()
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = sums[key(m.Vertices[i].Position)]
	}
}

// Bounds returns the axis-aligned bounding box of the mesh's vertices.
func (m *Mesh) Bounds() (min, max Vec3) {
	if len(m.Vertices) == 0 {
		return Vec3{}, Vec3{}
	}
	min = m.Vertices[0].Position
	max = m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		p := v.Position
		min = Vec3{math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z)}
		max = Vec3{math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z)}
	}
	return min, max
}
