package meshbuild

import "math"

// PathFrame is one sample along an extrusion path: position plus the
// local tangent/right/up basis the profile is swept with, per spec.md
// §4.9's ribbon construction (tangent from spline, normal from
// cross-section, up completes the orthonormal frame).
type PathFrame struct {
	Position Vec3
	Tangent  Vec3
	Right    Vec3
	Up       Vec3
}

// OrthonormalFrame builds a PathFrame from a position, a forward
// tangent, and an approximate up vector, re-orthogonalizing right/up
// via cross products so small input error doesn't accumulate.
func OrthonormalFrame(position, tangent, approxUp Vec3) PathFrame {
	t := tangent.Normalize()
	right := t.Cross(approxUp).Normalize()
	if right.Length() < 1e-9 {
		right = t.Cross(Vec3{0, 0, 1}).Normalize()
	}
	up := right.Cross(t).Normalize()
	return PathFrame{Position: position, Tangent: t, Right: right, Up: up}
}

// Extrude sweeps a 2-D profile (in the right/up plane, typically
// centered on zero) along a sequence of path frames, connecting
// consecutive rings into CCW quads. vOf maps a path sample index to a V
// texture coordinate (e.g. arc length); profile[i].U is used directly as
// the U coordinate.
type ProfilePoint struct {
	Right, Up float64
	U         float64
}

func Extrude(profile []ProfilePoint, path []PathFrame, vOf func(pathIndex int) float64) *Mesh {
	m := New(len(profile)*len(path), len(profile)*len(path)*2)
	if len(profile) == 0 || len(path) == 0 {
		return m
	}

	ringStart := make([]int, len(path))
	for pi, frame := range path {
		v := vOf(pi)
		ringStart[pi] = len(m.Vertices)
		for _, pp := range profile {
			pos := frame.Position.Add(frame.Right.Scale(pp.Right)).Add(frame.Up.Scale(pp.Up))
			m.AddVertex(Vertex{Position: pos, UV: UV{U: pp.U, V: v}})
		}
	}

	for pi := 0; pi+1 < len(path); pi++ {
		a := ringStart[pi]
		b := ringStart[pi+1]
		for i := 0; i+1 < len(profile); i++ {
			m.AddQuad(a+i, a+i+1, b+i+1, b+i)
		}
	}

	m.SmoothNormals()
	return m
}

// Loft connects two profile rings of equal length directly (no
// intermediate samples), used for short transition geometry like
// shoulder end caps.
func Loft(ringA, ringB []Vec3) *Mesh {
	n := len(ringA)
	if n != len(ringB) || n < 2 {
		return New(0, 0)
	}
	m := New(2*n, 2*n)
	aStart := 0
	for _, p := range ringA {
		m.AddVertex(Vertex{Position: p})
	}
	bStart := n
	for _, p := range ringB {
		m.AddVertex(Vertex{Position: p})
	}
	for i := 0; i+1 < n; i++ {
		m.AddQuad(aStart+i, aStart+i+1, bStart+i+1, bStart+i)
	}
	m.SmoothNormals()
	return m
}

// Box returns an axis-aligned box mesh centered at the origin with the
// given half-extents, flat-shaded.
func Box(hx, hy, hz float64) *Mesh {
	corners := [8]Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	faces := [6][4]int{
		{0, 3, 2, 1}, // bottom
		{4, 5, 6, 7}, // top
		{0, 1, 5, 4}, // front
		{2, 3, 7, 6}, // back
		{1, 2, 6, 5}, // right
		{3, 0, 4, 7}, // left
	}
	m := New(24, 12)
	for _, f := range faces {
		base := len(m.Vertices)
		for _, ci := range f {
			m.AddVertex(Vertex{Position: corners[ci]})
		}
		m.AddQuad(base, base+1, base+2, base+3)
	}
	m.FlatNormals()
	return m
}

// Cylinder returns a capped cylinder along Z with the given radius,
// height, and radial segment count, centered at the origin.
func Cylinder(radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	m := New(segments*4, segments*4)
	half := height / 2

	bottomCenter := m.AddVertex(Vertex{Position: Vec3{0, 0, -half}, Normal: Vec3{0, 0, -1}})
	topCenter := m.AddVertex(Vertex{Position: Vec3{0, 0, half}, Normal: Vec3{0, 0, 1}})

	bottomRing := make([]int, segments)
	topRing := make([]int, segments)
	sideBottom := make([]int, segments)
	sideTop := make([]int, segments)

	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		x, y := radius*math.Cos(theta), radius*math.Sin(theta)
		normal := Vec3{x, y, 0}.Normalize()

		bottomRing[i] = m.AddVertex(Vertex{Position: Vec3{x, y, -half}, Normal: Vec3{0, 0, -1}})
		topRing[i] = m.AddVertex(Vertex{Position: Vec3{x, y, half}, Normal: Vec3{0, 0, 1}})
		sideBottom[i] = m.AddVertex(Vertex{Position: Vec3{x, y, -half}, Normal: normal})
		sideTop[i] = m.AddVertex(Vertex{Position: Vec3{x, y, half}, Normal: normal})
	}

	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		m.AddTriangle(bottomCenter, bottomRing[j], bottomRing[i])
		m.AddTriangle(topCenter, topRing[i], topRing[j])
		m.AddQuad(sideBottom[i], sideBottom[j], sideTop[j], sideTop[i])
	}

	return m
}

// Sphere returns a UV sphere of the given radius with latSegments
// latitude bands and lonSegments longitude bands.
func Sphere(radius float64, latSegments, lonSegments int) *Mesh {
	if latSegments < 2 {
		latSegments = 2
	}
	if lonSegments < 3 {
		lonSegments = 3
	}
	m := New((latSegments+1)*(lonSegments+1), latSegments*lonSegments*2)

	grid := make([][]int, latSegments+1)
	for lat := 0; lat <= latSegments; lat++ {
		grid[lat] = make([]int, lonSegments+1)
		theta := math.Pi * float64(lat) / float64(latSegments)
		for lon := 0; lon <= lonSegments; lon++ {
			phi := 2 * math.Pi * float64(lon) / float64(lonSegments)
			x := radius * math.Sin(theta) * math.Cos(phi)
			y := radius * math.Sin(theta) * math.Sin(phi)
			z := radius * math.Cos(theta)
			pos := Vec3{x, y, z}
			grid[lat][lon] = m.AddVertex(Vertex{
				Position: pos,
				Normal:   pos.Normalize(),
				UV:       UV{U: float64(lon) / float64(lonSegments), V: float64(lat) / float64(latSegments)},
			})
		}
	}

	for lat := 0; lat < latSegments; lat++ {
		for lon := 0; lon < lonSegments; lon++ {
			a := grid[lat][lon]
			b := grid[lat][lon+1]
			c := grid[lat+1][lon+1]
			d := grid[lat+1][lon]
			m.AddQuad(a, d, c, b)
		}
	}

	return m
}

// Plane returns a flat, subdivided quad in the XY plane centered at the
// origin, normal +Z, with segX×segY cells.
func Plane(width, height float64, segX, segY int) *Mesh {
	if segX < 1 {
		segX = 1
	}
	if segY < 1 {
		segY = 1
	}
	m := New((segX+1)*(segY+1), segX*segY*2)
	grid := make([][]int, segY+1)
	for j := 0; j <= segY; j++ {
		grid[j] = make([]int, segX+1)
		v := float64(j) / float64(segY)
		y := (v - 0.5) * height
		for i := 0; i <= segX; i++ {
			u := float64(i) / float64(segX)
			x := (u - 0.5) * width
			grid[j][i] = m.AddVertex(Vertex{
				Position: Vec3{x, y, 0},
				Normal:   Vec3{0, 0, 1},
				UV:       UV{U: u, V: v},
			})
		}
	}
	for j := 0; j < segY; j++ {
		for i := 0; i < segX; i++ {
			a := grid[j][i]
			b := grid[j][i+1]
			c := grid[j+1][i+1]
			d := grid[j+1][i]
			m.AddQuad(a, b, c, d)
		}
	}
	return m
}
