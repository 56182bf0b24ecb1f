// Package roadmesh builds the engine-ready ribbon mesh for one spline's
// ordered cross-sections, per spec.md §4.10. It reuses
// internal/meshbuild's accumulator rather than a dedicated builder
// hierarchy.
package roadmesh

import (
	"math"

	"github.com/woozymasta/terra-road-forge/internal/meshbuild"
	"github.com/woozymasta/terra-road-forge/internal/roadnet"
)

// Config bundles the C11 parameters from the configuration surface.
type Config struct {
	BaseHeightM             float64
	TextureRepeatMetersU    float64
	TextureRepeatMetersV    float64
	CenterUV                bool // V centered (-0.5..0.5) vs 0..1
	IncludeShoulders        bool
	ShoulderWidthM          float64
	ShoulderDropM           float64
	IncludeCurbs            bool
	CurbWidthM              float64
	CurbRiseM               float64
	UseInnerProfile         bool // four vertices per section vs two
	InnerProfileWidthFrac   float64 // fraction of half-width that is "inner"
	SmoothNormals           bool
}

// ring is one cross-section's emitted vertices, left to right.
type ring struct {
	points []meshbuild.Vertex
}

// Build emits a ribbon mesh connecting sections in order, in BeamNG
// world coordinates (origin at terrain center, elevation offset by
// BaseHeightM), Z-up. The Collada exporter performs the Z-up -> Y-up
// conversion, not this package.
func Build(sections []roadnet.CrossSection, worldOriginOffset roadnet.Point2, cfg Config) *meshbuild.Mesh {
	mesh := meshbuild.New(len(sections)*4, (len(sections)-1)*6)
	if len(sections) < 2 {
		return mesh
	}

	rings := make([]ring, len(sections))
	for i, cs := range sections {
		rings[i] = buildRing(cs, worldOriginOffset, cfg)
	}

	for i := 0; i+1 < len(rings); i++ {
		connectRings(mesh, rings[i], rings[i+1])
	}

	if cfg.SmoothNormals {
		mesh.SmoothNormals()
	} else {
		mesh.FlatNormals()
	}
	return mesh
}

// buildRing emits the cross-section ring for one CrossSection: two
// vertices (edges) or four (edges plus inner profile) per spec.md
// §4.10, with bank-angle rotation around the tangent axis.
func buildRing(cs roadnet.CrossSection, worldOriginOffset roadnet.Point2, cfg Config) ring {
	half := cs.EffectiveRoadWidth / 2
	centerXY := meshbuild.Vec3{X: cs.CenterXY.X - worldOriginOffset.X, Y: cs.CenterXY.Y - worldOriginOffset.Y}
	normal := meshbuild.Vec3{X: cs.Normal.X, Y: cs.Normal.Y, Z: 0}

	leftElev, rightElev := bankedEdgeElevations(cs)
	v := cs.DistanceAlongSpline / cfg.TextureRepeatMetersU

	left := edgePosition(centerXY, normal, half, leftElev, cfg.BaseHeightM)
	right := edgePosition(centerXY, normal, -half, rightElev, cfg.BaseHeightM)
	uvLeft, uvRight := edgeUV(v, cfg)

	if !cfg.UseInnerProfile {
		return ring{points: []meshbuild.Vertex{
			{Position: left, UV: uvLeft},
			{Position: right, UV: uvRight},
		}}
	}

	frac := cfg.InnerProfileWidthFrac
	innerHalf := half * frac
	leftInnerElev := cs.TargetElevation + (leftElev-cs.TargetElevation)*frac
	rightInnerElev := cs.TargetElevation + (rightElev-cs.TargetElevation)*frac
	leftInner := edgePosition(centerXY, normal, innerHalf, leftInnerElev, cfg.BaseHeightM)
	rightInner := edgePosition(centerXY, normal, -innerHalf, rightInnerElev, cfg.BaseHeightM)
	uvLeftInner, uvRightInner := innerUV(v, cfg)

	return ring{points: []meshbuild.Vertex{
		{Position: left, UV: uvLeft},
		{Position: leftInner, UV: uvLeftInner},
		{Position: rightInner, UV: uvRightInner},
		{Position: right, UV: uvRight},
	}}
}

func edgePosition(centerXY, normal meshbuild.Vec3, dist, elevation, baseHeight float64) meshbuild.Vec3 {
	o := normal.Scale(dist)
	return meshbuild.Vec3{X: centerXY.X + o.X, Y: centerXY.Y + o.Y, Z: elevation + baseHeight}
}

// bankedEdgeElevations applies the bank angle by rotating the road
// surface's cross-sectional profile around the tangent axis: the edges
// rise and fall by half_width*tan(bank) relative to the centerline.
func bankedEdgeElevations(cs roadnet.CrossSection) (left, right float64) {
	rise := (cs.EffectiveRoadWidth / 2) * math.Tan(cs.BankAngleRad)
	left = cs.TargetElevation + rise
	right = cs.TargetElevation - rise
	if cs.ConstrainedLeftEdgeElev != nil {
		left = *cs.ConstrainedLeftEdgeElev
	}
	if cs.ConstrainedRightEdgeElev != nil {
		right = *cs.ConstrainedRightEdgeElev
	}
	return left, right
}

func worldToMesh(xy roadnet.Point2, origin roadnet.Point2, elevation, baseHeight float64) meshbuild.Vec3 {
	return meshbuild.Vec3{X: xy.X - origin.X, Y: xy.Y - origin.Y, Z: elevation + baseHeight}
}

func edgeUV(v float64, cfg Config) (left, right meshbuild.UV) {
	if cfg.CenterUV {
		return meshbuild.UV{U: v, V: -0.5}, meshbuild.UV{U: v, V: 0.5}
	}
	return meshbuild.UV{U: v, V: 0}, meshbuild.UV{U: v, V: 1}
}

func innerUV(v float64, cfg Config) (left, right meshbuild.UV) {
	frac := cfg.InnerProfileWidthFrac
	if cfg.CenterUV {
		return meshbuild.UV{U: v, V: -0.5 * (1 - frac)}, meshbuild.UV{U: v, V: 0.5 * (1 - frac)}
	}
	return meshbuild.UV{U: v, V: frac}, meshbuild.UV{U: v, V: 1 - frac}
}

// connectRings emits CCW quads (as seen from above, +Z up) joining each
// corresponding pair of vertices between two adjacent rings.
func connectRings(mesh *meshbuild.Mesh, a, b ring) {
	n := len(a.points)
	if len(b.points) < n {
		n = len(b.points)
	}
	idxA := make([]int, n)
	idxB := make([]int, n)
	for i := 0; i < n; i++ {
		idxA[i] = mesh.AddVertex(a.points[i])
		idxB[i] = mesh.AddVertex(b.points[i])
	}
	for i := 0; i+1 < n; i++ {
		// a[i] -- a[i+1]
		// |        |
		// b[i] -- b[i+1]
		mesh.AddQuad(idxA[i], idxB[i], idxB[i+1], idxA[i+1])
	}
}

// BuildShoulders emits parallel ribbon strips at ShoulderWidthM beyond
// each road edge, dropped by ShoulderDropM, per spec.md §4.10's optional
// shoulder strips.
func BuildShoulders(sections []roadnet.CrossSection, worldOriginOffset roadnet.Point2, cfg Config) *meshbuild.Mesh {
	mesh := meshbuild.New(len(sections)*4, (len(sections)-1)*12)
	if !cfg.IncludeShoulders || len(sections) < 2 {
		return mesh
	}

	prevLeftOuter, prevLeftInner := meshbuild.Vertex{}, meshbuild.Vertex{}
	prevRightOuter, prevRightInner := meshbuild.Vertex{}, meshbuild.Vertex{}
	has := false

	for _, cs := range sections {
		half := cs.EffectiveRoadWidth / 2
		center := worldToMesh(cs.CenterXY, worldOriginOffset, cs.TargetElevation, cfg.BaseHeightM)
		normal := meshbuild.Vec3{X: cs.Normal.X, Y: cs.Normal.Y, Z: 0}
		v := cs.DistanceAlongSpline / cfg.TextureRepeatMetersU

		leftInnerPos := offsetAt(center, normal, half, cs.TargetElevation+cfg.BaseHeightM)
		leftOuterPos := offsetAt(center, normal, half+cfg.ShoulderWidthM, cs.TargetElevation-cfg.ShoulderDropM+cfg.BaseHeightM)
		rightInnerPos := offsetAt(center, normal, -half, cs.TargetElevation+cfg.BaseHeightM)
		rightOuterPos := offsetAt(center, normal, -(half + cfg.ShoulderWidthM), cs.TargetElevation-cfg.ShoulderDropM+cfg.BaseHeightM)

		leftInner := meshbuild.Vertex{Position: leftInnerPos, UV: meshbuild.UV{U: v, V: 0}}
		leftOuter := meshbuild.Vertex{Position: leftOuterPos, UV: meshbuild.UV{U: v, V: -1}}
		rightInner := meshbuild.Vertex{Position: rightInnerPos, UV: meshbuild.UV{U: v, V: 0}}
		rightOuter := meshbuild.Vertex{Position: rightOuterPos, UV: meshbuild.UV{U: v, V: 1}}

		if has {
			quadStrip(mesh, prevLeftInner, prevLeftOuter, leftOuter, leftInner)
			quadStrip(mesh, prevRightOuter, prevRightInner, rightInner, rightOuter)
		}
		prevLeftInner, prevLeftOuter = leftInner, leftOuter
		prevRightInner, prevRightOuter = rightInner, rightOuter
		has = true
	}

	if cfg.SmoothNormals {
		mesh.SmoothNormals()
	} else {
		mesh.FlatNormals()
	}
	return mesh
}

// BuildCurbs emits a narrow raised strip at CurbWidthM beyond each road
// edge, lifted by CurbRiseM, per spec.md §4.10's optional curb strips.
// Unlike the shoulder (which drops away from the road surface), the
// curb's outer edge sits above it.
func BuildCurbs(sections []roadnet.CrossSection, worldOriginOffset roadnet.Point2, cfg Config) *meshbuild.Mesh {
	mesh := meshbuild.New(len(sections)*4, (len(sections)-1)*12)
	if !cfg.IncludeCurbs || len(sections) < 2 {
		return mesh
	}

	prevLeftInner, prevLeftOuter := meshbuild.Vertex{}, meshbuild.Vertex{}
	prevRightInner, prevRightOuter := meshbuild.Vertex{}, meshbuild.Vertex{}
	has := false

	for _, cs := range sections {
		half := cs.EffectiveRoadWidth / 2
		center := worldToMesh(cs.CenterXY, worldOriginOffset, cs.TargetElevation, cfg.BaseHeightM)
		normal := meshbuild.Vec3{X: cs.Normal.X, Y: cs.Normal.Y, Z: 0}
		v := cs.DistanceAlongSpline / cfg.TextureRepeatMetersU

		leftInnerPos := offsetAt(center, normal, half, cs.TargetElevation+cfg.BaseHeightM)
		leftOuterPos := offsetAt(center, normal, half+cfg.CurbWidthM, cs.TargetElevation+cfg.CurbRiseM+cfg.BaseHeightM)
		rightInnerPos := offsetAt(center, normal, -half, cs.TargetElevation+cfg.BaseHeightM)
		rightOuterPos := offsetAt(center, normal, -(half + cfg.CurbWidthM), cs.TargetElevation+cfg.CurbRiseM+cfg.BaseHeightM)

		leftInner := meshbuild.Vertex{Position: leftInnerPos, UV: meshbuild.UV{U: v, V: 0}}
		leftOuter := meshbuild.Vertex{Position: leftOuterPos, UV: meshbuild.UV{U: v, V: -1}}
		rightInner := meshbuild.Vertex{Position: rightInnerPos, UV: meshbuild.UV{U: v, V: 0}}
		rightOuter := meshbuild.Vertex{Position: rightOuterPos, UV: meshbuild.UV{U: v, V: 1}}

		if has {
			quadStrip(mesh, prevLeftInner, prevLeftOuter, leftOuter, leftInner)
			quadStrip(mesh, prevRightOuter, prevRightInner, rightInner, rightOuter)
		}
		prevLeftInner, prevLeftOuter = leftInner, leftOuter
		prevRightInner, prevRightOuter = rightInner, rightOuter
		has = true
	}

	if cfg.SmoothNormals {
		mesh.SmoothNormals()
	} else {
		mesh.FlatNormals()
	}
	return mesh
}

func offsetAt(center, normal meshbuild.Vec3, dist, z float64) meshbuild.Vec3 {
	o := normal.Scale(dist)
	return meshbuild.Vec3{X: center.X + o.X, Y: center.Y + o.Y, Z: z}
}

func quadStrip(mesh *meshbuild.Mesh, a, b, c, d meshbuild.Vertex) {
	ia := mesh.AddVertex(a)
	ib := mesh.AddVertex(b)
	ic := mesh.AddVertex(c)
	id := mesh.AddVertex(d)
	mesh.AddQuad(ia, ib, ic, id)
}
