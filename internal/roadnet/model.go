// Package roadnet is the road-network data model (spec.md §3/§4.4): three
// flat arenas (splines, cross-sections, junctions) addressed by stable
// integer indices instead of back-pointers, avoiding the ownership cycles
// a cross-section ↔ spline ↔ junction graph would otherwise require.
package roadnet

import "math"

// Point2 is a 2-D point in pixel or meter space, matching the
// triangulator's coordinate type.
type Point2 struct {
	X, Y float64
}

func (p Point2) Sub(o Point2) Point2   { return Point2{p.X - o.X, p.Y - o.Y} }
func (p Point2) Add(o Point2) Point2   { return Point2{p.X + o.X, p.Y + o.Y} }
func (p Point2) Scale(s float64) Point2 { return Point2{p.X * s, p.Y * s} }
func (p Point2) Length() float64       { return math.Hypot(p.X, p.Y) }

func (p Point2) Normalize() Point2 {
	l := p.Length()
	if l < 1e-12 {
		return Point2{0, 0}
	}
	return Point2{p.X / l, p.Y / l}
}

// RotateRight rotates a unit vector -90 degrees (clockwise), giving the
// geometric right of travel for a tangent pointing "forward".
func RotateRight(v Point2) Point2 {
	return Point2{v.Y, -v.X}
}

// JunctionType classifies a junction by incident-spline count and angle.
type JunctionType int

const (
	JunctionT JunctionType = iota
	JunctionY
	JunctionX
	JunctionComplex
	JunctionRoundabout
)

func (t JunctionType) String() string {
	switch t {
	case JunctionT:
		return "T"
	case JunctionY:
		return "Y"
	case JunctionX:
		return "X"
	case JunctionComplex:
		return "Complex"
	case JunctionRoundabout:
		return "Roundabout"
	default:
		return "Unknown"
	}
}

// SplineIndex, CrossSectionIndex and JunctionIndex are stable arena
// indices, not pointers: they remain valid even as other arena entries
// are appended, and are safe to share across goroutines read-only.
type SplineIndex int
type CrossSectionIndex int
type JunctionIndex int

// Spline is a fitted centerline: the control polyline plus TCB fit
// parameters and the owning material.
type Spline struct {
	ID             SplineIndex
	Polyline       []Point2 // pixel or meter space, per MaterialID's source
	TotalLengthM   float64
	MaterialID     int
	IsRoundabout   bool
	Tension        float64
	Continuity     float64
	Bias           float64
	CrossSections  []CrossSectionIndex // ordered by LocalIndex
}

// CrossSection is one sample along a spline. Invariant: Tangent and
// Normal are unit and orthogonal, Normal = RotateRight(Tangent).
type CrossSection struct {
	ID                         CrossSectionIndex
	OwnerSplineID              SplineIndex
	LocalIndex                 int
	CenterXY                   Point2
	Tangent                    Point2
	Normal                     Point2
	DistanceAlongSpline        float64
	EffectiveRoadWidth         float64
	BankAngleRad               float64
	SampledTerrainElevation    float64
	TargetElevation            float64
	ConstrainedLeftEdgeElev    *float64
	ConstrainedRightEdgeElev   *float64
	IsExcluded                 bool
}

// Junction is a detected or OSM-hinted meeting point of splines.
type Junction struct {
	ID                 JunctionIndex
	LocationXY         Point2
	Type               JunctionType
	MemberSplineIDs    []SplineIndex
	DetectionRadiusM   float64
	BlendDistanceM     float64
	HarmonizedElevation *float64
	IsExcluded         bool
	ExclusionReason    string
	FromOSMHint        bool
}

// UnifiedRoadNetwork is the pipeline's in-memory arena: every spline,
// cross-section, and junction produced for one run. Each spline carries
// its own MaterialID.
type UnifiedRoadNetwork struct {
	Splines       []Spline
	CrossSections []CrossSection
	Junctions     []Junction
}

// NewUnifiedRoadNetwork returns an empty network.
func NewUnifiedRoadNetwork() *UnifiedRoadNetwork {
	return &UnifiedRoadNetwork{}
}

// AddSpline appends a spline and returns its stable index.
func (n *UnifiedRoadNetwork) AddSpline(s Spline) SplineIndex {
	s.ID = SplineIndex(len(n.Splines))
	n.Splines = append(n.Splines, s)
	return s.ID
}

// AddCrossSection appends a cross-section, enforcing the strictly-
// increasing LocalIndex and non-decreasing DistanceAlongSpline
// invariants from spec.md §4.4, and links it into its owner spline.
func (n *UnifiedRoadNetwork) AddCrossSection(cs CrossSection) (CrossSectionIndex, error) {
	spline := &n.Splines[cs.OwnerSplineID]
	if len(spline.CrossSections) > 0 {
		prev := n.CrossSections[spline.CrossSections[len(spline.CrossSections)-1]]
		if cs.LocalIndex <= prev.LocalIndex {
			return 0, errCrossSectionOrder("local_index must strictly increase")
		}
		if cs.DistanceAlongSpline < prev.DistanceAlongSpline {
			return 0, errCrossSectionOrder("distance_along_spline must be non-decreasing")
		}
	}
	if cs.EffectiveRoadWidth <= 0 {
		return 0, errCrossSectionOrder("effective_road_width must be > 0")
	}

	cs.ID = CrossSectionIndex(len(n.CrossSections))
	n.CrossSections = append(n.CrossSections, cs)
	spline.CrossSections = append(spline.CrossSections, cs.ID)
	return cs.ID, nil
}

// AddJunction appends a junction and returns its stable index.
func (n *UnifiedRoadNetwork) AddJunction(j Junction) JunctionIndex {
	j.ID = JunctionIndex(len(n.Junctions))
	n.Junctions = append(n.Junctions, j)
	return j.ID
}

type crossSectionOrderError struct{ reason string }

func (e *crossSectionOrderError) Error() string { return "cross-section order: " + e.reason }

func errCrossSectionOrder(reason string) error { return &crossSectionOrderError{reason} }
