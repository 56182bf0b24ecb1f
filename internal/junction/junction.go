// Package junction detects where splines meet and harmonizes their
// target elevation across the intersection, per spec.md §4.8.
package junction

import (
	"math"
	"sort"

	"github.com/woozymasta/terra-road-forge/internal/roadnet"
)

// BlendFunction is one of the four selectable tapering shapes, a tagged
// variant per spec.md §9.
type BlendFunction int

const (
	BlendLinear BlendFunction = iota
	BlendCosine
	BlendCubic
	BlendQuintic
)

// Eval returns the blend weight at t ∈ [0,1]: 0 at the far end of the
// taper, 1 at the junction, per spec.md §4.8 step 2.
func (b BlendFunction) Eval(t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	switch b {
	case BlendCosine:
		return 0.5 - 0.5*math.Cos(t*math.Pi)
	case BlendCubic:
		return t * t * (3 - 2*t)
	case BlendQuintic:
		return t * t * t * (t*(t*6-15) + 10)
	default:
		return t
	}
}

// Config bundles C9 parameters from the configuration surface.
type Config struct {
	DetectionRadiusM             float64
	BlendDistanceM               float64
	BlendFunction                BlendFunction
	EnableJunctionHarmonization  bool
	EnableEndpointTaper          bool
	EndpointTaperDistanceM       float64
	EndpointTerrainBlendStrength float64
}

type endpointRef struct {
	splineID  roadnet.SplineIndex
	csIndex   roadnet.CrossSectionIndex
	atStart   bool
	location  roadnet.Point2
	direction roadnet.Point2 // unit tangent pointing away from the junction, along the spline
}

// DetectJunctions clusters spline endpoints within cfg.DetectionRadiusM
// and classifies each cluster by incident count, per spec.md §4.8.
// OSM hints (already-known junction locations) take priority: any
// cluster within DetectionRadiusM of a hint adopts the hint's location
// and is marked FromOSMHint, resolving the §9 tie-break.
func DetectJunctions(net *roadnet.UnifiedRoadNetwork, cfg Config, osmHints []roadnet.JunctionHint) []roadnet.JunctionIndex {
	endpoints := collectEndpoints(net)
	clusters := clusterEndpoints(endpoints, cfg.DetectionRadiusM)

	var result []roadnet.JunctionIndex
	for _, cluster := range clusters {
		if len(cluster) < 2 {
			continue
		}
		loc := centroid(cluster)
		fromHint := false
		for _, h := range osmHints {
			if h.Location.Sub(loc).Length() <= cfg.DetectionRadiusM {
				loc = h.Location
				fromHint = true
				break
			}
		}

		splineSet := map[roadnet.SplineIndex]bool{}
		for _, e := range cluster {
			splineSet[e.splineID] = true
		}
		var members []roadnet.SplineIndex
		for id := range splineSet {
			members = append(members, id)
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

		dirBySpline := map[roadnet.SplineIndex]roadnet.Point2{}
		for _, e := range cluster {
			if _, ok := dirBySpline[e.splineID]; !ok {
				dirBySpline[e.splineID] = e.direction
			}
		}
		directions := make([]roadnet.Point2, len(members))
		for i, id := range members {
			directions[i] = dirBySpline[id]
		}

		jtype := classify(members, directions)
		j := roadnet.Junction{
			LocationXY:       loc,
			Type:             jtype,
			MemberSplineIDs:  members,
			DetectionRadiusM: cfg.DetectionRadiusM,
			BlendDistanceM:   cfg.BlendDistanceM,
			FromOSMHint:      fromHint,
		}
		result = append(result, net.AddJunction(j))
	}
	return result
}

// collinearAngleThreshold is how close to 180 degrees apart (in radians)
// two incident directions must be to count as a single through-movement,
// distinguishing a T (through + stem) from a Y (three roughly-equally
// spaced legs) at a 3-way junction.
const collinearAngleThreshold = 150.0 * math.Pi / 180.0

func classify(members []roadnet.SplineIndex, directions []roadnet.Point2) roadnet.JunctionType {
	switch n := len(members); {
	case n == 3:
		return classifyThreeWay(directions)
	case n == 4:
		return roadnet.JunctionX
	case n > 4:
		return roadnet.JunctionComplex
	default:
		return roadnet.JunctionT
	}
}

// classifyThreeWay distinguishes T from Y by the angular distribution of
// the three incident directions, per spec.md §4.8: a T has two legs
// running opposite (a through movement) and a third roughly
// perpendicular stem; a Y has no such collinear pair, its three legs
// spread roughly evenly instead.
func classifyThreeWay(directions []roadnet.Point2) roadnet.JunctionType {
	angles := make([]float64, len(directions))
	for i, d := range directions {
		angles[i] = math.Atan2(d.Y, d.X)
	}
	for i := 0; i < len(angles); i++ {
		for j := i + 1; j < len(angles); j++ {
			if angularSeparation(angles[i], angles[j]) >= collinearAngleThreshold {
				return roadnet.JunctionT
			}
		}
	}
	return roadnet.JunctionY
}

// angularSeparation returns the absolute difference between two angles,
// normalized to [0, pi].
func angularSeparation(a, b float64) float64 {
	d := math.Abs(a - b)
	for d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func collectEndpoints(net *roadnet.UnifiedRoadNetwork) []endpointRef {
	var out []endpointRef
	for _, s := range net.Splines {
		if len(s.CrossSections) == 0 {
			continue
		}
		first := s.CrossSections[0]
		last := s.CrossSections[len(s.CrossSections)-1]
		firstCS := net.CrossSections[first]
		lastCS := net.CrossSections[last]
		// The spline runs away from its start endpoint in the direction
		// of Tangent (increasing distance-along-spline), and away from
		// its end endpoint in the opposite direction.
		out = append(out, endpointRef{s.ID, first, true, firstCS.CenterXY, firstCS.Tangent})
		out = append(out, endpointRef{s.ID, last, false, lastCS.CenterXY, lastCS.Tangent.Scale(-1)})
	}
	return out
}

func clusterEndpoints(endpoints []endpointRef, radius float64) [][]endpointRef {
	used := make([]bool, len(endpoints))
	var clusters [][]endpointRef
	for i := range endpoints {
		if used[i] {
			continue
		}
		cluster := []endpointRef{endpoints[i]}
		used[i] = true
		for j := i + 1; j < len(endpoints); j++ {
			if used[j] {
				continue
			}
			if endpoints[j].location.Sub(endpoints[i].location).Length() <= radius {
				cluster = append(cluster, endpoints[j])
				used[j] = true
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

func centroid(endpoints []endpointRef) roadnet.Point2 {
	var sum roadnet.Point2
	for _, e := range endpoints {
		sum = sum.Add(e.location)
	}
	return sum.Scale(1 / float64(len(endpoints)))
}

// Harmonize computes the weighted-mean elevation at each non-excluded
// junction (weight = incident spline length) and tapers the incident
// cross-sections within BlendDistanceM toward it, per spec.md §4.8
// steps 1-2. Mutates net.CrossSections' TargetElevation in place.
func Harmonize(net *roadnet.UnifiedRoadNetwork, junctionIDs []roadnet.JunctionIndex, cfg Config) {
	if !cfg.EnableJunctionHarmonization {
		return
	}
	for _, jid := range junctionIDs {
		j := &net.Junctions[jid]
		if j.IsExcluded {
			continue
		}

		weightedSum, weightTotal := 0.0, 0.0
		for _, splineID := range j.MemberSplineIDs {
			spline := &net.Splines[splineID]
			endpointCS := nearestEndpoint(net, spline, j.LocationXY)
			if endpointCS == nil {
				continue
			}
			weight := spline.TotalLengthM
			if weight <= 0 {
				weight = 1
			}
			weightedSum += endpointCS.TargetElevation * weight
			weightTotal += weight
		}
		if weightTotal == 0 {
			continue
		}
		harmonized := weightedSum / weightTotal
		j.HarmonizedElevation = &harmonized

		for _, splineID := range j.MemberSplineIDs {
			spline := &net.Splines[splineID]
			taperSplineToward(net, spline, j.LocationXY, harmonized, cfg.BlendDistanceM, cfg.BlendFunction)
		}
	}
}

func nearestEndpoint(net *roadnet.UnifiedRoadNetwork, spline *roadnet.Spline, loc roadnet.Point2) *roadnet.CrossSection {
	if len(spline.CrossSections) == 0 {
		return nil
	}
	first := &net.CrossSections[spline.CrossSections[0]]
	last := &net.CrossSections[spline.CrossSections[len(spline.CrossSections)-1]]
	if first.CenterXY.Sub(loc).Length() <= last.CenterXY.Sub(loc).Length() {
		return first
	}
	return last
}

// taperSplineToward blends TargetElevation on the cross-sections within
// blendDistance of loc (measured by distance-along-spline from the
// nearer endpoint) toward harmonized, weight 1 at the junction and 0 at
// the far edge of the blend.
func taperSplineToward(net *roadnet.UnifiedRoadNetwork, spline *roadnet.Spline, loc roadnet.Point2, harmonized, blendDistance float64, fn BlendFunction) {
	if len(spline.CrossSections) == 0 || blendDistance <= 0 {
		return
	}
	first := net.CrossSections[spline.CrossSections[0]]
	last := net.CrossSections[spline.CrossSections[len(spline.CrossSections)-1]]

	nearStart := first.CenterXY.Sub(loc).Length() <= last.CenterXY.Sub(loc).Length()
	anchorDistance := first.DistanceAlongSpline
	if !nearStart {
		anchorDistance = last.DistanceAlongSpline
	}

	for _, csIdx := range spline.CrossSections {
		cs := &net.CrossSections[csIdx]
		var distFromJunction float64
		if nearStart {
			distFromJunction = cs.DistanceAlongSpline - anchorDistance
		} else {
			distFromJunction = anchorDistance - cs.DistanceAlongSpline
		}
		if distFromJunction < 0 || distFromJunction > blendDistance {
			continue
		}
		t := 1 - distFromJunction/blendDistance
		w := fn.Eval(t)
		cs.TargetElevation = cs.TargetElevation*(1-w) + harmonized*w
	}
}

// ApplyEndpointTaper blends spline endpoints that meet no junction
// toward the raw terrain elevation, per spec.md §4.8 step 3.
func ApplyEndpointTaper(net *roadnet.UnifiedRoadNetwork, junctioned map[roadnet.SplineIndex]bool, cfg Config) {
	if !cfg.EnableEndpointTaper {
		return
	}
	for i := range net.Splines {
		spline := &net.Splines[i]
		if junctioned[spline.ID] || len(spline.CrossSections) == 0 {
			continue
		}
		taperEndpoint(net, spline, true, cfg)
		taperEndpoint(net, spline, false, cfg)
	}
}

func taperEndpoint(net *roadnet.UnifiedRoadNetwork, spline *roadnet.Spline, atStart bool, cfg Config) {
	indices := spline.CrossSections
	if atStart {
		anchor := net.CrossSections[indices[0]].DistanceAlongSpline
		for _, idx := range indices {
			cs := &net.CrossSections[idx]
			d := cs.DistanceAlongSpline - anchor
			if d > cfg.EndpointTaperDistanceM {
				break
			}
			t := 1 - d/cfg.EndpointTaperDistanceM
			w := t * cfg.EndpointTerrainBlendStrength
			cs.TargetElevation = cs.TargetElevation*(1-w) + cs.SampledTerrainElevation*w
		}
		return
	}
	anchor := net.CrossSections[indices[len(indices)-1]].DistanceAlongSpline
	for i := len(indices) - 1; i >= 0; i-- {
		cs := &net.CrossSections[indices[i]]
		d := anchor - cs.DistanceAlongSpline
		if d > cfg.EndpointTaperDistanceM {
			break
		}
		t := 1 - d/cfg.EndpointTaperDistanceM
		w := t * cfg.EndpointTerrainBlendStrength
		cs.TargetElevation = cs.TargetElevation*(1-w) + cs.SampledTerrainElevation*w
	}
}
