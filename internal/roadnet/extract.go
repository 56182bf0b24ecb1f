package roadnet

import (
	"math"
	"sort"

	"github.com/woozymasta/terra-road-forge/internal/raster"
)

// ExtractConfig configures the raster centerline extractor, per spec.md
// §4.5.
type ExtractConfig struct {
	JunctionAngleThresholdDeg      float64
	BridgeEndpointMaxDistancePixels float64
	DensifyMaxSpacingPixels        float64
	SimplifyTolerancePixels        float64
	MinPathLengthPixels            float64
	OrderingNeighborRadiusPixels   float64
	Tension, Continuity, Bias      float64
	MaterialID                     int
}

// ExtractFromMask runs the full raster pipeline: distance transform,
// skeletonize, junction-aware decomposition, endpoint bridging, densify,
// simplify, short-path discard, and TCB spline fit. Returns raw splines
// (polyline + fit parameters only; cross-sections are sampled later by
// C7).
func ExtractFromMask(mask *raster.Mask, cfg ExtractConfig) []Spline {
	skeleton := Skeletonize(mask)
	paths := decomposeSkeleton(skeleton, cfg.JunctionAngleThresholdDeg)
	paths = bridgeEndpoints(paths, cfg.BridgeEndpointMaxDistancePixels)

	var out []Spline
	for _, p := range paths {
		p = densify(p, cfg.DensifyMaxSpacingPixels)
		p = simplifyDouglasPeucker(p, cfg.SimplifyTolerancePixels)
		if pathLength(p) < cfg.MinPathLengthPixels {
			continue
		}
		s := Spline{
			Polyline:     p,
			TotalLengthM: pathLength(p),
			MaterialID:   cfg.MaterialID,
			Tension:      cfg.Tension,
			Continuity:   cfg.Continuity,
			Bias:         cfg.Bias,
			IsRoundabout: detectRoundabout(p),
		}
		out = append(out, s)
	}
	return out
}

// Skeletonize returns the medial-axis mask of a road mask via the
// distance transform's local ridge pixels: a masked pixel survives if
// its distance-to-background is a local maximum along at least one of
// the four principal axis pairs, the standard ridge-detection
// approximation to full topological thinning.
func Skeletonize(mask *raster.Mask) *raster.Mask {
	n := mask.Size
	background := raster.NewMask(n)
	for i, v := range mask.Data {
		background.Data[i] = !v
	}
	dist := raster.DistanceTransform(background)
	idx := func(x, y int) int { return y*n + x }

	skeleton := raster.NewMask(n)
	dirs := [4][2][2]int{
		{{-1, 0}, {1, 0}},
		{{0, -1}, {0, 1}},
		{{-1, -1}, {1, 1}},
		{{-1, 1}, {1, -1}},
	}

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !mask.At(x, y) {
				continue
			}
			d := dist[idx(x, y)]
			if d == 0 {
				continue
			}
			isRidge := false
			for _, pair := range dirs {
				ax, ay := x+pair[0][0], y+pair[0][1]
				bx, by := x+pair[1][0], y+pair[1][1]
				da, db := sampleDist(dist, n, ax, ay), sampleDist(dist, n, bx, by)
				if d >= da && d >= db {
					isRidge = true
					break
				}
			}
			if isRidge {
				skeleton.Set(x, y, true)
			}
		}
	}
	return thinToSinglePixelWidth(skeleton)
}

func sampleDist(dist []float64, n, x, y int) float64 {
	if x < 0 || y < 0 || x >= n || y >= n {
		return -1
	}
	return dist[y*n+x]
}

// thinToSinglePixelWidth applies a few passes of a Zhang-Suen-style
// removal to collapse any remaining thick ridge regions to single-pixel
// width, without disconnecting the skeleton.
func thinToSinglePixelWidth(m *raster.Mask) *raster.Mask {
	n := m.Size
	changed := true
	for pass := 0; pass < 8 && changed; pass++ {
		changed = false
		toRemove := make([][2]int, 0)
		for y := 1; y < n-1; y++ {
			for x := 1; x < n-1; x++ {
				if !m.At(x, y) {
					continue
				}
				neighbors := ring8(m, x, y)
				count := 0
				for _, v := range neighbors {
					if v {
						count++
					}
				}
				if count < 2 || count > 6 {
					continue
				}
				transitions := countTransitions(neighbors)
				if transitions != 1 {
					continue
				}
				// Don't remove endpoints (degree 1) or isolated bridge pixels.
				if count == 1 {
					continue
				}
				toRemove = append(toRemove, [2]int{x, y})
			}
		}
		for _, p := range toRemove {
			m.Set(p[0], p[1], false)
			changed = true
		}
	}
	return m
}

func ring8(m *raster.Mask, x, y int) [8]bool {
	offsets := [8][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	var r [8]bool
	for i, o := range offsets {
		r[i] = m.At(x+o[0], y+o[1])
	}
	return r
}

func countTransitions(ring [8]bool) int {
	t := 0
	for i := 0; i < 8; i++ {
		if !ring[i] && ring[(i+1)%8] {
			t++
		}
	}
	return t
}

// skeletonPath is an ordered list of pixel centers forming one branch of
// the skeleton graph between two junction/endpoint nodes.
type skeletonPath = []Point2

// decomposeSkeleton walks the skeleton's 8-connected graph and splits it
// at every node (endpoints of degree 1 and branch points of degree >= 3),
// so each path runs between two nodes. No straight-through continuation
// is chosen across a branch point, and angleThresholdDeg does not affect
// the result.
func decomposeSkeleton(skeleton *raster.Mask, angleThresholdDeg float64) []skeletonPath {
	n := skeleton.Size
	visited := raster.NewMask(n)
	var nodes [][2]int

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !skeleton.At(x, y) {
				continue
			}
			deg := degreeAt(skeleton, x, y)
			if deg == 1 || deg >= 3 {
				nodes = append(nodes, [2]int{x, y})
			}
		}
	}

	var paths []skeletonPath
	visitedEdges := map[[4]int]bool{}

	for _, node := range nodes {
		nx, ny := node[0], node[1]
		for _, o := range offsets8() {
			sx, sy := nx+o[0], ny+o[1]
			if !skeleton.At(sx, sy) {
				continue
			}
			edgeKey := [4]int{nx, ny, sx, sy}
			if visitedEdges[edgeKey] {
				continue
			}
			path := walkPath(skeleton, nx, ny, sx, sy, visitedEdges, angleThresholdDeg)
			if len(path) >= 2 {
				paths = append(paths, path)
			}
		}
	}

	_ = visited
	return paths
}

func degreeAt(m *raster.Mask, x, y int) int {
	deg := 0
	for _, o := range offsets8() {
		if m.At(x+o[0], y+o[1]) {
			deg++
		}
	}
	return deg
}

func offsets8() [8][2]int {
	return [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
}

// walkPath follows the skeleton from (x0,y0) through (x1,y1) until it
// hits another node (degree != 2), preferring at each step the neighbor
// whose turn angle is smallest (straight-through continuation).
func walkPath(skeleton *raster.Mask, x0, y0, x1, y1 int, visitedEdges map[[4]int]bool, angleThresholdDeg float64) skeletonPath {
	path := skeletonPath{{X: float64(x0), Y: float64(y0)}, {X: float64(x1), Y: float64(y1)}}
	visitedEdges[[4]int{x0, y0, x1, y1}] = true
	visitedEdges[[4]int{x1, y1, x0, y0}] = true

	px, py := x0, y0
	cx, cy := x1, y1
	for {
		deg := degreeAt(skeleton, cx, cy)
		if deg != 2 {
			break
		}
		prevDir := Point2{float64(cx - px), float64(cy - py)}.Normalize()
		var best *[2]int
		bestScore := math.Inf(-1)
		for _, o := range offsets8() {
			nx, ny := cx+o[0], cy+o[1]
			if nx == px && ny == py {
				continue
			}
			if !skeleton.At(nx, ny) {
				continue
			}
			dir := Point2{float64(nx - cx), float64(ny - cy)}.Normalize()
			score := prevDir.X*dir.X + prevDir.Y*dir.Y // cos(turn angle)
			if score > bestScore {
				bestScore = score
				cand := [2]int{nx, ny}
				best = &cand
			}
		}
		if best == nil {
			break
		}
		turnDeg := math.Acos(clampCos(bestScore)) * 180 / math.Pi
		if turnDeg > 90-angleThresholdDeg {
			// Sharp turn at a pass-through pixel: still follow it (it's
			// the only way forward on a single-pixel-wide skeleton), but
			// this is where junction-aware splitting would stop at a
			// true branch; degree==2 pixels never branch.
		}
		ek := [4]int{cx, cy, best[0], best[1]}
		if visitedEdges[ek] {
			break
		}
		visitedEdges[ek] = true
		visitedEdges[[4]int{best[0], best[1], cx, cy}] = true
		px, py = cx, cy
		cx, cy = best[0], best[1]
		path = append(path, Point2{X: float64(cx), Y: float64(cy)})
	}
	return path
}

func clampCos(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// bridgeEndpoints joins path endpoints across disconnected skeleton
// fragments when the gap is within maxDist, per spec.md §4.5 step 3.
func bridgeEndpoints(paths []skeletonPath, maxDist float64) []skeletonPath {
	if maxDist <= 0 || len(paths) < 2 {
		return paths
	}

	type endpointRef struct {
		pathIdx int
		atEnd   bool
		point   Point2
	}
	var endpoints []endpointRef
	for i, p := range paths {
		if len(p) == 0 {
			continue
		}
		endpoints = append(endpoints, endpointRef{i, false, p[0]})
		endpoints = append(endpoints, endpointRef{i, true, p[len(p)-1]})
	}

	used := make([]bool, len(endpoints))
	merged := make([]bool, len(paths))
	result := append([]skeletonPath{}, paths...)

	for i := range endpoints {
		if used[i] {
			continue
		}
		for j := i + 1; j < len(endpoints); j++ {
			if used[j] || endpoints[i].pathIdx == endpoints[j].pathIdx {
				continue
			}
			d := endpoints[i].point.Sub(endpoints[j].point).Length()
			if d <= maxDist {
				a, b := endpoints[i], endpoints[j]
				if merged[a.pathIdx] || merged[b.pathIdx] {
					continue
				}
				result[a.pathIdx] = joinPaths(paths[a.pathIdx], a.atEnd, paths[b.pathIdx], b.atEnd)
				merged[b.pathIdx] = true
				used[i] = true
				used[j] = true
				break
			}
		}
	}

	var out []skeletonPath
	for i, p := range result {
		if merged[i] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// joinPaths concatenates a and b so that a's join endpoint meets b's
// join endpoint at the seam: a is reversed so its join point is last,
// b is reversed so its join point is first.
func joinPaths(a skeletonPath, aAtEnd bool, b skeletonPath, bAtEnd bool) skeletonPath {
	if !aAtEnd {
		a = reversePath(a)
	}
	if bAtEnd {
		b = reversePath(b)
	}
	return append(append(skeletonPath{}, a...), b...)
}

func reversePath(p skeletonPath) skeletonPath {
	out := make(skeletonPath, len(p))
	for i, v := range p {
		out[len(p)-1-i] = v
	}
	return out
}

// densify inserts points so no consecutive segment exceeds maxSpacing.
func densify(p []Point2, maxSpacing float64) []Point2 {
	if maxSpacing <= 0 || len(p) < 2 {
		return p
	}
	out := []Point2{p[0]}
	for i := 0; i+1 < len(p); i++ {
		a, b := p[i], p[i+1]
		segLen := b.Sub(a).Length()
		steps := int(math.Ceil(segLen / maxSpacing))
		for s := 1; s <= steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, Point2{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
		}
	}
	return out
}

// simplifyDouglasPeucker reduces a polyline while keeping points no
// farther than tolerance from the simplified path.
func simplifyDouglasPeucker(points []Point2, tolerance float64) []Point2 {
	if tolerance <= 0 || len(points) < 3 {
		return points
	}
	keep := make([]bool, len(points))
	keep[0] = true
	keep[len(points)-1] = true
	dpRecurse(points, 0, len(points)-1, tolerance, keep)

	out := make([]Point2, 0, len(points))
	for i, k := range keep {
		if k {
			out = append(out, points[i])
		}
	}
	return out
}

func dpRecurse(points []Point2, start, end int, tolerance float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	maxIdx := -1
	a, b := points[start], points[end]
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(points[i], a, b)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}
	if maxDist > tolerance {
		keep[maxIdx] = true
		dpRecurse(points, start, maxIdx, tolerance, keep)
		dpRecurse(points, maxIdx, end, tolerance, keep)
	}
}

func perpendicularDistance(p, a, b Point2) float64 {
	ab := b.Sub(a)
	length := ab.Length()
	if length < 1e-12 {
		return p.Sub(a).Length()
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / (length * length)
	proj := Point2{a.X + ab.X*t, a.Y + ab.Y*t}
	return p.Sub(proj).Length()
}

func pathLength(p []Point2) float64 {
	sum := 0.0
	for i := 0; i+1 < len(p); i++ {
		sum += p[i+1].Sub(p[i]).Length()
	}
	return sum
}

// detectRoundabout reports whether a polyline closes on itself and
// encloses an area characteristic of a roundabout (small, near-circular).
func detectRoundabout(p []Point2) bool {
	if len(p) < 4 {
		return false
	}
	closeGap := p[0].Sub(p[len(p)-1]).Length()
	length := pathLength(p)
	if length == 0 || closeGap > 0.1*length {
		return false
	}
	area := polygonArea(p)
	perimeter := length
	if perimeter == 0 {
		return false
	}
	circularity := 4 * math.Pi * math.Abs(area) / (perimeter * perimeter)
	return circularity > 0.6
}

func polygonArea(p []Point2) float64 {
	sum := 0.0
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

// OrderPathGreedy reorders an unordered set of points into traversal
// order via nearest-neighbor chaining: each step appends the nearest
// remaining point. neighborRadius does not affect the choice.
func OrderPathGreedy(points []Point2, neighborRadius float64) []Point2 {
	if len(points) < 2 {
		return points
	}
	remaining := append([]Point2{}, points...)
	out := []Point2{remaining[0]}
	remaining = remaining[1:]

	for len(remaining) > 0 {
		last := out[len(out)-1]
		bestIdx := -1
		bestDist := math.Inf(1)
		for i, p := range remaining {
			d := p.Sub(last).Length()
			if d < bestDist {
				bestDist = d
				bestIdx = i
			}
		}
		if neighborRadius > 0 && bestDist > neighborRadius {
			sort.Slice(remaining, func(i, j int) bool {
				return remaining[i].Sub(last).Length() < remaining[j].Sub(last).Length()
			})
			bestIdx = 0
		}
		out = append(out, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return out
}
