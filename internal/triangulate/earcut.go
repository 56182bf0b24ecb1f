// Package triangulate implements earcut polygon triangulation with holes,
// per spec.md §4.2: an iterative ear-clipping algorithm over a doubly
// linked ring of vertices, with optional Z-order hash acceleration for
// large rings, and three fallback passes (normal, filter, cure-and-split)
// bounding worst-case behavior on self-intersecting input.
package triangulate

import "math"

// Point2 is a 2-D point in the pipeline's working coordinate system.
type Point2 struct {
	X, Y float64
}

// zOrderThreshold is the input size above which Z-order hashing
// accelerates the ear test, per spec.md §4.2 ("input_size > 80 coordinates").
const zOrderThreshold = 80

// node is one vertex of the working doubly linked ring.
type node struct {
	prev, next     *node
	prevZ, nextZ   *node
	x, y           float64
	i              int
	z              int64
	steiner        bool
}

// Triangulate triangulates a polygon given as one counter-clockwise outer
// ring and zero or more clockwise hole rings (no duplicated closing
// vertex). It returns triangle indices into the concatenated vertex array
// (outer then holes, in order), CCW. Fewer than 3 outer vertices returns
// an empty (not error) result, per spec.md §4.2.
func Triangulate(outer []Point2, holes [][]Point2) []int {
	if len(outer) < 3 {
		return nil
	}

	all := make([]Point2, 0, len(outer)+sumLens(holes))
	all = append(all, outer...)
	holeIndices := make([]int, 0, len(holes))
	for _, h := range holes {
		holeIndices = append(holeIndices, len(all))
		all = append(all, h...)
	}

	return EarcutIndexed(all, holeIndices)
}

func sumLens(holes [][]Point2) int {
	n := 0
	for _, h := range holes {
		n += len(h)
	}
	return n
}

// EarcutIndexed triangulates a flat vertex array with hole ring start
// indices (mapbox-earcut-style entry point), for callers that already
// have a concatenated vertex buffer.
func EarcutIndexed(data []Point2, holeIndices []int) []int {
	hasHoles := len(holeIndices) > 0
	outerLen := len(data)
	if hasHoles {
		outerLen = holeIndices[0]
	}
	if outerLen < 3 {
		return nil
	}

	var triangles []int

	outerNode := linkedList(data, 0, outerLen, true)
	if outerNode == nil || outerNode.next == outerNode.prev {
		return triangles
	}

	if hasHoles {
		outerNode = eliminateHoles(data, holeIndices, outerNode)
	}

	minX, minY, invSize := 0.0, 0.0, 0.0
	if len(data) > zOrderThreshold {
		maxX, maxY := data[0].X, data[0].Y
		minX, minY = data[0].X, data[0].Y
		end := len(data)
		for i := 1; i < end; i++ {
			p := data[i]
			if p.X < minX {
				minX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}
		size := math.Max(maxX-minX, maxY-minY)
		if size != 0 {
			invSize = 32767.0 / size
		}
	}

	triangles = earcutLinked(outerNode, triangles, minX, minY, invSize, 0)
	return triangles
}

// linkedList builds a circular doubly linked list from data[start:end],
// skipping points equal to their successor, forcing CCW orientation for
// the outer ring (clockwise=false input -> forced CCW) or CW for holes.
func linkedList(data []Point2, start, end int, forceCCW bool) *node {
	var last *node

	actualArea := signedArea(data, start, end)
	reverse := forceCCW && actualArea > 0 || !forceCCW && actualArea < 0

	if reverse {
		for i := end - 1; i >= start; i-- {
			last = insertNode(i, data[i], last)
		}
	} else {
		for i := start; i < end; i++ {
			last = insertNode(i, data[i], last)
		}
	}

	if last != nil && equalsXY(last, last.next) {
		p := last.next
		removeNode(last)
		last = p
	}

	return last
}

func signedArea(data []Point2, start, end int) float64 {
	sum := 0.0
	for i, j := start, end-1; i < end; i++ {
		a, b := data[j], data[i]
		sum += (b.X - a.X) * (a.Y + b.Y)
		j = i
	}
	return sum
}

func insertNode(i int, p Point2, last *node) *node {
	n := &node{i: i, x: p.X, y: p.Y}
	if last == nil {
		n.prev = n
		n.next = n
	} else {
		n.next = last.next
		n.prev = last
		last.next.prev = n
		last.next = n
	}
	return n
}

func removeNode(n *node) {
	n.next.prev = n.prev
	n.prev.next = n.next
	if n.prevZ != nil {
		n.prevZ.nextZ = n.nextZ
	}
	if n.nextZ != nil {
		n.nextZ.prevZ = n.prevZ
	}
}

func equalsXY(a, b *node) bool {
	return a.x == b.x && a.y == b.y
}

// earcutLinked is the main ear-clipping loop, following the three-pass
// escalation described in spec.md §4.2: pass 0 is plain ear clipping
// (optionally Z-order-accelerated), pass 1 retries after removing
// collinear/duplicate vertices, pass 2 retries after curing local
// self-intersections, and when pass 2 stalls the polygon is split in two
// and each half restarts at pass 0.
func earcutLinked(ear *node, triangles []int, minX, minY, invSize float64, pass int) []int {
	if ear == nil {
		return triangles
	}

	if pass == 0 && invSize != 0 {
		indexCurve(ear, minX, minY, invSize)
	}

	stop := ear
	for ear.prev != ear.next {
		prev := ear.prev
		next := ear.next

		var isEarNode bool
		if invSize != 0 {
			isEarNode = isEarHashed(ear, minX, minY, invSize)
		} else {
			isEarNode = isEar(ear)
		}

		if isEarNode {
			triangles = append(triangles, prev.i, ear.i, next.i)
			removeNode(ear)
			ear = next.next
			stop = next.next
			continue
		}

		ear = next
		if ear == stop {
			switch pass {
			case 0:
				filtered := filterPoints(ear, nil)
				triangles = earcutLinked(filtered, triangles, minX, minY, invSize, 1)
			case 1:
				ear = cureLocalIntersections(filterPoints(ear, nil), &triangles)
				triangles = earcutLinked(ear, triangles, minX, minY, invSize, 2)
			case 2:
				triangles = splitEarcut(ear, triangles, minX, minY, invSize)
			}
			return triangles
		}
	}

	return triangles
}

func isEar(ear *node) bool {
	a, b, c := ear.prev, ear, ear.next
	if area(a, b, c) >= 0 {
		return false // reflex, can't be an ear
	}

	p := ear.next.next
	for p != ear.prev {
		if pointInTriangleExceptFirst(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) &&
			area(p.prev, p, p.next) >= 0 {
			return false
		}
		p = p.next
	}
	return true
}

func isEarHashed(ear *node, minX, minY, invSize float64) bool {
	a, b, c := ear.prev, ear, ear.next
	if area(a, b, c) >= 0 {
		return false
	}

	minTX, minTY := math.Min(a.x, math.Min(b.x, c.x)), math.Min(a.y, math.Min(b.y, c.y))
	maxTX, maxTY := math.Max(a.x, math.Max(b.x, c.x)), math.Max(a.y, math.Max(b.y, c.y))

	minZ := zOrder(minTX, minTY, minX, minY, invSize)
	maxZ := zOrder(maxTX, maxTY, minX, minY, invSize)

	p := ear.prevZ
	n := ear.nextZ

	for p != nil && p.z >= minZ && n != nil && n.z <= maxZ {
		if p != ear.prev && p != ear.next &&
			pointInTriangleExceptFirst(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) && area(p.prev, p, p.next) >= 0 {
			return false
		}
		p = p.prevZ

		if n != ear.prev && n != ear.next &&
			pointInTriangleExceptFirst(a.x, a.y, b.x, b.y, c.x, c.y, n.x, n.y) && area(n.prev, n, n.next) >= 0 {
			return false
		}
		n = n.nextZ
	}

	for p != nil && p.z >= minZ {
		if p != ear.prev && p != ear.next &&
			pointInTriangleExceptFirst(a.x, a.y, b.x, b.y, c.x, c.y, p.x, p.y) && area(p.prev, p, p.next) >= 0 {
			return false
		}
		p = p.prevZ
	}

	for n != nil && n.z <= maxZ {
		if n != ear.prev && n != ear.next &&
			pointInTriangleExceptFirst(a.x, a.y, b.x, b.y, c.x, c.y, n.x, n.y) && area(n.prev, n, n.next) >= 0 {
			return false
		}
		n = n.nextZ
	}

	return true
}

// filterPoints removes collinear-degenerate and duplicate vertices.
func filterPoints(start, end *node) *node {
	if start == nil {
		return start
	}
	if end == nil {
		end = start
	}

	p := start
	again := true
	for again || p != end {
		again = false
		if !p.steiner && (equalsXY(p, p.next) || area(p.prev, p, p.next) == 0) {
			removeNode(p)
			p = p.prev
			end = p
			if p == p.next {
				break
			}
			again = true
		} else {
			p = p.next
		}
	}
	return end
}

// cureLocalIntersections removes a local self-intersection (two
// consecutive triangle edges that cross) and emits the resulting ear.
func cureLocalIntersections(start *node, triangles *[]int) *node {
	p := start
	for {
		a := p.prev
		b := p.next.next

		if !equalsXY(a, b) && segmentsIntersect(a, p, p.next, b) && locallyInside(a, b) && locallyInside(b, a) {
			*triangles = append(*triangles, a.i, p.i, b.i)
			removeNode(p)
			removeNode(p.next)
			p = a
			start = a
		}
		p = p.next
		if p == start {
			break
		}
	}
	return filterPoints(p, nil)
}

// splitEarcut splits the polygon into two at a non-intersecting diagonal
// and triangulates each half independently. Last-resort fallback for
// self-intersections that survive the cure pass.
func splitEarcut(start *node, triangles []int, minX, minY, invSize float64) []int {
	a := start
	for {
		b := a.next.next
		for b != a.prev {
			if a.i != b.i && isValidDiagonal(a, b) {
				c := splitPolygon(a, b)
				a = filterPoints(a, a.next)
				c = filterPoints(c, c.next)
				triangles = earcutLinked(a, triangles, minX, minY, invSize, 0)
				triangles = earcutLinked(c, triangles, minX, minY, invSize, 0)
				return triangles
			}
			b = b.next
		}
		a = a.next
		if a == start {
			break
		}
	}
	return triangles
}

func isValidDiagonal(a, b *node) bool {
	return a.next.i != b.i && a.prev.i != b.i && !intersectsPolygon(a, b) &&
		((locallyInside(a, b) && locallyInside(b, a) && middleInside(a, b)) ||
			(equalsXY(a, b) && area(a.prev, a, a.next) > 0 && area(b.prev, b, b.next) > 0))
}

func area(p, q, r *node) float64 {
	return (q.y-p.y)*(r.x-q.x) - (q.x-p.x)*(r.y-q.y)
}

func segmentsIntersect(p1, q1, p2, q2 *node) bool {
	o1 := sign(area(p1, q1, p2))
	o2 := sign(area(p1, q1, q2))
	o3 := sign(area(p2, q2, p1))
	o4 := sign(area(p2, q2, q1))

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func onSegment(p, q, r *node) bool {
	return q.x <= math.Max(p.x, r.x) && q.x >= math.Min(p.x, r.x) &&
		q.y <= math.Max(p.y, r.y) && q.y >= math.Min(p.y, r.y)
}

func intersectsPolygon(a, b *node) bool {
	p := a
	for {
		if p.i != a.i && p.next.i != a.i && p.i != b.i && p.next.i != b.i && segmentsIntersect(p, p.next, a, b) {
			return true
		}
		p = p.next
		if p == a {
			break
		}
	}
	return false
}

func locallyInside(a, b *node) bool {
	if area(a.prev, a, a.next) < 0 {
		return area(a, b, a.next) >= 0 && area(a, a.prev, b) >= 0
	}
	return area(a, b, a.prev) < 0 || area(a, a.next, b) < 0
}

func middleInside(a, b *node) bool {
	p := a
	inside := false
	px := (a.x + b.x) / 2
	py := (a.y + b.y) / 2
	for {
		if (p.y > py) != (p.next.y > py) && p.next.y != p.y &&
			px < (p.next.x-p.x)*(py-p.y)/(p.next.y-p.y)+p.x {
			inside = !inside
		}
		p = p.next
		if p == a {
			break
		}
	}
	return inside
}

// splitPolygon links two nodes with two new edges, splitting a single
// ring into two separate rings.
func splitPolygon(a, b *node) *node {
	a2 := &node{i: a.i, x: a.x, y: a.y}
	b2 := &node{i: b.i, x: b.x, y: b.y}
	an := a.next
	bp := b.prev

	a.next = b
	b.prev = a
	a2.next = an
	an.prev = a2
	b2.next = a2
	a2.prev = b2
	bp.next = b2
	b2.prev = bp

	return b2
}

// pointInTriangleExceptFirst matches mapbox-earcut semantics: treats a
// point that exactly equals vertex A as outside, preventing a degenerate
// "ear" test where the candidate point coincides with the triangle.
func pointInTriangleExceptFirst(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return !(px == ax && py == ay) && pointInTriangle(ax, ay, bx, by, cx, cy, px, py)
}

func pointInTriangle(ax, ay, bx, by, cx, cy, px, py float64) bool {
	return (cx-px)*(ay-py)-(ax-px)*(cy-py) >= 0 &&
		(ax-px)*(by-py)-(bx-px)*(ay-py) >= 0 &&
		(bx-px)*(cy-py)-(cx-px)*(by-py) >= 0
}

// zOrder computes a Z-order (Morton) curve value for (x, y) normalized
// into 15-bit integer space, used to accelerate isEar's neighbor scan.
func zOrder(x, y, minX, minY, invSize float64) int64 {
	ix := int64((x - minX) * invSize)
	iy := int64((y - minY) * invSize)

	ix = (ix | (ix << 8)) & 0x00FF00FF
	ix = (ix | (ix << 4)) & 0x0F0F0F0F
	ix = (ix | (ix << 2)) & 0x33333333
	ix = (ix | (ix << 1)) & 0x55555555

	iy = (iy | (iy << 8)) & 0x00FF00FF
	iy = (iy | (iy << 4)) & 0x0F0F0F0F
	iy = (iy | (iy << 2)) & 0x33333333
	iy = (iy | (iy << 1)) & 0x55555555

	return ix | (iy << 1)
}

// indexCurve assigns a z-order value to every node in the ring and builds
// the prevZ/nextZ skip list used by isEarHashed.
func indexCurve(start *node, minX, minY, invSize float64) {
	p := start
	for {
		if p.z == 0 {
			p.z = zOrder(p.x, p.y, minX, minY, invSize)
		}
		p.prevZ = p.prev
		p.nextZ = p.next
		p = p.next
		if p == start {
			break
		}
	}

	p.prevZ.nextZ = nil
	p.prevZ = nil
	sortLinked(p)
}

// sortLinked is a bottom-up merge sort over the z-order linked list.
func sortLinked(list *node) *node {
	var numMerges int
	inSize := 1

	for {
		p := list
		list = nil
		var tail *node
		numMerges = 0

		for p != nil {
			numMerges++
			q := p
			pSize := 0
			for i := 0; i < inSize; i++ {
				pSize++
				q = q.nextZ
				if q == nil {
					break
				}
			}
			qSize := inSize

			for pSize > 0 || (qSize > 0 && q != nil) {
				var e *node
				switch {
				case pSize != 0 && (qSize == 0 || q == nil):
					e = p
					p = p.nextZ
					pSize--
				case pSize == 0:
					e = q
					q = q.nextZ
					qSize--
				case p.z <= q.z:
					e = p
					p = p.nextZ
					pSize--
				default:
					e = q
					q = q.nextZ
					qSize--
				}

				if tail != nil {
					tail.nextZ = e
				} else {
					list = e
				}
				e.prevZ = tail
				tail = e
			}

			p = q
		}

		tail.nextZ = nil
		if numMerges <= 1 {
			return list
		}
		inSize *= 2
	}
}

// eliminateHoles merges each hole ring into the outer ring by bridging
// through the hole's leftmost point, the standard earcut hole-fusing step.
func eliminateHoles(data []Point2, holeIndices []int, outerNode *node) *node {
	queue := make([]*node, 0, len(holeIndices))

	for i, start := range holeIndices {
		end := len(data)
		if i+1 < len(holeIndices) {
			end = holeIndices[i+1]
		}
		list := linkedList(data, start, end, false)
		if list == list.next {
			list.steiner = true
		}
		queue = append(queue, getLeftmost(list))
	}

	sortByXAscending(queue)

	for _, h := range queue {
		outerNode = eliminateHole(h, outerNode)
	}

	return outerNode
}

func sortByXAscending(nodes []*node) {
	for i := 1; i < len(nodes); i++ {
		j := i
		for j > 0 && nodes[j-1].x > nodes[j].x {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
			j--
		}
	}
}

func getLeftmost(start *node) *node {
	p := start
	leftmost := start
	for {
		if p.x < leftmost.x || (p.x == leftmost.x && p.y < leftmost.y) {
			leftmost = p
		}
		p = p.next
		if p == start {
			break
		}
	}
	return leftmost
}

func eliminateHole(hole, outerNode *node) *node {
	bridge := findHoleBridge(hole, outerNode)
	if bridge == nil {
		return outerNode
	}

	bridgeReverse := splitPolygon(bridge, hole)
	filterPoints(bridgeReverse, bridgeReverse.next)
	return filterPoints(bridge, bridge.next)
}

// findHoleBridge finds a vertex on the outer ring visible from the hole's
// leftmost point, per the standard earcut bridging heuristic.
func findHoleBridge(hole, outerNode *node) *node {
	p := outerNode
	hx, hy := hole.x, hole.y
	qx := math.Inf(-1)
	var m *node

	if equalsXY(hole, p) {
		return p
	}

	for {
		if hy <= p.y && hy >= p.next.y && p.next.y != p.y {
			x := p.x + (hy-p.y)*(p.next.x-p.x)/(p.next.y-p.y)
			if x <= hx && x > qx {
				qx = x
				if x == hx {
					if hy == p.y {
						return p
					}
					if hy == p.next.y {
						return p.next
					}
				}
				if p.x < p.next.x {
					m = p
				} else {
					m = p.next
				}
			}
		}
		p = p.next
		if p == outerNode {
			break
		}
	}

	if m == nil {
		return nil
	}
	if hx == qx {
		return m.prev
	}

	stop := m
	mx, my := m.x, m.y
	tanMin := math.Inf(1)

	// Triangle (hole point, ray hit, m), ordered so its orientation
	// matches pointInTriangle's sign convention.
	ax, cx := qx, hx
	if hy < my {
		ax, cx = hx, qx
	}

	p = m.next
	for p != stop {
		if hx >= p.x && p.x >= mx && hx != p.x &&
			pointInTriangle(ax, hy, mx, my, cx, hy, p.x, p.y) {
			tan := math.Abs(hy-p.y) / (hx - p.x)
			if locallyInsideForBridge(p, hole) && (tan < tanMin || (tan == tanMin && (p.x > m.x || (p.x == m.x && sectorContainsSector(m, p))))) {
				m = p
				tanMin = tan
			}
		}
		p = p.next
	}

	return m
}

func locallyInsideForBridge(a, b *node) bool {
	return locallyInside(a, b)
}

func sectorContainsSector(m, p *node) bool {
	return area(m.prev, m, p.prev) < 0 && area(p.next, m, m.next) < 0
}
