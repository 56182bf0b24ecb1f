package roadnet

// EvalTCB evaluates a Kochanek-Bartels (TCB) spline through ctrl at
// parameter t ∈ [segment, segment+1), per spec.md §3 ("Catmull-Rom with
// tension/continuity/bias"). Catmull-Rom is the tension=continuity=bias=0
// special case.
func EvalTCB(ctrl []Point2, tension, continuity, bias float64, globalT float64) Point2 {
	n := len(ctrl)
	if n == 0 {
		return Point2{}
	}
	if n == 1 {
		return ctrl[0]
	}

	maxSeg := float64(n - 1)
	if globalT < 0 {
		globalT = 0
	}
	if globalT > maxSeg {
		globalT = maxSeg
	}
	seg := int(globalT)
	if seg >= n-1 {
		seg = n - 2
	}
	t := globalT - float64(seg)

	p0 := ctrl[clampIdx(seg-1, n)]
	p1 := ctrl[seg]
	p2 := ctrl[clampIdx(seg+1, n)]
	p3 := ctrl[clampIdx(seg+2, n)]

	dIn, dOut := tcbTangents(p0, p1, p2, p3, tension, continuity, bias)

	return hermite(p1, p2, dIn, dOut, t)
}

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// tcbTangents computes the outgoing tangent at p1 and incoming tangent
// at p2 using the standard Kochanek-Bartels weighting of the
// source/destination chords.
func tcbTangents(p0, p1, p2, p3 Point2, tension, continuity, bias float64) (outAtP1, inAtP2 Point2) {
	a := (1 - tension) * (1 + continuity) * (1 + bias)
	b := (1 - tension) * (1 - continuity) * (1 - bias)
	c := (1 - tension) * (1 - continuity) * (1 + bias)
	d := (1 - tension) * (1 + continuity) * (1 - bias)

	outAtP1 = Point2{
		X: 0.5 * (a*(p1.X-p0.X) + b*(p2.X-p1.X)),
		Y: 0.5 * (a*(p1.Y-p0.Y) + b*(p2.Y-p1.Y)),
	}
	inAtP2 = Point2{
		X: 0.5 * (c*(p2.X-p1.X) + d*(p3.X-p2.X)),
		Y: 0.5 * (c*(p2.Y-p1.Y) + d*(p3.Y-p2.Y)),
	}
	return outAtP1, inAtP2
}

// hermite evaluates the cubic Hermite segment between p1 (t=0) and p2
// (t=1) with tangents m1, m2.
func hermite(p1, p2, m1, m2 Point2, t float64) Point2 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	return Point2{
		X: h00*p1.X + h10*m1.X + h01*p2.X + h11*m2.X,
		Y: h00*p1.Y + h10*m1.Y + h01*p2.Y + h11*m2.Y,
	}
}

// TangentTCB returns the unit tangent of the spline at globalT, via
// central finite difference.
func TangentTCB(ctrl []Point2, tension, continuity, bias, globalT float64) Point2 {
	const eps = 1e-3
	a := EvalTCB(ctrl, tension, continuity, bias, globalT-eps)
	b := EvalTCB(ctrl, tension, continuity, bias, globalT+eps)
	return b.Sub(a).Normalize()
}

// ArcLengthTable samples a TCB spline at fixed parameter steps and
// returns cumulative arc length per sample, used to convert a target
// arc-length into a spline parameter for cross-section placement.
func ArcLengthTable(ctrl []Point2, tension, continuity, bias float64, samplesPerSegment int) (params []float64, lengths []float64) {
	n := len(ctrl)
	if n < 2 || samplesPerSegment < 1 {
		return nil, nil
	}
	maxT := float64(n - 1)
	totalSamples := (n - 1) * samplesPerSegment
	params = make([]float64, totalSamples+1)
	lengths = make([]float64, totalSamples+1)

	prev := EvalTCB(ctrl, tension, continuity, bias, 0)
	accum := 0.0
	for i := 0; i <= totalSamples; i++ {
		t := maxT * float64(i) / float64(totalSamples)
		p := EvalTCB(ctrl, tension, continuity, bias, t)
		if i > 0 {
			accum += p.Sub(prev).Length()
		}
		params[i] = t
		lengths[i] = accum
		prev = p
	}
	return params, lengths
}

// ParamAtArcLength inverts an arc-length table via linear interpolation
// to find the spline parameter at a given distance along the curve.
func ParamAtArcLength(params, lengths []float64, targetLength float64) float64 {
	if len(lengths) == 0 {
		return 0
	}
	if targetLength <= lengths[0] {
		return params[0]
	}
	if targetLength >= lengths[len(lengths)-1] {
		return params[len(params)-1]
	}
	lo, hi := 0, len(lengths)-1
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if lengths[mid] <= targetLength {
			lo = mid
		} else {
			hi = mid
		}
	}
	span := lengths[hi] - lengths[lo]
	if span < 1e-12 {
		return params[lo]
	}
	frac := (targetLength - lengths[lo]) / span
	return params[lo] + frac*(params[hi]-params[lo])
}
