package roadnet

import (
	"math"
	"testing"
)

func TestEvalTCBCatmullRomPassesThroughControlPoints(t *testing.T) {
	ctrl := []Point2{{0, 0}, {1, 1}, {2, 0}, {3, 1}}
	for i, want := range ctrl {
		got := EvalTCB(ctrl, 0, 0, 0, float64(i))
		if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 {
			t.Fatalf("control point %d: got %v, want %v", i, got, want)
		}
	}
}

func TestArcLengthTableMonotonic(t *testing.T) {
	ctrl := []Point2{{0, 0}, {5, 0}, {10, 5}, {15, 5}}
	_, lengths := ArcLengthTable(ctrl, 0, 0, 0, 8)
	for i := 1; i < len(lengths); i++ {
		if lengths[i] < lengths[i-1] {
			t.Fatalf("arc length table not monotonic at %d: %v then %v", i, lengths[i-1], lengths[i])
		}
	}
}

func TestParamAtArcLengthRoundTrip(t *testing.T) {
	ctrl := []Point2{{0, 0}, {10, 0}, {20, 0}}
	params, lengths := ArcLengthTable(ctrl, 0, 0, 0, 16)
	total := lengths[len(lengths)-1]

	mid := ParamAtArcLength(params, lengths, total/2)
	p := EvalTCB(ctrl, 0, 0, 0, mid)
	if math.Abs(p.X-10) > 0.5 {
		t.Fatalf("midpoint of a straight 0->20 line expected near x=10, got %v", p)
	}
}

func TestTangentTCBOnStraightLineIsConstant(t *testing.T) {
	ctrl := []Point2{{0, 0}, {10, 0}, {20, 0}, {30, 0}}
	t1 := TangentTCB(ctrl, 0, 0, 0, 1.0)
	t2 := TangentTCB(ctrl, 0, 0, 0, 2.0)
	if math.Abs(t1.X-t2.X) > 1e-6 || math.Abs(t1.Y-t2.Y) > 1e-6 {
		t.Fatalf("tangent should be constant on a straight line: %v vs %v", t1, t2)
	}
}
