package roadnet

import "testing"

func TestAddCrossSectionEnforcesLocalIndexOrder(t *testing.T) {
	n := NewUnifiedRoadNetwork()
	id := n.AddSpline(Spline{MaterialID: 0})

	if _, err := n.AddCrossSection(CrossSection{OwnerSplineID: id, LocalIndex: 0, EffectiveRoadWidth: 4}); err != nil {
		t.Fatalf("first cross-section: %v", err)
	}
	if _, err := n.AddCrossSection(CrossSection{OwnerSplineID: id, LocalIndex: 0, EffectiveRoadWidth: 4}); err == nil {
		t.Fatal("expected error for non-increasing local_index")
	}
}

func TestAddCrossSectionEnforcesDistanceNonDecreasing(t *testing.T) {
	n := NewUnifiedRoadNetwork()
	id := n.AddSpline(Spline{MaterialID: 0})
	if _, err := n.AddCrossSection(CrossSection{OwnerSplineID: id, LocalIndex: 0, DistanceAlongSpline: 10, EffectiveRoadWidth: 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := n.AddCrossSection(CrossSection{OwnerSplineID: id, LocalIndex: 1, DistanceAlongSpline: 5, EffectiveRoadWidth: 4}); err == nil {
		t.Fatal("expected error for decreasing distance_along_spline")
	}
}

func TestAddCrossSectionRejectsZeroWidth(t *testing.T) {
	n := NewUnifiedRoadNetwork()
	id := n.AddSpline(Spline{MaterialID: 0})
	if _, err := n.AddCrossSection(CrossSection{OwnerSplineID: id, EffectiveRoadWidth: 0}); err == nil {
		t.Fatal("expected error for non-positive effective_road_width")
	}
}

func TestRotateRightIsOrthogonalUnitPreserving(t *testing.T) {
	tangent := Point2{1, 0}.Normalize()
	normal := RotateRight(tangent)
	dot := tangent.X*normal.X + tangent.Y*normal.Y
	if dot > 1e-12 || dot < -1e-12 {
		t.Fatalf("tangent . normal = %v, want 0", dot)
	}
	if l := normal.Length(); l < 1-1e-9 || l > 1+1e-9 {
		t.Fatalf("normal length = %v, want 1", l)
	}
}
