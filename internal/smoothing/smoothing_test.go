package smoothing

import (
	"math"
	"testing"
)

func linspace(n int, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * step
	}
	return out
}

func TestValidateRejectsEvenWindow(t *testing.T) {
	cfg := Config{SmoothingWindowSize: 4, ButterworthFilterOrder: 4, GlobalLevelingStrength: 0}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected ValidationError for even SmoothingWindowSize")
	}
}

func TestValidateEnforcesLevelingSafetyThresholds(t *testing.T) {
	cfg := Config{SmoothingWindowSize: 5, ButterworthFilterOrder: 4, GlobalLevelingStrength: 0.6, TerrainAffectedRangeM: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected ValidationError: leveling > 0.5 requires range >= 15")
	}
	cfg.TerrainAffectedRangeM = 15
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config at the boundary, got %v", err)
	}
}

func TestButterworthUnityDCGain(t *testing.T) {
	n := 100
	profile := make([]float64, n)
	for i := range profile {
		profile[i] = 42.0 // constant input: DC only
	}
	distances := linspace(n, 1.0)
	out := butterworthFilter(profile, distances, 4, 11)
	for i, v := range out {
		if math.Abs(v-42.0) > 1e-6 {
			t.Fatalf("sample %d: got %v, want 42 (unity DC gain)", i, v)
		}
	}
}

func TestButterworthLinearUnderScaling(t *testing.T) {
	n := 100
	profile := make([]float64, n)
	for i := range profile {
		profile[i] = float64(i)
	}
	distances := linspace(n, 1.0)

	out1 := butterworthFilter(profile, distances, 4, 11)

	scaled := make([]float64, n)
	for i, v := range profile {
		scaled[i] = v * 2
	}
	out2 := butterworthFilter(scaled, distances, 4, 11)

	for i := range out1 {
		if math.Abs(out2[i]-2*out1[i]) > 1e-6 {
			t.Fatalf("sample %d: filter(2x) = %v, want 2*filter(x) = %v", i, out2[i], 2*out1[i])
		}
	}
}

func TestBoxFilterFlattensZigzag(t *testing.T) {
	profile := []float64{0, 10, 0, 10, 0, 10, 0}
	out := boxFilter(profile, 3)
	if len(out) != len(profile) {
		t.Fatalf("got %d samples, want %d", len(out), len(profile))
	}
	lo, hi := out[0], out[0]
	for _, v := range out {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if hi-lo >= 10 {
		t.Fatalf("output range = %v, want < 10 (the input's peak-to-peak)", hi-lo)
	}
}

func TestGlobalLevelBlendsTowardTarget(t *testing.T) {
	profile := []float64{0, 0, 0}
	out := GlobalLevel(profile, 10, 0.5)
	for _, v := range out {
		if math.Abs(v-5) > 1e-9 {
			t.Fatalf("got %v, want 5 (halfway blend toward 10)", v)
		}
	}
}

func TestGlobalLevelZeroStrengthIsIdentity(t *testing.T) {
	profile := []float64{1, 2, 3}
	out := GlobalLevel(profile, 100, 0)
	for i, v := range out {
		if v != profile[i] {
			t.Fatalf("strength 0 should be identity: got %v, want %v", v, profile[i])
		}
	}
}

func TestEnforceMaxSlopeClampsSteepStep(t *testing.T) {
	profile := []float64{0, 100}
	distances := []float64{0, 1}
	out, satisfied := EnforceMaxSlope(profile, distances, 45, 50)
	if !satisfied {
		t.Fatal("expected the slope constraint to be satisfiable within budget")
	}
	dz := math.Abs(out[1] - out[0])
	maxDz := math.Tan(45 * math.Pi / 180)
	if dz > maxDz+1e-6 {
		t.Fatalf("|Δz| = %v exceeds max allowed %v", dz, maxDz)
	}
}

func TestSeedProfileTakesMedian(t *testing.T) {
	samples := [][]float64{{1, 2, 3}, {5, 5, 100}}
	out := SeedProfile(samples)
	if out[0] != 2 {
		t.Fatalf("median of [1,2,3] = %v, want 2", out[0])
	}
	if out[1] != 5 {
		t.Fatalf("median of [5,5,100] = %v, want 5", out[1])
	}
}
