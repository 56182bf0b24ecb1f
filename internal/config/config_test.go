package config

import "testing"

func validConfig() Config {
	cfg := Default()
	cfg.Materials = []MaterialConfig{
		{Name: "grass"},
		{Name: "asphalt", IsRoad: true, RoadWidthMeters: 8, RoadSurfaceWidthMeters: 6},
	}
	return cfg
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected a valid default config, got %v", err)
	}
}

func TestValidateRejectsBadSize(t *testing.T) {
	cfg := validConfig()
	cfg.SizePixels = 1000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected ValidationError for a non-power-of-two size")
	}
}

func TestValidateRejectsNoMaterials(t *testing.T) {
	cfg := validConfig()
	cfg.Materials = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected ValidationError for no materials")
	}
}

func TestValidateRejectsRoadSurfaceWiderThanRoad(t *testing.T) {
	cfg := validConfig()
	cfg.Materials[1].RoadSurfaceWidthMeters = 20
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected ValidationError for RoadSurfaceWidthMeters > RoadWidthMeters")
	}
}

func TestValidatePropagatesSmoothingValidation(t *testing.T) {
	cfg := validConfig()
	cfg.SmoothingWindowSize = 4
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected ValidationError to propagate from smoothing.Config.Validate")
	}
}

func TestToPortableConfigStripsPaths(t *testing.T) {
	cfg := validConfig()
	cfg.Materials[1].LayerMaskPath = "/tmp/secret.png"
	portable := ToPortableConfig(cfg)
	if len(portable.Materials) != 2 {
		t.Fatalf("got %d materials, want 2", len(portable.Materials))
	}
	if portable.Materials[1].RoadWidthMeters != 8 {
		t.Fatalf("got RoadWidthMeters %v, want 8", portable.Materials[1].RoadWidthMeters)
	}
}
