package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/invopop/yaml"

	"github.com/woozymasta/terra-road-forge/internal/errs"
)

// Load reads a Config from path, dispatching on extension: ".yaml"/".yml"
// use YAML, ".json" uses JSON, grounded on the teacher's
// readConfig/encodeConfig dual-format dance in cmd/tv4p-road-tool/utils.go.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errs.NewIOError("read", path, err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errs.NewIOError("decode", path, err)
		}
	default:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errs.NewIOError("decode", path, err)
		}
	}
	return cfg, nil
}

// Encode serializes cfg in the requested format ("yaml" or "json").
func Encode(cfg Config, format string) ([]byte, error) {
	switch format {
	case "json":
		return json.MarshalIndent(cfg, "", "  ")
	default:
		return yaml.Marshal(cfg)
	}
}

// Default returns a Config with the documented safe defaults filled in.
func Default() Config {
	return Config{
		SizePixels:                      1024,
		MaxHeight:                       255,
		MetersPerPixel:                  1,
		TerrainAffectedRangeMeters:      10,
		CrossSectionIntervalMeters:      3,
		RoadMaxSlopeDegrees:             8,
		SideMaxSlopeDegrees:             35,
		ButterworthFilterOrder:          4,
		SmoothingWindowSize:             5,
		SmoothingKernelSize:             3,
		SmoothingSigma:                  1,
		SmoothingIterations:             1,
		JunctionDetectionRadiusMeters:   5,
		JunctionBlendDistanceMeters:     20,
		JunctionAngleThresholdDegrees:   15,
		EnableJunctionHarmonization:     true,
		EndpointTaperDistanceMeters:     10,
		EndpointTerrainBlendStrength:    0.5,
		DensifyMaxSpacingPixels:         4,
		SimplifyTolerancePixels:         1.5,
		MinPathLengthPixels:             8,
		BridgeEndpointMaxDistancePixels: 6,
		OrderingNeighborRadiusPixels:    6,
		SplineTension:                   0,
		SplineContinuity:                0,
		SplineBias:                      0,
		Mesh: MeshConfig{
			TextureRepeatMetersU:  8,
			TextureRepeatMetersV:  4,
			InnerProfileWidthFrac: 0.6,
		},
		WorkerCount: 4,
	}
}
