// Package config is the pipeline's configuration surface: every option
// enumerated in spec.md §6, as a typed tree, loaded from YAML or JSON and
// validated before the orchestrator runs.
package config

import (
	"github.com/woozymasta/terra-road-forge/internal/blend"
	"github.com/woozymasta/terra-road-forge/internal/junction"
	"github.com/woozymasta/terra-road-forge/internal/smoothing"
)

// MaterialConfig describes one terrain material: its storage index is
// its position in Config.Materials.
type MaterialConfig struct {
	Name           string  `json:"name" yaml:"name"`
	LayerMaskPath  string  `json:"layer_mask_path,omitempty" yaml:"layer_mask_path,omitempty"`
	TexturePath    string  `json:"texture_path,omitempty" yaml:"texture_path,omitempty"`
	RoughnessTexturePath string `json:"roughness_texture_path,omitempty" yaml:"roughness_texture_path,omitempty"`
	IsRoad         bool    `json:"is_road" yaml:"is_road"`
	FeaturesPath   string  `json:"features_path,omitempty" yaml:"features_path,omitempty"` // OSM-style feature list, alternative to LayerMaskPath
	RoadWidthMeters        float64 `json:"road_width_meters,omitempty" yaml:"road_width_meters,omitempty"`
	RoadSurfaceWidthMeters float64 `json:"road_surface_width_meters,omitempty" yaml:"road_surface_width_meters,omitempty"`
}

// MeshConfig bundles the optional mesh-feature flags and dimensions from
// spec.md §6's last configuration row.
type MeshConfig struct {
	SmoothNormals         bool    `json:"smooth_normals" yaml:"smooth_normals"`
	GenerateEndCaps       bool    `json:"generate_end_caps" yaml:"generate_end_caps"`
	IncludeShoulders      bool    `json:"include_shoulders" yaml:"include_shoulders"`
	ShoulderWidthMeters   float64 `json:"shoulder_width_meters,omitempty" yaml:"shoulder_width_meters,omitempty"`
	ShoulderDropMeters    float64 `json:"shoulder_drop_meters,omitempty" yaml:"shoulder_drop_meters,omitempty"`
	IncludeCurbs          bool    `json:"include_curbs" yaml:"include_curbs"`
	CurbWidthMeters       float64 `json:"curb_width_meters,omitempty" yaml:"curb_width_meters,omitempty"`
	CurbRiseMeters        float64 `json:"curb_rise_meters,omitempty" yaml:"curb_rise_meters,omitempty"`
	UseInnerProfile       bool    `json:"use_inner_profile" yaml:"use_inner_profile"`
	InnerProfileWidthFrac float64 `json:"inner_profile_width_fraction,omitempty" yaml:"inner_profile_width_fraction,omitempty"`
	CenterUV              bool    `json:"center_uv" yaml:"center_uv"`
	TextureRepeatMetersU  float64 `json:"texture_repeat_meters_u" yaml:"texture_repeat_meters_u"`
	TextureRepeatMetersV  float64 `json:"texture_repeat_meters_v" yaml:"texture_repeat_meters_v"`
}

// Config is the full pipeline configuration, per spec.md §6.
type Config struct {
	TerrainName string `json:"terrain_name" yaml:"terrain_name"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`

	SizePixels     int     `json:"size_pixels" yaml:"size_pixels"`
	MaxHeight      float64 `json:"max_height" yaml:"max_height"`
	BaseHeight     float64 `json:"base_height" yaml:"base_height"`
	MetersPerPixel float64 `json:"meters_per_pixel" yaml:"meters_per_pixel"`

	HeightmapPath string           `json:"heightmap_path" yaml:"heightmap_path"`
	Materials     []MaterialConfig `json:"materials" yaml:"materials"`

	TerrainAffectedRangeMeters float64 `json:"terrain_affected_range_meters" yaml:"terrain_affected_range_meters"`
	CrossSectionIntervalMeters float64 `json:"cross_section_interval_meters" yaml:"cross_section_interval_meters"`
	RoadMaxSlopeDegrees        float64 `json:"road_max_slope_degrees" yaml:"road_max_slope_degrees"`
	SideMaxSlopeDegrees        float64 `json:"side_max_slope_degrees" yaml:"side_max_slope_degrees"`
	BlendFunctionType          blend.BlendFunction `json:"blend_function_type" yaml:"blend_function_type"`

	UseButterworthFilter   bool    `json:"use_butterworth_filter" yaml:"use_butterworth_filter"`
	ButterworthFilterOrder int     `json:"butterworth_filter_order" yaml:"butterworth_filter_order"`
	SmoothingWindowSize    int     `json:"smoothing_window_size" yaml:"smoothing_window_size"`
	GlobalLevelingStrength float64 `json:"global_leveling_strength" yaml:"global_leveling_strength"`

	SmoothingKernelSize         int     `json:"smoothing_kernel_size" yaml:"smoothing_kernel_size"`
	SmoothingSigma              float64 `json:"smoothing_sigma" yaml:"smoothing_sigma"`
	SmoothingMaskExtensionMeters float64 `json:"smoothing_mask_extension_meters" yaml:"smoothing_mask_extension_meters"`
	SmoothingIterations         int     `json:"smoothing_iterations" yaml:"smoothing_iterations"`

	JunctionDetectionRadiusMeters float64                 `json:"junction_detection_radius_meters" yaml:"junction_detection_radius_meters"`
	JunctionBlendDistanceMeters   float64                 `json:"junction_blend_distance_meters" yaml:"junction_blend_distance_meters"`
	JunctionBlendFunctionType     junction.BlendFunction  `json:"junction_blend_function_type" yaml:"junction_blend_function_type"`
	EnableJunctionHarmonization   bool                    `json:"enable_junction_harmonization" yaml:"enable_junction_harmonization"`

	EnableEndpointTaper          bool    `json:"enable_endpoint_taper" yaml:"enable_endpoint_taper"`
	EndpointTaperDistanceMeters  float64 `json:"endpoint_taper_distance_meters" yaml:"endpoint_taper_distance_meters"`
	EndpointTerrainBlendStrength float64 `json:"endpoint_terrain_blend_strength" yaml:"endpoint_terrain_blend_strength"`

	DensifyMaxSpacingPixels        float64 `json:"densify_max_spacing_pixels" yaml:"densify_max_spacing_pixels"`
	SimplifyTolerancePixels        float64 `json:"simplify_tolerance_pixels" yaml:"simplify_tolerance_pixels"`
	MinPathLengthPixels            float64 `json:"min_path_length_pixels" yaml:"min_path_length_pixels"`
	BridgeEndpointMaxDistancePixels float64 `json:"bridge_endpoint_max_distance_pixels" yaml:"bridge_endpoint_max_distance_pixels"`
	JunctionAngleThresholdDegrees   float64 `json:"junction_angle_threshold_degrees" yaml:"junction_angle_threshold_degrees"`
	OrderingNeighborRadiusPixels    float64 `json:"ordering_neighbor_radius_pixels" yaml:"ordering_neighbor_radius_pixels"`

	SplineTension    float64 `json:"spline_tension" yaml:"spline_tension"`
	SplineContinuity float64 `json:"spline_continuity" yaml:"spline_continuity"`
	SplineBias       float64 `json:"spline_bias" yaml:"spline_bias"`

	Mesh MeshConfig `json:"mesh" yaml:"mesh"`

	ExclusionMaskPath string `json:"exclusion_mask_path,omitempty" yaml:"exclusion_mask_path,omitempty"`
	WorkerCount       int    `json:"worker_count,omitempty" yaml:"worker_count,omitempty"`
}

// SmoothingConfig projects the subset of Config that internal/smoothing
// needs into its own Config type.
func (c Config) SmoothingConfig() smoothing.Config {
	filter := smoothing.FilterBox
	if c.UseButterworthFilter {
		filter = smoothing.FilterButterworth
	}
	return smoothing.Config{
		Filter:                 filter,
		ButterworthFilterOrder: c.ButterworthFilterOrder,
		SmoothingWindowSize:    c.SmoothingWindowSize,
		GlobalLevelingStrength: c.GlobalLevelingStrength,
		TerrainAffectedRangeM:  c.TerrainAffectedRangeMeters,
		RoadMaxSlopeDegrees:    c.RoadMaxSlopeDegrees,
	}
}

// JunctionConfig projects Config into internal/junction's Config type.
func (c Config) JunctionConfig() junction.Config {
	return junction.Config{
		DetectionRadiusM:             c.JunctionDetectionRadiusMeters,
		BlendDistanceM:               c.JunctionBlendDistanceMeters,
		BlendFunction:                c.JunctionBlendFunctionType,
		EnableJunctionHarmonization:  c.EnableJunctionHarmonization,
		EnableEndpointTaper:          c.EnableEndpointTaper,
		EndpointTaperDistanceM:       c.EndpointTaperDistanceMeters,
		EndpointTerrainBlendStrength: c.EndpointTerrainBlendStrength,
	}
}

// BlendConfig projects Config into internal/blend's Config type.
func (c Config) BlendConfig() blend.Config {
	return blend.Config{
		TerrainAffectedRangeM:   c.TerrainAffectedRangeMeters,
		SideMaxSlopeDegrees:     c.SideMaxSlopeDegrees,
		BlendFunction:           c.BlendFunctionType,
		SmoothingMaskExtensionM: c.SmoothingMaskExtensionMeters,
		SmoothingKernelSize:     c.SmoothingKernelSize,
		SmoothingSigma:          c.SmoothingSigma,
		SmoothingIterations:     c.SmoothingIterations,
	}
}
