package config

// PortableConfig is a "clean export" of a resolved Config: no file-system
// paths, no working-directory state, computed defaults filled in.
// Intended for sharing a pipeline configuration between projects, ported
// from the teacher's PortableConfig/ToPortableConfig idiom.
type PortableConfig struct {
	SizePixels     int                `json:"size_pixels"`
	MaxHeight      float64            `json:"max_height"`
	BaseHeight     float64            `json:"base_height"`
	MetersPerPixel float64            `json:"meters_per_pixel"`
	Materials      []PortableMaterial `json:"materials"`
	Mesh           MeshConfig         `json:"mesh"`
}

// PortableMaterial strips file-system paths from MaterialConfig, keeping
// only the values meaningful outside this project's directory layout.
type PortableMaterial struct {
	Name                   string  `json:"name"`
	IsRoad                 bool    `json:"is_road"`
	RoadWidthMeters        float64 `json:"road_width_meters,omitempty"`
	RoadSurfaceWidthMeters float64 `json:"road_surface_width_meters,omitempty"`
}

// ToPortableConfig converts a resolved Config to its portable form.
func ToPortableConfig(cfg Config) PortableConfig {
	out := PortableConfig{
		SizePixels:     cfg.SizePixels,
		MaxHeight:      cfg.MaxHeight,
		BaseHeight:     cfg.BaseHeight,
		MetersPerPixel: cfg.MetersPerPixel,
		Mesh:           cfg.Mesh,
	}
	for _, m := range cfg.Materials {
		out.Materials = append(out.Materials, PortableMaterial{
			Name:                   m.Name,
			IsRoad:                 m.IsRoad,
			RoadWidthMeters:        m.RoadWidthMeters,
			RoadSurfaceWidthMeters: m.RoadSurfaceWidthMeters,
		})
	}
	return out
}
