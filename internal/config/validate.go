package config

import (
	"github.com/woozymasta/terra-road-forge/internal/errs"
	"github.com/woozymasta/terra-road-forge/internal/raster"
)

// Validate aggregates every component's validation rule against cfg, per
// spec.md §7 ("ValidationError... surfaced at load time; abort").
func (c Config) Validate() error {
	if !raster.IsAllowedSize(c.SizePixels) {
		return errs.NewValidationError("SizePixels", "must be a power of two in {256,512,1024,2048,4096,8192,16384}")
	}
	if c.MaxHeight <= 0 {
		return errs.NewValidationError("MaxHeight", "must be > 0")
	}
	if c.MetersPerPixel <= 0 {
		return errs.NewValidationError("MetersPerPixel", "must be > 0")
	}
	if len(c.Materials) == 0 {
		return errs.NewValidationError("Materials", "at least one material is required")
	}
	for _, m := range c.Materials {
		if m.Name == "" {
			return errs.NewValidationError("Materials", "every material needs a name")
		}
		if m.IsRoad && m.RoadWidthMeters <= 0 {
			return errs.NewValidationError("Materials", "road material "+m.Name+" needs RoadWidthMeters > 0")
		}
		if m.IsRoad && m.RoadSurfaceWidthMeters > m.RoadWidthMeters {
			return errs.NewValidationError("Materials", "road material "+m.Name+" has RoadSurfaceWidthMeters wider than RoadWidthMeters")
		}
		if m.IsRoad {
			maxInterval := (m.RoadWidthMeters/2 + c.TerrainAffectedRangeMeters) / 3
			if c.CrossSectionIntervalMeters > maxInterval {
				return errs.NewValidationError("CrossSectionIntervalMeters", "road material "+m.Name+" needs CrossSectionIntervalMeters <= (RoadWidthMeters/2 + TerrainAffectedRangeMeters)/3")
			}
		}
	}

	if err := c.SmoothingConfig().Validate(); err != nil {
		return err
	}

	if c.SideMaxSlopeDegrees <= 0 || c.SideMaxSlopeDegrees >= 90 {
		return errs.NewValidationError("SideMaxSlopeDegrees", "must be in (0,90)")
	}
	if c.RoadMaxSlopeDegrees <= 0 || c.RoadMaxSlopeDegrees >= 90 {
		return errs.NewValidationError("RoadMaxSlopeDegrees", "must be in (0,90)")
	}
	if c.TerrainAffectedRangeMeters <= 0 {
		return errs.NewValidationError("TerrainAffectedRangeMeters", "must be > 0")
	}
	if c.CrossSectionIntervalMeters <= 0 {
		return errs.NewValidationError("CrossSectionIntervalMeters", "must be > 0")
	}
	if c.JunctionDetectionRadiusMeters <= 0 {
		return errs.NewValidationError("JunctionDetectionRadiusMeters", "must be > 0")
	}
	if c.Mesh.TextureRepeatMetersU <= 0 || c.Mesh.TextureRepeatMetersV <= 0 {
		return errs.NewValidationError("TextureRepeatMeters", "U and V must be > 0")
	}
	if c.Mesh.UseInnerProfile && (c.Mesh.InnerProfileWidthFrac <= 0 || c.Mesh.InnerProfileWidthFrac >= 1) {
		return errs.NewValidationError("InnerProfileWidthFraction", "must be in (0,1)")
	}
	if c.WorkerCount < 0 {
		return errs.NewValidationError("WorkerCount", "must be >= 0")
	}

	return nil
}
