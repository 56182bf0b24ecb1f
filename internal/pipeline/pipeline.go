// Package pipeline is the dependency-ordered orchestrator tying every
// other component together, per spec.md §4.11/§5/§7.
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/woozymasta/terra-road-forge/internal/blend"
	"github.com/woozymasta/terra-road-forge/internal/collada"
	"github.com/woozymasta/terra-road-forge/internal/config"
	"github.com/woozymasta/terra-road-forge/internal/errs"
	"github.com/woozymasta/terra-road-forge/internal/junction"
	"github.com/woozymasta/terra-road-forge/internal/logging"
	"github.com/woozymasta/terra-road-forge/internal/raster"
	"github.com/woozymasta/terra-road-forge/internal/roadmesh"
	"github.com/woozymasta/terra-road-forge/internal/roadnet"
	"github.com/woozymasta/terra-road-forge/internal/smoothing"
	"github.com/woozymasta/terra-road-forge/internal/terrain"
)

// SplineState is a spline's position in the per-spline state machine,
// per spec.md §4.11.
type SplineState int

const (
	StateRaw SplineState = iota
	StateOrdered
	StateSmoothed
	StateHarmonized
	StateEmbedded
	StateMeshed
)

func (s SplineState) String() string {
	switch s {
	case StateRaw:
		return "Raw"
	case StateOrdered:
		return "Ordered"
	case StateSmoothed:
		return "Smoothed"
	case StateHarmonized:
		return "Harmonized"
	case StateEmbedded:
		return "Embedded"
	case StateMeshed:
		return "Meshed"
	default:
		return "Unknown"
	}
}

// SplineRecord tracks one spline's terminal state and any recovered
// error, for the orchestrator's per-spline error policy.
type SplineRecord struct {
	SplineID roadnet.SplineIndex
	State    SplineState
	Err      error
}

// Result is everything the orchestrator produced.
type Result struct {
	Network              *roadnet.UnifiedRoadNetwork
	TerrainBytes         []byte
	SmoothedHeightmap    *raster.Heightmap
	ColladaBytes         []byte
	SplineRecords        []SplineRecord
	MaterialSummaries    []MaterialSummary
}

// MaterialSummary reports the dominant color/roughness sampled from a
// material's source texture over its painted area, per spec.md §4.1's
// extract_dominant_color/extract_dominant_roughness operations.
type MaterialSummary struct {
	Name              string
	DominantColorHex  string
	DominantRoughness byte
	HasRoughness      bool
}

// Orchestrator runs the full pipeline, per spec.md §4.11.
type Orchestrator struct {
	Logger  logging.Logger
	Workers int
}

// New builds an Orchestrator. A nil logger discards every record.
func New(logger logging.Logger, workers int) *Orchestrator {
	if logger == nil {
		logger = logging.Nop{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{Logger: logger, Workers: workers}
}

type materialExtraction struct {
	materialIndex int
	splines       []extractedSpline
	mask          *raster.Mask
	err           error
}

type extractedSpline struct {
	spline   roadnet.Spline
	sections []roadnet.CrossSection
}

// Run executes validate_inputs -> parse -> per-material extract/sample/
// smooth -> build unified network -> harmonize junctions -> blend
// terrain -> assemble material raster -> encode .ter -> build road mesh
// -> export Collada, checking ctx between phases.
func (o *Orchestrator) Run(ctx context.Context, cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	original, err := raster.ReadHeightmapPNG(cfg.HeightmapPath, cfg.MaxHeight)
	if err != nil {
		return nil, err
	}

	var exclusion *raster.Mask
	if cfg.ExclusionMaskPath != "" {
		exclusion, err = raster.ReadMaskPNG(cfg.ExclusionMaskPath, cfg.SizePixels)
		if err != nil {
			return nil, err
		}
	}

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	extractions, err := o.extractAllMaterials(ctx, cfg, original)
	if err != nil {
		return nil, err
	}

	net := roadnet.NewUnifiedRoadNetwork()
	records := mergeExtractions(net, extractions)

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	osmHints := collectOSMHints(cfg)
	jcfg := cfg.JunctionConfig()
	junctionIDs := junction.DetectJunctions(net, jcfg, osmHints)
	junction.Harmonize(net, junctionIDs, jcfg)
	junctioned := memberSplineSet(net, junctionIDs)
	junction.ApplyEndpointTaper(net, junctioned, jcfg)
	markHarmonized(records, net, junctionIDs)

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	working := original.Clone()
	protection := blend.Blend(working, original, net, exclusion, cfg.MetersPerPixel, cfg.BlendConfig())
	markEmbedded(records)

	materials := assembleMaterials(cfg, extractions, protection)
	summaries := o.summarizeMaterials(cfg, materials)

	terBytes, err := terrain.Encode(working, materials, terrain.EncodeOptions{MaxHeight: cfg.MaxHeight})
	if err != nil {
		return nil, err
	}

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}

	namedMeshes := o.buildRoadMeshes(cfg, net)
	markMeshed(records)

	var colladaBytes []byte
	if len(namedMeshes) > 0 {
		colladaBytes, err = collada.Write(namedMeshes)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Network:           net,
		TerrainBytes:      terBytes,
		SmoothedHeightmap: working,
		ColladaBytes:      colladaBytes,
		SplineRecords:     records,
		MaterialSummaries: summaries,
	}, nil
}

// summarizeMaterials samples each material's source texture (and, if
// configured, its roughness texture) over its painted area to report a
// dominant color and roughness, per spec.md §4.1. Materials with no
// texture fall back to a deterministic synthesized color.
func (o *Orchestrator) summarizeMaterials(cfg config.Config, materials []terrain.Material) []MaterialSummary {
	out := make([]MaterialSummary, 0, len(materials))
	for i, m := range materials {
		summary := MaterialSummary{Name: m.Name}

		var matCfg config.MaterialConfig
		if i < len(cfg.Materials) {
			matCfg = cfg.Materials[i]
		}

		if matCfg.TexturePath != "" && m.Layer != nil {
			tex, err := raster.ReadTextureImage(matCfg.TexturePath)
			if err != nil {
				logging.Warnf(o.Logger, "colors", m.Name, "failed to read texture %s: %v", matCfg.TexturePath, err)
			} else {
				summary.DominantColorHex = terrain.ExtractDominantColor(tex, m.Layer, cfg.SizePixels)
			}
		}
		if summary.DominantColorHex == "" {
			r, g, b := terrain.DefaultMaterialColor(m.Name)
			summary.DominantColorHex = terrain.RGBToHex(r, g, b)
		}

		if matCfg.RoughnessTexturePath != "" && m.Layer != nil {
			tex, err := raster.ReadTextureImage(matCfg.RoughnessTexturePath)
			if err != nil {
				logging.Warnf(o.Logger, "colors", m.Name, "failed to read roughness texture %s: %v", matCfg.RoughnessTexturePath, err)
			} else {
				summary.DominantRoughness = terrain.ExtractDominantRoughness(tex, m.Layer, cfg.SizePixels)
				summary.HasRoughness = true
			}
		}

		out = append(out, summary)
	}
	return out
}

func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// extractAllMaterials runs extract/sample/smooth for every road material
// across the bounded worker pool; each worker writes only into its own
// materialExtraction slot, so no arena is shared during this phase, per
// spec.md §5.
func (o *Orchestrator) extractAllMaterials(ctx context.Context, cfg config.Config, original *raster.Heightmap) ([]materialExtraction, error) {
	results := make([]materialExtraction, len(cfg.Materials))
	p := newPool(o.Workers)

	err := p.runIndexed(ctx, len(cfg.Materials), func(i int) error {
		mat := cfg.Materials[i]
		results[i] = materialExtraction{materialIndex: i}
		if !mat.IsRoad {
			if mat.LayerMaskPath != "" {
				mask, err := raster.ReadMaskPNG(mat.LayerMaskPath, cfg.SizePixels)
				if err != nil {
					results[i].err = err
					return err
				}
				results[i].mask = mask
			}
			return nil
		}

		splines, mask, err := o.extractMaterial(i, mat, cfg, original)
		if err != nil {
			results[i].err = err
			return err
		}
		results[i].splines = splines
		results[i].mask = mask
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) extractMaterial(materialIndex int, mat config.MaterialConfig, cfg config.Config, original *raster.Heightmap) ([]extractedSpline, *raster.Mask, error) {
	extractCfg := roadnet.ExtractConfig{
		JunctionAngleThresholdDeg:       cfg.JunctionAngleThresholdDegrees,
		BridgeEndpointMaxDistancePixels: cfg.BridgeEndpointMaxDistancePixels,
		DensifyMaxSpacingPixels:         cfg.DensifyMaxSpacingPixels,
		SimplifyTolerancePixels:         cfg.SimplifyTolerancePixels,
		MinPathLengthPixels:             cfg.MinPathLengthPixels,
		OrderingNeighborRadiusPixels:    cfg.OrderingNeighborRadiusPixels,
		Tension:                         cfg.SplineTension,
		Continuity:                      cfg.SplineContinuity,
		Bias:                            cfg.SplineBias,
		MaterialID:                      materialIndex,
	}

	var rawSplines []roadnet.Spline
	var mask *raster.Mask
	var err error

	if mat.FeaturesPath != "" {
		features, ferr := loadFeatures(mat.FeaturesPath)
		if ferr != nil {
			return nil, nil, ferr
		}
		rawSplines = roadnet.ExtractFromFeatures(features, extractCfg)
	} else {
		mask, err = raster.ReadMaskPNG(mat.LayerMaskPath, cfg.SizePixels)
		if err != nil {
			return nil, nil, err
		}
		rawSplines = roadnet.ExtractFromMask(mask, extractCfg)
	}

	sampleCfg := roadnet.SampleConfig{
		CrossSectionIntervalMeters: cfg.CrossSectionIntervalMeters,
		RoadWidthMeters:            mat.RoadWidthMeters,
		RoadSurfaceWidthMeters:     mat.RoadSurfaceWidthMeters,
		MetersPerPixel:             cfg.MetersPerPixel,
	}

	smoothCfg := cfg.SmoothingConfig()

	var out []extractedSpline
	for _, raw := range rawSplines {
		local := roadnet.NewUnifiedRoadNetwork()
		id := local.AddSpline(raw)
		_, serr := roadnet.SampleCrossSections(local, id, original, cfg.MetersPerPixel, sampleCfg)
		if serr != nil {
			logging.Warnf(o.Logger, "extract", "", "skipping degenerate spline: %v", serr)
			continue
		}
		spline := local.Splines[id]
		sections := gatherSectionsFor(local, spline.CrossSections)
		smoothSections(sections, smoothCfg)
		out = append(out, extractedSpline{spline: spline, sections: sections})
	}

	return out, mask, nil
}

func gatherSectionsFor(net *roadnet.UnifiedRoadNetwork, indices []roadnet.CrossSectionIndex) []roadnet.CrossSection {
	out := make([]roadnet.CrossSection, len(indices))
	for i, idx := range indices {
		out[i] = net.CrossSections[idx]
	}
	return out
}

// smoothSections runs the C8 filter/level/slope-enforce chain over one
// spline's cross-sections, mutating TargetElevation in place. The starting
// profile is each section's SampledTerrainElevation (the centre-line
// sample); no median of perpendicular samples is taken here.
func smoothSections(sections []roadnet.CrossSection, cfg smoothing.Config) {
	if len(sections) == 0 {
		return
	}
	distances := make([]float64, len(sections))
	profile := make([]float64, len(sections))
	for i, cs := range sections {
		distances[i] = cs.DistanceAlongSpline
		profile[i] = cs.SampledTerrainElevation
	}

	filtered := smoothing.Filter(profile, distances, cfg)

	var target float64
	for _, v := range filtered {
		target += v
	}
	if len(filtered) > 0 {
		target /= float64(len(filtered))
	}
	leveled := smoothing.GlobalLevel(filtered, target, cfg.GlobalLevelingStrength)

	enforced, _ := smoothing.EnforceMaxSlope(leveled, distances, cfg.RoadMaxSlopeDegrees, 50)

	for i := range sections {
		sections[i].TargetElevation = enforced[i]
	}
}

// mergeExtractions sequentially appends every material's extracted
// splines/sections into net, in ascending material index then ascending
// extraction order, for bit-identical arena ordering across runs.
func mergeExtractions(net *roadnet.UnifiedRoadNetwork, extractions []materialExtraction) []SplineRecord {
	var records []SplineRecord
	for _, me := range extractions {
		for _, es := range me.splines {
			es.spline.CrossSections = nil // stale indices into the per-material local arena
			id := net.AddSpline(es.spline)
			for i := range es.sections {
				es.sections[i].OwnerSplineID = id
				es.sections[i].LocalIndex = i
				es.sections[i].ID = 0
			}
			for _, cs := range es.sections {
				if _, err := net.AddCrossSection(cs); err != nil {
					records = append(records, SplineRecord{SplineID: id, State: StateRaw, Err: err})
					break
				}
			}
			records = append(records, SplineRecord{SplineID: id, State: StateOrdered})
		}
	}
	for i := range records {
		if records[i].Err == nil {
			records[i].State = StateSmoothed
		}
	}
	return records
}

func collectOSMHints(cfg config.Config) []roadnet.JunctionHint {
	var hints []roadnet.JunctionHint
	for _, mat := range cfg.Materials {
		if mat.FeaturesPath == "" {
			continue
		}
		features, err := loadFeatures(mat.FeaturesPath)
		if err != nil {
			continue
		}
		hints = append(hints, roadnet.ExtractJunctionHints(features)...)
	}
	return hints
}

func loadFeatures(path string) ([]roadnet.Feature, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.NewIOError("read", path, err)
	}
	var decoded []struct {
		Kind   string            `json:"kind"`
		Coords [][2]float64      `json:"coords"`
		Tags   map[string]string `json:"tags"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &errs.CorruptInputError{Reason: "features file: " + err.Error()}
	}
	out := make([]roadnet.Feature, len(decoded))
	for i, d := range decoded {
		kind := roadnet.FeatureLine
		if d.Kind == "polygon" {
			kind = roadnet.FeaturePolygon
		}
		coords := make([]roadnet.Point2, len(d.Coords))
		for j, c := range d.Coords {
			coords[j] = roadnet.Point2{X: c[0], Y: c[1]}
		}
		out[i] = roadnet.Feature{Kind: kind, Coords: coords, Tags: d.Tags}
	}
	return out, nil
}

func memberSplineSet(net *roadnet.UnifiedRoadNetwork, ids []roadnet.JunctionIndex) map[roadnet.SplineIndex]bool {
	out := map[roadnet.SplineIndex]bool{}
	for _, id := range ids {
		for _, s := range net.Junctions[id].MemberSplineIDs {
			out[s] = true
		}
	}
	return out
}

func markHarmonized(records []SplineRecord, net *roadnet.UnifiedRoadNetwork, junctionIDs []roadnet.JunctionIndex) {
	members := memberSplineSet(net, junctionIDs)
	for i := range records {
		if records[i].Err != nil {
			continue
		}
		if members[records[i].SplineID] {
			records[i].State = StateHarmonized
		}
	}
}

func markEmbedded(records []SplineRecord) {
	for i := range records {
		if records[i].Err == nil {
			records[i].State = StateEmbedded
		}
	}
}

func markMeshed(records []SplineRecord) {
	for i := range records {
		if records[i].Err == nil {
			records[i].State = StateMeshed
		}
	}
}

// assembleMaterials folds the protection mask back into each road
// material's painted layer, so pixels the blender claimed (even beyond
// the originally-painted mask, e.g. after width changes) resolve to that
// material on encode, per spec.md §4.11's "assemble material-index
// raster" step.
func assembleMaterials(cfg config.Config, extractions []materialExtraction, protection *raster.Mask) []terrain.Material {
	materials := make([]terrain.Material, len(cfg.Materials))
	for i, mat := range cfg.Materials {
		layer := extractions[i].mask
		if mat.IsRoad && protection != nil {
			layer = unionMask(layer, protection, cfg.SizePixels)
		}
		materials[i] = terrain.Material{Name: mat.Name, Layer: layer}
	}
	return materials
}

func unionMask(base *raster.Mask, extra *raster.Mask, size int) *raster.Mask {
	out := raster.NewMask(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := extra.At(x, y)
			if base != nil {
				v = v || base.At(x, y)
			}
			out.Set(x, y, v)
		}
	}
	return out
}

// buildRoadMeshes builds one ribbon per spline, sorted by spline ID for
// deterministic Collada node order.
func (o *Orchestrator) buildRoadMeshes(cfg config.Config, net *roadnet.UnifiedRoadNetwork) []collada.NamedMesh {
	worldOrigin := roadnet.Point2{
		X: float64(cfg.SizePixels) / 2 * cfg.MetersPerPixel,
		Y: float64(cfg.SizePixels) / 2 * cfg.MetersPerPixel,
	}

	ids := make([]roadnet.SplineIndex, 0, len(net.Splines))
	for _, s := range net.Splines {
		ids = append(ids, s.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	meshCfg := roadmesh.Config{
		BaseHeightM:           cfg.BaseHeight,
		TextureRepeatMetersU:  cfg.Mesh.TextureRepeatMetersU,
		TextureRepeatMetersV:  cfg.Mesh.TextureRepeatMetersV,
		CenterUV:              cfg.Mesh.CenterUV,
		IncludeShoulders:      cfg.Mesh.IncludeShoulders,
		ShoulderWidthM:        cfg.Mesh.ShoulderWidthMeters,
		ShoulderDropM:         cfg.Mesh.ShoulderDropMeters,
		IncludeCurbs:          cfg.Mesh.IncludeCurbs,
		CurbWidthM:            cfg.Mesh.CurbWidthMeters,
		CurbRiseM:             cfg.Mesh.CurbRiseMeters,
		UseInnerProfile:       cfg.Mesh.UseInnerProfile,
		InnerProfileWidthFrac: cfg.Mesh.InnerProfileWidthFrac,
		SmoothNormals:         cfg.Mesh.SmoothNormals,
	}

	var out []collada.NamedMesh
	for _, id := range ids {
		spline := net.Splines[id]
		if len(spline.CrossSections) < 2 {
			continue
		}
		sections := gatherSectionsFor(net, spline.CrossSections)
		mesh := roadmesh.Build(sections, worldOrigin, meshCfg)
		if meshCfg.IncludeShoulders {
			mesh.Merge(roadmesh.BuildShoulders(sections, worldOrigin, meshCfg))
		}
		if meshCfg.IncludeCurbs {
			mesh.Merge(roadmesh.BuildCurbs(sections, worldOrigin, meshCfg))
		}
		name := splineName(cfg, spline)
		out = append(out, collada.NamedMesh{Name: name, Mesh: mesh})
	}
	return out
}

func splineName(cfg config.Config, spline roadnet.Spline) string {
	materialName := "road"
	if spline.MaterialID >= 0 && spline.MaterialID < len(cfg.Materials) {
		materialName = cfg.Materials[spline.MaterialID].Name
	}
	return config.StableEntityID(materialName, int(spline.ID))
}
