package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/woozymasta/terra-road-forge/internal/config"
	"github.com/woozymasta/terra-road-forge/internal/errs"
	"github.com/woozymasta/terra-road-forge/internal/logging"
	"github.com/woozymasta/terra-road-forge/internal/pipeline"
	"github.com/woozymasta/terra-road-forge/internal/raster"
)

type buildCmd struct {
	Args struct {
		Config string `positional-arg-name:"CONFIG" required:"true" description:"Pipeline config file (yaml/json)"`
	} `positional-args:"true"`

	TerOut      string `long:"ter-out" description:"Output .ter path (default: <output_dir>/<terrain_name>.ter)"`
	ColladaOut  string `long:"collada-out" description:"Output Collada path (default: <output_dir>/<terrain_name>.dae)"`
	DebugHeight string `long:"debug-heightmap" description:"Write the smoothed heightmap PNG here (default: skipped)"`
	Workers     int    `short:"w" long:"workers" description:"Override worker count from the config file"`
}

// Execute runs the full pipeline and writes its artifacts to disk.
func (c *buildCmd) Execute(_ []string) error {
	cfg, err := config.Load(c.Args.Config)
	if err != nil {
		return err
	}
	if c.Workers > 0 {
		cfg.WorkerCount = c.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.NewStdLogger()
	orch := pipeline.New(logger, cfg.WorkerCount)

	result, err := orch.Run(ctx, cfg)
	if err != nil {
		return err
	}

	terOut := c.TerOut
	if terOut == "" {
		terOut = filepath.Join(cfg.OutputDir, cfg.TerrainName+".ter")
	}
	if err := os.WriteFile(terOut, result.TerrainBytes, 0o644); err != nil {
		return errs.NewIOError("write", terOut, err)
	}

	if len(result.ColladaBytes) > 0 {
		colladaOut := c.ColladaOut
		if colladaOut == "" {
			colladaOut = filepath.Join(cfg.OutputDir, cfg.TerrainName+".dae")
		}
		if err := os.WriteFile(colladaOut, result.ColladaBytes, 0o644); err != nil {
			return errs.NewIOError("write", colladaOut, err)
		}
	}

	if c.DebugHeight != "" {
		if err := raster.WriteHeightmapPNG(c.DebugHeight, result.SmoothedHeightmap, cfg.MaxHeight); err != nil {
			return err
		}
	}

	logging.Infof(logger, "build", "", "wrote %s (%d splines, %d junctions)", terOut, len(result.Network.Splines), len(result.Network.Junctions))
	for _, s := range result.MaterialSummaries {
		logging.Infof(logger, "build", s.Name, "dominant color %s", s.DominantColorHex)
	}
	return nil
}
