package main

import (
	"fmt"
	"os"

	"github.com/woozymasta/terra-road-forge/internal/errs"
	"github.com/woozymasta/terra-road-forge/internal/raster"
	"github.com/woozymasta/terra-road-forge/internal/terrain"
)

type terCmd struct {
	Inspect terInspectCmd `command:"inspect" description:"Print a .ter file's header and material list"`
	Decode  terDecodeCmd  `command:"decode" description:"Decode a .ter file into a 16-bit heightmap PNG"`
}

type terInspectCmd struct {
	Args struct {
		Input string `positional-arg-name:"TER" required:"true" description:"Input .ter file"`
	} `positional-args:"true"`
}

// Execute prints a .ter file's size, material list, and hole count.
func (c *terInspectCmd) Execute(_ []string) error {
	data, err := os.ReadFile(c.Args.Input)
	if err != nil {
		return errs.NewIOError("read", c.Args.Input, err)
	}

	t, err := terrain.Decode(data)
	if err != nil {
		return err
	}

	fmt.Printf("size: %dx%d\n", t.Heights.Size, t.Heights.Size)
	fmt.Printf("layer texture block: %v\n", t.HasLayerTextureBlock)
	fmt.Printf("materials: %d\n", len(t.Materials))
	holes := 0
	for _, idx := range t.MaterialOf {
		if idx == terrain.HoleIndex {
			holes++
		}
	}
	for i, m := range t.Materials {
		painted := 0
		if m.Layer != nil {
			painted = m.Layer.Count()
		}
		fmt.Printf("  [%d] %s: %d pixels\n", i, m.Name, painted)
	}
	fmt.Printf("holes: %d\n", holes)
	return nil
}

type terDecodeCmd struct {
	Args struct {
		Input  string `positional-arg-name:"TER" required:"true" description:"Input .ter file"`
		Output string `positional-arg-name:"OUT" required:"true" description:"Output heightmap PNG"`
	} `positional-args:"true"`

	MaxHeight float64 `long:"max-height" default:"255" description:"Max height used to rescale the heightmap"`
}

// Execute decodes a .ter file's heights into a 16-bit grayscale PNG.
func (c *terDecodeCmd) Execute(_ []string) error {
	data, err := os.ReadFile(c.Args.Input)
	if err != nil {
		return errs.NewIOError("read", c.Args.Input, err)
	}

	t, err := terrain.Decode(data)
	if err != nil {
		return err
	}

	hm := t.ToMeters(c.MaxHeight)
	return raster.WriteHeightmapPNG(c.Args.Output, hm, c.MaxHeight)
}
