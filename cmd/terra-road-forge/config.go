package main

import (
	"encoding/json"
	"os"

	"github.com/woozymasta/terra-road-forge/internal/config"
	"github.com/woozymasta/terra-road-forge/internal/errs"
)

type configCmd struct {
	Export configExportCmd `command:"export" description:"Export a resolved config as a portable, path-free JSON document"`
}

type configExportCmd struct {
	Args struct {
		Config string `positional-arg-name:"CONFIG" required:"true" description:"Pipeline config file (yaml/json)"`
		Output string `positional-arg-name:"OUT" required:"true" description:"Portable JSON output path"`
	} `positional-args:"true"`
}

// Execute loads and resolves a config, strips its file-system paths, and
// writes the portable form for sharing between projects.
func (c *configExportCmd) Execute(_ []string) error {
	cfg, err := config.Load(c.Args.Config)
	if err != nil {
		return err
	}

	portable := config.ToPortableConfig(cfg)
	data, err := json.MarshalIndent(portable, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.Args.Output, data, 0o644); err != nil {
		return errs.NewIOError("write", c.Args.Output, err)
	}
	return nil
}
