// Command terra-road-forge builds BeamNG.drive terrain and road assets
// from a heightmap, road masks or OSM-style feature lists, and a config
// file, and can inspect or decode .ter files directly.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/terra-road-forge/internal/vars"
)

// Exit codes, per the documented CLI contract: 0 success, 2 validation
// error or corrupt input, 3 I/O error, 4 unsupported format, 1 anything
// else.
const (
	exitOK                 = 0
	exitValidationError    = 2
	exitIOError            = 3
	exitUnsupportedFormat  = 4
	exitUnexpected         = 1
)

type rootCmd struct {
	Version versionCmd `command:"version" description:"Show version information"`
	Build   buildCmd   `command:"build" description:"Run the full terrain + road pipeline"`
	Ter     terCmd     `command:"ter" description:"Inspect or decode .ter files directly"`
	Config  configCmd  `command:"config" description:"Export pipeline config files as portable JSON"`
}

func main() {
	var root rootCmd
	parser := flags.NewParser(&root, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			os.Exit(exitOK)
		}
		os.Exit(exitCodeFor(err))
	}
}

type versionCmd struct{}

// Execute prints the version banner.
func (c *versionCmd) Execute(_ []string) error {
	vars.Print()
	return nil
}
