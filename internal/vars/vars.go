// Package vars holds build-time version information.
package vars

import "fmt"

// These are overridden at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Print writes the version banner to stdout.
func Print() {
	fmt.Printf("terra-road-forge %s (commit %s, built %s)\n", Version, Commit, Date)
}
