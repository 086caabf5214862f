// Command flux packs, extracts, inspects, and syncs file archives.
package main

import (
	"os"

	"github.com/silvanwing/flux"
	"github.com/silvanwing/flux/cmd/flux/cli"
)

func main() {
	os.Exit(flux.ExitCode(cli.Execute()))
}
