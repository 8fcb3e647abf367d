// Command vessel is the dev container feature composition engine's CLI
// entrypoint.
package main

import (
	"os"

	"github.com/corewright/vessel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
