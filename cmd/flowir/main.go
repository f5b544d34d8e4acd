// Command flowir loads CUE operator catalogs into the dataflow graph IR.
package main

import (
	"os"

	"github.com/roach88/flowir/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
