// Command bomgraph maintains per-tenant product composition graphs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/bomgraph/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "bomgraph:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
