// Command relgraph runs graph queries over relational tables.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/relgraph/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
