// Command symcore evaluates and simplifies symbolic expressions.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/symcore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
