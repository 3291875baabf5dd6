// Command gogreen paints text or random activity onto a year of a git
// contribution graph with backdated commits.
package main

import (
	"fmt"
	"os"

	"github.com/sfrayan/goGreen/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
