// Command furtest runs the fur toolchain's golden-output conformance suite.
package main

import (
	"fmt"
	"os"

	"github.com/kerkeslager/fur-infinity/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "furtest: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
