package main

import (
	"fmt"
	"os"

	"github.com/miles-bartnik/tyr/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tyr:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
