package main

import (
	"fmt"
	"os"

	"github.com/heartmarshall/glossync/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "glossync: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
