package main

import (
	"os"

	"github.com/nlstn/go-rql/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		cli.PrintDiagnostic(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
