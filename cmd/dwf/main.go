// Package main provides the entry point for the dwf CLI.
package main

import (
	"os"

	"github.com/devflow-sh/devflow/internal/cli"
	dferrors "github.com/devflow-sh/devflow/internal/errors"
	"github.com/devflow-sh/devflow/internal/output"
)

func main() {
	err := cli.Execute()
	if err != nil {
		output.PrintError(err)
	}
	os.Exit(dferrors.ExitCode(err))
}
