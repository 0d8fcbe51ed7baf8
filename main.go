package main

import (
	"fmt"
	"os"

	"github.com/skeld-sh/skeld/cmd"
	"github.com/skeld-sh/skeld/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Forwarded child exit codes carry no message of their own, the
		// child already reported its failure.
		if !errors.IsExitStatus(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(errors.GetExitCode(err))
	}
}
