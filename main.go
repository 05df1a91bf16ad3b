package main

import (
	"errors"
	"os"

	"github.com/ca-srg/readmelater/cmd"
	"github.com/ca-srg/readmelater/internal/poster"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(int(poster.ExitUsage))
	}
}
