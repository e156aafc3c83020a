// Package main provides the hwdb binary serving the terminal inventory API.
//
// Usage:
//
//	hwdb serve [--config path] [--import path] [--watch]
//	hwdb import <path> [--config path]
//	hwdb version
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// Server errors are logged where they happen.
		var sErr *ServerError
		if errors.As(err, &sErr) {
			return sErr.ExitCode
		}
		fmt.Fprintf(os.Stderr, "hwdb: %v\n", err)
		return ExitConfigError
	}

	return ExitSuccess
}
