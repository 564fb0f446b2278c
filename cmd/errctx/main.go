// Command errctx generates context-carrying extensions of error enums. Run it through go:generate in the package that
// declares the enums:
//
//	//go:generate errctx
//
//	//errctx:context "Custom context message: {0}"
//	type MathError int
//
// See package github.com/eluv-io/errctx-go for the generated API.
package main

import (
	"fmt"
	"os"
)

var (
	Version   = "0.1.0-dev"
	CommitSHA = "unknown"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		if !isReported(err) {
			_, _ = fmt.Fprintf(os.Stderr, "errctx: %v\n", err)
		}
		os.Exit(1)
	}
}
