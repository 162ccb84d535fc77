// Command animgraph validates, inspects, simulates and benchmarks animation graph documents.
//
// Usage:
//
//	animgraph [--output text|json|yaml] <command> [flags]
package main

import (
	"fmt"
	"os"
)

// Version information set by ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
