// Package main is the entry point for the plugtrace conformance harness.
package main

import (
	"fmt"
	"os"

	"github.com/plugtrace/plugtrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
