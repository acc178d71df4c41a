// Package main provides the automaker CLI: an autonomous engine that works
// through a project's feature list one feature at a time, driving an agent
// session through plan, act, and verify for each.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
