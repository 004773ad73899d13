// Command fishblog runs the FISH blog in a terminal, as a local JSON API, or
// headless for scripted sketches.
package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
