// Package main is the entry point for the quote CLI: an interactive terminal
// view plus fetch, favorites and share subcommands, all going through the
// quote proxy.
package main

import (
	"os"
)

// Version is the CLI version, injected via ldflags.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
