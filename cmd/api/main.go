// Package main is the entry point for the trip planner API.
// Its sole responsibility is wiring dependencies together and dispatching
// the serve, migrate and countdown commands. No business logic belongs here.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
