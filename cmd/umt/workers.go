package main

import "runtime"

// maxAutoWorkers caps the worker count derived from GOMAXPROCS.
const maxAutoWorkers = 8

// resolveWorkers determines how many documents are converted at once.
// Priority: explicit flag or config > GOMAXPROCS-based calculation.
func resolveWorkers(configured int) int {
	if configured > 0 {
		return configured
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers. Parsing is
	// CPU-bound but crawling waits on the network, so use every core.
	n := runtime.GOMAXPROCS(0)

	if n < 1 {
		return 1
	}
	if n > maxAutoWorkers {
		return maxAutoWorkers
	}
	return n
}
