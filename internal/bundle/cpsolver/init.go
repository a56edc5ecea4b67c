package cpsolver

import "sync"

// once guards the one-time process-wide setup the underlying OR-Tools
// native library expects before the first solve: it must run exactly once
// regardless of how many Solver instances are constructed, and it must be
// safe even if the first New() happens concurrently with another.
var once sync.Once

func ensureInitialized() {
	once.Do(func() {
		// The CP-SAT Go binding has no separate "initialize the native
		// library" entry point; NewCpModelBuilder is self-contained. This
		// hook exists so a single, idempotent place exists to add one if a
		// future OR-Tools release requires it, matching the teacher's
		// lazily-constructed, once-only S3 client in internal/blob.
	})
}
