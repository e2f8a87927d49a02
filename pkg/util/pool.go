package util

import "runtime"

// OptimalPoolSize returns the pool size for CPU-bound, CGO-heavy work:
// twice the CPU count, clamped to [4, 32]. Parser pools and the analyzer
// worker pool both use this figure so workers never outnumber parsers.
func OptimalPoolSize() int {
	size := runtime.NumCPU() * 2
	if size < 4 {
		size = 4
	}
	if size > 32 {
		size = 32
	}
	return size
}

// OptimalPoolSizeWithOverride returns override when positive, otherwise
// OptimalPoolSize(). Used by tests and tuning flags.
func OptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return OptimalPoolSize()
}
