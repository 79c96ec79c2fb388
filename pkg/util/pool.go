package util

import "runtime"

// GetOptimalPoolSize returns the pool size used for CPU-bound parallel work.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// The 2x factor keeps goroutines runnable while others are blocked inside
// CGO calls into tree-sitter. The same value sizes both the parser pools
// and the file worker pool so workers never stall waiting for a parser.
func GetOptimalPoolSize() int {
	size := runtime.NumCPU() * 2
	if size < 4 {
		size = 4
	}
	if size > 32 {
		size = 32
	}
	return size
}

// GetOptimalPoolSizeWithOverride returns the pool size, honoring an
// explicit override when it is positive. Used by tests and tuning flags.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
