package util

import "runtime"

// GetOptimalPoolSize sizes CPU-bound pools: twice the core count, clamped to
// [4, 32]. Parsing goes through cgo, so oversubscribing the cores helps.
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

// GetOptimalPoolSizeWithOverride returns override when positive and
// GetOptimalPoolSize otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
