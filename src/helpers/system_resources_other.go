//go:build !linux && !darwin && !windows

package helpers

// GetTotalSystemMemoryMB is not implemented on this platform.
func GetTotalSystemMemoryMB() int {
	return 0
}
