//go:build linux

package helpers

import "syscall"

// GetTotalSystemMemoryMB returns the total physical memory in MB, or 0.
func GetTotalSystemMemoryMB() int {
	var info syscall.Sysinfo_t
	if err := syscall.Sysinfo(&info); err != nil {
		return 0
	}
	return int(uint64(info.Totalram) * uint64(info.Unit) / 1024 / 1024)
}
