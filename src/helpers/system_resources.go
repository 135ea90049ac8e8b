package helpers

// Parsing holds the raw file, its decoded copy and the float series in memory
// at the same time, so an export needs roughly this many times its size.
const loadOverhead = 4

const (
	fallbackFileLimitMB = 512
	minFileLimitMB      = 64
)

// FileSizeCeilingMB is the largest export accepted when data.max_file_mb is
// not set: a quarter of physical RAM divided by the load overhead, never less
// than 64MB. ok is false when total memory could not be determined and the
// 512MB fallback was returned.
func FileSizeCeilingMB() (limit int, ok bool) {
	totalMB := GetTotalSystemMemoryMB()
	if totalMB <= 0 {
		return fallbackFileLimitMB, false
	}

	limit = totalMB / 4 / loadOverhead
	if limit < minFileLimitMB {
		limit = minFileLimitMB
	}
	return limit, true
}
