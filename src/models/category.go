package models

import "strings"

// Category is one of the fixed buckets counters are grouped into.
type Category string

const (
	CategoryCPU     Category = "CPU"
	CategoryGPU     Category = "GPU"
	CategoryMemory  Category = "Memory"
	CategoryDisk    Category = "Disk"
	CategoryNetwork Category = "Network"
	CategoryOther   Category = "Other"
)

// AllCategories lists every category in display order.
var AllCategories = []Category{
	CategoryCPU,
	CategoryGPU,
	CategoryMemory,
	CategoryDisk,
	CategoryNetwork,
	CategoryOther,
}

// -----------------------------------------------------------------------------

// ParseCategory resolves a category name case-insensitively.
func ParseCategory(name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range AllCategories {
		if strings.EqualFold(string(c), name) {
			return c, true
		}
	}
	return "", false
}
