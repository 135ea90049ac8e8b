package server

import (
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// parsePositiveInt reads a query value, falling back to def for anything that
// is missing, malformed or below 1.
func parsePositiveInt(raw string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 1 {
		return def
	}
	return v
}

// -----------------------------------------------------------------------------

// pageWindow returns up to width page numbers centred on current.
func pageWindow(current, total, width int) []int {
	if total < 1 || width < 1 {
		return nil
	}
	start := current - width/2
	if start > total-width+1 {
		start = total - width + 1
	}
	if start < 1 {
		start = 1
	}
	end := start + width - 1
	if end > total {
		end = total
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// -----------------------------------------------------------------------------

// etagMatches implements the If-None-Match comparison for a strong tag.
func etagMatches(header, tag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}
