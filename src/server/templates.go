package server

import (
	"embed"
	"html/template"
	"math"
	"strconv"

	"perfmon-dashboard/src/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"counterStat": func(s models.MCounterSummary, which string) string {
		if !s.HasData {
			return "no data"
		}
		return formatNumber(pick(which, s.Min, s.Max, s.Average))
	},
	"categoryStat": func(s models.MCategorySummary, which string) string {
		if !s.HasData {
			return "no data"
		}
		return formatNumber(pick(which, s.Min, s.Max, s.Average))
	},
}

func pick(which string, min, max, avg float64) float64 {
	switch which {
	case "min":
		return min
	case "max":
		return max
	default:
		return avg
	}
}

// formatNumber prints up to three decimals without trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}
