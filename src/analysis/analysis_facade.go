package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"perfmon-dashboard/src/analysis/core"
	"perfmon-dashboard/src/logger"
	"perfmon-dashboard/src/models"
	"perfmon-dashboard/src/perfmon"
)

type AnalysisFacade struct {
	Config     *models.MConfig
	Classifier *Classifier
	Logger     *logger.Logger

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewAnalysisFacade(cfg *models.MConfig, log *logger.Logger) (*AnalysisFacade, error) {
	var rules []Rule
	if cfg != nil {
		r, err := RulesFromConfig(cfg.Categories)
		if err != nil {
			return nil, fmt.Errorf("invalid category rules: %w", err)
		}
		rules = r
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &AnalysisFacade{
		Config:     cfg,
		Classifier: NewClassifier(rules),
		Logger:     log,
		now:        time.Now,
	}, nil
}

// -----------------------------------------------------------------------------

// BuildSnapshot runs the whole reduction over a parsed table.
func (a *AnalysisFacade) BuildSnapshot(table *perfmon.Table) *Snapshot {
	counters := a.SummarizeCounters(table)
	categories := a.SummarizeCategories(counters)

	stats := models.MLoadStats{
		Source:         table.Source,
		Fingerprint:    table.Fingerprint,
		Rows:           table.Rows,
		Counters:       len(counters),
		RejectedCells:  table.RejectedCells,
		FirstTimestamp: table.FirstTimestamp,
		LastTimestamp:  table.LastTimestamp,
		LoadedAt:       a.now().UTC(),
	}

	empty := 0
	for _, c := range counters {
		if !c.HasData {
			empty++
		}
	}
	a.Logger.Info("Summarized %d counters from %d rows (%d rejected cells, %d counters without data)",
		len(counters), table.Rows, table.RejectedCells, empty)

	return newSnapshot(stats, counters, categories)
}

// -----------------------------------------------------------------------------

// SummarizeCounters reduces every series in the table, sorted by counter name.
func (a *AnalysisFacade) SummarizeCounters(table *perfmon.Table) []models.MCounterSummary {
	results := make([]models.MCounterSummary, 0, len(table.Names))

	for _, name := range table.Names {
		results = append(results, a.SummarizeCounter(name, table.Series[name]))
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results
}

// -----------------------------------------------------------------------------

// SummarizeCounter reduces one series and attaches its path parts and category.
func (a *AnalysisFacade) SummarizeCounter(name string, series []float64) models.MCounterSummary {
	path := perfmon.SplitCounterPath(name)
	summary := models.MCounterSummary{
		Name:     name,
		Host:     path.Host,
		Object:   path.Object,
		Instance: path.Instance,
		Counter:  path.Counter,
		Category: a.Classifier.Classify(name),
	}

	if s, ok := core.ComputeSummary(series); ok {
		summary.Min = s.Min
		summary.Max = s.Max
		summary.Average = s.Mean
		summary.Count = s.Count
		summary.HasData = true
	}
	return summary
}

// -----------------------------------------------------------------------------

// SummarizeCategories groups counter summaries by category. Every category is
// present in the result; one without members that have data is marked
// HasData=false.
func (a *AnalysisFacade) SummarizeCategories(counters []models.MCounterSummary) map[models.Category]models.MCategorySummary {
	members := make(map[models.Category][]models.MCounterSummary, len(models.AllCategories))
	for _, c := range counters {
		members[c.Category] = append(members[c.Category], c)
	}

	results := make(map[models.Category]models.MCategorySummary, len(models.AllCategories))
	for _, category := range models.AllCategories {
		results[category] = ReduceCategory(category, members[category])
	}
	return results
}

// -----------------------------------------------------------------------------

// ReduceCategory applies the category policy: min of member minimums, max of
// member maximums, unweighted mean of member averages. Members without data
// are listed but do not take part.
func ReduceCategory(category models.Category, members []models.MCounterSummary) models.MCategorySummary {
	sorted := SortCategoryMembers(members)

	summary := models.MCategorySummary{
		Category:     category,
		CounterCount: len(sorted),
		Counters:     sorted,
	}

	var averages []float64
	for _, m := range sorted {
		if !m.HasData {
			continue
		}
		if !summary.HasData {
			summary.Min, summary.Max = m.Min, m.Max
			summary.HasData = true
		}
		if m.Min < summary.Min {
			summary.Min = m.Min
		}
		if m.Max > summary.Max {
			summary.Max = m.Max
		}
		averages = append(averages, m.Average)
		summary.SampleCount += m.Count
	}

	summary.Count = len(averages)
	if summary.HasData {
		summary.Average = core.ClampMean(core.CalculateMean(averages), summary.Min, summary.Max)
	}
	return summary
}

// -----------------------------------------------------------------------------

// SortCategoryMembers returns a copy of members ordered by their short
// counter label (case-insensitive), then by full name.
func SortCategoryMembers(members []models.MCounterSummary) []models.MCounterSummary {
	sorted := append([]models.MCounterSummary{}, members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ki := strings.ToLower(perfmon.SplitCounterPath(sorted[i].Name).ShortName())
		kj := strings.ToLower(perfmon.SplitCounterPath(sorted[j].Name).ShortName())
		if ki != kj {
			return ki < kj
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}
