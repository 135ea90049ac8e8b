package analysis

import (
	"perfmon-dashboard/src/models"
)

// Snapshot is the read-only result of one load. It is built once at startup
// and shared by pointer; nothing mutates it afterwards, so concurrent readers
// need no locking. Accessors hand out copies.
type Snapshot struct {
	stats      models.MLoadStats
	counters   []models.MCounterSummary
	byName     map[string]int
	categories map[models.Category]models.MCategorySummary
}

// -----------------------------------------------------------------------------

func newSnapshot(
	stats models.MLoadStats,
	counters []models.MCounterSummary,
	categories map[models.Category]models.MCategorySummary,
) *Snapshot {
	byName := make(map[string]int, len(counters))
	for i, c := range counters {
		byName[c.Name] = i
	}
	return &Snapshot{
		stats:      stats,
		counters:   counters,
		byName:     byName,
		categories: categories,
	}
}

// -----------------------------------------------------------------------------

// Stats describes the source file.
func (s *Snapshot) Stats() models.MLoadStats {
	return s.stats
}

// CounterCount is the number of counter columns, including empty ones.
func (s *Snapshot) CounterCount() int {
	return len(s.counters)
}

// -----------------------------------------------------------------------------

// GetCounterSummaries returns every counter summary sorted by name.
func (s *Snapshot) GetCounterSummaries() []models.MCounterSummary {
	return copyCounters(s.counters)
}

// -----------------------------------------------------------------------------

// CounterSummary looks up one counter by its full name.
func (s *Snapshot) CounterSummary(name string) (models.MCounterSummary, bool) {
	i, ok := s.byName[name]
	if !ok {
		return models.MCounterSummary{}, false
	}
	return s.counters[i], true
}

// -----------------------------------------------------------------------------

// CountersPage returns one page of the sorted counters (1-based page) and the
// total page count. Pages past the end are empty.
func (s *Snapshot) CountersPage(page, perPage int) ([]models.MCounterSummary, int) {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}

	n := len(s.counters)
	totalPages := n / perPage
	if n%perPage != 0 {
		totalPages++
	}
	if page-1 >= totalPages {
		return []models.MCounterSummary{}, totalPages
	}

	// page <= totalPages keeps start below n
	start := (page - 1) * perPage
	end := n
	if perPage < n-start {
		end = start + perPage
	}
	return append([]models.MCounterSummary(nil), s.counters[start:end]...), totalPages
}

// -----------------------------------------------------------------------------

// GetCategorySummaries returns all six categories, including empty ones.
func (s *Snapshot) GetCategorySummaries() map[models.Category]models.MCategorySummary {
	out := make(map[models.Category]models.MCategorySummary, len(s.categories))
	for k, v := range s.categories {
		v.Counters = copyCounters(v.Counters)
		out[k] = v
	}
	return out
}

// -----------------------------------------------------------------------------

// CategorySummary returns one category. Every category is always present.
func (s *Snapshot) CategorySummary(c models.Category) (models.MCategorySummary, bool) {
	v, ok := s.categories[c]
	if !ok {
		return models.MCategorySummary{}, false
	}
	v.Counters = copyCounters(v.Counters)
	return v, true
}

// -----------------------------------------------------------------------------

// OrderedCategories returns the category summaries in display order.
func (s *Snapshot) OrderedCategories() []models.MCategorySummary {
	out := make([]models.MCategorySummary, 0, len(models.AllCategories))
	for _, c := range models.AllCategories {
		if v, ok := s.CategorySummary(c); ok {
			out = append(out, v)
		}
	}
	return out
}

// -----------------------------------------------------------------------------

// Record converts the snapshot into its storable form.
func (s *Snapshot) Record() models.MSnapshotRecord {
	return models.MSnapshotRecord{
		Stats:      s.stats,
		Counters:   s.GetCounterSummaries(),
		Categories: s.OrderedCategories(),
	}
}

// -----------------------------------------------------------------------------

// copyCounters never returns nil, so empty member lists encode as [].
func copyCounters(in []models.MCounterSummary) []models.MCounterSummary {
	return append(make([]models.MCounterSummary, 0, len(in)), in...)
}
