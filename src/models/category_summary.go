package models

import (
	"github.com/goccy/go-json"
)

// MCategorySummary aggregates the counters assigned to one category.
//
// Min is the smallest member minimum, Max the largest member maximum and
// Average the unweighted mean of member averages. Only members with data
// take part; Count is the number of such members.
type MCategorySummary struct {
	Category     Category          `json:"category"`
	Min          float64           `json:"min"`
	Max          float64           `json:"max"`
	Average      float64           `json:"average"`
	Count        int               `json:"count"`
	CounterCount int               `json:"counter_count"`
	SampleCount  int               `json:"sample_count"`
	HasData      bool              `json:"has_data"`
	Counters     []MCounterSummary `json:"counters"`
}

type categorySummaryJSON struct {
	Category     Category          `json:"category"`
	Min          *float64          `json:"min"`
	Max          *float64          `json:"max"`
	Average      *float64          `json:"average"`
	Count        int               `json:"count"`
	CounterCount int               `json:"counter_count"`
	SampleCount  int               `json:"sample_count"`
	HasData      bool              `json:"has_data"`
	Counters     []MCounterSummary `json:"counters"`
}

func (s MCategorySummary) MarshalJSON() ([]byte, error) {
	out := categorySummaryJSON{
		Category:     s.Category,
		Count:        s.Count,
		CounterCount: s.CounterCount,
		SampleCount:  s.SampleCount,
		HasData:      s.HasData,
		Counters:     s.Counters,
	}
	if out.Counters == nil {
		out.Counters = []MCounterSummary{}
	}
	if s.HasData {
		out.Min, out.Max, out.Average = &s.Min, &s.Max, &s.Average
	}
	return json.Marshal(out)
}

func (s *MCategorySummary) UnmarshalJSON(data []byte) error {
	var in categorySummaryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = MCategorySummary{
		Category:     in.Category,
		Count:        in.Count,
		CounterCount: in.CounterCount,
		SampleCount:  in.SampleCount,
		HasData:      in.HasData,
		Counters:     in.Counters,
	}
	if in.Min != nil {
		s.Min = *in.Min
	}
	if in.Max != nil {
		s.Max = *in.Max
	}
	if in.Average != nil {
		s.Average = *in.Average
	}
	return nil
}
