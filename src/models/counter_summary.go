package models

import (
	"github.com/goccy/go-json"
)

// MCounterSummary is the reduced view of one counter's series.
// Min, Max and Average are meaningful only when HasData is true.
type MCounterSummary struct {
	Name     string   `json:"name"`
	Host     string   `json:"host,omitempty"`
	Object   string   `json:"object"`
	Instance string   `json:"instance,omitempty"`
	Counter  string   `json:"counter"`
	Category Category `json:"category"`
	Min      float64  `json:"min"`
	Max      float64  `json:"max"`
	Average  float64  `json:"average"`
	Count    int      `json:"count"`
	HasData  bool     `json:"has_data"`
}

type counterSummaryJSON struct {
	Name     string   `json:"name"`
	Host     string   `json:"host,omitempty"`
	Object   string   `json:"object"`
	Instance string   `json:"instance,omitempty"`
	Counter  string   `json:"counter"`
	Category Category `json:"category"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Average  *float64 `json:"average"`
	Count    int      `json:"count"`
	HasData  bool     `json:"has_data"`
}

// MarshalJSON writes null statistics for counters without samples.
func (s MCounterSummary) MarshalJSON() ([]byte, error) {
	out := counterSummaryJSON{
		Name:     s.Name,
		Host:     s.Host,
		Object:   s.Object,
		Instance: s.Instance,
		Counter:  s.Counter,
		Category: s.Category,
		Count:    s.Count,
		HasData:  s.HasData,
	}
	if s.HasData {
		out.Min, out.Max, out.Average = &s.Min, &s.Max, &s.Average
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON; null statistics decode to zero.
func (s *MCounterSummary) UnmarshalJSON(data []byte) error {
	var in counterSummaryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = MCounterSummary{
		Name:     in.Name,
		Host:     in.Host,
		Object:   in.Object,
		Instance: in.Instance,
		Counter:  in.Counter,
		Category: in.Category,
		Count:    in.Count,
		HasData:  in.HasData,
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
