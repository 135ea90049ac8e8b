package analysis

import (
	"fmt"
	"strings"

	"perfmon-dashboard/src/models"
)

// Rule assigns a category to any counter whose lower-cased name contains one
// of Keywords.
type Rule struct {
	Category models.Category
	Keywords []string
}

// DefaultRules is the built-in classification table. Order matters: the first
// matching rule wins, so "Processor\% Idle Time" is CPU even though "io"
// would also match Disk.
var DefaultRules = []Rule{
	{Category: models.CategoryCPU, Keywords: []string{"cpu", "processor", "% processor", "total processor"}},
	{Category: models.CategoryGPU, Keywords: []string{"gpu", "nvidia", "graphics"}},
	{Category: models.CategoryMemory, Keywords: []string{"memory", "commit", "pagefile", "pool"}},
	{Category: models.CategoryDisk, Keywords: []string{"disk", "storage", "io"}},
	{Category: models.CategoryNetwork, Keywords: []string{"network", "net", "ethernet", "throughput"}},
}

// -----------------------------------------------------------------------------

// Classifier maps counter names onto categories using an ordered rule table.
type Classifier struct {
	rules []Rule
}

// -----------------------------------------------------------------------------

// NewClassifier copies rules, lower-casing keywords. A nil or empty table
// means DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules
	}

	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		normalized = append(normalized, Rule{Category: r.Category, Keywords: keywords})
	}
	return &Classifier{rules: normalized}
}

// -----------------------------------------------------------------------------

// RulesFromConfig turns the categories section of the config into a rule
// table. An empty section yields nil so the defaults apply.
func RulesFromConfig(cfg []models.MCategoryConfig) ([]Rule, error) {
	if len(cfg) == 0 {
		return nil, nil
	}

	rules := make([]Rule, 0, len(cfg))
	for i, c := range cfg {
		category, ok := models.ParseCategory(c.Name)
		if !ok || category == models.CategoryOther {
			return nil, fmt.Errorf("category rule %d: %q is not a classifiable category", i, c.Name)
		}
		rules = append(rules, Rule{Category: category, Keywords: c.Keywords})
	}
	return rules, nil
}

// -----------------------------------------------------------------------------

// Classify returns the category of the first rule matching name, or Other.
func (c *Classifier) Classify(name string) models.Category {
	lower := strings.ToLower(name)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(lower, kw) {
				return r.Category
			}
		}
	}
	return models.CategoryOther
}

// -----------------------------------------------------------------------------

// Rules returns a copy of the active table.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = Rule{Category: r.Category, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
