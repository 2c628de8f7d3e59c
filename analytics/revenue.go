package analytics

import (
	"math"
	"sort"
	"strings"
)

// NamedValue is a single slice of a pie or bar chart.
type NamedValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Categorized is one revenue contribution tagged with its chart category.
type Categorized struct {
	Category string
	Value    float64
}

// RevenueByCategory totals values per category, rounds them to whole units and
// sorts the result by value, largest first. Ties are broken by name.
func RevenueByCategory(items []Categorized) []NamedValue {
	totals := make(map[string]float64)
	for _, it := range items {
		totals[it.Category] += it.Value
	}

	out := make([]NamedValue, 0, len(totals))
	for name, v := range totals {
		out = append(out, NamedValue{Name: name, Value: math.Round(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GradeCategory maps a grade level to the coarse band used on dashboards.
func GradeCategory(level *string) string {
	if level == nil || *level == "" {
		return "Other"
	}
	l := *level
	switch {
	case strings.HasPrefix(l, "Primary"):
		return "Primary"
	case strings.HasPrefix(l, "Secondary"):
		return "Secondary"
	case strings.HasPrefix(l, "Junior College"):
		return "Pre-University"
	case strings.HasPrefix(l, "Grade"):
		return "International"
	case l == "Diploma", l == "Degree", l == "Postgraduate":
		return "Higher Education"
	case l == "Kindergarten", l == "Preschool":
		return "Early Years"
	case l == "Adult Learner":
		return "Adult"
	default:
		return "Other"
	}
}
