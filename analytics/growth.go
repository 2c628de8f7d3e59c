// Package analytics contains the pure reducers behind the agency dashboards.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

type Period string

const (
	Monthly   Period = "monthly"
	Quarterly Period = "quarterly"
	Yearly    Period = "yearly"
)

// ParsePeriod defaults to Monthly for anything unrecognised.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case Quarterly, Yearly:
		return Period(s)
	default:
		return Monthly
	}
}

// Point is one dated contribution to a series.
type Point struct {
	At    time.Time
	Value float64
}

type Bucket struct {
	Period string  `json:"period"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

type GrowthBucket struct {
	Bucket
	GrowthRate  float64 `json:"growth_rate"`
	GrowthLabel string  `json:"growth_label"`
}

// PeriodKey names the bucket t falls in: "2024-03", "2024-Q1" or "2024".
func PeriodKey(t time.Time, p Period) string {
	switch p {
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", t.Year(), (int(t.Month())-1)/3+1)
	case Yearly:
		return fmt.Sprintf("%d", t.Year())
	default:
		return fmt.Sprintf("%d-%02d", t.Year(), int(t.Month()))
	}
}

// PeriodLabel renders a period key for chart axes.
func PeriodLabel(key string) string {
	if t, err := time.Parse("2006-01", key); err == nil {
		return t.Format("Jan 2006")
	}
	var year, quarter int
	if n, _ := fmt.Sscanf(key, "%d-Q%d", &year, &quarter); n == 2 {
		return fmt.Sprintf("%d Q%d", year, quarter)
	}
	return key
}

// GroupByPeriod sums points into buckets sorted chronologically.
func GroupByPeriod(points []Point, p Period) []Bucket {
	byKey := make(map[string]*Bucket)
	for _, pt := range points {
		key := PeriodKey(pt.At, p)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Period: key, Label: PeriodLabel(key)}
			byKey[key] = b
		}
		b.Value += pt.Value
		b.Count++
	}

	out := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out
}

// GrowthRates annotates each bucket with its change against the previous one.
// The first bucket has no predecessor and reports zero growth.
func GrowthRates(buckets []Bucket) []GrowthBucket {
	out := make([]GrowthBucket, len(buckets))
	for i, b := range buckets {
		out[i].Bucket = b
		if i == 0 {
			out[i].GrowthLabel = growthLabel(0)
			continue
		}
		prev := buckets[i-1].Value
		switch {
		case prev == 0 && b.Value > 0:
			out[i].GrowthRate = 100
			out[i].GrowthLabel = "↑ 100%+"
		case prev == 0:
			out[i].GrowthLabel = growthLabel(0)
		default:
			rate := round2((b.Value - prev) / prev * 100)
			out[i].GrowthRate = rate
			out[i].GrowthLabel = growthLabel(rate)
		}
	}
	return out
}

func growthLabel(rate float64) string {
	switch {
	case rate > 0:
		return fmt.Sprintf("↑ %g%%", rate)
	case rate < 0:
		return fmt.Sprintf("↓ %g%%", math.Abs(rate))
	default:
		return "→ 0%"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
