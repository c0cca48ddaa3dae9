// Package report aggregates the analysis history into dashboard metrics.
// Everything here is a pure function over snapshots; nothing is cached and
// callers recompute on demand.
package report

import (
	"sort"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
)

const (
	recentSeriesLimit = 10
	trendWindowDays   = 30
)

// AgentStats summarizes one agent's contributions across the history.
type AgentStats struct {
	AgentID           core.AgentID `json:"agentId"`
	AverageConfidence float64      `json:"averageConfidence"`
	Appearances       int          `json:"appearances"`
}

// DayTrend is one day's aggregate in the trailing trend window.
type DayTrend struct {
	Day               string  `json:"day"` // YYYY-MM-DD
	AverageConfidence float64 `json:"averageConfidence"`
	Count             int     `json:"count"`
}

// Summary is the full aggregation the reports endpoint and CLI render.
type Summary struct {
	TotalCount             int                            `json:"totalCount"`
	CompletedCount         int                            `json:"completedCount"`
	ThisMonthCount         int                            `json:"thisMonthCount"`
	AverageConfidence      float64                        `json:"averageConfidence"`
	PriorityDistribution   map[core.Priority]int          `json:"priorityDistribution"`
	StatusDistribution     map[core.AnalysisStatus]int    `json:"statusDistribution"`
	RecentConfidenceSeries []int                          `json:"recentConfidenceSeries"`
	AgentPerformance       []AgentStats                   `json:"agentPerformance"`
	TrendsByDay            []DayTrend                     `json:"trendsByDay"`
}

// Metrics computes the summary for a newest-first record slice. An empty
// history yields zero counts, a zero average and empty collections.
func Metrics(records []core.AnalysisRecord, now time.Time) Summary {
	s := Summary{
		PriorityDistribution:   make(map[core.Priority]int),
		StatusDistribution:     make(map[core.AnalysisStatus]int),
		RecentConfidenceSeries: []int{},
		AgentPerformance:       []AgentStats{},
		TrendsByDay:            []DayTrend{},
	}
	if now.IsZero() {
		now = time.Now()
	}

	s.TotalCount = len(records)
	sum := 0
	for _, r := range records {
		sum += r.OverallConfidence
		s.PriorityDistribution[r.Priority]++
		s.StatusDistribution[r.Status]++
		if r.Status == core.AnalysisStatusCompleted {
			s.CompletedCount++
		}
		if r.Timestamp.Year() == now.Year() && r.Timestamp.Month() == now.Month() {
			s.ThisMonthCount++
		}
	}
	if len(records) > 0 {
		s.AverageConfidence = float64(sum) / float64(len(records))
	}

	// Records arrive newest first; the series reads oldest to newest.
	n := len(records)
	if n > recentSeriesLimit {
		n = recentSeriesLimit
	}
	for i := n - 1; i >= 0; i-- {
		s.RecentConfidenceSeries = append(s.RecentConfidenceSeries, records[i].OverallConfidence)
	}

	s.AgentPerformance = AgentPerformance(records)
	s.TrendsByDay = TrendsByDay(records, now)
	return s
}

// AgentPerformance aggregates per-agent confidence across every record that
// mentions the agent. Agents no longer configured still appear; the caller
// decides whether to filter them.
func AgentPerformance(records []core.AnalysisRecord) []AgentStats {
	sums := make(map[core.AgentID]int)
	counts := make(map[core.AgentID]int)
	for _, r := range records {
		for id, c := range r.AgentConfidences {
			sums[id] += c
			counts[id]++
		}
	}

	out := make([]AgentStats, 0, len(sums))
	for id, sum := range sums {
		out = append(out, AgentStats{
			AgentID:           id,
			AverageConfidence: float64(sum) / float64(counts[id]),
			Appearances:       counts[id],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// TrendsByDay buckets records into calendar days over the trailing window,
// ascending by day. Days with no records are omitted.
func TrendsByDay(records []core.AnalysisRecord, now time.Time) []DayTrend {
	if now.IsZero() {
		now = time.Now()
	}
	cutoff := now.AddDate(0, 0, -trendWindowDays)

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, r := range records {
		if r.Timestamp.Before(cutoff) || r.Timestamp.After(now) {
			continue
		}
		day := r.Timestamp.Format("2006-01-02")
		sums[day] += r.OverallConfidence
		counts[day]++
	}

	out := make([]DayTrend, 0, len(sums))
	for day, sum := range sums {
		out = append(out, DayTrend{
			Day:               day,
			AverageConfidence: float64(sum) / float64(counts[day]),
			Count:             counts[day],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}
