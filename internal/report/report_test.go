package report

import (
	"reflect"
	"testing"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
)

var now = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func rec(daysAgo int, confidence int, priority core.Priority, agents map[core.AgentID]int) core.AnalysisRecord {
	return core.AnalysisRecord{
		ID:                "r",
		Timestamp:         now.AddDate(0, 0, -daysAgo),
		OverallConfidence: confidence,
		Priority:          priority,
		Status:            core.AnalysisStatusCompleted,
		AgentConfidences:  agents,
	}
}

func TestMetrics_EmptyHistory(t *testing.T) {
	s := Metrics(nil, now)

	if s.TotalCount != 0 || s.CompletedCount != 0 || s.ThisMonthCount != 0 {
		t.Errorf("counts not zero: %+v", s)
	}
	if s.AverageConfidence != 0 {
		t.Errorf("AverageConfidence = %v, want 0", s.AverageConfidence)
	}
	if s.RecentConfidenceSeries == nil || len(s.RecentConfidenceSeries) != 0 {
		t.Errorf("RecentConfidenceSeries = %v, want empty non-nil", s.RecentConfidenceSeries)
	}
	if len(s.AgentPerformance) != 0 || len(s.TrendsByDay) != 0 {
		t.Errorf("collections not empty: %+v", s)
	}
}

func TestMetrics_Aggregates(t *testing.T) {
	records := []core.AnalysisRecord{
		rec(0, 90, core.PriorityCritical, map[core.AgentID]int{"finance": 92, "risk": 88}),
		rec(1, 70, core.PriorityMedium, map[core.AgentID]int{"finance": 70}),
		rec(2, 80, core.PriorityMedium, nil),
	}

	s := Metrics(records, now)
	if s.TotalCount != 3 || s.CompletedCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", s.TotalCount, s.CompletedCount)
	}
	if s.AverageConfidence != 80 {
		t.Errorf("AverageConfidence = %v, want 80", s.AverageConfidence)
	}
	if s.PriorityDistribution[core.PriorityMedium] != 2 || s.PriorityDistribution[core.PriorityCritical] != 1 {
		t.Errorf("PriorityDistribution = %v", s.PriorityDistribution)
	}
	// Newest-first input, oldest-first series.
	if want := []int{80, 70, 90}; !reflect.DeepEqual(s.RecentConfidenceSeries, want) {
		t.Errorf("RecentConfidenceSeries = %v, want %v", s.RecentConfidenceSeries, want)
	}
}

func TestMetrics_ThisMonthCount(t *testing.T) {
	records := []core.AnalysisRecord{
		rec(1, 80, core.PriorityMedium, nil),  // this month
		rec(40, 80, core.PriorityMedium, nil), // last month
	}
	s := Metrics(records, now)
	if s.ThisMonthCount != 1 {
		t.Errorf("ThisMonthCount = %d, want 1", s.ThisMonthCount)
	}
}

func TestMetrics_RecentSeriesCapsAtTen(t *testing.T) {
	var records []core.AnalysisRecord
	for i := 0; i < 15; i++ {
		records = append(records, rec(0, 50+i, core.PriorityMedium, nil))
	}
	s := Metrics(records, now)
	if len(s.RecentConfidenceSeries) != 10 {
		t.Fatalf("series len = %d, want 10", len(s.RecentConfidenceSeries))
	}
	// The ten newest, oldest first: confidences 59 down to 50 reversed.
	if s.RecentConfidenceSeries[0] != 59 || s.RecentConfidenceSeries[9] != 50 {
		t.Errorf("series = %v", s.RecentConfidenceSeries)
	}
}

func TestAgentPerformance(t *testing.T) {
	records := []core.AnalysisRecord{
		rec(0, 90, core.PriorityMedium, map[core.AgentID]int{"finance": 90, "risk": 80}),
		rec(1, 70, core.PriorityMedium, map[core.AgentID]int{"finance": 70}),
	}

	got := AgentPerformance(records)
	want := []AgentStats{
		{AgentID: "finance", AverageConfidence: 80, Appearances: 2},
		{AgentID: "risk", AverageConfidence: 80, Appearances: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AgentPerformance() = %v, want %v", got, want)
	}
}

func TestTrendsByDay(t *testing.T) {
	records := []core.AnalysisRecord{
		rec(0, 90, core.PriorityMedium, nil),
		rec(0, 70, core.PriorityMedium, nil),
		rec(2, 60, core.PriorityMedium, nil),
		rec(45, 10, core.PriorityMedium, nil), // outside the window
	}

	got := TrendsByDay(records, now)
	if len(got) != 2 {
		t.Fatalf("got %d days: %v", len(got), got)
	}
	if got[0].Day != "2026-08-25" || got[0].Count != 1 || got[0].AverageConfidence != 60 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Day != "2026-08-27" || got[1].Count != 2 || got[1].AverageConfidence != 80 {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestMetrics_Idempotent(t *testing.T) {
	records := []core.AnalysisRecord{
		rec(0, 90, core.PriorityHigh, map[core.AgentID]int{"finance": 90}),
		rec(3, 60, core.PriorityLow, map[core.AgentID]int{"market": 60}),
	}
	a := Metrics(records, now)
	b := Metrics(records, now)
	if !reflect.DeepEqual(a, b) {
		t.Error("Metrics is not deterministic over identical input")
	}
}
