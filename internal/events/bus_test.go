package events

import (
	"testing"
	"time"

	"github.com/fourpillars-ai/pillars/internal/core"
)

func TestBus_SubscribeReceivesAll(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Publish(NewAnalysisStarted("a1", "scenario", core.DepthStandard))

	select {
	case ev := <-ch:
		if ev.EventType() != TypeAnalysisStarted {
			t.Errorf("EventType() = %q, want %q", ev.EventType(), TypeAnalysisStarted)
		}
		if ev.AnalysisID() != "a1" {
			t.Errorf("AnalysisID() = %q, want a1", ev.AnalysisID())
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_SubscribeFiltersByType(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe(TypeAnalysisCompleted)
	bus.Publish(NewAnalysisStarted("a1", "scenario", core.DepthQuick))
	bus.Publish(NewAnalysisCompleted(core.AnalysisRecord{ID: "a1"}))

	select {
	case ev := <-ch:
		if ev.EventType() != TypeAnalysisCompleted {
			t.Errorf("filtered subscriber got %q", ev.EventType())
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case ev := <-ch:
		t.Errorf("unexpected second event %q", ev.EventType())
	default:
	}
}

func TestBus_FullBufferDropsOldest(t *testing.T) {
	bus := New(2)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Publish(NewAgentStatusChanged("a1", "finance", core.AgentStatusAnalyzing))
	bus.Publish(NewAgentStatusChanged("a2", "risk", core.AgentStatusAnalyzing))
	bus.Publish(NewAgentStatusChanged("a3", "market", core.AgentStatusAnalyzing))

	if bus.DroppedCount() != 1 {
		t.Errorf("DroppedCount() = %d, want 1", bus.DroppedCount())
	}

	// Oldest was evicted; a2 and a3 remain in order.
	first := <-ch
	if first.AnalysisID() != "a2" {
		t.Errorf("first buffered event = %q, want a2", first.AnalysisID())
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(10)
	defer bus.Close()

	ch := bus.Subscribe()
	bus.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	bus.Publish(NewStateReset())
}

func TestBus_CloseIsIdempotent(t *testing.T) {
	bus := New(10)
	ch := bus.Subscribe()
	bus.Close()
	bus.Close()

	if _, open := <-ch; open {
		t.Error("channel still open after Close")
	}
	bus.Publish(NewStateReset())
}

func TestNewAnalysisFailed_NilError(t *testing.T) {
	ev := NewAnalysisFailed("scenario", nil)
	if ev.Error != "" {
		t.Errorf("Error = %q, want empty", ev.Error)
	}
	if ev.EventType() != TypeAnalysisFailed {
		t.Errorf("EventType() = %q", ev.EventType())
	}
}
