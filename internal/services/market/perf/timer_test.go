package perf

import (
	"testing"
	"time"
)

func TestCheckpointRecordsStages(t *testing.T) {
	timer := NewTimer("Test")

	time.Sleep(2 * time.Millisecond)
	first := timer.Checkpoint("parse")
	if first <= 0 {
		t.Fatalf("expected positive stage duration, got %v", first)
	}

	time.Sleep(2 * time.Millisecond)
	second := timer.Checkpoint("query")
	if second <= 0 {
		t.Fatalf("expected positive stage duration, got %v", second)
	}

	stages := timer.Checkpoints()
	if len(stages) != 2 {
		t.Fatalf("expected 2 stages, got %d", len(stages))
	}
	if stages["parse"] != first || stages["query"] != second {
		t.Fatal("expected recorded durations to match returned values")
	}
}

func TestCheckpointMeasuresSinceLast(t *testing.T) {
	timer := NewTimer("Test")

	time.Sleep(10 * time.Millisecond)
	timer.Checkpoint("slow")
	fast := timer.Checkpoint("fast")

	if fast >= 10*time.Millisecond {
		t.Fatalf("expected fast stage to exclude earlier elapsed time, got %v", fast)
	}
}

func TestTotalCoversAllStages(t *testing.T) {
	timer := NewTimer("Test")
	time.Sleep(5 * time.Millisecond)
	timer.Checkpoint("only")

	if total := timer.Total(); total < 5*time.Millisecond {
		t.Fatalf("expected total of at least 5ms, got %v", total)
	}
}

func TestRepeatedCheckpointNameOverwrites(t *testing.T) {
	timer := NewTimer("Test")
	timer.Checkpoint("stage")
	timer.Checkpoint("stage")

	if got := len(timer.Checkpoints()); got != 1 {
		t.Fatalf("expected 1 named stage, got %d", got)
	}
}

func TestEndDoesNotPanicWithoutCheckpoints(t *testing.T) {
	timer := NewTimer("")
	timer.End()
}
