// Package perf provides a checkpoint timer for profiling request pipelines.
package perf

import (
	"log"
	"strings"
	"time"
)

// Timer records named checkpoints relative to a monotonic start time.
// It is not safe for concurrent use; each request owns its own timer.
type Timer struct {
	label string
	start time.Time
	last  time.Time
	names []string
	durs  map[string]time.Duration
}

// NewTimer starts a timer with the given report label.
func NewTimer(label string) *Timer {
	if label == "" {
		label = "Timer"
	}
	now := time.Now()
	return &Timer{
		label: label,
		start: now,
		last:  now,
		durs:  make(map[string]time.Duration),
	}
}

// Checkpoint records the time elapsed since the previous checkpoint (or
// start) under name and returns it.
func (t *Timer) Checkpoint(name string) time.Duration {
	now := time.Now()
	elapsed := now.Sub(t.last)
	if _, seen := t.durs[name]; !seen {
		t.names = append(t.names, name)
	}
	t.durs[name] = elapsed
	t.last = now
	return elapsed
}

// End logs the per-stage breakdown and the total elapsed time.
func (t *Timer) End() {
	total := time.Since(t.start)
	var b strings.Builder
	b.WriteString(t.label)
	b.WriteString(" performance report:")
	for _, name := range t.names {
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(formatDuration(t.durs[name]))
	}
	b.WriteString(" total=")
	b.WriteString(formatDuration(total))
	log.Print(b.String())
}

// Total returns the time elapsed since the timer started.
func (t *Timer) Total() time.Duration {
	return time.Since(t.start)
}

// Checkpoints returns a copy of the recorded stage durations.
func (t *Timer) Checkpoints() map[string]time.Duration {
	out := make(map[string]time.Duration, len(t.durs))
	for name, d := range t.durs {
		out[name] = d
	}
	return out
}

func formatDuration(d time.Duration) string {
	return d.Round(10 * time.Microsecond).String()
}
