// Package observ collects per-file phase timings for --timings.
package observ

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type phase struct {
	name    string
	started time.Time
	dur     time.Duration
	note    string
	done    bool
}

// Timer measures the phases of one file: read, format or verify, write.
// One Timer per file; not safe for concurrent use.
type Timer struct {
	phases []phase
}

func NewTimer() *Timer { return &Timer{phases: make([]phase, 0, 4)} }

// Start begins a phase and returns the function that stops it. Stopping
// twice keeps the first duration.
func (t *Timer) Start(name string) func(note string) {
	t.phases = append(t.phases, phase{name: name, started: time.Now()})
	idx := len(t.phases) - 1
	return func(note string) {
		p := &t.phases[idx]
		if p.done {
			return
		}
		p.dur = time.Since(p.started)
		p.note = note
		p.done = true
	}
}

// PhaseReport is one phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report is the timing of a file, or of a whole run after Merge.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns the stopped phases in start order. Unstopped phases are
// left out.
func (t *Timer) Report() Report {
	var r Report
	for _, p := range t.phases {
		if !p.done {
			continue
		}
		ms := millis(p.dur)
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: ms, Note: p.note})
		r.TotalMS += ms
	}
	return r
}

// Merge sums reports phase by phase. Phases keep the order of first
// appearance; notes are dropped.
func Merge(reports ...Report) Report {
	var out Report
	for _, r := range reports {
		for _, p := range r.Phases {
			i := slices.IndexFunc(out.Phases, func(q PhaseReport) bool { return q.Name == p.Name })
			if i < 0 {
				out.Phases = append(out.Phases, PhaseReport{Name: p.Name})
				i = len(out.Phases) - 1
			}
			out.Phases[i].DurationMS += p.DurationMS
		}
		out.TotalMS += r.TotalMS
	}
	return out
}

// String renders "read=0.1 format=2.3" in phase order.
func (r Report) String() string {
	parts := make([]string, 0, len(r.Phases))
	for _, p := range r.Phases {
		parts = append(parts, fmt.Sprintf("%s=%.1f", p.Name, p.DurationMS))
	}
	return strings.Join(parts, " ")
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
