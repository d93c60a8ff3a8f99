// Package observ measures the phases of a rewrite (parse, walk, render) and
// aggregates them over a run.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one timed step. Count is the number of merged file timers, 0 for
// a phase measured directly.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	Count int
}

// Timer is owned by one goroutine; per-file timers are combined with Merge.
// A nil *Timer accepts every call and records nothing.
type Timer struct {
	phases []Phase
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 4)} }

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End stops the phase idx. Unknown indices are ignored.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur, p.Note = time.Since(p.Start), note
}

// Track begins name and returns the function that ends it.
//
//	done := timer.Track("walk")
//	...
//	done("3 redirected")
func (t *Timer) Track(name string) func(note string) {
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

// Merge sums other's phases into t by name, in first-seen order.
func (t *Timer) Merge(other *Timer) {
	if t == nil || other == nil {
		return
	}
	pos := make(map[string]int, len(t.phases))
	for i, p := range t.phases {
		pos[p.Name] = i
	}
	for _, op := range other.phases {
		if i, ok := pos[op.Name]; ok {
			t.phases[i].Dur += op.Dur
			t.phases[i].Count++
			continue
		}
		op.Count = 1
		pos[op.Name] = len(t.phases)
		t.phases = append(t.phases, op)
	}
}

// Summary renders the phases for --timings. Merged phases show the number of
// files and the mean per file.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Count > 1 {
			fmt.Fprintf(&sb, "  x%d (%.3f ms avg)", p.Count, p.DurationMS/float64(p.Count))
		}
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport is a Phase in serialisable form.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Count      int     `json:"count,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// Report is what the ObsTimings diagnostic carries.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		report.Phases[i] = PhaseReport{Name: p.Name, DurationMS: ms(p.Dur), Count: p.Count, Note: p.Note}
	}
	report.TotalMS = ms(total)
	return report
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
