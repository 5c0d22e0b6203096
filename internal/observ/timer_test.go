package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	i := tm.Begin("render")
	tm.End(i, "12 lines")
	j := tm.Begin("align")
	tm.End(j, "")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "render" || r.Phases[0].Note != "12 lines" {
		t.Fatalf("report = %+v", r)
	}
	s := tm.Summary()
	if !strings.Contains(s, "render") || !strings.Contains(s, "// 12 lines") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("render"), "")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("nil timer reported %+v", r)
	}
}

func TestMerge(t *testing.T) {
	a := Report{TotalMS: 3, Phases: []PhaseReport{{Name: "render", DurationMS: 1}, {Name: "align", DurationMS: 2}}}
	b := Report{TotalMS: 4, Phases: []PhaseReport{{Name: "align", DurationMS: 1}, {Name: "compact", DurationMS: 3, Note: "x"}}}
	m := Merge(a, b)
	if m.TotalMS != 7 || len(m.Phases) != 3 {
		t.Fatalf("merge = %+v", m)
	}
	if m.Phases[1].Name != "align" || m.Phases[1].DurationMS != 3 || m.Phases[2].Note != "" {
		t.Fatalf("merge phases = %+v", m.Phases)
	}
}
