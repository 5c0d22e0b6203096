package ui

import (
	"strings"
	"testing"

	"reflow/internal/driver"
)

func TestProgressModelTracksEvents(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("fmt", []string{"a.rfb", "b.rfb"}, events).(*progressModel)

	m.Update(eventMsg{File: "a.rfb", Stage: driver.StageFormat, Status: driver.StatusWorking})
	m.Update(eventMsg{File: "b.rfb", Stage: driver.StageDecode, Status: driver.StatusError})
	m.Update(eventMsg{File: "unknown.rfb", Stage: driver.StageFormat, Status: driver.StatusDone})

	if m.items[0].status != "formatting" || m.items[1].status != "error" {
		t.Fatalf("items = %+v", m.items)
	}
	view := m.View()
	if !strings.Contains(view, "fmt (1/2)") || !strings.Contains(view, "formatting") {
		t.Fatalf("view:\n%s", view)
	}

	m.Update(doneMsg{})
	if !m.done || !strings.Contains(m.View(), "done: fmt") {
		t.Fatalf("model not finished:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a/very/long/path.rfb", 10, "a/ve..."},
		{"abcdef", 3, "abc"},
		{"漢字漢字漢字", 10, "漢字..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
