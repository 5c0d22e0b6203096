package render

import (
	"strings"

	"reflow/internal/doc"
)

// lineWriter accumulates rendered output line by line and tracks the display
// column of the current line.
type lineWriter struct {
	lines  []string
	cur    strings.Builder
	col    int
	raw    bool // current line started inside a verbatim body
	frozen []int

	marks map[doc.MarkKey]Position
	open  []doc.MarkKey // marks recorded on the current line
}

// mark records the current position under key; the first occurrence wins.
func (w *lineWriter) mark(key doc.MarkKey) {
	if _, ok := w.marks[key]; ok {
		return
	}
	w.marks[key] = Position{Line: w.line(), Column: w.col}
	w.open = append(w.open, key)
}

func (w *lineWriter) writeString(s string) {
	if s == "" {
		return
	}
	w.cur.WriteString(s)
	w.col += doc.Width(s)
}

// endLine closes the current line. Trailing blanks are trimmed unless the
// line belongs to a verbatim body; marks past the trimmed end are pulled back
// onto it.
func (w *lineWriter) endLine() {
	line := w.cur.String()
	if !w.raw {
		line = strings.TrimRight(line, " \t")
		width := doc.Width(line)
		for _, key := range w.open {
			if pos := w.marks[key]; pos.Column > width {
				pos.Column = width
				w.marks[key] = pos
			}
		}
	}
	w.open = w.open[:0]
	w.lines = append(w.lines, line)
	w.cur.Reset()
	w.col = 0
	w.raw = false
}

// newline closes the current line and opens a new one indented to indent.
func (w *lineWriter) newline(indent int) {
	w.endLine()
	w.writeIndent(indent)
}

func (w *lineWriter) writeIndent(indent int) {
	for range indent {
		w.cur.WriteByte(' ')
	}
	w.col = indent
}

// blankLine guarantees exactly one blank line between the previous content
// and the next one, collapsing repeated requests.
func (w *lineWriter) blankLine(indent int) {
	if !w.curBlank() {
		w.newline(0)
		w.newline(indent)
		return
	}
	if len(w.lines) == 0 || w.lines[len(w.lines)-1] == "" {
		w.cur.Reset()
		w.writeIndent(indent)
		return
	}
	w.newline(indent)
}

// verbatim writes body lines untouched; every line after the first starts at
// column 0 and is recorded as frozen.
func (w *lineWriter) verbatim(lines []string) {
	for i, l := range lines {
		if i > 0 {
			w.endLine()
			w.frozen = append(w.frozen, len(w.lines))
			w.raw = true
		}
		w.writeString(l)
	}
}

func (w *lineWriter) curBlank() bool {
	return strings.TrimSpace(w.cur.String()) == ""
}

// endsWithSpace reports whether the current line is empty or ends in a blank.
func (w *lineWriter) endsWithSpace() bool {
	s := w.cur.String()
	if s == "" {
		return true
	}
	last := s[len(s)-1]
	return last == ' ' || last == '\t'
}

func (w *lineWriter) line() int { return len(w.lines) }

func (w *lineWriter) finish() []string {
	if w.cur.Len() > 0 || len(w.lines) > 0 {
		w.endLine()
	}
	return w.lines
}
