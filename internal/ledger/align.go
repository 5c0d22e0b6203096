package ledger

import (
	"fmt"
	"slices"
	"strings"

	"reflow/internal/textbuf"
)

const passName = "align"

// Stats summarizes an alignment pass.
type Stats struct {
	Runs  int // runs with two or more entries
	Moved int // entries that received filler
}

// Align rewrites buf so that every run of two or more entries in the given
// categories starts at the run's widest column. With no categories, all of
// them are aligned in Categories order.
//
// For every entry moved right, entries of any category on the same line
// past the splice point move with it; for assignments every further line of
// the assigned value is shifted by the same filler. Entries on frozen lines
// are ignored and frozen lines are never edited.
func Align(buf *textbuf.Buffer, l *Ledger, cats ...Category) (Stats, error) {
	var st Stats
	if l == nil || len(l.entries) == 0 {
		return st, nil
	}
	if len(cats) == 0 {
		cats = Categories
	}
	if err := l.check(buf, cats); err != nil {
		return st, err
	}

	byLine := make(map[int][]*Entry, len(l.entries))
	for _, e := range l.entries {
		byLine[e.Line] = append(byLine[e.Line], e)
	}
	keep := func(line int) bool { return !buf.Frozen(line) }

	for _, c := range cats {
		for _, run := range l.runs(c, keep) {
			if len(run) < 2 {
				continue
			}
			st.Runs++
			target := run.Target()
			for _, e := range run {
				if e.Column >= target {
					continue
				}
				fill := target - e.Column
				at := e.Column - e.Offset
				buf.Insert(e.Line, at, strings.Repeat(" ", fill))
				for _, other := range byLine[e.Line] {
					if other != e && other.Column > at {
						other.Column += fill
					}
				}
				e.Column = target
				st.Moved++

				if e.Category == Assignment {
					shiftValueLines(buf, byLine, e, fill)
				}
			}
		}
	}
	return st, nil
}

// shiftValueLines prepends fill columns to the continuation lines of a
// multi-line assigned value so its relative indentation follows the first
// line.
func shiftValueLines(buf *textbuf.Buffer, byLine map[int][]*Entry, e *Entry, fill int) {
	pad := strings.Repeat(" ", fill)
	for line := e.Line + 1; line <= e.EndLine; line++ {
		if buf.Frozen(line) || buf.IsBlank(line) {
			continue
		}
		buf.Prepend(line, pad)
		for _, other := range byLine[line] {
			other.Column += fill
		}
	}
}

// check rejects entries of the given categories that do not fit the
// rendered buffer.
func (l *Ledger) check(buf *textbuf.Buffer, cats []Category) error {
	for _, e := range l.entries {
		if !slices.Contains(cats, e.Category) {
			continue
		}
		rec := describe(e)
		if err := buf.CheckLine(passName, rec, e.Line); err != nil {
			return err
		}
		if e.Category == Assignment {
			if err := buf.CheckLine(passName, rec, e.EndLine); err != nil {
				return err
			}
		}
		if buf.Frozen(e.Line) {
			continue
		}
		if e.Column < 0 || e.Column-e.Offset < 0 || e.Column > buf.Width(e.Line) {
			return &textbuf.InvariantError{
				Pass:   passName,
				Record: rec,
				Line:   e.Line,
				Reason: fmt.Sprintf("column %d (offset %d) outside line of width %d", e.Column, e.Offset, buf.Width(e.Line)),
			}
		}
	}
	return nil
}

func describe(e *Entry) string {
	return fmt.Sprintf("%s entry id=%d at %d:%d", e.Category, e.Identity, e.Line, e.Column)
}
