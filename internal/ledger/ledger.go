// Package ledger records rendered positions of alignment-relevant constructs
// and aligns runs of them after rendering.
package ledger

import (
	"sort"

	"reflow/internal/doc"
	"reflow/internal/render"
)

// Category groups entries that may align with each other.
type Category uint8

const (
	Comment Category = iota + 1
	CaseWhen
	CallAlignment
	Assignment
)

// Categories lists every category in the order the alignment pass applies
// them. Comments go last: they trail their line and move with everything
// aligned before them.
var Categories = []Category{Assignment, CaseWhen, CallAlignment, Comment}

// String returns the string representation of Category.
func (c Category) String() string {
	switch c {
	case Comment:
		return "comment"
	case CaseWhen:
		return "case-when"
	case CallAlignment:
		return "call-alignment"
	case Assignment:
		return "assignment"
	default:
		return "unknown"
	}
}

// Entry is one tracked position in rendered coordinates.
type Entry struct {
	Category Category `msgpack:"cat"`
	Line     int      `msgpack:"line"`
	Column   int      `msgpack:"col"`
	// EndLine is the last line of an assigned value; only Assignment uses it.
	EndLine int `msgpack:"end,omitempty"`
	// Identity ties entries of one construct together; runs never mix
	// identities.
	Identity int `msgpack:"id"`
	// Offset moves the splice point left of Column.
	Offset int `msgpack:"off,omitempty"`
}

// Pending is an entry whose position is not known until the document is
// rendered. At (and End, when set) are marks placed in the document.
type Pending struct {
	Category Category    `msgpack:"cat"`
	Identity int         `msgpack:"id"`
	Offset   int         `msgpack:"off,omitempty"`
	At       doc.MarkKey `msgpack:"at"`
	End      doc.MarkKey `msgpack:"end,omitempty"`
}

// Ledger is an append-only collection of entries.
type Ledger struct {
	entries []*Entry
	pending []Pending
}

// New returns an empty ledger.
func New() *Ledger { return &Ledger{} }

// Add appends an entry already in rendered coordinates.
func (l *Ledger) Add(e Entry) {
	if e.EndLine < e.Line {
		e.EndLine = e.Line
	}
	l.entries = append(l.entries, &e)
}

// Expect appends an entry to be positioned by Resolve.
func (l *Ledger) Expect(p Pending) { l.pending = append(l.pending, p) }

// Pending returns the unresolved entries.
func (l *Ledger) Pending() []Pending { return append([]Pending(nil), l.pending...) }

// Resolve turns pending entries into entries using rendered mark positions.
// Entries whose mark was never rendered (an unchosen IfBreak branch) are
// dropped: the construct does not exist in the output.
func (l *Ledger) Resolve(marks map[doc.MarkKey]render.Position) {
	for _, p := range l.pending {
		at, ok := marks[p.At]
		if !ok {
			continue
		}
		e := Entry{
			Category: p.Category,
			Line:     at.Line,
			Column:   at.Column,
			Identity: p.Identity,
			Offset:   p.Offset,
		}
		if p.End != 0 {
			if end, ok := marks[p.End]; ok {
				e.EndLine = end.Line
			}
		}
		l.Add(e)
	}
	l.pending = nil
}

// Len returns the number of resolved entries.
func (l *Ledger) Len() int { return len(l.entries) }

// Entries returns copies of the resolved entries ordered by line and column.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}

// Run is a maximal sequence of same-category, same-identity entries on
// vertically adjacent lines.
type Run []*Entry

// Target is the column every entry of the run is moved to.
func (r Run) Target() int {
	target := 0
	for _, e := range r {
		target = max(target, e.Column)
	}
	return target
}

// runs partitions the entries of category c, skipping lines rejected by
// keep.
func (l *Ledger) runs(c Category, keep func(line int) bool) []Run {
	var sel []*Entry
	for _, e := range l.entries {
		if e.Category == c && keep(e.Line) {
			sel = append(sel, e)
		}
	}
	sort.SliceStable(sel, func(i, j int) bool {
		if sel[i].Line != sel[j].Line {
			return sel[i].Line < sel[j].Line
		}
		return sel[i].Column < sel[j].Column
	})

	var out []Run
	var cur Run
	for _, e := range sel {
		if len(cur) > 0 {
			prev := cur[len(cur)-1]
			if e.Line != prev.Line+1 || e.Identity != prev.Identity {
				out = append(out, cur)
				cur = nil
			}
		}
		cur = append(cur, e)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// Runs partitions the entries of category c into runs, including runs of a
// single entry.
func (l *Ledger) Runs(c Category) []Run {
	return l.runs(c, func(int) bool { return true })
}
