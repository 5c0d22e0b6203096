package shape

import (
	"reflow/internal/doc"
	"reflow/internal/render"
	"reflow/internal/textbuf"
)

// CallMarks locates a call in the document before rendering.
type CallMarks struct {
	Open        doc.MarkKey `msgpack:"open"`        // start of the call
	FirstParam  doc.MarkKey `msgpack:"first_param"` // start of the first argument
	LastArg     doc.MarkKey `msgpack:"last_arg"`    // end of the last argument
	Close       doc.MarkKey `msgpack:"close"`       // closing delimiter
	NeedsDedent bool        `msgpack:"dedent"`
}

// LiteralMarks locates a hugged literal in the document before rendering.
type LiteralMarks struct {
	Open        doc.MarkKey `msgpack:"open"`
	Close       doc.MarkKey `msgpack:"close"`
	ExtraIndent int         `msgpack:"extra"`
}

// Recorder collects mark-based shape records and finalizes them against the
// rendered output.
type Recorder struct {
	Calls    []CallMarks    `msgpack:"calls,omitempty"`
	Literals []LiteralMarks `msgpack:"literals,omitempty"`
}

// Call registers a call.
func (r *Recorder) Call(c CallMarks) { r.Calls = append(r.Calls, c) }

// Literal registers a hugged literal.
func (r *Recorder) Literal(l LiteralMarks) { r.Literals = append(r.Literals, l) }

// Resolve finalizes the records whose marks were all rendered. A call is
// kept only when its first parameter shares the opening line, its last
// argument ends below that line and its closing delimiter sits on the line
// right after the last argument; Indent is read from the rendered opening
// line.
func (r *Recorder) Resolve(buf *textbuf.Buffer, marks map[doc.MarkKey]render.Position) ([]CallShape, []LiteralIndent) {
	var calls []CallShape
	for _, c := range r.Calls {
		open, ok1 := marks[c.Open]
		param, ok2 := marks[c.FirstParam]
		last, ok3 := marks[c.LastArg]
		closing, ok4 := marks[c.Close]
		if !ok1 || !ok2 || !ok3 || !ok4 {
			continue
		}
		if param.Line != open.Line || last.Line <= open.Line || closing.Line != last.Line+1 {
			continue
		}
		calls = append(calls, CallShape{
			FirstLine:        open.Line,
			Indent:           leadingSpaces(buf, open.Line),
			FirstParamColumn: param.Column,
			NeedsDedent:      c.NeedsDedent,
			ClosingLine:      closing.Line,
			LastLine:         last.Line + 1,
		})
	}

	var lits []LiteralIndent
	for _, l := range r.Literals {
		open, ok1 := marks[l.Open]
		closing, ok2 := marks[l.Close]
		if !ok1 || !ok2 || closing.Line <= open.Line {
			continue
		}
		lits = append(lits, LiteralIndent{
			FirstLine:   open.Line,
			LastLine:    closing.Line,
			ExtraIndent: l.ExtraIndent,
		})
	}
	return calls, lits
}

func leadingSpaces(buf *textbuf.Buffer, line int) int {
	if !buf.Has(line) {
		return 0
	}
	s := buf.Line(line)
	n := 0
	for n < len(s) && s[n] == ' ' {
		n++
	}
	return n
}
