// Package render turns a layout document into lines under a width budget.
//
// The printer walks an explicit frame stack, resolves every group once with a
// bounded fits probe and never backtracks. Line suffixes are queued and
// flushed to the end of the line being closed.
package render

import (
	"strings"

	"reflow/internal/doc"
	"reflow/internal/textbuf"
)

// Options controls the renderer.
type Options struct {
	Width       int // maximum line width
	IndentWidth int // columns added by one Indent step
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 80
	}
	if o.IndentWidth <= 0 {
		o.IndentWidth = 2
	}
	return o
}

// Position is a rendered location: zero-based line and display column.
type Position struct {
	Line   int
	Column int
}

// Result is the rendered output of one document.
type Result struct {
	Lines []string
	// Marks holds the first rendered position of every emitted mark.
	Marks map[doc.MarkKey]Position
	// Unmodifiable lists lines produced by verbatim bodies, ascending.
	Unmodifiable []int
}

// String joins the rendered lines.
func (r *Result) String() string { return strings.Join(r.Lines, "\n") }

// Buffer copies the result into a line buffer with verbatim lines frozen.
func (r *Result) Buffer() *textbuf.Buffer {
	b := textbuf.New(r.Lines)
	for _, i := range r.Unmodifiable {
		b.Freeze(i)
	}
	return b
}

type mode uint8

const (
	modeBreak mode = iota
	modeFlat
)

type frame struct {
	indent int
	mode   mode
	d      *doc.Doc
}

type printer struct {
	opt    Options
	w      lineWriter
	suffix []frame
}

// Render lays out d. It fails only when d is not a well-formed tree.
func Render(d *doc.Doc, opt Options) (*Result, error) {
	if err := doc.Validate(d); err != nil {
		return nil, err
	}
	p := &printer{
		opt: opt.withDefaults(),
		w:   lineWriter{marks: make(map[doc.MarkKey]Position)},
	}
	p.run(d)
	return &Result{
		Lines:        p.w.finish(),
		Marks:        p.w.marks,
		Unmodifiable: p.w.frozen,
	}, nil
}

func (p *printer) run(root *doc.Doc) {
	stack := []frame{{indent: 0, mode: modeBreak, d: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch d := f.d; d.Kind {
		case doc.KindText:
			p.w.writeString(d.Text)

		case doc.KindConcat:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				stack = append(stack, frame{f.indent, f.mode, d.Parts[i]})
			}

		case doc.KindJoin:
			for i := len(d.Parts) - 1; i >= 0; i-- {
				stack = append(stack, frame{f.indent, f.mode, d.Parts[i]})
				if i > 0 && d.Sep != nil {
					stack = append(stack, frame{f.indent, f.mode, d.Sep})
				}
			}

		case doc.KindIndent:
			stack = append(stack, frame{f.indent + p.opt.IndentWidth, f.mode, d.Body})

		case doc.KindAlign:
			stack = append(stack, frame{d.Column, f.mode, d.Body})

		case doc.KindGroup:
			switch {
			case d.Break:
				stack = append(stack, frame{f.indent, modeBreak, d.Body})
			case f.mode == modeFlat:
				stack = append(stack, frame{f.indent, modeFlat, d.Body})
			default:
				next := frame{f.indent, modeFlat, d.Body}
				if !p.fits(next, stack, p.opt.Width-p.w.col) {
					next.mode = modeBreak
				}
				stack = append(stack, next)
			}

		case doc.KindIfBreak:
			branch := d.Flat
			if f.mode == modeBreak {
				branch = d.Body
			}
			if branch != nil {
				stack = append(stack, frame{f.indent, f.mode, branch})
			}

		case doc.KindLine, doc.KindSoftLine, doc.KindDoubleSoftLine:
			if f.mode == modeFlat {
				if d.Kind == doc.KindLine {
					p.w.writeString(" ")
				}
				break
			}
			if len(p.suffix) > 0 {
				// Suffixes belong to the line being closed: revisit this
				// break after they are written.
				stack = append(stack, f)
				stack = p.flushSuffix(stack)
				break
			}
			if d.Kind == doc.KindDoubleSoftLine {
				p.w.blankLine(f.indent)
			} else {
				p.w.newline(f.indent)
			}

		case doc.KindLineSuffix:
			p.suffix = append(p.suffix, frame{f.indent, f.mode, d.Body})

		case doc.KindLineSuffixBoundary:
			stack = p.flushSuffix(stack)

		case doc.KindMark:
			p.w.mark(d.Key)

		case doc.KindVerbatim:
			p.w.verbatim(d.Lines)
		}

		if len(stack) == 0 && len(p.suffix) > 0 {
			stack = p.flushSuffix(stack)
		}
	}
}

// flushSuffix moves the queued suffixes onto the stack so they are written
// next, in queue order, separated from preceding content by one space.
func (p *printer) flushSuffix(stack []frame) []frame {
	if len(p.suffix) == 0 {
		return stack
	}
	if !p.w.endsWithSpace() && !strings.HasPrefix(leadingText(p.suffix[0].d), " ") {
		p.w.writeString(" ")
	}
	for i := len(p.suffix) - 1; i >= 0; i-- {
		stack = append(stack, p.suffix[i])
	}
	p.suffix = p.suffix[:0]
	return stack
}

// leadingText returns the first text a document would write, if any.
func leadingText(d *doc.Doc) string {
	for d != nil {
		switch d.Kind {
		case doc.KindText:
			if d.Text != "" {
				return d.Text
			}
			return ""
		case doc.KindConcat, doc.KindJoin:
			for _, p := range d.Parts {
				if s := leadingText(p); s != "" {
					return s
				}
			}
			return ""
		case doc.KindIndent, doc.KindAlign, doc.KindGroup, doc.KindLineSuffix:
			d = d.Body
		case doc.KindVerbatim:
			if len(d.Lines) > 0 {
				return d.Lines[0]
			}
			return ""
		default:
			return ""
		}
	}
	return ""
}
