// Package compact removes blank separators that the canonical reflow put
// between one-line definitions which were adjacent in the source.
package compact

import (
	"fmt"
	"sort"

	"reflow/internal/doc"
	"reflow/internal/render"
	"reflow/internal/textbuf"
)

const passName = "compact"

// InlineDecl is one single-line definition.
type InlineDecl struct {
	RenderedLine int `msgpack:"line"`
	SourceLine   int `msgpack:"src"`
}

// Compact deletes the blank line between consecutive declarations whose
// rendered lines differ by two while their source lines differ by one.
// Deleting whole lines invalidates every line index recorded by earlier
// passes, so this must run last.
func Compact(buf *textbuf.Buffer, decls []InlineDecl) (removed int, err error) {
	for _, d := range decls {
		if err := buf.CheckLine(passName, describe(d), d.RenderedLine); err != nil {
			return 0, err
		}
	}
	sorted := append([]InlineDecl(nil), decls...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RenderedLine < sorted[j].RenderedLine })

	var gaps []int
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.RenderedLine-prev.RenderedLine != 2 || cur.SourceLine-prev.SourceLine != 1 {
			continue
		}
		mid := prev.RenderedLine + 1
		if buf.Frozen(mid) || !buf.IsBlank(mid) {
			continue
		}
		gaps = append(gaps, mid)
	}

	// снизу вверх, чтобы индексы выше оставались валидными
	for i := len(gaps) - 1; i >= 0; i-- {
		buf.Delete(gaps[i])
		removed++
	}
	return removed, nil
}

func describe(d InlineDecl) string {
	return fmt.Sprintf("declaration at line %d (source line %d)", d.RenderedLine, d.SourceLine)
}

// Pending is a declaration whose rendered line comes from a mark.
type Pending struct {
	At         doc.MarkKey `msgpack:"at"`
	SourceLine int         `msgpack:"src"`
}

// Recorder collects mark-based declarations.
type Recorder struct {
	Decls []Pending `msgpack:"decls,omitempty"`
}

// Decl registers a one-line definition starting at mark at.
func (r *Recorder) Decl(at doc.MarkKey, sourceLine int) {
	r.Decls = append(r.Decls, Pending{At: at, SourceLine: sourceLine})
}

// Resolve returns the declarations whose marks were rendered.
func (r *Recorder) Resolve(marks map[doc.MarkKey]render.Position) []InlineDecl {
	var out []InlineDecl
	for _, p := range r.Decls {
		pos, ok := marks[p.At]
		if !ok {
			continue
		}
		out = append(out, InlineDecl{RenderedLine: pos.Line, SourceLine: p.SourceLine})
	}
	return out
}
