// Package shape restores hand-authored call and literal layouts that the
// canonical reflow flattened or over-indented.
package shape

import (
	"fmt"
	"sort"
	"strings"

	"reflow/internal/textbuf"
)

// CallShape describes a call whose arguments were aligned to the column of
// its first parameter.
type CallShape struct {
	FirstLine        int  `msgpack:"first"`
	Indent           int  `msgpack:"indent"`
	FirstParamColumn int  `msgpack:"param_col"`
	NeedsDedent      bool `msgpack:"dedent"`
	ClosingLine      int  `msgpack:"closing"`
	LastLine         int  `msgpack:"last"`
}

func (c CallShape) String() string {
	return fmt.Sprintf("call at line %d (indent %d, param column %d, lines %d..%d)",
		c.FirstLine, c.Indent, c.FirstParamColumn, c.FirstLine, c.LastLine)
}

// LiteralIndent describes a literal whose closing bracket the author placed
// under its opening token.
type LiteralIndent struct {
	FirstLine   int `msgpack:"first"`
	LastLine    int `msgpack:"last"`
	ExtraIndent int `msgpack:"extra"`
}

func (l LiteralIndent) String() string {
	return fmt.Sprintf("literal at lines %d..%d (extra indent %d)", l.FirstLine, l.LastLine, l.ExtraIndent)
}

// Dedent pulls the body of `call arg(` / `  value,` / `)` shaped calls back
// from the first-parameter column to one indentation step past the call's
// own indentation. Only records with NeedsDedent whose closing delimiter sits
// on LastLine qualify. A record starting inside a range already dedented is
// dropped: its lines moved with the outer call. Returns the number of lines
// changed.
func Dedent(buf *textbuf.Buffer, calls []CallShape, indentWidth int) (int, error) {
	var sel []CallShape
	for _, c := range calls {
		if err := checkRange(buf, "dedent", c.String(), c.FirstLine, c.LastLine); err != nil {
			return 0, err
		}
		if c.NeedsDedent && c.ClosingLine == c.LastLine {
			sel = append(sel, c)
		}
	}
	sort.SliceStable(sel, func(i, j int) bool {
		if sel[i].FirstLine != sel[j].FirstLine {
			return sel[i].FirstLine < sel[j].FirstLine
		}
		return sel[i].LastLine > sel[j].LastLine
	})

	changed := 0
	coveredTo := -1
	for _, c := range sel {
		if c.FirstLine < coveredTo {
			continue
		}
		shift := c.FirstParamColumn - (c.Indent + indentWidth)
		if shift <= 0 {
			continue
		}
		for line := c.FirstLine + 1; line <= c.LastLine; line++ {
			if buf.Frozen(line) {
				continue
			}
			if buf.TrimIndent(line, shift) > 0 {
				changed++
			}
		}
		coveredTo = c.LastLine
	}
	return changed, nil
}

// RestoreIndent re-inserts ExtraIndent columns at the start of every line
// after a hugged literal's first line, keeping the deeper layout the author
// chose. Blank and frozen lines are left alone. Returns the number of lines
// changed.
func RestoreIndent(buf *textbuf.Buffer, lits []LiteralIndent) (int, error) {
	for _, l := range lits {
		if err := checkRange(buf, "restore-indent", l.String(), l.FirstLine, l.LastLine); err != nil {
			return 0, err
		}
	}
	changed := 0
	for _, l := range lits {
		if l.ExtraIndent <= 0 {
			continue
		}
		pad := strings.Repeat(" ", l.ExtraIndent)
		for line := l.FirstLine + 1; line <= l.LastLine; line++ {
			if buf.Frozen(line) || buf.IsBlank(line) {
				continue
			}
			buf.Prepend(line, pad)
			changed++
		}
	}
	return changed, nil
}

func checkRange(buf *textbuf.Buffer, pass, rec string, first, last int) error {
	if err := buf.CheckLine(pass, rec, first); err != nil {
		return err
	}
	if err := buf.CheckLine(pass, rec, last); err != nil {
		return err
	}
	if last < first {
		return &textbuf.InvariantError{Pass: pass, Record: rec, Line: last, Reason: "last line precedes first line"}
	}
	return nil
}
