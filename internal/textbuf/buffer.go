// Package textbuf holds rendered output as a mutable line buffer shared by the
// correction passes.
//
// Columns are display columns (see doc.Width), not byte offsets; every edit
// maps a column back to a byte index before splicing.
package textbuf

import (
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Buffer is a list of rendered lines plus the set of lines that belong to
// verbatim bodies and must never be edited.
type Buffer struct {
	lines  []string
	frozen map[int]struct{}
}

// New creates a buffer over lines. The slice is copied.
func New(lines []string) *Buffer {
	return &Buffer{
		lines:  append([]string(nil), lines...),
		frozen: make(map[int]struct{}),
	}
}

// FromString splits s on '\n'. An empty string yields an empty buffer.
func FromString(s string) *Buffer {
	if s == "" {
		return New(nil)
	}
	return New(strings.Split(s, "\n"))
}

// Len returns the number of lines.
func (b *Buffer) Len() int { return len(b.lines) }

// Line returns line i. The caller must check bounds with Has.
func (b *Buffer) Line(i int) string { return b.lines[i] }

// Has reports whether i is a valid line index.
func (b *Buffer) Has(i int) bool { return i >= 0 && i < len(b.lines) }

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string { return append([]string(nil), b.lines...) }

// String joins the lines with '\n'.
func (b *Buffer) String() string { return strings.Join(b.lines, "\n") }

// Freeze marks line i as unmodifiable.
func (b *Buffer) Freeze(i int) {
	if b.Has(i) {
		b.frozen[i] = struct{}{}
	}
}

// Frozen reports whether line i is unmodifiable.
func (b *Buffer) Frozen(i int) bool {
	_, ok := b.frozen[i]
	return ok
}

// FrozenLines returns the unmodifiable line indices in ascending order.
func (b *Buffer) FrozenLines() []int {
	out := make([]int, 0, len(b.frozen))
	for i := range b.frozen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Width returns the display width of line i.
func (b *Buffer) Width(i int) int { return runewidth.StringWidth(b.lines[i]) }

// IsBlank reports whether line i holds only whitespace.
func (b *Buffer) IsBlank(i int) bool { return strings.TrimSpace(b.lines[i]) == "" }

// Insert splices s into line i at display column col. Columns past the end
// of the line are padded with spaces.
func (b *Buffer) Insert(i, col int, s string) {
	line := b.lines[i]
	idx, reached := byteIndex(line, col)
	if reached < col {
		line += strings.Repeat(" ", col-reached)
		idx = len(line)
	}
	b.lines[i] = line[:idx] + s + line[idx:]
}

// Prepend adds s at the start of line i.
func (b *Buffer) Prepend(i int, s string) { b.lines[i] = s + b.lines[i] }

// TrimIndent removes up to n leading spaces from line i and returns how many
// were removed.
func (b *Buffer) TrimIndent(i, n int) int {
	line := b.lines[i]
	k := 0
	for k < n && k < len(line) && line[k] == ' ' {
		k++
	}
	b.lines[i] = line[k:]
	return k
}

// Delete removes line i, shifting later lines (and their frozen marks) up.
func (b *Buffer) Delete(i int) {
	b.lines = append(b.lines[:i], b.lines[i+1:]...)
	if len(b.frozen) == 0 {
		return
	}
	shifted := make(map[int]struct{}, len(b.frozen))
	for f := range b.frozen {
		switch {
		case f < i:
			shifted[f] = struct{}{}
		case f > i:
			shifted[f-1] = struct{}{}
		}
	}
	b.frozen = shifted
}

// byteIndex returns the byte offset of display column col in line and the
// column actually reached (less than col when the line is shorter).
func byteIndex(line string, col int) (idx, reached int) {
	for i, r := range line {
		if reached >= col {
			return i, reached
		}
		reached += runewidth.RuneWidth(r)
	}
	return len(line), reached
}
