// Package doc defines the layout document IR consumed by the renderer.
//
// Назначение: описание раскладки (текст, переносы, группы, отступы) без
// привязки к ширине строки.
// Не делает: рендеринг, разбор исходников, IO.
// Зависимости: go-runewidth (ширина текста).
package doc

import (
	"strings"
)

// Kind tags the variant held by a Doc.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindConcat
	KindJoin
	KindLine
	KindSoftLine
	KindDoubleSoftLine
	KindIndent
	KindAlign
	KindGroup
	KindIfBreak
	KindLineSuffix
	KindLineSuffixBoundary
	KindMark
	KindVerbatim
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindConcat:
		return "concat"
	case KindJoin:
		return "join"
	case KindLine:
		return "line"
	case KindSoftLine:
		return "softline"
	case KindDoubleSoftLine:
		return "double-softline"
	case KindIndent:
		return "indent"
	case KindAlign:
		return "align"
	case KindGroup:
		return "group"
	case KindIfBreak:
		return "if-break"
	case KindLineSuffix:
		return "line-suffix"
	case KindLineSuffixBoundary:
		return "line-suffix-boundary"
	case KindMark:
		return "mark"
	case KindVerbatim:
		return "verbatim"
	default:
		return "unknown"
	}
}

// IsLine reports whether the kind is one of the line-break variants.
func (k Kind) IsLine() bool {
	return k == KindLine || k == KindSoftLine || k == KindDoubleSoftLine
}

// MarkKey identifies a position hook inside a document.
type MarkKey uint32

// Doc is a node of the layout tree. Only the fields relevant to Kind are set.
// Trees are owned top-down: a node must not appear twice in one tree.
type Doc struct {
	Kind   Kind     `msgpack:"k"`
	Text   string   `msgpack:"t,omitempty"`  // KindText
	Lines  []string `msgpack:"ls,omitempty"` // KindVerbatim
	Parts  []*Doc   `msgpack:"p,omitempty"`  // KindConcat, KindJoin
	Sep    *Doc     `msgpack:"s,omitempty"`  // KindJoin
	Body   *Doc     `msgpack:"b,omitempty"`  // Indent, Align, Group, LineSuffix, IfBreak (broken)
	Flat   *Doc     `msgpack:"f,omitempty"`  // KindIfBreak
	Column int      `msgpack:"c,omitempty"`  // KindAlign
	Break  bool     `msgpack:"br,omitempty"` // KindGroup
	Key    MarkKey  `msgpack:"m,omitempty"`  // KindMark
}

// Text returns literal content. The string must not contain line breaks.
func Text(s string) *Doc {
	if strings.ContainsAny(s, "\r\n") {
		panic("doc: text contains a line break: " + s)
	}
	return &Doc{Kind: KindText, Text: s}
}

// Concat sequences parts in order. Nil parts are dropped.
func Concat(parts ...*Doc) *Doc {
	out := make([]*Doc, 0, len(parts))
	for _, p := range parts {
		if p != nil {
			out = append(out, p)
		}
	}
	return &Doc{Kind: KindConcat, Parts: out}
}

// Join places sep between consecutive parts.
func Join(sep *Doc, parts ...*Doc) *Doc {
	return &Doc{Kind: KindJoin, Sep: sep, Parts: parts}
}

// Line is a space when flat and a newline plus indentation when broken.
func Line() *Doc { return &Doc{Kind: KindLine} }

// SoftLine is nothing when flat and a newline plus indentation when broken.
func SoftLine() *Doc { return &Doc{Kind: KindSoftLine} }

// DoubleSoftLine is nothing when flat and one blank separator line when broken.
func DoubleSoftLine() *Doc { return &Doc{Kind: KindDoubleSoftLine} }

// Indent adds one indentation step to body lines broken in BREAK mode.
func Indent(body *Doc) *Doc { return &Doc{Kind: KindIndent, Body: body} }

// Align sets an absolute indentation column for body.
func Align(column int, body *Doc) *Doc {
	if column < 0 {
		column = 0
	}
	return &Doc{Kind: KindAlign, Column: column, Body: body}
}

// Group makes one flat/break decision for body.
func Group(body *Doc) *Doc { return &Doc{Kind: KindGroup, Body: body} }

// ForceGroup is a group that always breaks.
func ForceGroup(body *Doc) *Doc { return &Doc{Kind: KindGroup, Body: body, Break: true} }

// IfBreak picks broken or flat depending on the enclosing group's mode.
// Either side may be nil.
func IfBreak(broken, flat *Doc) *Doc {
	return &Doc{Kind: KindIfBreak, Body: broken, Flat: flat}
}

// LineSuffix defers body to the end of the current line.
func LineSuffix(body *Doc) *Doc { return &Doc{Kind: KindLineSuffix, Body: body} }

// LineSuffixBoundary flushes pending line suffixes in place.
func LineSuffixBoundary() *Doc { return &Doc{Kind: KindLineSuffixBoundary} }

// Mark records the rendered position reached at this point under key.
func Mark(key MarkKey) *Doc { return &Doc{Kind: KindMark, Key: key} }

// Verbatim emits a multi-line body untouched. Lines after the first start at
// column 0 and are never modified by later passes.
func Verbatim(lines ...string) *Doc {
	return &Doc{Kind: KindVerbatim, Lines: append([]string(nil), lines...)}
}

// HardLine is a line that always breaks.
func HardLine() *Doc { return ForceGroup(Line()) }

// Lines joins parts with hard line breaks.
func Lines(parts ...*Doc) *Doc {
	out := make([]*Doc, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, HardLine())
		}
		out = append(out, p)
	}
	return &Doc{Kind: KindConcat, Parts: out}
}

// Empty is a document rendering nothing.
func Empty() *Doc { return &Doc{Kind: KindConcat} }
