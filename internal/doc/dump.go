package doc

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Dump writes an indented debug view of d to w.
func Dump(w io.Writer, d *Doc) error {
	var sb strings.Builder
	dumpNode(&sb, d, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

// String renders the debug view of d.
func (d *Doc) String() string {
	var sb strings.Builder
	dumpNode(&sb, d, 0)
	return sb.String()
}

func dumpNode(sb *strings.Builder, d *Doc, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if d == nil {
		sb.WriteString("<nil>\n")
		return
	}
	sb.WriteString(d.Kind.String())
	switch d.Kind {
	case KindText:
		sb.WriteString(" " + strconv.Quote(d.Text))
	case KindAlign:
		fmt.Fprintf(sb, " col=%d", d.Column)
	case KindGroup:
		if d.Break {
			sb.WriteString(" break")
		}
	case KindMark:
		fmt.Fprintf(sb, " #%d", d.Key)
	case KindVerbatim:
		fmt.Fprintf(sb, " lines=%d", len(d.Lines))
	}
	sb.WriteByte('\n')

	switch d.Kind {
	case KindConcat:
		for _, p := range d.Parts {
			dumpNode(sb, p, depth+1)
		}
	case KindJoin:
		sb.WriteString(strings.Repeat("  ", depth+1) + "sep:\n")
		dumpNode(sb, d.Sep, depth+2)
		for _, p := range d.Parts {
			dumpNode(sb, p, depth+1)
		}
	case KindIndent, KindAlign, KindGroup, KindLineSuffix:
		dumpNode(sb, d.Body, depth+1)
	case KindIfBreak:
		sb.WriteString(strings.Repeat("  ", depth+1) + "broken:\n")
		dumpNode(sb, d.Body, depth+2)
		sb.WriteString(strings.Repeat("  ", depth+1) + "flat:\n")
		dumpNode(sb, d.Flat, depth+2)
	case KindVerbatim:
		for _, l := range d.Lines {
			sb.WriteString(strings.Repeat("  ", depth+1) + strconv.Quote(l) + "\n")
		}
	}
}
