package doc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed reports a document that violates the tree invariants.
var ErrMalformed = errors.New("malformed document")

// Validate checks that d is a finite tree: no nil children where a child is
// required, no shared or cyclic nodes, no line breaks inside text.
func Validate(d *Doc) error {
	if d == nil {
		return fmt.Errorf("%w: nil root", ErrMalformed)
	}
	seen := make(map[*Doc]struct{})
	stack := []*Doc{d}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[n]; dup {
			return fmt.Errorf("%w: %s node reachable twice (shared or cyclic)", ErrMalformed, n.Kind)
		}
		seen[n] = struct{}{}

		switch n.Kind {
		case KindText:
			if strings.ContainsAny(n.Text, "\r\n") {
				return fmt.Errorf("%w: text %q contains a line break", ErrMalformed, n.Text)
			}
		case KindVerbatim:
			for _, l := range n.Lines {
				if strings.ContainsAny(l, "\r\n") {
					return fmt.Errorf("%w: verbatim line %q contains a line break", ErrMalformed, l)
				}
			}
		case KindConcat, KindJoin:
			for i, p := range n.Parts {
				if p == nil {
					return fmt.Errorf("%w: %s part %d is nil", ErrMalformed, n.Kind, i)
				}
				stack = append(stack, p)
			}
			if n.Kind == KindJoin && n.Sep != nil {
				stack = append(stack, n.Sep)
			}
		case KindIndent, KindAlign, KindGroup, KindLineSuffix:
			if n.Body == nil {
				return fmt.Errorf("%w: %s without body", ErrMalformed, n.Kind)
			}
			if n.Kind == KindAlign && n.Column < 0 {
				return fmt.Errorf("%w: negative align column %d", ErrMalformed, n.Column)
			}
			stack = append(stack, n.Body)
		case KindIfBreak:
			if n.Body != nil {
				stack = append(stack, n.Body)
			}
			if n.Flat != nil {
				stack = append(stack, n.Flat)
			}
		case KindLine, KindSoftLine, KindDoubleSoftLine, KindLineSuffixBoundary, KindMark:
		default:
			return fmt.Errorf("%w: unknown node kind %d", ErrMalformed, n.Kind)
		}
	}
	return nil
}
