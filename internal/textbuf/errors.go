package textbuf

import (
	"errors"
	"fmt"
)

// ErrInvariant marks a side-table record that contradicts the rendered
// buffer. It points at a defect in whoever produced the record.
var ErrInvariant = errors.New("internal invariant violation")

// InvariantError identifies the offending record.
type InvariantError struct {
	Pass   string // pass that rejected the record
	Record string // record description
	Line   int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s: line %d: %s (%s)", e.Pass, ErrInvariant, e.Line, e.Reason, e.Record)
}

// Unwrap returns ErrInvariant so callers can match with errors.Is.
func (e *InvariantError) Unwrap() error { return ErrInvariant }

// CheckLine returns an InvariantError when line is outside b.
func (b *Buffer) CheckLine(pass, record string, line int) error {
	if b.Has(line) {
		return nil
	}
	return &InvariantError{
		Pass:   pass,
		Record: record,
		Line:   line,
		Reason: fmt.Sprintf("outside rendered buffer of %d lines", b.Len()),
	}
}
