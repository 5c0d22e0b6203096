package format

import (
	"context"
	"fmt"
	"strconv"

	"reflow/internal/compact"
	"reflow/internal/doc"
	"reflow/internal/ledger"
	"reflow/internal/observ"
	"reflow/internal/render"
	"reflow/internal/shape"
	"reflow/internal/textbuf"
	"reflow/internal/trace"
)

// Tables carries the side tables produced alongside a document. Direct
// records are already in rendered coordinates; mark-based ones are resolved
// against the render result.
type Tables struct {
	Entries   []ledger.Entry        `msgpack:"entries,omitempty"`
	Pending   []ledger.Pending      `msgpack:"pending,omitempty"`
	Calls     []shape.CallShape     `msgpack:"calls,omitempty"`
	Literals  []shape.LiteralIndent `msgpack:"literals,omitempty"`
	Shapes    shape.Recorder        `msgpack:"shapes"`
	Decls     []compact.InlineDecl  `msgpack:"decls,omitempty"`
	DeclMarks compact.Recorder      `msgpack:"decl_marks"`

	// Unmodifiable adds lines to the set the renderer froze on its own.
	Unmodifiable []int `msgpack:"unmodifiable,omitempty"`
}

// Stats counts what each correction changed.
type Stats struct {
	Lines    int `json:"lines"`
	Runs     int `json:"runs"`
	Aligned  int `json:"aligned"`
	Dedented int `json:"dedented"`
	Restored int `json:"restored"`
	Removed  int `json:"removed"`
}

// Result is the output of one formatting run.
type Result struct {
	Text    string
	Stats   Stats
	Timings observ.Report
}

// Format renders d at opts.Width and applies every enabled correction.
// A nil tables value means there is nothing to correct.
func Format(d *doc.Doc, opts Options, tables *Tables) (string, error) {
	res, err := Run(context.Background(), d, opts, tables)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Run is Format with tracing taken from ctx, per-pass timings and stats.
func Run(ctx context.Context, d *doc.Doc, opts Options, tables *Tables) (*Result, error) {
	opts = opts.withDefaults()
	if tables == nil {
		tables = &Tables{}
	}
	p := &pipeline{
		tracer: trace.FromContext(ctx),
		parent: trace.SpanFromContext(ctx),
		timer:  observ.NewTimer(),
		opts:   opts,
	}

	rendered, err := p.render(d)
	if err != nil {
		return nil, err
	}
	buf := rendered.Buffer()
	for _, line := range tables.Unmodifiable {
		if err := buf.CheckLine("format", "unmodifiable line", line); err != nil {
			return nil, err
		}
		buf.Freeze(line)
	}

	l := ledger.New()
	for _, e := range tables.Entries {
		l.Add(e)
	}
	for _, pe := range tables.Pending {
		l.Expect(pe)
	}
	l.Resolve(rendered.Marks)

	// shape records read indentation from the buffer as rendered
	calls, lits := tables.Shapes.Resolve(buf, rendered.Marks)
	calls = append(append([]shape.CallShape(nil), tables.Calls...), calls...)
	lits = append(append([]shape.LiteralIndent(nil), tables.Literals...), lits...)
	decls := append(append([]compact.InlineDecl(nil), tables.Decls...), tables.DeclMarks.Resolve(rendered.Marks)...)

	if err := p.align(buf, l); err != nil {
		return nil, err
	}
	if err := p.step("dedent", opts.Enabled(DedentCalls), func() (int, error) {
		n, err := shape.Dedent(buf, calls, opts.IndentWidth)
		p.stats.Dedented = n
		return n, err
	}); err != nil {
		return nil, err
	}
	if err := p.step("restore-indent", opts.Enabled(HugLiterals), func() (int, error) {
		n, err := shape.RestoreIndent(buf, lits)
		p.stats.Restored = n
		return n, err
	}); err != nil {
		return nil, err
	}
	if err := p.step("compact", opts.Enabled(CompactDeclarations), func() (int, error) {
		n, err := compact.Compact(buf, decls)
		p.stats.Removed = n
		return n, err
	}); err != nil {
		return nil, err
	}

	p.stats.Lines = buf.Len()
	return &Result{
		Text:    buf.String(),
		Stats:   p.stats,
		Timings: p.timer.Report(),
	}, nil
}

type pipeline struct {
	tracer trace.Tracer
	parent uint64
	timer  *observ.Timer
	opts   Options
	stats  Stats
}

func (p *pipeline) render(d *doc.Doc) (*render.Result, error) {
	span := trace.Begin(p.tracer, trace.ScopePass, "render", p.parent)
	idx := p.timer.Begin("render")
	res, err := render.Render(d, render.Options{Width: p.opts.Width, IndentWidth: p.opts.IndentWidth})
	if err != nil {
		p.timer.End(idx, "failed")
		span.End(err.Error())
		return nil, fmt.Errorf("render: %w", err)
	}
	note := strconv.Itoa(len(res.Lines)) + " lines"
	p.timer.End(idx, note)
	span.WithExtra("marks", strconv.Itoa(len(res.Marks))).End(note)
	return res, nil
}

func (p *pipeline) align(buf *textbuf.Buffer, l *ledger.Ledger) error {
	var cats []ledger.Category
	for _, c := range ledger.Categories {
		if p.opts.Enabled(categoryPass(c)) {
			cats = append(cats, c)
		}
	}
	if len(cats) == 0 {
		return nil
	}
	span := trace.Begin(p.tracer, trace.ScopePass, "align", p.parent)
	idx := p.timer.Begin("align")
	st, err := ledger.Align(buf, l, cats...)
	if err != nil {
		p.timer.End(idx, "failed")
		span.End(err.Error())
		return err
	}
	p.stats.Runs, p.stats.Aligned = st.Runs, st.Moved
	note := fmt.Sprintf("%d runs, %d moved", st.Runs, st.Moved)
	p.timer.End(idx, note)
	span.End(note)
	return nil
}

// step runs one line-level correction under a span and a timer phase.
func (p *pipeline) step(name string, enabled bool, fn func() (int, error)) error {
	if !enabled {
		return nil
	}
	span := trace.Begin(p.tracer, trace.ScopePass, name, p.parent)
	idx := p.timer.Begin(name)
	n, err := fn()
	if err != nil {
		p.timer.End(idx, "failed")
		span.End(err.Error())
		return err
	}
	note := strconv.Itoa(n) + " lines"
	p.timer.End(idx, note)
	span.End(note)
	return nil
}

func categoryPass(c ledger.Category) Pass {
	switch c {
	case ledger.Comment:
		return AlignComments
	case ledger.CaseWhen:
		return AlignCaseWhen
	case ledger.CallAlignment:
		return AlignCallArguments
	case ledger.Assignment:
		return AlignAssignments
	default:
		return 0
	}
}
