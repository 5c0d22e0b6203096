package format

import (
	"context"
	"errors"
	"strings"
	"testing"

	"reflow/internal/compact"
	"reflow/internal/doc"
	"reflow/internal/ledger"
	"reflow/internal/shape"
	"reflow/internal/textbuf"
	"reflow/internal/trace"
)

func textLines(lines ...string) *doc.Doc {
	parts := make([]*doc.Doc, len(lines))
	for i, l := range lines {
		parts[i] = doc.Text(l)
	}
	return doc.Lines(parts...)
}

func TestFormatScenarios(t *testing.T) {
	tests := []struct {
		name   string
		doc    *doc.Doc
		tables *Tables
		want   string
	}{
		{
			name: "comment alignment",
			doc:  textLines("a # c1", "bb # c2"),
			tables: &Tables{Entries: []ledger.Entry{
				{Category: ledger.Comment, Line: 0, Column: 2},
				{Category: ledger.Comment, Line: 1, Column: 3},
			}},
			want: "a  # c1\nbb # c2",
		},
		{
			name: "dedent",
			doc:  textLines("foo bar(", "          2,", "        )"),
			tables: &Tables{Calls: []shape.CallShape{{
				FirstLine: 0, LastLine: 2, Indent: 0, FirstParamColumn: 10, NeedsDedent: true, ClosingLine: 2,
			}}},
			want: "foo bar(\n  2,\n)",
		},
		{
			name: "compaction",
			doc:  textLines("def a; end", "", "def b; end"),
			tables: &Tables{Decls: []compact.InlineDecl{
				{RenderedLine: 0, SourceLine: 0},
				{RenderedLine: 2, SourceLine: 1},
			}},
			want: "def a; end\ndef b; end",
		},
		{
			name: "line suffix ordering",
			doc: doc.ForceGroup(doc.Concat(
				doc.Text("x"), doc.LineSuffix(doc.Text("# hi")), doc.Line(), doc.Text("y"),
			)),
			want: "x # hi\ny",
		},
		{
			name: "empty document",
			doc:  doc.Empty(),
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Format(tt.doc, Options{Width: 80}, tt.tables)
			if err != nil {
				t.Fatalf("format: %v", err)
			}
			if got != tt.want {
				t.Fatalf("output mismatch:\nwant %q\ngot  %q", tt.want, got)
			}
		})
	}
}

// commentedCalls builds
//
//	x = f(1) # one
//	longer = f(2) # two
//
// with comments positioned by marks.
func commentedCalls() (*doc.Doc, *Tables) {
	row := func(name string, arg string, at doc.MarkKey, comment string) *doc.Doc {
		return doc.Concat(
			doc.Text(name+" = "),
			doc.Group(doc.Concat(doc.Text("f("), doc.Indent(doc.Concat(doc.SoftLine(), doc.Text(arg))), doc.SoftLine(), doc.Text(")"))),
			doc.LineSuffix(doc.Concat(doc.Mark(at), doc.Text(comment))),
		)
	}
	d := doc.Lines(row("x", "1", 1, "# one"), row("longer", "2", 2, "# two"))
	tables := &Tables{Pending: []ledger.Pending{
		{Category: ledger.Comment, Identity: 1, At: 1},
		{Category: ledger.Comment, Identity: 1, At: 2},
	}}
	return d, tables
}

func TestFormatResolvesMarks(t *testing.T) {
	d, tables := commentedCalls()
	got, err := Format(d, Options{}, tables)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	want := "x = f(1)      # one\nlonger = f(2) # two"
	if got != want {
		t.Fatalf("output mismatch:\nwant %q\ngot  %q", want, got)
	}
}

// commentedLines rebuilds formatted text as a document whose trailing
// comments are positioned by marks again, one pending entry per comment.
func commentedLines(text string) (*doc.Doc, *Tables) {
	tables := &Tables{}
	var rows []*doc.Doc
	for i, line := range strings.Split(text, "\n") {
		at := strings.Index(line, "#")
		if at < 0 {
			rows = append(rows, doc.Text(line))
			continue
		}
		key := doc.MarkKey(i + 1)
		rows = append(rows, doc.Concat(doc.Text(line[:at]), doc.Mark(key), doc.Text(line[at:])))
		tables.Pending = append(tables.Pending, ledger.Pending{Category: ledger.Comment, Identity: 1, At: key})
	}
	return doc.Lines(rows...), tables
}

func TestFormatIsIdempotent(t *testing.T) {
	cases := []struct {
		name   string
		doc    *doc.Doc
		tables *Tables
		width  int
		// again rebuilds the input from the first output, with side
		// tables in the coordinates of that output.
		again func(first string) (*doc.Doc, *Tables)
	}{
		{
			name:  "aligned comments stay put",
			width: 80,
			doc: func() *doc.Doc {
				d, _ := commentedCalls()
				return d
			}(),
			tables: func() *Tables {
				_, tb := commentedCalls()
				return tb
			}(),
			again: commentedLines,
		},
		{
			name:  "dedented body stays put",
			width: 80,
			doc:   textLines("foo bar(", "          2,", "        )"),
			tables: &Tables{Calls: []shape.CallShape{{
				LastLine: 2, FirstParamColumn: 10, NeedsDedent: true, ClosingLine: 2,
			}}},
			again: func(first string) (*doc.Doc, *Tables) {
				lines := strings.Split(first, "\n")
				col := len(lines[1]) - len(strings.TrimLeft(lines[1], " "))
				return textLines(lines...), &Tables{Calls: []shape.CallShape{{
					LastLine: 2, FirstParamColumn: col, NeedsDedent: true, ClosingLine: 2,
				}}}
			},
		},
		{
			name:  "compacted declarations stay put",
			width: 80,
			doc:   textLines("def a; end", "", "def b; end"),
			tables: &Tables{Decls: []compact.InlineDecl{
				{RenderedLine: 0, SourceLine: 0},
				{RenderedLine: 2, SourceLine: 1},
			}},
			again: func(first string) (*doc.Doc, *Tables) {
				return textLines(strings.Split(first, "\n")...), &Tables{Decls: []compact.InlineDecl{
					{RenderedLine: 0, SourceLine: 0},
					{RenderedLine: 1, SourceLine: 1},
				}}
			},
		},
		{
			name:  "broken group",
			width: 12,
			doc:   doc.Group(doc.Join(doc.Concat(doc.Text(","), doc.Line()), doc.Text("alpha"), doc.Text("beta"), doc.Text("gamma"))),
			again: func(first string) (*doc.Doc, *Tables) {
				return textLines(strings.Split(first, "\n")...), nil
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			first, err := Format(tc.doc, Options{Width: tc.width}, tc.tables)
			if err != nil {
				t.Fatalf("format: %v", err)
			}
			d, tables := tc.again(first)
			res, err := Run(context.Background(), d, Options{Width: tc.width}, tables)
			if err != nil {
				t.Fatalf("reformat: %v", err)
			}
			if res.Text != first {
				t.Fatalf("not idempotent:\nfirst  %q\nsecond %q", first, res.Text)
			}
			if res.Stats.Aligned != 0 || res.Stats.Dedented != 0 || res.Stats.Removed != 0 {
				t.Fatalf("second pass changed lines: %+v", res.Stats)
			}
		})
	}
}

func TestFormatCallClosingOnLastLine(t *testing.T) {
	// foo(a,
	//     b)
	d := doc.Concat(
		doc.Mark(1), doc.Text("foo("), doc.Mark(2), doc.Text("a,"),
		doc.HardLine(), doc.Text("    b"), doc.Mark(3), doc.Mark(4), doc.Text(")"),
	)
	tables := &Tables{}
	tables.Shapes.Call(shape.CallMarks{Open: 1, FirstParam: 2, LastArg: 3, Close: 4, NeedsDedent: true})
	got, err := Format(d, Options{}, tables)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if want := "foo(a,\n    b)"; got != want {
		t.Fatalf("output mismatch:\nwant %q\ngot  %q", want, got)
	}
}

func TestFormatRespectsWidth(t *testing.T) {
	d := func() *doc.Doc {
		return doc.Group(doc.Concat(doc.Text("aaa"), doc.Line(), doc.Text("bbb")))
	}
	if got, _ := Format(d(), Options{Width: 7}, nil); got != "aaa bbb" {
		t.Fatalf("width 7: %q", got)
	}
	if got, _ := Format(d(), Options{Width: 6}, nil); got != "aaa\nbbb" {
		t.Fatalf("width 6: %q", got)
	}
}

func TestFormatDisabledPasses(t *testing.T) {
	tables := &Tables{Entries: []ledger.Entry{
		{Category: ledger.Comment, Line: 0, Column: 2},
		{Category: ledger.Comment, Line: 1, Column: 3},
	}}
	got, err := Format(textLines("a # c1", "bb # c2"), Options{Disabled: AlignComments}, tables)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if got != "a # c1\nbb # c2" {
		t.Fatalf("disabled alignment still ran: %q", got)
	}

	stale := &Tables{Entries: []ledger.Entry{{Category: ledger.CaseWhen, Line: 9}}}
	if _, err := Format(textLines("x"), Options{Disabled: AlignCaseWhen}, stale); err != nil {
		t.Fatalf("entry of a disabled pass aborted the run: %v", err)
	}
}

func TestFormatErrors(t *testing.T) {
	_, err := Format(textLines("x"), Options{}, &Tables{Entries: []ledger.Entry{{Category: ledger.Comment, Line: 4}}})
	if !errors.Is(err, textbuf.ErrInvariant) {
		t.Fatalf("want ErrInvariant, got %v", err)
	}
	_, err = Format(textLines("x"), Options{}, &Tables{Unmodifiable: []int{3}})
	if !errors.Is(err, textbuf.ErrInvariant) {
		t.Fatalf("want ErrInvariant for unmodifiable line, got %v", err)
	}
	shared := doc.Text("x")
	_, err = Format(doc.Concat(shared, shared), Options{}, nil)
	if !errors.Is(err, doc.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestRunTracesPasses(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)
	d, tables := commentedCalls()
	res, err := Run(ctx, d, Options{}, tables)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var ends []string
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd {
			ends = append(ends, ev.Name)
		}
	}
	want := "render,align,dedent,restore-indent,compact"
	if got := strings.Join(ends, ","); got != want {
		t.Fatalf("pass spans = %s, want %s", got, want)
	}
	if res.Stats.Runs != 1 || res.Stats.Aligned != 1 || res.Stats.Lines != 2 {
		t.Fatalf("stats = %+v", res.Stats)
	}
	if len(res.Timings.Phases) != 5 {
		t.Fatalf("timings = %+v", res.Timings)
	}
}

func TestPassNames(t *testing.T) {
	if s := (AlignComments | DedentCalls).String(); s != "align_comments,dedent_calls" {
		t.Fatalf("String = %q", s)
	}
	if Pass(0).String() != "none" {
		t.Fatal("empty set must print none")
	}
	p, ok := PassByName("hug_literals")
	if !ok || p != HugLiterals {
		t.Fatalf("PassByName = %v %v", p, ok)
	}
	if _, ok := PassByName("bogus"); ok {
		t.Fatal("unknown name resolved")
	}
}
