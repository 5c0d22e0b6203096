package render_test

import (
	"errors"
	"slices"
	"testing"

	"reflow/internal/doc"
	"reflow/internal/render"
)

func mustRender(t *testing.T, d *doc.Doc, width int) *render.Result {
	t.Helper()
	res, err := render.Render(d, render.Options{Width: width})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return res
}

func callDoc() *doc.Doc {
	return doc.Group(doc.Concat(
		doc.Text("foo("),
		doc.Indent(doc.Concat(doc.SoftLine(), doc.Text("a,"), doc.Line(), doc.Text("b"))),
		doc.SoftLine(),
		doc.Text(")"),
	))
}

func TestRender(t *testing.T) {
	cases := []struct {
		name  string
		d     *doc.Doc
		width int
		want  string
	}{
		{
			name:  "line suffix goes to the closing line",
			d:     doc.Concat(doc.Text("x"), doc.LineSuffix(doc.Text("# hi")), doc.Line(), doc.Text("y")),
			width: 80,
			want:  "x # hi\ny",
		},
		{
			name: "suffix flushed mid-line counts against the width",
			d: doc.Concat(
				doc.Text("x"), doc.LineSuffix(doc.Text("# c")),
				doc.Group(doc.Concat(doc.Text("ab"), doc.LineSuffixBoundary(), doc.Line(), doc.Text("cd"))),
			),
			width: 8,
			want:  "xab # c\ncd",
		},
		{
			name:  "group fits flat",
			d:     callDoc(),
			width: 80,
			want:  "foo(a, b)",
		},
		{
			name:  "group fits exactly",
			d:     callDoc(),
			width: 9,
			want:  "foo(a, b)",
		},
		{
			name:  "group breaks one column short",
			d:     callDoc(),
			width: 8,
			want:  "foo(\n  a,\n  b\n)",
		},
		{
			name: "rest of line counts against the budget",
			d: doc.Concat(
				doc.Group(doc.Concat(doc.Text("aaa"), doc.Line(), doc.Text("bbb"))),
				doc.Text(";;;;"),
			),
			width: 8,
			want:  "aaa\nbbb;;;;",
		},
		{
			name: "content after a hard line is excluded",
			d: doc.Concat(
				doc.Group(doc.Concat(doc.Text("aaa"), doc.Line(), doc.Text("bbb"))),
				doc.HardLine(),
				doc.Text("zzzzzzzzzz"),
			),
			width: 8,
			want:  "aaa bbb\nzzzzzzzzzz",
		},
		{
			name:  "forced break inside a flat group",
			d:     doc.Group(doc.Concat(doc.Text("ab"), doc.HardLine(), doc.Text("verylongtextbeyond"))),
			width: 5,
			want:  "ab\nverylongtextbeyond",
		},
		{
			name: "if-break flat",
			d: doc.Group(doc.Concat(
				doc.Text("["),
				doc.Indent(doc.Concat(doc.SoftLine(), doc.Text("1,"), doc.Line(), doc.Text("2"), doc.IfBreak(doc.Text(","), nil))),
				doc.SoftLine(),
				doc.Text("]"),
			)),
			width: 80,
			want:  "[1, 2]",
		},
		{
			name: "if-break broken",
			d: doc.Group(doc.Concat(
				doc.Text("["),
				doc.Indent(doc.Concat(doc.SoftLine(), doc.Text("1,"), doc.Line(), doc.Text("2"), doc.IfBreak(doc.Text(","), nil))),
				doc.SoftLine(),
				doc.Text("]"),
			)),
			width: 4,
			want:  "[\n  1,\n  2,\n]",
		},
		{
			name:  "double soft lines collapse",
			d:     doc.ForceGroup(doc.Concat(doc.Text("a"), doc.DoubleSoftLine(), doc.DoubleSoftLine(), doc.Text("b"))),
			width: 80,
			want:  "a\n\nb",
		},
		{
			name:  "double soft line flat",
			d:     doc.Group(doc.Concat(doc.Text("a"), doc.DoubleSoftLine(), doc.Text("b"))),
			width: 80,
			want:  "ab",
		},
		{
			name:  "align uses an absolute column",
			d:     doc.ForceGroup(doc.Concat(doc.Text("foo "), doc.Align(4, doc.Concat(doc.Text("a"), doc.Line(), doc.Text("b"))))),
			width: 80,
			want:  "foo a\n    b",
		},
		{
			name:  "boundary flushes in place",
			d:     doc.Concat(doc.Text("foo"), doc.LineSuffix(doc.Text("# c")), doc.LineSuffixBoundary(), doc.HardLine(), doc.Text("bar")),
			width: 80,
			want:  "foo # c\nbar",
		},
		{
			name:  "suffix flushed at end of document",
			d:     doc.Concat(doc.Text("x"), doc.LineSuffix(doc.Text("# end"))),
			width: 80,
			want:  "x # end",
		},
		{
			name:  "suffixes keep queue order",
			d:     doc.Concat(doc.Text("x"), doc.LineSuffix(doc.Text("# a")), doc.LineSuffix(doc.Text(" # b")), doc.HardLine(), doc.Text("y")),
			width: 80,
			want:  "x # a # b\ny",
		},
		{
			name:  "atomic token wider than the budget",
			d:     doc.Group(doc.Concat(doc.Text("verylongtoken"), doc.Line(), doc.Text("b"))),
			width: 3,
			want:  "verylongtoken\nb",
		},
		{
			name:  "trailing blanks trimmed",
			d:     doc.ForceGroup(doc.Concat(doc.Text("a "), doc.Line(), doc.Text("b"))),
			width: 80,
			want:  "a\nb",
		},
		{
			name: "nested group decides independently",
			d: doc.Group(doc.Concat(
				doc.Text("call("),
				doc.Indent(doc.Concat(
					doc.SoftLine(),
					doc.Group(doc.Concat(doc.Text("[1,"), doc.Line(), doc.Text("2]"))),
					doc.Text(","),
					doc.Line(),
					doc.Text("zzzzzzzzzz"),
				)),
				doc.SoftLine(),
				doc.Text(")"),
			)),
			width: 16,
			want:  "call(\n  [1, 2],\n  zzzzzzzzzz\n)",
		},
		{
			name:  "join",
			d:     doc.Group(doc.Join(doc.Concat(doc.Text(","), doc.Line()), doc.Text("a"), doc.Text("b"), doc.Text("c"))),
			width: 80,
			want:  "a, b, c",
		},
		{
			name:  "empty document",
			d:     doc.Empty(),
			width: 80,
			want:  "",
		},
		{
			name:  "trailing hard line keeps final newline",
			d:     doc.Concat(doc.Text("a"), doc.HardLine()),
			width: 80,
			want:  "a\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mustRender(t, tc.d, tc.width).String()
			if got != tc.want {
				t.Fatalf("render mismatch:\nwant %q\ngot  %q", tc.want, got)
			}
		})
	}
}

func TestIndentWidthOption(t *testing.T) {
	res, err := render.Render(callDoc(), render.Options{Width: 4, IndentWidth: 4})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{"foo(", "    a,", "    b", ")"}
	if !slices.Equal(res.Lines, want) {
		t.Fatalf("lines mismatch: want %q got %q", want, res.Lines)
	}
}

func TestMarksRecordRenderedPositions(t *testing.T) {
	d := doc.Concat(
		doc.Text("ab"), doc.Mark(1),
		doc.HardLine(),
		doc.Text("  x"), doc.Mark(2),
		doc.Group(doc.Concat(doc.Mark(3), doc.Text("tail"))),
	)
	res := mustRender(t, d, 80)
	want := map[doc.MarkKey]render.Position{
		1: {Line: 0, Column: 2},
		2: {Line: 1, Column: 3},
		3: {Line: 1, Column: 3},
	}
	for k, pos := range want {
		if got, ok := res.Marks[k]; !ok || got != pos {
			t.Errorf("mark %d = %+v (present=%v), want %+v", k, got, ok, pos)
		}
	}
}

func TestMarksClampedToTrimmedLine(t *testing.T) {
	d := doc.Concat(
		doc.Text("a "), doc.Mark(1),
		doc.HardLine(),
		doc.Text("bb  "), doc.Mark(2),
	)
	res := mustRender(t, d, 80)
	if got := res.Marks[1]; got != (render.Position{Line: 0, Column: 1}) {
		t.Errorf("mark 1 = %+v, want 0:1", got)
	}
	if got := res.Marks[2]; got != (render.Position{Line: 1, Column: 2}) {
		t.Errorf("mark 2 = %+v, want 1:2", got)
	}
}

func TestMarksInUnchosenBranchAreAbsent(t *testing.T) {
	d := doc.Group(doc.Concat(doc.Text("a"), doc.IfBreak(doc.Mark(1), doc.Mark(2))))
	res := mustRender(t, d, 80)
	if _, ok := res.Marks[1]; ok {
		t.Fatalf("broken-branch mark must not be recorded for a flat group")
	}
	if pos := res.Marks[2]; pos != (render.Position{Line: 0, Column: 1}) {
		t.Fatalf("flat-branch mark at %+v", pos)
	}
}

func TestVerbatimLinesAreFrozen(t *testing.T) {
	d := doc.Concat(
		doc.Text("s = <<~EOS"),
		doc.Verbatim("", "  body  ", "EOS"),
		doc.HardLine(),
		doc.Text("t"),
	)
	res := mustRender(t, d, 80)
	wantLines := []string{"s = <<~EOS", "  body  ", "EOS", "t"}
	if !slices.Equal(res.Lines, wantLines) {
		t.Fatalf("lines mismatch: want %q got %q", wantLines, res.Lines)
	}
	if !slices.Equal(res.Unmodifiable, []int{1, 2}) {
		t.Fatalf("unmodifiable = %v, want [1 2]", res.Unmodifiable)
	}
	buf := res.Buffer()
	if !buf.Frozen(1) || !buf.Frozen(2) || buf.Frozen(0) {
		t.Fatalf("buffer frozen set mismatch: %v", buf.FrozenLines())
	}
}

func TestRenderRejectsMalformed(t *testing.T) {
	shared := doc.Text("x")
	_, err := render.Render(doc.Concat(shared, shared), render.Options{})
	if !errors.Is(err, doc.ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

// A group whose flat form fits is never broken.
func TestWidthRespecting(t *testing.T) {
	words := []string{"alpha", "beta", "gamma", "delta"}
	for width := 1; width <= 40; width++ {
		parts := make([]*doc.Doc, 0, len(words))
		for _, w := range words {
			parts = append(parts, doc.Text(w))
		}
		d := doc.Group(doc.Join(doc.Line(), parts...))
		got := mustRender(t, d, width).String()
		flat := "alpha beta gamma delta"
		if len(flat) <= width && got != flat {
			t.Fatalf("width %d: fitting group was broken: %q", width, got)
		}
		if len(flat) > width && got == flat {
			t.Fatalf("width %d: overflowing group stayed flat", width)
		}
	}
}
