package fix

import (
	"errors"
	"testing"

	"argsmat/internal/diag"
	"argsmat/internal/source"
)

func setup(content string) (*source.FileSet, source.FileID) {
	fs := source.NewFileSet()
	return fs, fs.AddVirtual("a.js", []byte(content))
}

func redirect(file source.FileID, start, end uint32, text string) diag.Diagnostic {
	sp := source.Span{File: file, Start: start, End: end}
	return diag.New(diag.SevInfo, diag.ArgRedirected, sp, "redirected").
		WithFix("use copy", diag.TextEdit{Span: sp, NewText: text, OldText: "arguments"})
}

func TestApplyReplaysEdits(t *testing.T) {
	src := "function f(){g(arguments)}"
	fs, id := setup(src)
	insert := diag.New(diag.SevInfo, diag.ArgPreambleInserted, source.Span{File: id, Start: 13, End: 13}, "preamble").
		WithFix("insert preamble", diag.TextEdit{Span: source.Span{File: id, Start: 13, End: 13}, NewText: "var c;"})

	res, err := Apply(fs, []diag.Diagnostic{redirect(id, 15, 24, "c"), insert}, ApplyOptions{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.FileChanges) != 1 {
		t.Fatalf("changes = %+v", res.FileChanges)
	}
	if got, want := res.FileChanges[0].Content, "function f(){var c;g(c)}"; got != want {
		t.Fatalf("content = %q, want %q", got, want)
	}
	if res.FileChanges[0].EditCount != 2 || len(res.Applied) != 2 {
		t.Fatalf("result = %+v", res)
	}
}

func TestApplyInsertAtReplacementStart(t *testing.T) {
	src := "function f(){arguments}"
	fs, id := setup(src)
	at := source.Span{File: id, Start: 13, End: 13}
	insert := diag.New(diag.SevInfo, diag.ArgPreambleInserted, at, "preamble").
		WithFix("insert preamble", diag.TextEdit{Span: at, NewText: "P;"})

	res, err := Apply(fs, []diag.Diagnostic{redirect(id, 13, 22, "c"), insert}, ApplyOptions{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := res.FileChanges[0].Content; got != "function f(){P;c}" {
		t.Fatalf("content = %q", got)
	}
}

func TestApplySkipsConflictsAndStaleText(t *testing.T) {
	src := "g(arguments)"
	fs, id := setup(src)
	overlap := diag.New(diag.SevInfo, diag.ArgRedirected, source.Span{File: id, Start: 4, End: 8}, "x").
		WithFix("overlap", diag.TextEdit{Span: source.Span{File: id, Start: 4, End: 8}, NewText: "y"})
	stale := diag.New(diag.SevInfo, diag.ArgRedirected, source.Span{File: id, Start: 0, End: 1}, "x").
		WithFix("stale", diag.TextEdit{Span: source.Span{File: id, Start: 0, End: 1}, NewText: "h", OldText: "q"})

	res, err := Apply(fs, []diag.Diagnostic{redirect(id, 2, 11, "c"), overlap, stale}, ApplyOptions{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(res.Skipped) != 2 || len(res.Applied) != 1 {
		t.Fatalf("result = %+v", res)
	}
	if res.FileChanges[0].Content != "g(c)" {
		t.Fatalf("content = %q", res.FileChanges[0].Content)
	}
}

func TestApplyModeCode(t *testing.T) {
	fs, id := setup("g(arguments)")
	res, err := Apply(fs, []diag.Diagnostic{redirect(id, 2, 11, "c")}, ApplyOptions{Mode: ApplyModeCode, Code: diag.ArgPreambleInserted})
	if !errors.Is(err, ErrNoFixes) {
		t.Fatalf("err = %v, want ErrNoFixes", err)
	}
	if len(res.FileChanges) != 0 {
		t.Fatalf("unexpected changes: %+v", res.FileChanges)
	}
}

func TestSpansConflict(t *testing.T) {
	edit := func(s, e uint32) diag.TextEdit { return diag.TextEdit{Span: source.Span{Start: s, End: e}} }
	tests := []struct {
		a, b diag.TextEdit
		want bool
	}{
		{edit(3, 3), edit(3, 3), false},
		{edit(3, 3), edit(3, 5), false},
		{edit(4, 4), edit(3, 5), true},
		{edit(5, 5), edit(3, 5), false},
		{edit(1, 4), edit(3, 5), true},
		{edit(1, 3), edit(3, 5), false},
	}
	for _, tt := range tests {
		if got := spansConflict(tt.a, tt.b); got != tt.want {
			t.Errorf("spansConflict(%v, %v) = %v, want %v", tt.a.Span, tt.b.Span, got, tt.want)
		}
	}
}
