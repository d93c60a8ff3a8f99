package rewrite

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"argsmat/internal/classify"
	"argsmat/internal/diag"
	"argsmat/internal/observ"
	"argsmat/internal/source"
	"argsmat/internal/syntax"
	"argsmat/internal/trace"
)

type run struct {
	res *Result
	bag *diag.Bag
}

func process(t *testing.T, src string, mutate func(*Options)) run {
	t.Helper()
	bag := diag.NewBag(0)
	opts := DefaultOptions()
	opts.Reporter = diag.BagReporter{Bag: bag}
	if mutate != nil {
		mutate(&opts)
	}
	f := source.NewFile("unit.js", []byte(src))
	res, err := Process(context.Background(), &f, opts)
	if err != nil {
		t.Fatalf("process %q: %v", src, err)
	}
	return run{res: res, bag: bag}
}

func (r run) code(t *testing.T) string {
	t.Helper()
	if r.res == nil {
		t.Fatalf("expected a rewrite, got unchanged")
	}
	return r.res.Code
}

func TestConcreteScenario(t *testing.T) {
	src := "function f(a, b) {\n  return arguments.length + g(arguments)\n}"
	r := process(t, src, nil)
	want := "function f(a, b) {\n  " + Preamble("$_args", "$_len") +
		"\n  return arguments.length + g($_args)\n}"
	if got := r.code(t); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if r.res.Redirected != 1 || r.res.Kept != 1 || r.res.Preambles != 1 {
		t.Fatalf("counts = %+v", *r.res)
	}
}

func TestIdempotence(t *testing.T) {
	src := "function f() {\n  return g(arguments);\n}\nfunction h() {\n  'use strict';\n  return arguments;\n}"
	first := process(t, src, nil).code(t)
	second := process(t, first, nil)
	if second.res != nil {
		t.Fatalf("second run changed the output:\n%s", second.res.Code)
	}
	if second.bag.Len() != 0 {
		t.Fatalf("second run reported diagnostics: %+v", second.bag.Items())
	}
}

func TestNoOccurrenceIsUnchanged(t *testing.T) {
	r := process(t, "function f(a) { return a + 1; }", nil)
	if r.res != nil {
		t.Fatalf("unchanged input rewritten: %q", r.res.Code)
	}
}

func TestParseFailure(t *testing.T) {
	r := process(t, "function f( {\n  return arguments;\n", nil)
	if r.res != nil {
		t.Fatalf("malformed input produced output")
	}
	if r.bag.Count(diag.SynParseFailure) != 1 {
		t.Fatalf("diagnostics = %+v", r.bag.Items())
	}
	d := r.bag.Items()[0]
	if d.Severity != diag.SevWarning || !strings.Contains(d.Message, "unit.js") {
		t.Fatalf("parse failure diagnostic = %+v", d)
	}
}

func TestUnscopedOccurrence(t *testing.T) {
	r := process(t, "var a = arguments;\nvar g = () => arguments.length;", nil)
	if r.res != nil {
		t.Fatalf("unscoped occurrences must stay untouched, got %q", r.res.Code)
	}
	if n := r.bag.Count(diag.ArgUnscopedOccurrence); n != 2 {
		t.Fatalf("ArgUnscopedOccurrence count = %d, want 2", n)
	}
}

func TestParameterDefaults(t *testing.T) {
	src := "function f(a = arguments[1], b = () => arguments) {\n  return g(arguments);\n}"
	r := process(t, src, nil)
	want := "function f(a = arguments[1], b = () => arguments) {\n  " + Preamble("$_args", "$_len") +
		"\n  return g($_args);\n}"
	if got := r.code(t); got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	if n := r.bag.Count(diag.ArgInParameters); n != 2 {
		t.Fatalf("ArgInParameters count = %d, want 2", n)
	}
}

func TestArrowParamsUseEnclosingCopy(t *testing.T) {
	src := "function f() {\n  return (a = arguments) => a;\n}"
	got := process(t, src, nil).code(t)
	if !strings.Contains(got, "return (a = $_args) => a;") {
		t.Fatalf("arrow default not redirected:\n%s", got)
	}
}

func TestComputedMethodKeyBelongsToOuterScope(t *testing.T) {
	src := "function f() {\n  return { [arguments[0]]() { return 1; } };\n}"
	got := process(t, src, func(o *Options) { o.Policy = classify.PolicyStrict }).code(t)
	want := "function f() {\n  " + Preamble("$_args", "$_len") +
		"\n  return { [$_args[0]]() { return 1; } };\n}"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestPolicies(t *testing.T) {
	src := "function f() {\n  arguments.length;\n  return arguments.length;\n}"
	tests := []struct {
		policy     classify.Policy
		redirected int
	}{
		{classify.PolicyPermissive, 1},
		{classify.PolicyMember, 0},
		{classify.PolicyStrict, 2},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			r := process(t, src, func(o *Options) { o.Policy = tt.policy })
			got := 0
			if r.res != nil {
				got = r.res.Redirected
			}
			if got != tt.redirected {
				t.Fatalf("redirected = %d, want %d", got, tt.redirected)
			}
		})
	}
}

func TestClosureSafeReadRedirected(t *testing.T) {
	src := "function f() {\n  var n = arguments.length;\n  return () => { var m = arguments.length; return m; };\n}"
	r := process(t, src, nil)
	got := r.code(t)
	if !strings.Contains(got, "var n = arguments.length;") {
		t.Fatalf("safe read in function body redirected:\n%s", got)
	}
	if !strings.Contains(got, "var m = $_args.length;") {
		t.Fatalf("safe read inside arrow kept:\n%s", got)
	}
	if strings.Count(got, "var $_len") != 1 {
		t.Fatalf("expected exactly one preamble:\n%s", got)
	}
}

func TestCustomNamesAndCRLF(t *testing.T) {
	src := "function f() {\r\n\treturn g(arguments);\r\n}\r\n"
	got := process(t, src, func(o *Options) {
		o.ArgsName = "__args"
		o.LenName = "__n"
	}).code(t)
	want := "function f() {\r\n\t" + Preamble("__args", "__n") + "\r\n\treturn g(__args);\r\n}\r\n"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestSourceMapToggle(t *testing.T) {
	src := "function f() { return g(arguments); }"
	on := process(t, src, nil)
	if on.res.Map == nil || on.res.Map.Mappings == "" || on.res.Map.Sources[0] != "unit.js" {
		t.Fatalf("map = %+v", on.res.Map)
	}
	off := process(t, src, func(o *Options) { o.SourceMap = false })
	if off.res.Map != nil {
		t.Fatalf("map generated with SourceMap=false")
	}
}

func TestDiagnosticsCarryFixes(t *testing.T) {
	r := process(t, "function f() { return g(arguments); }", nil)
	if r.bag.Count(diag.ArgRedirected) != 1 || r.bag.Count(diag.ArgPreambleInserted) != 1 {
		t.Fatalf("diagnostics = %+v", r.bag.Items())
	}
	for _, d := range r.bag.Items() {
		if d.Severity != diag.SevInfo {
			t.Fatalf("unexpected severity %s for %s", d.Severity, d.Code)
		}
		if len(d.Fixes) != 1 || len(d.Fixes[0].Edits) != 1 {
			t.Fatalf("diagnostic %s without a fix", d.Code)
		}
	}
}

func TestTraceAndTimer(t *testing.T) {
	var buf bytes.Buffer
	tm := observ.NewTimer()
	process(t, "function f() { return g(arguments, arguments.length); }", func(o *Options) {
		o.Tracer = trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
		o.Timer = tm
	})
	out := buf.String()
	for _, want := range []string{"parse", "walk", "render", "redirect", "keep", "preamble"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace lacks %q:\n%s", want, out)
		}
	}
	if n := len(tm.Report().Phases); n != 3 {
		t.Fatalf("timer phases = %d, want 3", n)
	}
}

func TestRewriteReportsOverlap(t *testing.T) {
	f := source.NewFile("x.js", []byte("function f() { return g(arguments); }"))
	tree, err := syntax.Parse(context.Background(), &f)
	if err != nil {
		t.Fatal(err)
	}
	// копия узла с тем же диапазоном даёт второй overwrite поверх первого
	var call *syntax.Node
	syntax.Inspect(tree.Root, func(n *syntax.Node) bool {
		if n.Kind == syntax.KindArguments {
			call = n
		}
		return true
	})
	orig := call.Children[0]
	call.Children = append(call.Children, &syntax.Node{Kind: syntax.KindIdentifier, Span: orig.Span})

	_, err = Rewrite(context.Background(), tree, DefaultOptions())
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := source.NewFile("x.js", []byte("function f() { return g(arguments); }"))
	if _, err := Process(ctx, &f, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLeadingWhitespace(t *testing.T) {
	tests := []struct{ in, want string }{
		{"\n  return", "\n  "},
		{" x", " "},
		{"", ""},
		{"\r\n\t// c", "\r\n\t"},
		{"return", ""},
	}
	for _, tt := range tests {
		if got := leadingWhitespace(tt.in); got != tt.want {
			t.Errorf("leadingWhitespace(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLogicalOperandsAreRedirected(t *testing.T) {
	pre := Preamble("$_args", "$_len")
	tests := []struct {
		src  string
		want string
	}{
		{
			"function f(a) { return a || arguments[0]; }",
			"function f(a) { " + pre + " return a || $_args[0]; }",
		},
		{
			"function f(a) { return a && arguments.length; }",
			"function f(a) { " + pre + " return a && $_args.length; }",
		},
		{
			"function f(a) { return a ?? arguments[1]; }",
			"function f(a) { " + pre + " return a ?? $_args[1]; }",
		},
	}
	for _, tt := range tests {
		if got := process(t, tt.src, nil).code(t); got != tt.want {
			t.Fatalf("%s:\ngot  %s\nwant %s", tt.src, got, tt.want)
		}
	}
	if r := process(t, "function f(i) { return i < arguments.length; }", nil); r.res != nil {
		t.Fatalf("comparison operand rewritten: %s", r.res.Code)
	}
}

func TestDirectiveWithoutSemicolon(t *testing.T) {
	src := "function f() { 'use strict'\n  return g(arguments)\n}"
	got := process(t, src, nil).code(t)
	want := "function f() { 'use strict'; " + Preamble("$_args", "$_len") + "\n  return g($_args)\n}"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
	f := source.NewFile("out.js", []byte(got))
	if _, err := syntax.Parse(context.Background(), &f); err != nil {
		t.Fatalf("rewritten output does not parse: %v", err)
	}
	if again := process(t, got, nil); again.res != nil {
		t.Fatalf("second run changed the output:\n%s", again.res.Code)
	}
}
