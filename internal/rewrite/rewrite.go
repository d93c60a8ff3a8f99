// Package rewrite walks a parsed program and redirects reads of `arguments`
// to a materialized copy declared at the top of the owning function.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"argsmat/internal/diag"
	"argsmat/internal/source"
	"argsmat/internal/srcmap"
	"argsmat/internal/syntax"
	"argsmat/internal/trace"
)

// ErrInternal marks invariant violations: colliding edits or an unbalanced
// scope stack. Output is never produced when it is returned.
var ErrInternal = errors.New("internal rewrite error")

// Result is the outcome of a rewrite that changed the input.
type Result struct {
	Code string
	Map  *srcmap.Map

	Redirected int // occurrences rewritten
	Kept       int // occurrences left as safe reads
	Preambles  int // functions that received a preamble
	Warnings   int // untouched anomalies (unscoped, in parameters)
}

// Process parses file and rewrites it. A nil Result with a nil error means
// the input is unchanged: it failed to parse (a SynParseFailure warning is
// reported) or nothing needed a redirect.
func Process(ctx context.Context, file *source.File, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	parent := trace.CurrentSpan(ctx).SpanID

	var popts []syntax.Option
	if opts.MaxFileSize > 0 {
		popts = append(popts, syntax.WithMaxFileSize(opts.MaxFileSize))
	}

	span := trace.Begin(opts.Tracer, trace.ScopePhase, "parse", parent)
	done := opts.Timer.Track("parse")
	tree, err := syntax.NewParser(popts...).Parse(ctx, file)
	done("")
	span.End("")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		reportParseFailure(opts.Reporter, file, err)
		return nil, nil
	}
	return rewriteTree(ctx, tree, opts, parent)
}

// Rewrite runs the walk over an already parsed tree.
func Rewrite(ctx context.Context, tree *syntax.Tree, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	return rewriteTree(ctx, tree, opts, trace.CurrentSpan(ctx).SpanID)
}

func rewriteTree(_ context.Context, tree *syntax.Tree, opts Options, parent uint64) (*Result, error) {
	span := trace.Begin(opts.Tracer, trace.ScopePhase, "walk", parent)
	done := opts.Timer.Track("walk")
	w := newWalker(tree, opts, span.ID())
	syntax.Walk(tree.Root, w)
	if w.err == nil && !w.scopes.Empty() {
		_, open := w.scopes.Depth()
		w.err = fmt.Errorf("%w: %d frames left open", ErrInternal, open)
	}
	done(strconv.Itoa(w.res.Redirected) + " redirected")
	span.WithExtra("redirected", strconv.Itoa(w.res.Redirected)).
		WithExtra("kept", strconv.Itoa(w.res.Kept)).
		End("")
	if w.err != nil {
		return nil, w.err
	}
	if w.res.Redirected == 0 {
		return nil, nil
	}

	span = trace.Begin(opts.Tracer, trace.ScopePhase, "render", parent)
	done = opts.Timer.Track("render")
	rendered, err := w.buf.Render()
	done("")
	span.End("")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	res := w.res
	res.Code = rendered.Text
	if opts.SourceMap {
		res.Map = srcmap.Generate(tree.File.Path, string(tree.File.Content), rendered, srcmap.Options{
			File:           opts.MapFile,
			IncludeContent: opts.MapIncludeContent,
		})
	}
	return &res, nil
}

func reportParseFailure(r diag.Reporter, file *source.File, err error) {
	primary := source.Span{File: file.ID}
	msg := fmt.Sprintf("failed to parse %s: %v", file.Path, err)
	var se *syntax.SyntaxError
	if errors.As(err, &se) {
		primary = se.Span
		msg = fmt.Sprintf("failed to parse %s: %s", file.Path, se.Msg)
	}
	diag.ReportWarning(r, diag.SynParseFailure, primary, msg).
		WithNote(source.Span{File: file.ID}, "the file is left unchanged; restrict the processed files with [files] include/exclude").
		Emit()
}
