package rewrite

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"argsmat/internal/classify"
	"argsmat/internal/diag"
	"argsmat/internal/scope"
	"argsmat/internal/source"
	"argsmat/internal/splice"
	"argsmat/internal/syntax"
	"argsmat/internal/trace"
)

const argumentsName = "arguments"

// walker is the syntax.Visitor that drives the rewrite.
type walker struct {
	tree     *syntax.Tree
	opts     Options
	buf      *splice.Buffer
	scopes   scope.Stack
	preamble string
	span     uint64

	path   []*syntax.Node // ancestors of the current node, inclusive
	params []*syntax.Node // ordinary functions whose parameter list is open
	skip   []source.Span  // preambles already present in the input

	res Result
	err error
}

func newWalker(tree *syntax.Tree, opts Options, span uint64) *walker {
	return &walker{
		tree:     tree,
		opts:     opts,
		buf:      splice.NewBuffer(tree.File.Content),
		preamble: Preamble(opts.ArgsName, opts.LenName),
		span:     span,
	}
}

func (w *walker) Enter(n, parent *syntax.Node) bool {
	w.path = append(w.path, n)
	if w.err != nil {
		return false
	}
	if w.opts.SourceMap {
		w.buf.AddLocation(n.Span.Start)
		w.buf.AddLocation(n.Span.End)
	}

	if parent != nil && parent.Kind.IsFunctionLike() {
		w.enterFunctionPart(n, parent)
	}

	switch n.Kind {
	case syntax.KindIdentifier:
		if w.tree.Text(n) == argumentsName {
			w.visitOccurrence(n, parent)
		}
	case syntax.KindShorthandProp:
		if w.tree.Text(n) == argumentsName {
			w.visitOccurrence(n, parent)
		}
	}
	return w.err == nil
}

func (w *walker) Leave(n, parent *syntax.Node) {
	w.path = w.path[:len(w.path)-1]
	if w.err != nil {
		return
	}
	if parent != nil && parent.Kind.IsOrdinaryFunction() && isParamsField(n.Field) {
		w.params = w.params[:len(w.params)-1]
	}
	if n.Kind.IsFunctionLike() {
		if f := w.scopes.CurrentClosure(); f != nil && f.Owner == n {
			if err := w.scopes.Leave(n); err != nil {
				w.err = fmt.Errorf("%w: %w", ErrInternal, err)
			}
		}
	}
}

func isParamsField(field string) bool {
	return field == syntax.FieldParameters || field == syntax.FieldParameter
}

// enterFunctionPart opens the owner's frame when the walk reaches its
// parameters or body. A function's name and computed keys still belong to
// the enclosing scope.
func (w *walker) enterFunctionPart(n, owner *syntax.Node) {
	isParams := isParamsField(n.Field)
	if !isParams && n.Field != syntax.FieldBody {
		return
	}
	if f := w.scopes.CurrentClosure(); f == nil || f.Owner != owner {
		w.scopes.Enter(owner)
	}
	if !owner.Kind.IsOrdinaryFunction() {
		return
	}
	if isParams {
		w.params = append(w.params, owner)
		return
	}
	w.detectExistingPreamble(n)
}

// detectExistingPreamble marks the frame written when the body already
// starts with our preamble, so a second run leaves the file alone.
func (w *walker) detectExistingPreamble(body *syntax.Node) {
	stmt := w.firstAfterDirectives(body)
	if stmt == nil {
		return
	}
	size, err := safecast.Conv[uint32](len(w.preamble))
	if err != nil {
		return
	}
	text, err := w.buf.Slice(stmt.Span.Start, stmt.Span.Start+size)
	if err != nil || text != w.preamble {
		return
	}
	if _, err := w.scopes.MarkWritten(); err != nil {
		w.err = fmt.Errorf("%w: %w", ErrInternal, err)
		return
	}
	w.skip = append(w.skip, source.Span{File: stmt.Span.File, Start: stmt.Span.Start, End: stmt.Span.Start + size})
}

func (w *walker) firstAfterDirectives(body *syntax.Node) *syntax.Node {
	dirs := w.tree.Directives(body)
	seen := 0
	for _, c := range body.Children {
		if c.Kind == syntax.KindComment {
			continue
		}
		if seen < len(dirs) {
			seen++
			continue
		}
		return c
	}
	return nil
}

func (w *walker) skipped(n *syntax.Node) bool {
	for _, sp := range w.skip {
		if sp.Start <= n.Span.Start && n.Span.End <= sp.End {
			return true
		}
	}
	return false
}

func (w *walker) inOwnParams(f *scope.Frame) bool {
	for _, owner := range w.params {
		if owner == f.Owner {
			return true
		}
	}
	return false
}

func (w *walker) visitOccurrence(n, parent *syntax.Node) {
	if w.skipped(n) {
		return
	}

	frame, err := w.scopes.CurrentMaterializable()
	if err != nil {
		w.res.Warnings++
		diag.ReportWarning(w.opts.Reporter, diag.ArgUnscopedOccurrence, n.Span,
			"`arguments` used outside of any function; left untouched").Emit()
		w.point("unscoped", n, "no enclosing function")
		return
	}
	if w.inOwnParams(frame) {
		w.res.Warnings++
		diag.ReportWarning(w.opts.Reporter, diag.ArgInParameters, n.Span,
			"`arguments` in a parameter list cannot read the materialized copy; left untouched").
			WithNote(frame.Owner.Span, "parameters of this function").
			Emit()
		w.point("in-parameters", n, "parameter list")
		return
	}

	occ := classify.Occurrence{InClosure: w.scopes.InClosure()}
	if n.Kind == syntax.KindIdentifier {
		if m := classify.MemberOf(n, parent); m != nil {
			occ.Member = m
			occ.Context = classify.ContextOf(w.path[:len(w.path)-1])
		}
	}
	d := classify.Classify(w.opts.Policy, occ)
	if !d.Redirect {
		w.res.Kept++
		w.point("keep", n, d.Reason)
		return
	}
	w.redirect(n, frame, d.Reason)
}

func (w *walker) redirect(n *syntax.Node, frame *scope.Frame, reason string) {
	text := w.opts.ArgsName
	if n.Kind == syntax.KindShorthandProp {
		text = argumentsName + ": " + w.opts.ArgsName
	}
	if err := w.buf.Overwrite(n.Span.Start, n.Span.End, text); err != nil {
		w.err = fmt.Errorf("%w: %w", ErrInternal, err)
		return
	}
	w.res.Redirected++
	diag.ReportInfo(w.opts.Reporter, diag.ArgRedirected, n.Span, "`arguments` redirected to "+w.opts.ArgsName+" ("+reason+")").
		WithFix("use the materialized copy", diag.TextEdit{Span: n.Span, NewText: text, OldText: w.tree.Text(n)}).
		Emit()
	w.point("redirect", n, reason)

	flipped, err := w.scopes.MarkWritten()
	if err != nil {
		w.err = fmt.Errorf("%w: %w", ErrInternal, err)
		return
	}
	if flipped {
		w.insertPreamble(frame)
	}
}

// insertPreamble places the preamble at the start of frame's body, after
// any directive prologue, reusing the body's leading whitespace. A directive
// closed by ASI gets its semicolon written out.
func (w *walker) insertPreamble(frame *scope.Frame) {
	body := frame.Body
	if body == nil || body.Kind != syntax.KindStatementBlock {
		w.err = fmt.Errorf("%w: %s at %d has no block body", ErrInternal, frame.Owner.Kind, frame.Owner.Span.Start)
		return
	}

	open := body.Span.Start + 1
	upto := body.Span.End - 1
	if first := body.FirstStatement(); first != nil {
		upto = first.Span.Start
	}
	src := w.buf.Source()
	ws := leadingWhitespace(src[open:upto])

	at := open
	text := ws + w.preamble
	if dirs := w.tree.Directives(body); len(dirs) > 0 {
		// директива без ';' держится на ASI, после неё на той же строке нужен явный ';'
		last := dirs[len(dirs)-1]
		at = last.Span.End
		if !strings.HasSuffix(w.tree.Text(last), ";") {
			text = ";" + text
		}
	}
	if err := w.buf.InsertLeft(at, text); err != nil {
		w.err = fmt.Errorf("%w: %w", ErrInternal, err)
		return
	}
	w.res.Preambles++

	sp := source.Span{File: body.Span.File, Start: at, End: at}
	diag.ReportInfo(w.opts.Reporter, diag.ArgPreambleInserted, frame.Owner.Span, "materialized `arguments` into "+w.opts.ArgsName).
		WithFix("insert preamble", diag.TextEdit{Span: sp, NewText: text}).
		Emit()
	trace.Point(w.opts.Tracer, trace.ScopeNode, "preamble", "", w.span, "offset", strconv.FormatUint(uint64(at), 10))
}

func (w *walker) point(name string, n *syntax.Node, reason string) {
	trace.Point(w.opts.Tracer, trace.ScopeNode, name, reason, w.span,
		"offset", strconv.FormatUint(uint64(n.Span.Start), 10))
}
