package syntax

import (
	"context"
	"errors"
	"fmt"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"argsmat/internal/source"
)

var (
	// ErrSyntax is returned when the input is not valid JavaScript.
	ErrSyntax = errors.New("syntax error")
	// ErrFileTooLarge is returned when the input exceeds Options.MaxFileSize.
	ErrFileTooLarge = errors.New("file too large")
)

// SyntaxError locates the first ERROR or MISSING node of a failed parse.
type SyntaxError struct {
	Span source.Span
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %d: %s", ErrSyntax, e.Span.Start, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// Options configures a Parser.
type Options struct {
	// MaxFileSize is the maximum input size in bytes.
	// Default: 10MB
	MaxFileSize int
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{MaxFileSize: 10 * 1024 * 1024}
}

// Option mutates Options during construction.
type Option func(*Options)

// WithMaxFileSize sets the maximum file size for parsing.
func WithMaxFileSize(size int) Option {
	return func(o *Options) {
		o.MaxFileSize = size
	}
}

// Parser turns JavaScript text into a Tree using tree-sitter.
//
// Parser is safe for concurrent use: each Parse call creates its own
// tree-sitter parser instance.
type Parser struct {
	opts Options
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Parser{opts: o}
}

// Parse parses file.Content. A tree containing ERROR or MISSING nodes is
// reported as a *SyntaxError wrapping ErrSyntax; no partial tree is returned.
func (p *Parser) Parse(ctx context.Context, file *source.File) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if p.opts.MaxFileSize > 0 && len(file.Content) > p.opts.MaxFileSize {
		return nil, fmt.Errorf("%s: %w", file.Path, ErrFileTooLarge)
	}
	if _, err := safecast.Conv[uint32](len(file.Content)); err != nil {
		return nil, fmt.Errorf("%s: %w", file.Path, ErrFileTooLarge)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tstree, err := parser.ParseCtx(ctx, nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tstree.Close()

	root := tstree.RootNode()
	if root.HasError() {
		return nil, firstError(root, file)
	}
	return &Tree{File: file, Root: convert(root, file.ID)}, nil
}

// Parse parses with default options.
func Parse(ctx context.Context, file *source.File) (*Tree, error) {
	return NewParser().Parse(ctx, file)
}

// convert copies the named part of a tree-sitter tree into Nodes. It walks
// with a TreeCursor and an explicit stack so deep nesting never recurses.
func convert(root *sitter.Node, id source.FileID) *Node {
	out := newNode(root, "", id)

	cur := sitter.NewTreeCursor(root)
	defer cur.Close()
	if !cur.GoToFirstChild() {
		return out
	}

	stack := []*Node{out}
	for {
		tsn := cur.CurrentNode()
		var n *Node
		parent := stack[len(stack)-1]
		switch field := cur.CurrentFieldName(); {
		case tsn.IsNamed():
			n = newNode(tsn, field, id)
			parent.Children = append(parent.Children, n)
		case field == FieldOperator:
			parent.Op = tsn.Type()
		}
		if n != nil && cur.GoToFirstChild() {
			stack = append(stack, n)
			continue
		}
		for !cur.GoToNextSibling() {
			if len(stack) == 1 || !cur.GoToParent() {
				return out
			}
			stack = stack[:len(stack)-1]
		}
	}
}

func newNode(n *sitter.Node, field string, id source.FileID) *Node {
	return &Node{
		Kind:  Kind(n.Type()),
		Field: field,
		Span:  source.Span{File: id, Start: n.StartByte(), End: n.EndByte()},
	}
}

func firstError(n *sitter.Node, file *source.File) error {
	if n.IsMissing() {
		return &SyntaxError{
			Span: source.Span{File: file.ID, Start: n.StartByte(), End: n.EndByte()},
			Msg:  fmt.Sprintf("missing %s", n.Type()),
		}
	}
	if n.Type() == string(KindError) {
		return &SyntaxError{
			Span: source.Span{File: file.ID, Start: n.StartByte(), End: n.EndByte()},
			Msg:  "unexpected input",
		}
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == nil || !c.HasError() && !c.IsMissing() {
			continue
		}
		return firstError(c, file)
	}
	return &SyntaxError{
		Span: source.Span{File: file.ID, Start: n.StartByte(), End: n.EndByte()},
		Msg:  "unexpected input",
	}
}
