package syntax

import (
	"argsmat/internal/source"
)

// Node is one named element of the parsed tree. Nodes are immutable once
// Parse returns; they carry no parent pointer, the walker supplies parents.
type Node struct {
	Kind     Kind
	Field    string // field name in the parent, "" when unnamed
	Span     source.Span
	Children []*Node // named children in source order
	Op       string  // operator token of binary and logical expressions
}

// Child returns the first child stored under the given field name.
func (n *Node) Child(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// FirstStatement returns the first non-comment child, or nil.
func (n *Node) FirstStatement() *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind != KindComment {
			return c
		}
	}
	return nil
}

// Tree is the result of parsing one file.
type Tree struct {
	File *source.File
	Root *Node
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *Node) string {
	if t == nil || n == nil {
		return ""
	}
	return string(t.File.Content[n.Span.Start:n.Span.End])
}

// Directives returns the directive prologue of a function body: the leading
// string-literal expression statements such as 'use strict'.
func (t *Tree) Directives(body *Node) []*Node {
	var out []*Node
	for _, stmt := range body.Children {
		if stmt.Kind == KindComment {
			continue
		}
		if stmt.Kind != KindExpressionStmt || len(stmt.Children) == 0 {
			break
		}
		expr := stmt.FirstStatement()
		if expr == nil || expr.Kind != KindString {
			break
		}
		out = append(out, stmt)
	}
	return out
}
