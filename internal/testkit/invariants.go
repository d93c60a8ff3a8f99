package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"argsmat/internal/source"
	"argsmat/internal/syntax"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed tree:
// 1) the root span is non-empty and within file content bounds
// 2) every node span points at the tree's file and lies inside its parent
// 3) siblings are in source order and do not overlap
func CheckSpanInvariants(tree *syntax.Tree) error {
	if tree == nil || tree.Root == nil || tree.File == nil {
		return fmt.Errorf("nil tree or file")
	}
	root := tree.Root

	lenContent, err := safecast.Conv[uint32](len(tree.File.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if len(tree.File.Content) > 0 && root.Span.End <= root.Span.Start {
		return fmt.Errorf("root span is empty: %v", root.Span)
	}
	if root.Span.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.Span.End, lenContent)
	}
	return checkNode(root, tree.File.ID)
}

func checkNode(n *syntax.Node, file source.FileID) error {
	if n.Span.File != file {
		return fmt.Errorf("%s span points to different file id: got=%d want=%d", n.Kind, n.Span.File, file)
	}
	if n.Span.End < n.Span.Start {
		return fmt.Errorf("%s span is inverted: %v", n.Kind, n.Span)
	}
	var prev *syntax.Node
	for _, c := range n.Children {
		if n.Span.Cover(c.Span) != n.Span {
			return fmt.Errorf("%s span %v is outside parent %s %v", c.Kind, c.Span, n.Kind, n.Span)
		}
		if prev != nil && c.Span.Start < prev.Span.End {
			return fmt.Errorf("%s span %v overlaps previous sibling %s %v", c.Kind, c.Span, prev.Kind, prev.Span)
		}
		if err := checkNode(c, file); err != nil {
			return err
		}
		prev = c
	}
	return nil
}
