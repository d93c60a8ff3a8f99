package scope

import (
	"errors"
	"testing"

	"argsmat/internal/syntax"
)

func fn(kind syntax.Kind) *syntax.Node {
	return &syntax.Node{
		Kind:     kind,
		Children: []*syntax.Node{{Kind: syntax.KindStatementBlock, Field: syntax.FieldBody}},
	}
}

func TestEnterLeaveSymmetry(t *testing.T) {
	var s Stack
	outer := fn(syntax.KindFunctionDecl)
	arrow := fn(syntax.KindArrowFunction)
	inner := fn(syntax.KindMethodDef)

	for _, n := range []*syntax.Node{outer, arrow, inner} {
		if !s.Enter(n) {
			t.Fatalf("Enter(%s) = false", n.Kind)
		}
	}
	if m, c := s.Depth(); m != 2 || c != 3 {
		t.Fatalf("depth = %d/%d, want 2/3", m, c)
	}
	for _, n := range []*syntax.Node{inner, arrow, outer} {
		if err := s.Leave(n); err != nil {
			t.Fatalf("Leave(%s): %v", n.Kind, err)
		}
	}
	if !s.Empty() {
		t.Fatalf("stack not empty after balanced leave")
	}
}

func TestEnterIgnoresNonFunctions(t *testing.T) {
	var s Stack
	block := &syntax.Node{Kind: syntax.KindStatementBlock}
	if s.Enter(block) {
		t.Fatalf("Enter(statement_block) = true")
	}
	if err := s.Leave(block); err != nil {
		t.Fatalf("Leave(statement_block): %v", err)
	}
}

func TestLeaveMismatch(t *testing.T) {
	var s Stack
	a, b := fn(syntax.KindFunctionDecl), fn(syntax.KindFunctionExpr)
	s.Enter(a)
	s.Enter(b)
	if err := s.Leave(a); !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("expected ErrUnbalanced, got %v", err)
	}
	var empty Stack
	if err := empty.Leave(a); !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("leave on empty stack: %v", err)
	}
}

func TestCurrentFrames(t *testing.T) {
	var s Stack
	if _, err := s.CurrentMaterializable(); !errors.Is(err, ErrNoEnclosingFunction) {
		t.Fatalf("expected ErrNoEnclosingFunction, got %v", err)
	}
	if s.CurrentClosure() != nil || s.InClosure() {
		t.Fatalf("empty stack has a closure frame")
	}

	outer := fn(syntax.KindFunctionDecl)
	arrow := fn(syntax.KindArrowFunction)
	s.Enter(outer)
	s.Enter(arrow)

	f, err := s.CurrentMaterializable()
	if err != nil || f.Owner != outer {
		t.Fatalf("CurrentMaterializable = %+v, %v", f, err)
	}
	if !f.Materializable() {
		t.Fatalf("function frame not materializable")
	}
	if s.CurrentClosure().Owner != arrow || !s.InClosure() {
		t.Fatalf("innermost closure frame is not the arrow")
	}
	if f.Body == nil || f.Body.Kind != syntax.KindStatementBlock {
		t.Fatalf("frame body = %+v", f.Body)
	}
}

func TestMarkWrittenOnce(t *testing.T) {
	var s Stack
	if _, err := s.MarkWritten(); !errors.Is(err, ErrNoEnclosingFunction) {
		t.Fatalf("MarkWritten without function: %v", err)
	}
	outer := fn(syntax.KindFunctionDecl)
	s.Enter(outer)
	s.Enter(fn(syntax.KindArrowFunction))

	first, err := s.MarkWritten()
	if err != nil || !first {
		t.Fatalf("first MarkWritten = %v, %v", first, err)
	}
	second, err := s.MarkWritten()
	if err != nil || second {
		t.Fatalf("second MarkWritten = %v, %v", second, err)
	}

	inner := fn(syntax.KindGeneratorExpr)
	s.Enter(inner)
	flipped, _ := s.MarkWritten()
	if !flipped {
		t.Fatalf("nested function shares the outer flag")
	}
}
