// Package scope tracks the function frames enclosing the walker.
//
// Two stacks are kept. The materializable stack holds ordinary functions,
// the only places a preamble can be inserted. The closure stack holds
// every function-like node, arrows included, and answers "is the innermost
// function an arrow".
package scope

import (
	"errors"
	"fmt"

	"argsmat/internal/syntax"
)

var (
	// ErrNoEnclosingFunction is returned when no ordinary function encloses
	// the current position.
	ErrNoEnclosingFunction = errors.New("no enclosing function")
	// ErrUnbalanced is returned when Leave does not match the last Enter.
	ErrUnbalanced = errors.New("unbalanced scope stack")
)

// Frame is one function scope. Written is the one-shot preamble flag and is
// only meaningful on materializable frames.
type Frame struct {
	Owner   *syntax.Node
	Body    *syntax.Node
	Written bool
}

// Materializable reports whether the frame owns an `arguments` binding.
func (f *Frame) Materializable() bool {
	return f != nil && f.Owner.Kind.IsOrdinaryFunction()
}

// Stack holds the two frame stacks. The zero value is ready to use.
type Stack struct {
	materializable []*Frame
	closure        []*Frame
}

// Enter pushes a frame for a function-like owner. Non function-like nodes
// are ignored and reported as false.
func (s *Stack) Enter(owner *syntax.Node) bool {
	if owner == nil || !owner.Kind.IsFunctionLike() {
		return false
	}
	f := &Frame{Owner: owner, Body: owner.Child(syntax.FieldBody)}
	s.closure = append(s.closure, f)
	if owner.Kind.IsOrdinaryFunction() {
		s.materializable = append(s.materializable, f)
	}
	return true
}

// Leave pops the frame of owner. The owner must be the innermost frame.
func (s *Stack) Leave(owner *syntax.Node) error {
	if owner == nil || !owner.Kind.IsFunctionLike() {
		return nil
	}
	n := len(s.closure)
	if n == 0 || s.closure[n-1].Owner != owner {
		return fmt.Errorf("leave %s at %d: %w", owner.Kind, owner.Span.Start, ErrUnbalanced)
	}
	top := s.closure[n-1]
	s.closure = s.closure[:n-1]
	if owner.Kind.IsOrdinaryFunction() {
		m := len(s.materializable)
		if m == 0 || s.materializable[m-1] != top {
			return fmt.Errorf("leave %s at %d: %w", owner.Kind, owner.Span.Start, ErrUnbalanced)
		}
		s.materializable = s.materializable[:m-1]
	}
	return nil
}

// CurrentMaterializable returns the innermost ordinary function frame.
func (s *Stack) CurrentMaterializable() (*Frame, error) {
	if len(s.materializable) == 0 {
		return nil, ErrNoEnclosingFunction
	}
	return s.materializable[len(s.materializable)-1], nil
}

// CurrentClosure returns the innermost function-like frame, or nil.
func (s *Stack) CurrentClosure() *Frame {
	if len(s.closure) == 0 {
		return nil
	}
	return s.closure[len(s.closure)-1]
}

// InClosure reports whether the innermost function-like frame is a closure
// literal.
func (s *Stack) InClosure() bool {
	f := s.CurrentClosure()
	return f != nil && f.Owner.Kind.IsClosureLiteral()
}

// MarkWritten sets the one-shot flag of the innermost materializable frame
// and reports whether this call flipped it.
func (s *Stack) MarkWritten() (bool, error) {
	f, err := s.CurrentMaterializable()
	if err != nil {
		return false, err
	}
	if f.Written {
		return false, nil
	}
	f.Written = true
	return true, nil
}

// Depth returns the sizes of the materializable and closure stacks.
func (s *Stack) Depth() (materializable, closure int) {
	return len(s.materializable), len(s.closure)
}

// Empty reports whether both stacks are empty.
func (s *Stack) Empty() bool {
	return len(s.materializable) == 0 && len(s.closure) == 0
}
