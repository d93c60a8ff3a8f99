// Package classify decides whether a read of `arguments` is safe to keep.
package classify

import (
	"argsmat/internal/syntax"
)

// Context is the syntactic role of a member access on `arguments`.
type Context uint8

const (
	ContextOther   Context = iota
	ContextVarInit         // var n = arguments.length
	ContextBinary          // i < arguments.length
	ContextReturn          // return arguments[0]
	ContextCallArg         // f(arguments.length)
	ContextCallee          // arguments.pop()
)

func (c Context) String() string {
	switch c {
	case ContextVarInit:
		return "variable initializer"
	case ContextBinary:
		return "binary operand"
	case ContextReturn:
		return "return value"
	case ContextCallArg:
		return "call argument"
	case ContextCallee:
		return "callee"
	default:
		return "other"
	}
}

// safe reports whether the permissive policy keeps a member access here.
func (c Context) safe() bool {
	switch c {
	case ContextVarInit, ContextBinary, ContextReturn, ContextCallArg:
		return true
	}
	return false
}

// Occurrence describes one `arguments` identifier.
type Occurrence struct {
	// Member is set when the identifier is the object of a member or
	// subscript expression.
	Member *syntax.Node
	// InClosure is true when the innermost function-like frame is an arrow.
	InClosure bool
	// Context is the role of Member within its effective parent.
	Context Context
}

// Decision is the outcome of Classify.
type Decision struct {
	Redirect bool
	Reason   string
}

// Classify applies p to occ.
func Classify(p Policy, occ Occurrence) Decision {
	switch {
	case p == PolicyStrict:
		return Decision{Redirect: true, Reason: "strict policy"}
	case occ.Member == nil:
		return Decision{Redirect: true, Reason: "whole-value use"}
	case occ.InClosure:
		return Decision{Redirect: true, Reason: "member access inside closure literal"}
	case p == PolicyMember:
		return Decision{Reason: "member access"}
	case occ.Context.safe():
		return Decision{Reason: "member access as " + occ.Context.String()}
	default:
		return Decision{Redirect: true, Reason: "member access as " + occ.Context.String()}
	}
}

// MemberOf returns the member or subscript expression whose object is ident,
// or nil. parent is ident's parent.
func MemberOf(ident, parent *syntax.Node) *syntax.Node {
	if parent == nil || !parent.Kind.IsMemberAccess() {
		return nil
	}
	if ident.Field != syntax.FieldObject {
		return nil
	}
	return parent
}

// ContextOf computes the context of the last node of path. path lists the
// ancestors from the root down to and including the member expression.
// Parentheses are transparent.
func ContextOf(path []*syntax.Node) Context {
	if len(path) == 0 {
		return ContextOther
	}
	i := len(path) - 1
	child := path[i]
	for i > 0 && path[i-1].Kind == syntax.KindParenthesized {
		i--
		child = path[i]
	}
	if i == 0 {
		return ContextOther
	}
	parent := path[i-1]
	switch parent.Kind {
	case syntax.KindVarDeclarator:
		if child.Field == syntax.FieldValue {
			return ContextVarInit
		}
	case syntax.KindBinaryExpr:
		if !syntax.IsLogicalOp(parent.Op) {
			return ContextBinary
		}
	case syntax.KindReturnStmt:
		return ContextReturn
	case syntax.KindCallExpr:
		if child.Field == syntax.FieldFunction {
			return ContextCallee
		}
	case syntax.KindArguments:
		if i >= 2 && path[i-2].Kind == syntax.KindCallExpr {
			return ContextCallArg
		}
	}
	return ContextOther
}
