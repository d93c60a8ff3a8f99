package classify

import (
	"errors"
	"testing"

	"argsmat/internal/syntax"
)

func TestClassifyDecisionTable(t *testing.T) {
	member := &syntax.Node{Kind: syntax.KindMemberExpr}
	tests := []struct {
		name   string
		policy Policy
		occ    Occurrence
		want   bool // redirect
	}{
		{"strict keeps nothing", PolicyStrict, Occurrence{Member: member, Context: ContextVarInit}, true},
		{"whole value permissive", PolicyPermissive, Occurrence{}, true},
		{"whole value member", PolicyMember, Occurrence{}, true},
		{"var init", PolicyPermissive, Occurrence{Member: member, Context: ContextVarInit}, false},
		{"binary", PolicyPermissive, Occurrence{Member: member, Context: ContextBinary}, false},
		{"return", PolicyPermissive, Occurrence{Member: member, Context: ContextReturn}, false},
		{"call arg", PolicyPermissive, Occurrence{Member: member, Context: ContextCallArg}, false},
		{"callee", PolicyPermissive, Occurrence{Member: member, Context: ContextCallee}, true},
		{"other", PolicyPermissive, Occurrence{Member: member, Context: ContextOther}, true},
		{"closure permissive", PolicyPermissive, Occurrence{Member: member, InClosure: true, Context: ContextReturn}, true},
		{"member policy callee", PolicyMember, Occurrence{Member: member, Context: ContextCallee}, false},
		{"member policy closure", PolicyMember, Occurrence{Member: member, InClosure: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.policy, tt.occ)
			if d.Redirect != tt.want {
				t.Fatalf("Redirect = %v, want %v (reason %q)", d.Redirect, tt.want, d.Reason)
			}
			if d.Reason == "" {
				t.Fatalf("empty reason")
			}
		})
	}
}

func TestMemberOfRequiresObjectField(t *testing.T) {
	obj := &syntax.Node{Kind: syntax.KindIdentifier, Field: syntax.FieldObject}
	idx := &syntax.Node{Kind: syntax.KindIdentifier, Field: syntax.FieldIndex}
	sub := &syntax.Node{Kind: syntax.KindSubscriptExpr, Children: []*syntax.Node{obj, idx}}

	if MemberOf(obj, sub) != sub {
		t.Fatalf("object of subscript not recognized")
	}
	if MemberOf(idx, sub) != nil {
		t.Fatalf("foo[arguments] treated as member access")
	}
	if MemberOf(obj, &syntax.Node{Kind: syntax.KindCallExpr}) != nil {
		t.Fatalf("non-member parent accepted")
	}
	if MemberOf(obj, nil) != nil {
		t.Fatalf("nil parent accepted")
	}
}

func TestContextOf(t *testing.T) {
	n := func(kind syntax.Kind, field string) *syntax.Node {
		return &syntax.Node{Kind: kind, Field: field}
	}
	member := func(field string) *syntax.Node { return n(syntax.KindMemberExpr, field) }
	op := func(tok string) *syntax.Node { return &syntax.Node{Kind: syntax.KindBinaryExpr, Op: tok} }

	tests := []struct {
		name string
		path []*syntax.Node
		want Context
	}{
		{"var init", []*syntax.Node{n(syntax.KindVarDeclarator, ""), member(syntax.FieldValue)}, ContextVarInit},
		{"binary", []*syntax.Node{n(syntax.KindBinaryExpr, ""), member("left")}, ContextBinary},
		{"comparison", []*syntax.Node{op("==="), member("right")}, ContextBinary},
		{"logical or", []*syntax.Node{op("||"), member("right")}, ContextOther},
		{"logical and", []*syntax.Node{op("&&"), member("left")}, ContextOther},
		{"nullish", []*syntax.Node{op("??"), member("right")}, ContextOther},
		{"return", []*syntax.Node{n(syntax.KindReturnStmt, ""), member("")}, ContextReturn},
		{"call arg", []*syntax.Node{n(syntax.KindCallExpr, ""), n(syntax.KindArguments, syntax.FieldArguments), member("")}, ContextCallArg},
		{"callee", []*syntax.Node{n(syntax.KindCallExpr, ""), member(syntax.FieldFunction)}, ContextCallee},
		{"parenthesized return", []*syntax.Node{
			n(syntax.KindReturnStmt, ""),
			n(syntax.KindParenthesized, ""),
			n(syntax.KindParenthesized, ""),
			member(""),
		}, ContextReturn},
		{"new arguments", []*syntax.Node{n("new_expression", ""), n(syntax.KindArguments, syntax.FieldArguments), member("")}, ContextOther},
		{"nested member", []*syntax.Node{n(syntax.KindMemberExpr, ""), member(syntax.FieldObject)}, ContextOther},
		{"root", []*syntax.Node{member("")}, ContextOther},
		{"empty", nil, ContextOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContextOf(tt.path); got != tt.want {
				t.Fatalf("ContextOf = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePolicy(t *testing.T) {
	for _, p := range []Policy{PolicyPermissive, PolicyMember, PolicyStrict} {
		got, err := ParsePolicy(p.String())
		if err != nil || got != p {
			t.Fatalf("ParsePolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if got, err := ParsePolicy(" Strict "); err != nil || got != PolicyStrict {
		t.Fatalf("ParsePolicy is not case-insensitive: %v, %v", got, err)
	}
	if got, err := ParsePolicy(""); err != nil || got != PolicyPermissive {
		t.Fatalf("empty policy = %v, %v", got, err)
	}
	if _, err := ParsePolicy("loose"); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}

	var p Policy
	if err := p.UnmarshalText([]byte("member")); err != nil || p != PolicyMember {
		t.Fatalf("UnmarshalText = %v, %v", p, err)
	}
	if _, err := Policy(9).MarshalText(); !errors.Is(err, ErrUnknownPolicy) {
		t.Fatalf("MarshalText of invalid policy: %v", err)
	}
}
