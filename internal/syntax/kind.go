package syntax

// Kind is the tree-sitter node type of a Node.
type Kind string

// Node kinds the rewriter cares about. Everything else is walked but never
// inspected.
const (
	KindProgram         Kind = "program"
	KindStatementBlock  Kind = "statement_block"
	KindComment         Kind = "comment"
	KindError           Kind = "ERROR"
	KindIdentifier      Kind = "identifier"
	KindShorthandProp   Kind = "shorthand_property_identifier"
	KindParenthesized   Kind = "parenthesized_expression"
	KindExpressionStmt  Kind = "expression_statement"
	KindString          Kind = "string"
	KindReturnStmt      Kind = "return_statement"
	KindVarDeclarator   Kind = "variable_declarator"
	KindBinaryExpr      Kind = "binary_expression"
	KindCallExpr        Kind = "call_expression"
	KindArguments       Kind = "arguments"
	KindMemberExpr      Kind = "member_expression"
	KindSubscriptExpr   Kind = "subscript_expression"
	KindFormalParams    Kind = "formal_parameters"
	KindArrowFunction   Kind = "arrow_function"
	KindFunctionDecl    Kind = "function_declaration"
	KindFunctionExpr    Kind = "function_expression"
	KindFunctionLegacy  Kind = "function" // function expressions in pre-0.21 grammars
	KindGeneratorDecl   Kind = "generator_function_declaration"
	KindGeneratorExpr   Kind = "generator_function"
	KindMethodDef       Kind = "method_definition"
)

// Field names used by the JavaScript grammar.
const (
	FieldBody       = "body"
	FieldParameters = "parameters"
	FieldParameter  = "parameter"
	FieldObject     = "object"
	FieldProperty   = "property"
	FieldIndex      = "index"
	FieldFunction   = "function"
	FieldArguments  = "arguments"
	FieldValue      = "value"
	FieldOperator   = "operator"
)

// IsLogicalOp reports whether op short-circuits: `&&`, `||` and `??` share
// binary_expression with arithmetic and comparisons in the grammar.
func IsLogicalOp(op string) bool {
	switch op {
	case "&&", "||", "??":
		return true
	}
	return false
}

// IsOrdinaryFunction reports whether k introduces its own `arguments`
// binding: declarations, expressions, generators and methods (including
// getters, setters and constructors).
func (k Kind) IsOrdinaryFunction() bool {
	switch k {
	case KindFunctionDecl, KindFunctionExpr, KindFunctionLegacy,
		KindGeneratorDecl, KindGeneratorExpr, KindMethodDef:
		return true
	}
	return false
}

// IsClosureLiteral reports whether k is a function-like form without its own
// `arguments` binding.
func (k Kind) IsClosureLiteral() bool {
	return k == KindArrowFunction
}

// IsFunctionLike reports whether k opens a scope frame.
func (k Kind) IsFunctionLike() bool {
	return k.IsOrdinaryFunction() || k.IsClosureLiteral()
}

// IsMemberAccess reports whether k is `a.b` or `a[b]`.
func (k Kind) IsMemberAccess() bool {
	return k == KindMemberExpr || k == KindSubscriptExpr
}
