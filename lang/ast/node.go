package ast

import (
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// Kind tags the union of AstNode variants.
type Kind uint8

const (
	Root Kind = iota
	If
	While
	For
	FunctionDef
	Assign
	Statement
	Return
	Continue
	Break
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "Root"
	case If:
		return "If"
	case While:
		return "While"
	case For:
		return "For"
	case FunctionDef:
		return "Function"
	case Assign:
		return "Assign"
	case Statement:
		return "Statement"
	case Return:
		return "Return"
	case Continue:
		return "Continue"
	case Break:
		return "Break"
	default:
		return "Kind(?)"
	}
}

// IfVariant distinguishes the three forms of an If node.
type IfVariant uint8

const (
	IfReg IfVariant = iota
	IfElif
	IfElse
)

// Node is the tagged union of AST node kinds. Only the fields relevant to
// Kind are meaningful; a flat struct is simpler to keep in an arena slice
// than a pointer-tagged union would be.
type Node struct {
	Kind Kind
	Line uint

	// ParentBlock is the Block that contains this node (every non-root node
	// has one; the Root node's ParentBlock is NoBlock).
	ParentBlock BlockID

	// Body is the nested Block this node owns: the If/While/For/Function
	// body, or (for Root) the top-level block.
	Body BlockID

	// If-specific.
	IfVariant IfVariant
	Cond      TokenSpan // condition tokens; empty for IfElse

	// While-specific.
	// (uses Cond above)

	// For-specific. ForInit/ForPost reference standalone Assign/Statement
	// nodes kept in the arena but outside any Block's Children list: the
	// generator emits them directly in place rather than reaching them via
	// the normal advance-walk.
	ForInit NodeID
	ForPost NodeID

	// Function-specific.
	Func *types.Function

	// Assign-specific. AssignOp is token.ASSIGN for a plain "lhs = rhs" and
	// one of the PLUS_EQ/MINUS_EQ/... compound-assign kinds otherwise; the
	// generator desugars the latter to "lhs = lhs OP rhs".
	Lhs      TokenSpan
	Rhs      TokenSpan
	AssignOp token.Kind

	// Statement / Return specific.
	Expr TokenSpan
}
