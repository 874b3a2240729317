// Package resolver implements the variable-lookup service used as a shared
// auxiliary service by the code generator: given the block currently being
// generated, find the Decl a name refers to by walking enclosing blocks
// outward, then the owning function's arguments, then file-scope globals at
// the root block. Spyre has no closures, so there is only
// Local/Arg/Global/Undefined to resolve, never Free or Cell.
package resolver

import (
	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/types"
)

// Scope identifies where a resolved Decl lives.
type Scope uint8

const (
	Undefined Scope = iota
	Local           // a block-local variable within the current function
	Arg             // a function argument
	Global          // a file-scope declaration
)

func (s Scope) String() string {
	switch s {
	case Local:
		return "local"
	case Arg:
		return "arg"
	case Global:
		return "global"
	default:
		return "undefined"
	}
}

// Lookup walks outward from block (the block currently being generated)
// through enclosing blocks of the same function, then the function's
// argument list, then file-scope globals, returning the first Decl whose
// name matches.
func Lookup(a *ast.Arena, block ast.BlockID, fn *types.Function, name string) (*types.Decl, Scope) {
	for block != ast.NoBlock {
		if d := a.Block(block).Local(name); d != nil {
			return d, Local
		}
		owner := a.Block(block).Parent
		if owner == ast.NoNode {
			break
		}
		ownerNode := a.Node(owner)
		if ownerNode.Kind == ast.FunctionDef {
			// Function bodies are the only nodes that own reserve_slots;
			// locals never cross this boundary.
			break
		}
		block = ownerNode.ParentBlock
	}

	if fn != nil {
		for _, arg := range fn.Args {
			if arg.Name == name {
				return arg, Arg
			}
		}
	}

	if d := a.Block(a.RootBlock).Local(name); d != nil {
		return d, Global
	}

	return nil, Undefined
}
