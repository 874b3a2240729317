package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/resolver"
	"github.com/spyre-lang/spyre/lang/types"
)

func TestLookupWalksEnclosingBlocks(t *testing.T) {
	a := ast.NewArena(nil)

	fn := &types.Function{
		Name: "f",
		Args: []*types.Decl{{Name: "n", Type: types.Datatype{Base: types.Int}, Slot: 0}},
	}

	outer := a.NewBlock(ast.NoNode)
	outerDecl := &types.Decl{Name: "x", Type: types.Datatype{Base: types.Int}, Slot: 1}
	a.AddLocal(outer, outerDecl)

	ifNode := a.NewNode(ast.Node{Kind: ast.If, ParentBlock: outer})
	inner := a.NewBlock(ifNode)
	a.Node(ifNode).Body = inner

	d, scope := resolver.Lookup(a, inner, fn, "x")
	require.Equal(t, resolver.Local, scope)
	require.Same(t, outerDecl, d)

	d, scope = resolver.Lookup(a, inner, fn, "n")
	require.Equal(t, resolver.Arg, scope)
	require.Equal(t, fn.Args[0], d)

	_, scope = resolver.Lookup(a, inner, fn, "nope")
	require.Equal(t, resolver.Undefined, scope)
}

func TestLookupStopsAtFunctionBoundary(t *testing.T) {
	a := ast.NewArena(nil)

	fnNode := a.NewNode(ast.Node{Kind: ast.FunctionDef, ParentBlock: a.RootBlock})
	fnBody := a.NewBlock(fnNode)
	a.Node(fnNode).Body = fnBody

	globalDecl := &types.Decl{Name: "g", Type: types.Datatype{Base: types.Int}, Slot: 0}
	a.AddLocal(a.RootBlock, globalDecl)

	fn := &types.Function{Name: "f"}
	d, scope := resolver.Lookup(a, fnBody, fn, "g")
	require.Equal(t, resolver.Global, scope)
	require.Same(t, globalDecl, d)
}
