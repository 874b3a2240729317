package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/parser"
	"github.com/spyre-lang/spyre/lang/scanner"
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

func mustParse(t *testing.T, src string) *parser.Result {
	t.Helper()
	toks, err := scanner.Tokenize([]byte(src))
	require.NoError(t, err)
	res, err := parser.Parse(toks)
	require.NoError(t, err)
	return res
}

func TestParseFunctionFormRegistersFunction(t *testing.T) {
	res := mustParse(t, `main : ( n : int ) -> int {
		return n;
	}`)

	fn, ok := res.Funcs.Lookup("main")
	require.True(t, ok)
	require.False(t, fn.IsForeign)
	require.Equal(t, uint(1), fn.Nargs)
	require.Equal(t, types.Int, fn.Return.Base)

	children := res.Arena.Block(res.Arena.RootBlock).Children
	require.Len(t, children, 1)
	require.Equal(t, ast.FunctionDef, res.Arena.Node(children[0]).Kind)
}

func TestParseCFuncIsVariadicForeign(t *testing.T) {
	res := mustParse(t, `printf : cfunc ( fmt : byte^, ... ) -> int;

	main : () -> int {
		return 0;
	}`)

	fn, ok := res.Funcs.Lookup("printf")
	require.True(t, ok)
	require.True(t, fn.IsForeign)
	require.True(t, fn.IsVariadic)
}

func TestParseStructForwardThenDefine(t *testing.T) {
	res := mustParse(t, `point : struct;
	point : struct {
		x : int;
		y : int;
	}

	main : () -> int {
		return 0;
	}`)

	sd, ok := res.Structs.Lookup("point")
	require.True(t, ok)
	require.True(t, sd.Complete)
	require.Len(t, sd.Fields, 2)
	require.Equal(t, "x", sd.Fields[0].Name)
	require.Equal(t, "y", sd.Fields[1].Name)
}

func TestParseGlobalDeclRegistersRootLocal(t *testing.T) {
	res := mustParse(t, `counter : int;

	main : () -> int {
		counter = 1;
		return counter;
	}`)

	locals := res.Arena.Block(res.Arena.RootBlock).Locals
	require.Len(t, locals, 1)
	require.Equal(t, "counter", locals[0].Name)
}

func TestParseCompoundAssignRecordsOperator(t *testing.T) {
	res := mustParse(t, `main : () -> int {
		x : int;
		x = 1;
		x += 2;
		return x;
	}`)

	fn, ok := res.Funcs.Lookup("main")
	require.True(t, ok)
	body := fn.Body.(ast.BlockID)
	var sawCompound bool
	for _, id := range res.Arena.Block(body).Children {
		n := res.Arena.Node(id)
		if n.Kind == ast.Assign && n.AssignOp == token.PLUS_EQ {
			sawCompound = true
		}
	}
	require.True(t, sawCompound)
}

func TestParseStructCannotContainItselfByValue(t *testing.T) {
	toks, err := scanner.Tokenize([]byte(`bad : struct;
	bad : struct {
		self : bad;
	}

	main : () -> int {
		return 0;
	}`))
	require.NoError(t, err)
	_, err = parser.Parse(toks)
	require.Error(t, err)
}

func TestParseElifWithoutIfIsError(t *testing.T) {
	toks, err := scanner.Tokenize([]byte(`main : () -> int {
		elif 1 {
			return 0;
		}
	}`))
	require.NoError(t, err)
	_, err = parser.Parse(toks)
	require.Error(t, err)
}

func TestParseReservedDoIsNotImplemented(t *testing.T) {
	toks, err := scanner.Tokenize([]byte(`main : () -> int {
		do {
			return 0;
		}
	}`))
	require.NoError(t, err)
	_, err = parser.Parse(toks)
	require.Error(t, err)
}
