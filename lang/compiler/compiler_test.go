package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spyre-lang/spyre/lang/compiler"
	"github.com/spyre-lang/spyre/lang/parser"
	"github.com/spyre-lang/spyre/lang/scanner"
)

// generate runs the full scan/parse/generate pipeline and returns the
// listing as a slice of non-empty lines, trimmed, so tests can assert on
// instruction shape without fighting exact whitespace.
func generate(t *testing.T, src string) []string {
	t.Helper()
	toks, err := scanner.Tokenize([]byte(src))
	require.NoError(t, err)

	res, err := parser.Parse(toks)
	require.NoError(t, err)

	var sb strings.Builder
	require.NoError(t, compiler.Generate(res, &sb))

	var lines []string
	for _, l := range strings.Split(sb.String(), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestGenerateSimpleAssignAndReturn(t *testing.T) {
	lines := generate(t, `main : () -> int {
		x : int;
		x = 2 + 3;
		return x;
	}`)

	require.Contains(t, lines, "jmp __ENTRY_POINT__")
	require.Contains(t, lines, "__FUNC__main:")
	require.Contains(t, lines, "ipush 2")
	require.Contains(t, lines, "ipush 3")
	require.Contains(t, lines, "iadd")
	require.Contains(t, lines, "isave")
	require.Contains(t, lines, "__ENTRY_POINT__:")
	require.Contains(t, lines, "call __FUNC__main, 0")
}

func TestGenerateIfElifElseChainSharesLabel(t *testing.T) {
	lines := generate(t, `main : () -> int {
		x : int;
		x = 1;
		if x == 1 {
			return 1;
		} elif x == 2 {
			return 2;
		} else {
			return 3;
		}
	}`)

	// every branch must jump to some label, and that label must actually be
	// defined somewhere in the listing (the if/elif/else chain bug this
	// guards against: a dangling jmp to a label nothing ever emits).
	defined := map[string]bool{}
	for _, l := range lines {
		if strings.HasSuffix(l, ":") && strings.HasPrefix(l, "__LABEL__") {
			defined[strings.TrimSuffix(l, ":")] = true
		}
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "jmp __LABEL__") {
			target := strings.TrimPrefix(l, "jmp ")
			require.True(t, defined[target], "jmp target %s is never defined", target)
		}
		if strings.HasPrefix(l, "jz __LABEL__") {
			target := strings.TrimPrefix(l, "jz ")
			require.True(t, defined[target], "jz target %s is never defined", target)
		}
	}
}

func TestGenerateWhileContinueBreak(t *testing.T) {
	lines := generate(t, `main : () -> int {
		x : int;
		x = 0;
		while x < 10 {
			x = x + 1;
			if x == 5 {
				continue;
			}
			if x == 9 {
				break;
			}
		}
		return x;
	}`)

	require.Contains(t, lines, "ilt")
	// the loop condition test must be followed eventually by a jz to a bottom
	// label, and the body must contain a jmp back to the top label.
	var sawJz, sawJmpBack bool
	for _, l := range lines {
		if strings.HasPrefix(l, "jz __LABEL__") {
			sawJz = true
		}
		if strings.HasPrefix(l, "jmp __LABEL__") {
			sawJmpBack = true
		}
	}
	require.True(t, sawJz)
	require.True(t, sawJmpBack)
}

func TestGenerateForLoopPostIsDeferredAfterBody(t *testing.T) {
	lines := generate(t, `main : () -> int {
		i : int;
		sum : int;
		sum = 0;
		for i = 0; i < 3; i = i + 1 {
			sum = sum + i;
		}
		return sum;
	}`)

	// the post-statement ("i = i + 1") must appear after the body's own
	// "sum = sum + i" addition, not before it.
	bodyAdd := -1
	postAdd := -1
	addCount := 0
	for idx, l := range lines {
		if l == "iadd" {
			addCount++
			if addCount == 1 {
				bodyAdd = idx
			}
			if addCount == 2 {
				postAdd = idx
			}
		}
	}
	require.NotEqual(t, -1, bodyAdd)
	require.NotEqual(t, -1, postAdd)
	require.Less(t, bodyAdd, postAdd)
}

func TestGenerateStructFieldAccess(t *testing.T) {
	lines := generate(t, `point : struct {
		x : int;
		y : int;
	}

	main : () -> int {
		p : point;
		p.x = 3;
		p.y = 4;
		return p.y;
	}`)

	require.Contains(t, lines, "icinc 0")
	require.Contains(t, lines, "icinc 8")
}

func TestGenerateFieldNameMayShadowLocal(t *testing.T) {
	lines := generate(t, `point : struct {
		x : int;
	}

	main : () -> int {
		x : int;
		p : point;
		x = 1;
		p.x = x;
		return p.x;
	}`)

	// p.x must resolve x as a field of point (offset 0), not as the local
	// named x, even though both exist.
	require.Contains(t, lines, "icinc 0")
}

func TestGenerateStructPointerReassignmentTakesAddress(t *testing.T) {
	lines := generate(t, `point : struct {
		x : int;
	}

	main : () -> int {
		p : point;
		sp : point^;
		sp = &p;
		return 0;
	}`)

	// sp occupies slot 2 (p takes slots 0-1: its own handle slot plus its
	// one-slot struct body). sp is itself the assignment
	// target, so its own slot's address must be taken (lea 2): a
	// struct-pointer local must not fall back to a plain value load
	// (ilload 2) just because its ptr_level is nonzero.
	require.Contains(t, lines, "lea 2")
	require.NotContains(t, lines, "ilload 2")
	require.Contains(t, lines, "isave")
}

func TestGeneratePointerFieldStoreTargetsFieldSlot(t *testing.T) {
	lines := generate(t, `cell : struct {
		ptr : int^;
	}

	main : () -> int {
		c : cell;
		c.ptr^ = 5;
		return 0;
	}`)

	// on an L-value chain the '.' step never dereferences: the field's own
	// slot address stays on the stack, and the trailing '^' leaves it there
	// for the isave.
	require.Contains(t, lines, "icinc 0")
	require.NotContains(t, lines, "ider")
	require.Contains(t, lines, "isave")
}

func TestGenerateForeignVariadicCall(t *testing.T) {
	lines := generate(t, `printf : cfunc ( fmt : byte^, ... ) -> int;

	main : () -> int {
		n : int;
		n = 42;
		printf("%d", n);
		return 0;
	}`)

	require.Contains(t, lines, `let __CFUNC__printf "printf"`)
	require.Contains(t, lines, `let __STR__0 "%d"`)
	require.Contains(t, lines, "ipush __STR__0")
	// two arguments against one declared parameter: a variadic cfunc only
	// needs at least its declared parameters, and the extra argument goes
	// unchecked.
	require.Contains(t, lines, "ccall __CFUNC__printf, 2")
}

func TestGenerateFunctionCallArgCoercion(t *testing.T) {
	lines := generate(t, `scale : ( f : float ) -> float {
		return f * 2.0;
	}

	main : () -> int {
		r : float;
		r = scale(1);
		return 0;
	}`)

	require.Contains(t, lines, "call __FUNC__scale, 1")
	// the int literal argument 1 must be coerced to float for the float
	// parameter.
	found := false
	for i := 0; i+1 < len(lines); i++ {
		if lines[i] == "ipush 1" && strings.HasPrefix(lines[i+1], "itof") {
			found = true
		}
	}
	require.True(t, found)
}

func TestGeneratePointerArithmeticScalesByPointeeSize(t *testing.T) {
	lines := generate(t, `main : ( base : int^ ) -> int {
		base = base + 1;
		return 0;
	}`)

	require.Contains(t, lines, "ipush 8")
	require.Contains(t, lines, "imul")
}

func TestGenerateBytePointerArithmeticIsUnscaled(t *testing.T) {
	lines := generate(t, `main : ( s : byte^ ) -> int {
		s = s + 1;
		return 0;
	}`)

	// a byte pointee has stride 1, so no scaling multiply is emitted.
	require.NotContains(t, lines, "imul")
	require.Contains(t, lines, "iadd")
}

func TestGenerateCommentInsideExpression(t *testing.T) {
	lines := generate(t, `main : () -> int {
		x : int;
		x = 1 + /* two */ 2;
		return x;
	}`)

	require.Contains(t, lines, "ipush 1")
	require.Contains(t, lines, "ipush 2")
	require.Contains(t, lines, "iadd")
}

func TestGenerateCompoundAssignDesugars(t *testing.T) {
	lines := generate(t, `main : () -> int {
		x : int;
		x = 1;
		x += 2;
		return x;
	}`)

	require.Contains(t, lines, "iadd")
}

func TestGenerateSizeofIsCompileTimeConstant(t *testing.T) {
	lines := generate(t, `point : struct {
		x : int;
		y : int;
	}

	main : () -> int {
		return sizeof(point);
	}`)

	require.Contains(t, lines, "ipush 16")
	require.NotContains(t, lines, "call __FUNC__sizeof, 1")
}

func TestGenerateGlobalUsesGlobalOpcodes(t *testing.T) {
	lines := generate(t, `counter : int;

	main : () -> int {
		counter = 2;
		return counter;
	}`)

	require.Contains(t, lines, "res_global 1")
	require.Contains(t, lines, "glea 0")
	require.Contains(t, lines, "gload 0")
	// globals are reserved before anything jumps to the entry point.
	require.Equal(t, "res_global 1", lines[0])
}

func TestGeneratePointerArithmeticWrongOrderIsTypeError(t *testing.T) {
	toks, err := scanner.Tokenize([]byte(`main : ( base : int^ ) -> int {
		base = 1 + base;
		return 0;
	}`))
	require.NoError(t, err)
	res, err := parser.Parse(toks)
	require.NoError(t, err)

	var sb strings.Builder
	err = compiler.Generate(res, &sb)
	require.Error(t, err)
	var ce *compiler.Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, compiler.TypeError, ce.Kind)
}

func TestGenerateMissingMainIsResolveError(t *testing.T) {
	toks, err := scanner.Tokenize([]byte(`notmain : () -> int {
		return 0;
	}`))
	require.NoError(t, err)
	res, err := parser.Parse(toks)
	require.NoError(t, err)

	var sb strings.Builder
	err = compiler.Generate(res, &sb)
	require.Error(t, err)
	var ce *compiler.Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, compiler.ResolveError, ce.Kind)
}
