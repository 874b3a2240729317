package compiler

import (
	"fmt"

	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/resolver"
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// stackEntry is one entry of the type-stack the postfix evaluator threads
// alongside the instructions it emits. isFieldName marks an Identifier
// pushed as the right operand of a following '.' struct-field access rather
// than as a variable; isLiteral marks a pushed literal so '&' can reject it.
type stackEntry struct {
	typ         types.Datatype
	isFieldName bool
	fieldName   string
	isLiteral   bool
}

// genExprR evaluates span as an R-value (a value to consume), returning its
// type.
func (g *generator) genExprR(span ast.TokenSpan) types.Datatype {
	return g.genExprTokens(g.arena.Span(span), false)
}

// genExprL evaluates span as an L-value (an address to store through),
// returning the type stored at that address.
func (g *generator) genExprL(span ast.TokenSpan) types.Datatype {
	return g.genExprTokens(g.arena.Span(span), true)
}

func (g *generator) genExprTokens(toks []token.Token, isLHS bool) types.Datatype {
	nodes := g.toPostfix(stripComments(toks))
	return g.evalPostfix(nodes, isLHS)
}

// stripComments drops /* ... */ runs from a captured expression span. The
// parser's cursor skips comments as it walks, but a span is an index range
// over the original token sequence, so comment tokens inside an expression
// survive into the slice handed to the generator.
func stripComments(toks []token.Token) []token.Token {
	out := toks[:0:0]
	for i := 0; i < len(toks); i++ {
		if toks[i].Kind == token.SLASH && i+1 < len(toks) && toks[i+1].Kind == token.STAR {
			i += 2
			for i+1 < len(toks) && !(toks[i].Kind == token.STAR && toks[i+1].Kind == token.SLASH) {
				i++
			}
			i++ // the parser already rejected unterminated comments
			continue
		}
		out = append(out, toks[i])
	}
	return out
}

// evalPostfix is the postfix-to-bytecode evaluator: a single
// left-to-right pass over nodes that emits instructions directly (via
// g.emit, which may be redirected into a buffer by the caller, see
// withBuffer) while threading a type-stack for typechecking, field
// resolution and L-value/R-value decisions.
func (g *generator) evalPostfix(nodes []expNode, isLHS bool) types.Datatype {
	var stack []stackEntry
	push := func(e stackEntry) { stack = append(stack, e) }
	pop := func() stackEntry {
		if len(stack) == 0 {
			g.internalErrorf(0, "type-stack underflow")
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}
	lastIsDeref := len(nodes) > 0 && nodes[len(nodes)-1].kind == expOperator &&
		nodes[len(nodes)-1].tok.Kind == token.CARET

	for i, n := range nodes {
		nextIsAddr := i+1 < len(nodes) && nodes[i+1].kind == expOperator && nodes[i+1].tok.Kind == token.AMP

		switch n.kind {
		case expLiteral:
			switch n.tok.Kind {
			case token.INT:
				g.emit(fmt.Sprintf("ipush %s", n.tok.Spelling))
				push(stackEntry{typ: types.Datatype{Base: types.Int}, isLiteral: true})
			case token.FLOAT:
				g.emit(fmt.Sprintf("fpush %s", n.tok.Spelling))
				push(stackEntry{typ: types.Datatype{Base: types.Float}, isLiteral: true})
			case token.STRING:
				// pass1 already rewrote the spelling to __STR__<k>.
				g.emit(fmt.Sprintf("ipush %s", n.tok.Spelling))
				push(stackEntry{typ: types.Datatype{Base: types.Byte, PtrLevel: 1}, isLiteral: true})
			}

		case expIdentifier:
			if i+1 < len(nodes) && nodes[i+1].kind == expOperator && nodes[i+1].tok.Kind == token.DOT {
				// The right operand of '.' is always the postfix node just
				// before it, and it names a field, never a variable, even
				// when it shadows one. The '.' pops it and checks it against
				// the struct on the stack.
				push(stackEntry{isFieldName: true, fieldName: n.tok.Spelling})
				continue
			}
			decl, scope := resolver.Lookup(g.arena, g.curBlock, g.curFunc, n.tok.Spelling)
			if scope == resolver.Undefined {
				g.resolveErrorf(n.tok.Line, "undeclared identifier %q", n.tok.Spelling)
			}
			isFinal := i == len(nodes)-1
			g.emitIdentLoad(decl, scope, isLHS, nextIsAddr, lastIsDeref, isFinal)
			push(stackEntry{typ: decl.Type})

		case expFuncCall:
			push(stackEntry{typ: g.evalFuncCall(n)})

		case expOperator:
			switch n.tok.Kind {
			case token.DOT:
				child := pop()
				parent := pop()
				if !child.isFieldName || !parent.typ.IsStruct() {
					g.typeErrorf(n.tok.Line, "'.' requires a struct value on the left and a field name on the right")
				}
				sd, ok := g.structs.Lookup(parent.typ.StructName)
				if !ok || !sd.Complete {
					g.typeErrorf(n.tok.Line, "incomplete type %q", parent.typ.StructName)
				}
				fld := sd.Field(child.fieldName)
				if fld == nil {
					g.resolveErrorf(n.tok.Line, "struct %q has no field %q", parent.typ.StructName, child.fieldName)
				}
				g.emit(fmt.Sprintf("icinc %d", fld.Slot*8))
				if !fld.Type.IsStruct() && !isLHS && !nextIsAddr {
					g.emitDeref(fld.Type)
				}
				push(stackEntry{typ: fld.Type})

			case token.AMP:
				operand := pop()
				if operand.isLiteral {
					g.typeErrorf(n.tok.Line, "cannot take the address of a literal")
				}
				push(stackEntry{typ: operand.typ.Pointer()})

			case token.CARET:
				operand := pop()
				if !operand.typ.IsPointer() {
					g.typeErrorf(n.tok.Line, "cannot dereference non-pointer type %s", operand.typ)
				}
				newType := operand.typ.Deref()
				isFinal := i == len(nodes)-1
				switch {
				case isLHS && isFinal:
					// address already on the stack; nothing further to emit.
				case newType.IsStruct() && isLHS:
					g.emit("ider")
					g.emit("ider")
				default:
					g.emitDeref(newType)
				}
				push(stackEntry{typ: newType})

			case token.BANG:
				pop()
				g.emit("lnot")
				push(stackEntry{typ: types.Datatype{Base: types.Int}})

			default:
				b := pop()
				a := pop()
				result := g.applyBinaryOp(n.tok.Line, n.tok.Kind, a.typ, b.typ)
				push(stackEntry{typ: result})
			}
		}
	}

	if len(stack) != 1 {
		g.internalErrorf(0, "expression did not reduce to exactly one value")
	}
	return stack[0].typ
}

// emitDeref emits the base-appropriate dereference instruction for a value
// of type t that has just had its address on top of the VM stack.
func (g *generator) emitDeref(t types.Datatype) {
	switch t.Base {
	case types.Byte:
		g.emit("cder")
	case types.Float:
		g.emit("fder")
	default:
		g.emit("ider")
	}
}

// emitIdentLoad implements the per-base Identifier materialization rules:
// a struct-typed local (by value or by pointer) yields its handle/pointer
// value (ilload) when it is just an intermediate in a longer '.' chain, but
// its own address (lea) when the identifier itself is the assignment
// target or the operand of '&'; everything else takes the address when
// it's an L-value target (or when & follows) and loads otherwise.
func (g *generator) emitIdentLoad(decl *types.Decl, scope resolver.Scope, isLHS, nextIsAddr, lastIsDeref bool, isFinal bool) {
	slot := decl.Slot
	loadOp, leaOp := "ilload", "lea"
	if scope == resolver.Global {
		loadOp, leaOp = "gload", "glea"
	}
	t := decl.Type

	if t.IsStruct() || t.IsStructPointer() {
		switch {
		case nextIsAddr:
			g.emit(fmt.Sprintf("%s %d", leaOp, slot))
		case isLHS && isFinal:
			g.emit(fmt.Sprintf("%s %d", leaOp, slot))
		default:
			g.emit(fmt.Sprintf("%s %d", loadOp, slot))
		}
		return
	}

	if nextIsAddr && t.PtrLevel == 0 {
		g.emit(fmt.Sprintf("%s %d", leaOp, slot))
		return
	}

	switch t.Base {
	case types.Float:
		floadOp := "flload"
		if scope == resolver.Global {
			floadOp = "gfload"
		}
		if isLHS && t.PtrLevel == 0 && !lastIsDeref {
			g.emit(fmt.Sprintf("%s %d", leaOp, slot))
		} else {
			g.emit(fmt.Sprintf("%s %d", floadOp, slot))
		}
	case types.Byte:
		if isLHS {
			g.emit(fmt.Sprintf("%s %d", leaOp, slot))
		} else {
			g.emit(fmt.Sprintf("%s %d", loadOp, slot))
		}
	default:
		if isLHS && t.PtrLevel == 0 && !lastIsDeref {
			g.emit(fmt.Sprintf("%s %d", leaOp, slot))
		} else {
			g.emit(fmt.Sprintf("%s %d", loadOp, slot))
		}
	}
}

// evalFuncCall generates a call expression, plus the sizeof intrinsic:
// argument lists are split on top-level commas (the faithful, typecheckable
// rendition of "argument count determined by counting resulting stack
// entries"), each evaluated as an R-value, coerced against
// the callee's declared parameter types, and the call emitted as call/ccall
// per whether the callee is foreign.
func (g *generator) evalFuncCall(n expNode) types.Datatype {
	if n.isSizeof {
		// sizeof(Type) is a compile-time constant, in bytes (8 per slot).
		// When the argument doesn't parse as a datatype, fall through to an
		// ordinary call in case a function named sizeof is declared.
		if dt, err := parseDatatypeTokens(n.rawArgs, g.structs); err == nil {
			size := types.SlotSize(dt, g.structs) * 8
			g.emit(fmt.Sprintf("ipush %d", size))
			return types.Datatype{Base: types.Int}
		}
	}

	fn, ok := g.funcs.Lookup(n.calleeName)
	if !ok {
		g.resolveErrorf(n.tok.Line, "call to undeclared function %q", n.calleeName)
	}

	argSpans := splitTopLevelCommas(n.rawArgs)
	argTypes := make([]types.Datatype, 0, len(argSpans))
	for _, sp := range argSpans {
		argTypes = append(argTypes, g.genExprTokens(sp, false))
	}

	if fn.IsVariadic {
		if uint(len(argTypes)) < fn.Nargs {
			g.typeErrorf(n.tok.Line, "%s expects at least %d arguments, got %d", fn.Name, fn.Nargs, len(argTypes))
		}
	} else if uint(len(argTypes)) != fn.Nargs {
		g.typeErrorf(n.tok.Line, "%s expects %d arguments, got %d", fn.Name, fn.Nargs, len(argTypes))
	}

	for idx, at := range argTypes {
		if idx >= len(fn.Args) {
			break // extra variadic arguments are passed through unchecked.
		}
		pt := fn.Args[idx].Type
		k := len(argTypes) - 1 - idx
		switch {
		case pt.Base == types.Int && at.Base == types.Float && pt.PtrLevel == 0 && at.PtrLevel == 0:
			g.emit(fmt.Sprintf("ftoi %d", k))
		case pt.Base == types.Float && at.Base == types.Int && pt.PtrLevel == 0 && at.PtrLevel == 0:
			g.emit(fmt.Sprintf("itof %d", k))
		case !pt.Equal(at):
			g.typeErrorf(n.tok.Line, "%s argument %d: expected %s, got %s", fn.Name, idx+1, pt, at)
		}
	}

	opcode, label := "call", "__FUNC__"+fn.Name
	if fn.IsForeign {
		opcode, label = "ccall", "__CFUNC__"+fn.Name
	}
	g.emit(fmt.Sprintf("%s %s, %d", opcode, label, len(argTypes)))
	return fn.Return
}

// splitTopLevelCommas splits toks on COMMA tokens at paren depth 0. An empty
// toks yields no spans (a zero-argument call).
func splitTopLevelCommas(toks []token.Token) [][]token.Token {
	if len(toks) == 0 {
		return nil
	}
	var spans [][]token.Token
	depth := 0
	start := 0
	for i, t := range toks {
		switch t.Kind {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
		case token.COMMA:
			if depth == 0 {
				spans = append(spans, toks[start:i])
				start = i + 1
			}
		}
	}
	spans = append(spans, toks[start:])
	return spans
}

var primitiveBases = map[string]types.Base{
	"int":    types.Int,
	"byte":   types.Byte,
	"float":  types.Float,
	"string": types.String,
}

// parseDatatypeTokens parses a bare datatype out of a raw token slice (a
// sizeof(...) argument, which the parser captured as an ordinary expression
// span rather than a datatype), mirroring lang/parser's datatype grammar.
func parseDatatypeTokens(toks []token.Token, structs *types.StructRegistry) (types.Datatype, error) {
	i := 0
	var mod types.Modifier
	for i < len(toks) && token.IsModifier(toks[i].Kind) {
		switch toks[i].Kind {
		case token.CONST:
			mod |= types.Const
		case token.VOLATILE:
			mod |= types.Volatile
		case token.SIGNED:
			mod |= types.Signed
		case token.UNSIGNED:
			mod |= types.Unsigned
		case token.STATIC:
			mod |= types.Static
		}
		i++
	}
	if i >= len(toks) || toks[i].Kind != token.IDENT {
		return types.Datatype{}, fmt.Errorf("expected a type name")
	}
	name := toks[i].Spelling
	i++

	dt := types.Datatype{Modifiers: mod}
	if base, ok := primitiveBases[name]; ok {
		dt.Base = base
	} else if _, ok := structs.Lookup(name); ok {
		dt.Base = types.Struct
		dt.StructName = name
	} else {
		return types.Datatype{}, fmt.Errorf("unknown type %q", name)
	}

	for i < len(toks) && toks[i].Kind == token.CARET {
		dt.PtrLevel++
		i++
	}
	if i != len(toks) {
		return types.Datatype{}, fmt.Errorf("unexpected tokens after type name")
	}
	return dt, nil
}
