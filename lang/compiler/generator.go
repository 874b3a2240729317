// Package compiler implements the Spyre code generator. It walks the AST
// a successful lang/parser.Parse produced and emits a textual
// stack-machine listing: not a binary artifact, a human-readable
// instruction stream meant to be fed to a separate assembler/VM outside
// this module's scope.
package compiler

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/parser"
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// generator carries every piece of state the two generation passes share.
type generator struct {
	arena   *ast.Arena
	structs *types.StructRegistry
	funcs   *types.FunctionRegistry

	out      *bufio.Writer
	sink     func(string)
	deferred *deferredStack

	labelN int
	strN   int

	curFunc     *types.Function
	curRetLabel string
	curBlock    ast.BlockID
	loops       []loopLabels
}

type loopLabels struct {
	top, bot string
}

// Generate runs both generation passes over res and writes the resulting
// listing to w. It is the sole entry point internal/maincmd (and any future
// caller) needs.
func Generate(res *parser.Result, w io.Writer) error {
	g := &generator{
		arena:    res.Arena,
		structs:  res.Structs,
		funcs:    res.Funcs,
		out:      bufio.NewWriter(w),
		deferred: newDeferredStack(),
		curBlock: res.Arena.RootBlock,
	}
	g.sink = g.write

	var genErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				if ce, ok := r.(*Error); ok {
					genErr = ce
					return
				}
				panic(r)
			}
		}()
		g.pass1()
		g.pass2()
	}()
	if genErr != nil {
		return genErr
	}
	return g.out.Flush()
}

func (g *generator) write(line string) {
	g.out.WriteString(line)
	g.out.WriteByte('\n')
}

// emit routes a finished instruction/label line through whichever sink is
// currently active: direct output, or a buffer being collected to push
// onto the deferred stack (see withBuffer).
func (g *generator) emit(line string) {
	g.sink(line)
}

// withBuffer redirects emit into an in-memory slice for the duration of fn,
// implementing the "for" loop's post-statement redirection: its
// instructions are generated normally but captured rather than written, so
// the caller can push them onto the deferred stack ahead of the back-jump.
func (g *generator) withBuffer(fn func()) []string {
	var buf []string
	prev := g.sink
	g.sink = func(s string) { buf = append(buf, s) }
	fn()
	g.sink = prev
	return buf
}

func (g *generator) newLabel() string {
	n := g.labelN
	g.labelN++
	return fmt.Sprintf("%d", n)
}

// pass1 is the first advance-walk over the program: register every cfunc
// declaration's literal table entry, then rewrite every embedded string
// literal token in place to a __STR__<k> reference and emit its literal
// table entry, in source order.
func (g *generator) pass1() {
	for _, id := range g.arena.Block(g.arena.RootBlock).Children {
		n := g.arena.Node(id)
		if n.Kind == ast.FunctionDef && n.Func.IsForeign {
			g.emit(fmt.Sprintf("let __CFUNC__%s \"%s\"", n.Func.Name, n.Func.Name))
		}
	}

	ast.Walk(g.arena, func(id ast.NodeID, depth int) {
		n := g.arena.Node(id)
		switch n.Kind {
		case ast.If, ast.While:
			g.rewriteStrings(n.Cond)
		case ast.For:
			g.rewriteStrings(n.Cond)
			if n.ForInit != ast.NoNode {
				g.rewriteStringsInNode(n.ForInit)
			}
			if n.ForPost != ast.NoNode {
				g.rewriteStringsInNode(n.ForPost)
			}
		case ast.Assign:
			g.rewriteStrings(n.Lhs)
			g.rewriteStrings(n.Rhs)
		case ast.Statement, ast.Return:
			g.rewriteStrings(n.Expr)
		}
	}, func(ast.NodeID, ast.BlockID, int) {})
}

func (g *generator) rewriteStringsInNode(id ast.NodeID) {
	n := g.arena.Node(id)
	switch n.Kind {
	case ast.Assign:
		g.rewriteStrings(n.Lhs)
		g.rewriteStrings(n.Rhs)
	case ast.Statement:
		g.rewriteStrings(n.Expr)
	}
}

func (g *generator) rewriteStrings(span ast.TokenSpan) {
	for i := span.Start; i < span.End; i++ {
		tok := &g.arena.Tokens[i]
		if tok.Kind == token.SLASH && i+1 < span.End && g.arena.Tokens[i+1].Kind == token.STAR {
			// a commented-out string literal is not part of the program.
			i += 2
			for i+1 < span.End && !(g.arena.Tokens[i].Kind == token.STAR && g.arena.Tokens[i+1].Kind == token.SLASH) {
				i++
			}
			i++
			continue
		}
		if tok.Kind == token.STRING {
			k := g.strN
			g.strN++
			g.emit(fmt.Sprintf("let __STR__%d \"%s\"", k, tok.Spelling))
			tok.Spelling = fmt.Sprintf("__STR__%d", k)
		}
	}
}

// pass2 is the second advance-walk over the program: reserve file-scope
// globals, emit the entry jump, generate every non-foreign function body,
// then the entry point itself.
func (g *generator) pass2() {
	if n := g.globalSlots(); n > 0 {
		g.emit(fmt.Sprintf("res_global %d", n))
		g.emitGlobalStructInit()
	}
	g.emit("jmp __ENTRY_POINT__")

	for _, id := range g.arena.Block(g.arena.RootBlock).Children {
		n := g.arena.Node(id)
		if n.Kind == ast.FunctionDef {
			g.genFunction(id, n, 0)
		}
	}

	if _, ok := g.funcs.Lookup("main"); !ok {
		g.resolveErrorf(0, "program has no main function")
	}
	g.emit("__ENTRY_POINT__:")
	g.emit("call __FUNC__main, 0")
}

func (g *generator) globalSlots() uint {
	var total uint
	for _, d := range g.arena.Block(g.arena.RootBlock).Locals {
		total += d.Size(g.structs)
		if d.Type.IsStruct() {
			// one extra handle slot in front of the struct body.
			total++
		}
	}
	return total
}

// emitGlobalStructInit runs the struct-handle initialization for every
// by-value struct declared at file scope, the same way genFunction does for
// a function's locals, just against gsave/glea instead of ilsave/lea.
func (g *generator) emitGlobalStructInit() {
	for _, d := range g.arena.Block(g.arena.RootBlock).Locals {
		if d.Type.IsStruct() {
			g.emit(fmt.Sprintf("glea %d", d.Slot+1))
			g.emit(fmt.Sprintf("gsave %d", d.Slot))
		}
	}
}

// genFunction emits a function's prologue, struct-handle initialization,
// body, and (via the deferred stack) its shared return label and epilogue.
func (g *generator) genFunction(id ast.NodeID, n *ast.Node, depth int) {
	fn := n.Func
	if fn.IsForeign {
		return
	}

	g.curFunc = fn
	ret := g.newLabel()
	g.curRetLabel = ret

	g.emit(fmt.Sprintf("__FUNC__%s:", fn.Name))
	g.emit(fmt.Sprintf("res %d", fn.ReserveSlots))
	for i := range fn.Args {
		g.emit(fmt.Sprintf("iarg %d", i))
		g.emit(fmt.Sprintf("ilsave %d", i))
	}
	g.emitLocalStructInit(n.Body)

	g.deferred.push(depth+1, fmt.Sprintf("__LABEL__%s:", ret))
	g.deferred.push(depth+1, "iret")

	g.genBlock(n.Body, depth+1)

	for _, l := range g.deferred.pop(depth + 1) {
		g.emit(l)
	}

	g.curFunc = nil
	g.curRetLabel = ""
}

// emitLocalStructInit initializes every by-value struct local reachable
// from body, including ones nested inside if/while/for blocks: the
// variable's own slot is set to point at the struct body region
// immediately following it.
func (g *generator) emitLocalStructInit(body ast.BlockID) {
	if body == ast.NoBlock {
		return
	}
	var walk func(b ast.BlockID)
	walk = func(b ast.BlockID) {
		for _, d := range g.arena.Block(b).Locals {
			if d.Type.IsStruct() {
				g.emit(fmt.Sprintf("lea %d", d.Slot+1))
				g.emit(fmt.Sprintf("ilsave %d", d.Slot))
			}
		}
		for _, childID := range g.arena.Block(b).Children {
			child := g.arena.Node(childID)
			if child.Body != ast.NoBlock {
				walk(child.Body)
			}
		}
	}
	walk(body)
}
