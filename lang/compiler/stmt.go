package compiler

import (
	"fmt"

	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// genBlock walks block's children in source order, carrying the if/elif/else
// chain label across iterations so a Reg-if's trailing elif/else siblings
// can share it.
func (g *generator) genBlock(block ast.BlockID, depth int) {
	prevBlock := g.curBlock
	g.curBlock = block
	defer func() { g.curBlock = prevBlock }()

	children := g.arena.Block(block).Children
	var chainLabel string
	var chainUsed bool
	for i, id := range children {
		n := g.arena.Node(id)
		if n.Kind == ast.If {
			chainLabel, chainUsed = g.genIfLike(n, children, i, depth, chainLabel, chainUsed)
			continue
		}
		chainUsed = false
		g.genNode(id, n, depth)
	}
}

func (g *generator) genNode(id ast.NodeID, n *ast.Node, depth int) {
	switch n.Kind {
	case ast.While:
		g.genWhile(n, depth)
	case ast.For:
		g.genFor(n, depth)
	case ast.Return:
		g.genReturn(n)
	case ast.Continue:
		g.emit(fmt.Sprintf("jmp __LABEL__%s", g.curLoop().top))
	case ast.Break:
		g.emit(fmt.Sprintf("jmp __LABEL__%s", g.curLoop().bot))
	case ast.Assign:
		g.genAssign(n)
	case ast.Statement:
		g.genExprR(n.Expr)
	}
}

func (g *generator) curLoop() loopLabels {
	if len(g.loops) == 0 {
		g.internalErrorf(0, "continue/break outside a loop")
	}
	return g.loops[len(g.loops)-1]
}

// genIfLike emits one element of an if/elif/else chain and returns the
// chain label (and whether it was actually referenced) for the next
// sibling to reuse if it's a continuation of the same chain.
func (g *generator) genIfLike(n *ast.Node, siblings []ast.NodeID, i, depth int, chainLabel string, chainUsed bool) (string, bool) {
	hasContinuation := i+1 < len(siblings) && isIfContinuation(g.arena.Node(siblings[i+1]))

	switch n.IfVariant {
	case ast.IfReg, ast.IfElif:
		if n.IfVariant == ast.IfReg {
			chainLabel = g.newLabel()
			chainUsed = false
		}
		branch := g.newLabel()
		g.genExprR(n.Cond)
		g.emit(fmt.Sprintf("jz __LABEL__%s", branch))

		if hasContinuation {
			chainUsed = true
			g.deferred.push(depth+1, fmt.Sprintf("jmp __LABEL__%s", chainLabel))
			g.deferred.push(depth+1, fmt.Sprintf("__LABEL__%s:", branch))
		} else {
			g.deferred.push(depth+1, fmt.Sprintf("__LABEL__%s:", branch))
			if chainUsed {
				g.deferred.push(depth+1, fmt.Sprintf("__LABEL__%s:", chainLabel))
			}
		}

	case ast.IfElse:
		g.deferred.push(depth+1, fmt.Sprintf("__LABEL__%s:", chainLabel))
	}

	g.genBlock(n.Body, depth+1)
	for _, l := range g.deferred.pop(depth + 1) {
		g.emit(l)
	}
	return chainLabel, chainUsed
}

func isIfContinuation(n *ast.Node) bool {
	return n.Kind == ast.If && (n.IfVariant == ast.IfElif || n.IfVariant == ast.IfElse)
}

func (g *generator) genWhile(n *ast.Node, depth int) {
	top := g.newLabel()
	bot := g.newLabel()
	g.loops = append(g.loops, loopLabels{top: top, bot: bot})
	defer func() { g.loops = g.loops[:len(g.loops)-1] }()

	g.emit(fmt.Sprintf("__LABEL__%s:", top))
	g.genExprR(n.Cond)
	g.emit(fmt.Sprintf("jz __LABEL__%s", bot))

	g.deferred.push(depth+1, fmt.Sprintf("jmp __LABEL__%s", top))
	g.deferred.push(depth+1, fmt.Sprintf("__LABEL__%s:", bot))

	g.genBlock(n.Body, depth+1)
	for _, l := range g.deferred.pop(depth + 1) {
		g.emit(l)
	}
}

func (g *generator) genFor(n *ast.Node, depth int) {
	if n.ForInit != ast.NoNode {
		g.genInitOrPost(n.ForInit)
	}

	top := g.newLabel()
	bot := g.newLabel()
	g.loops = append(g.loops, loopLabels{top: top, bot: bot})
	defer func() { g.loops = g.loops[:len(g.loops)-1] }()

	g.emit(fmt.Sprintf("__LABEL__%s:", top))
	g.genExprR(n.Cond)
	g.emit(fmt.Sprintf("jz __LABEL__%s", bot))

	if n.ForPost != ast.NoNode {
		lines := g.withBuffer(func() { g.genInitOrPost(n.ForPost) })
		for _, l := range lines {
			g.deferred.push(depth+1, l)
		}
	}
	g.deferred.push(depth+1, fmt.Sprintf("jmp __LABEL__%s", top))
	g.deferred.push(depth+1, fmt.Sprintf("__LABEL__%s:", bot))

	g.genBlock(n.Body, depth+1)
	for _, l := range g.deferred.pop(depth + 1) {
		g.emit(l)
	}
}

func (g *generator) genInitOrPost(id ast.NodeID) {
	n := g.arena.Node(id)
	switch n.Kind {
	case ast.Assign:
		g.genAssign(n)
	case ast.Statement:
		g.genExprR(n.Expr)
	}
}

func (g *generator) genReturn(n *ast.Node) {
	t := g.genExprR(n.Expr)
	ret := g.curFunc.Return
	switch {
	case ret.Base == types.Int && t.Base == types.Float && ret.PtrLevel == 0 && t.PtrLevel == 0:
		g.emit("ftoi 0")
	case ret.Base == types.Float && t.Base == types.Int && ret.PtrLevel == 0 && t.PtrLevel == 0:
		g.emit("itof 0")
	case !ret.Equal(t):
		g.typeErrorf(n.Line, "function %s returns %s, got %s", g.curFunc.Name, ret, t)
	}
	g.emit(fmt.Sprintf("jmp __LABEL__%s", g.curRetLabel))
}

func (g *generator) genAssign(n *ast.Node) {
	if n.AssignOp != token.ASSIGN {
		g.genCompoundAssign(n)
		return
	}
	lt := g.genExprL(n.Lhs)
	rt := g.genExprR(n.Rhs)
	lt = g.coerceAssign(n.Line, lt, rt)
	g.emitSave(lt)
}

// genCompoundAssign desugars "lhs OP= rhs" to "lhs = lhs OP rhs": the
// address is pushed once, then lhs's own value, then rhs's value, then the
// binary op, then the store, exactly the instruction shape a plain
// assignment produces.
func (g *generator) genCompoundAssign(n *ast.Node) {
	binOp := binaryOpFor(n.AssignOp)
	if binOp == token.ILLEGAL {
		g.typeErrorf(n.Line, "operator %s has no expression form to desugar to", n.AssignOp)
	}
	lt := g.genExprL(n.Lhs)
	at := g.genExprR(n.Lhs)
	bt := g.genExprR(n.Rhs)
	result := g.applyBinaryOp(n.Line, binOp, at, bt)
	result = g.coerceAssign(n.Line, lt, result)
	g.emitSave(result)
}

func (g *generator) emitSave(t types.Datatype) {
	if t.Base == types.Float && t.PtrLevel == 0 {
		g.emit("fsave")
		return
	}
	g.emit("isave")
}

// coerceAssign implements the assignment coercion rule: Int<-Float and
// Float<-Int convert in place, anything else must already be Equal.
func (g *generator) coerceAssign(line uint, lt, rt types.Datatype) types.Datatype {
	switch {
	case lt.Base == types.Int && rt.Base == types.Float && lt.PtrLevel == 0 && rt.PtrLevel == 0:
		g.emit("ftoi 0")
		return lt
	case lt.Base == types.Float && rt.Base == types.Int && lt.PtrLevel == 0 && rt.PtrLevel == 0:
		g.emit("itof 0")
		return lt
	case !lt.Equal(rt):
		g.typeErrorf(line, "cannot assign %s to %s", rt, lt)
	}
	return rt
}

func binaryOpFor(k token.Kind) token.Kind {
	switch k {
	case token.PLUS_EQ:
		return token.PLUS
	case token.MINUS_EQ:
		return token.MINUS
	case token.STAR_EQ:
		return token.STAR
	case token.SLASH_EQ:
		return token.SLASH
	case token.PERCENT_EQ:
		return token.PERCENT
	case token.AMP_EQ:
		return token.AMP
	case token.PIPE_EQ:
		return token.PIPE
	case token.CARET_EQ:
		return token.CARET
	case token.LTLT_EQ:
		return token.LTLT
	case token.GTGT_EQ:
		return token.GTGT
	default:
		return token.ILLEGAL
	}
}
