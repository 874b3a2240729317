package parser

import (
	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// parseBlock implements the "{ ... }" production shared by if/elif/else,
// while, for and function bodies: descend on '{', parse statements until
// '}', then ascend.
func (p *parser) parseBlock(owner ast.NodeID, fn *types.Function) ast.BlockID {
	p.expect(token.LBRACE)
	block := p.arena.NewBlock(owner)
	for p.cur().Kind != token.RBRACE {
		if p.cur().Kind == token.EOF {
			p.fatal(p.cur().Line, "unexpected end of file, expected '}'")
		}
		p.parseStatement(block, fn)
	}
	p.expect(token.RBRACE)
	return block
}

func (p *parser) parseStatement(block ast.BlockID, fn *types.Function) {
	line := p.cur().Line

	switch p.cur().Kind {
	case token.IF:
		p.advance()
		p.parseIfLike(block, fn, ast.IfReg)
		return
	case token.ELIF:
		p.fatal(line, "elif without a preceding if")
	case token.ELSE:
		p.fatal(line, "else without a preceding if")
	case token.WHILE:
		p.advance()
		p.parseWhile(block, fn)
		return
	case token.FOR:
		p.advance()
		p.parseFor(block, fn)
		return
	case token.RETURN:
		p.advance()
		expr := p.captureExpr(token.SEMI)
		p.expect(token.SEMI)
		node := p.arena.NewNode(ast.Node{Kind: ast.Return, Line: line, ParentBlock: block, Expr: expr})
		p.arena.AddChild(block, node)
		return
	case token.CONTINUE:
		p.advance()
		p.expect(token.SEMI)
		node := p.arena.NewNode(ast.Node{Kind: ast.Continue, Line: line, ParentBlock: block})
		p.arena.AddChild(block, node)
		return
	case token.BREAK:
		p.advance()
		p.expect(token.SEMI)
		node := p.arena.NewNode(ast.Node{Kind: ast.Break, Line: line, ParentBlock: block})
		p.arena.AddChild(block, node)
		return
	case token.DO, token.SWITCH, token.CASE:
		p.fatal(line, "%s is reserved but not implemented", p.cur().Kind)
	}

	if p.cur().Kind == token.IDENT && p.peekAt(1).Kind == token.COLON {
		p.parseLocalDecl(block, fn)
		return
	}

	p.parseExprStatement(block, fn)
}

// parseLocalDecl registers a local declaration: append
// to the block's locals, bump the owning function's reserve_slots by the
// decl's slot size (plus one extra slot for a by-value struct's handle),
// and assign slot as the function's pre-increment reserve_slots.
func (p *parser) parseLocalDecl(block ast.BlockID, fn *types.Function) {
	nameTok := p.expect(token.IDENT)
	p.expect(token.COLON)
	dt, err := p.parseDatatype()
	if err != nil {
		p.fatal(nameTok.Line, "%s", err)
	}
	p.expect(token.SEMI)

	slot := fn.ReserveSlots
	decl := &types.Decl{Name: nameTok.Spelling, Type: dt, Slot: slot}
	size := decl.Size(p.structs)
	fn.ReserveSlots += size
	if dt.IsStruct() {
		// The variable's own slot holds a pointer to the struct body that
		// immediately follows it, so one extra handle slot is reserved.
		fn.ReserveSlots++
	}
	p.arena.AddLocal(block, decl)
}

// assignKinds is ASSIGN plus every compound-assign operator: all of them
// terminate a statement's lhs capture and record which operator
// the generator desugars against "lhs OP rhs".
var assignKinds = []token.Kind{
	token.ASSIGN,
	token.PLUS_EQ, token.MINUS_EQ, token.STAR_EQ, token.SLASH_EQ, token.PERCENT_EQ,
	token.AMP_EQ, token.PIPE_EQ, token.CARET_EQ, token.LTLT_EQ, token.GTGT_EQ,
}

func isAssignKind(k token.Kind) bool {
	for _, ak := range assignKinds {
		if ak == k {
			return true
		}
	}
	return false
}

func (p *parser) parseExprStatement(block ast.BlockID, fn *types.Function) {
	line := p.cur().Line
	stops := append([]token.Kind{token.SEMI}, assignKinds...)
	lhs := p.captureExpr(stops...)
	if isAssignKind(p.cur().Kind) {
		op := p.cur().Kind
		p.advance()
		rhs := p.captureExpr(token.SEMI)
		p.expect(token.SEMI)
		node := p.arena.NewNode(ast.Node{Kind: ast.Assign, Line: line, ParentBlock: block, Lhs: lhs, Rhs: rhs, AssignOp: op})
		p.arena.AddChild(block, node)
		return
	}
	p.expect(token.SEMI)
	node := p.arena.NewNode(ast.Node{Kind: ast.Statement, Line: line, ParentBlock: block, Expr: lhs})
	p.arena.AddChild(block, node)
}

func (p *parser) parseIfLike(block ast.BlockID, fn *types.Function, variant ast.IfVariant) {
	line := p.cur().Line
	var cond ast.TokenSpan
	if variant != ast.IfElse {
		cond = p.captureExpr(token.LBRACE)
	}
	node := p.arena.NewNode(ast.Node{Kind: ast.If, Line: line, ParentBlock: block, IfVariant: variant, Cond: cond})
	body := p.parseBlock(node, fn)
	p.arena.Node(node).Body = body
	p.arena.AddChild(block, node)

	switch p.cur().Kind {
	case token.ELIF:
		p.advance()
		p.parseIfLike(block, fn, ast.IfElif)
	case token.ELSE:
		p.advance()
		p.parseIfLike(block, fn, ast.IfElse)
	}
}

func (p *parser) parseWhile(block ast.BlockID, fn *types.Function) {
	line := p.cur().Line
	cond := p.captureExpr(token.LBRACE)
	node := p.arena.NewNode(ast.Node{Kind: ast.While, Line: line, ParentBlock: block, Cond: cond})
	body := p.parseBlock(node, fn)
	p.arena.Node(node).Body = body
	p.arena.AddChild(block, node)
}

func (p *parser) parseFor(block ast.BlockID, fn *types.Function) {
	line := p.cur().Line
	node := p.arena.NewNode(ast.Node{Kind: ast.For, Line: line, ParentBlock: block, ForInit: ast.NoNode, ForPost: ast.NoNode})

	// init; part. A declaration in for-init position is a parse error;
	// plain expr-statements become a standalone Assign or Statement node
	// parsed the same way as any body statement, recorded on the node
	// itself rather than the body's Children.
	if p.cur().Kind == token.IDENT && p.peekAt(1).Kind == token.COLON {
		p.fatal(line, "for-loop init may not declare a new local; assign an existing variable")
	}
	initLine := p.cur().Line
	if p.cur().Kind != token.SEMI {
		lhs := p.captureExpr(append([]token.Kind{token.SEMI}, assignKinds...)...)
		if isAssignKind(p.cur().Kind) {
			op := p.cur().Kind
			p.advance()
			rhs := p.captureExpr(token.SEMI)
			initNode := p.arena.NewNode(ast.Node{Kind: ast.Assign, Line: initLine, ParentBlock: block, Lhs: lhs, Rhs: rhs, AssignOp: op})
			p.arena.Node(node).ForInit = initNode
		} else {
			initNode := p.arena.NewNode(ast.Node{Kind: ast.Statement, Line: initLine, ParentBlock: block, Expr: lhs})
			p.arena.Node(node).ForInit = initNode
		}
	}
	p.expect(token.SEMI)

	cond := p.captureExpr(token.SEMI)
	p.arena.Node(node).Cond = cond
	p.expect(token.SEMI)

	postLine := p.cur().Line
	if p.cur().Kind != token.LBRACE {
		lhs := p.captureExpr(append([]token.Kind{token.LBRACE}, assignKinds...)...)
		if isAssignKind(p.cur().Kind) {
			op := p.cur().Kind
			p.advance()
			rhs := p.captureExpr(token.LBRACE)
			postNode := p.arena.NewNode(ast.Node{Kind: ast.Assign, Line: postLine, ParentBlock: block, Lhs: lhs, Rhs: rhs, AssignOp: op})
			p.arena.Node(node).ForPost = postNode
		} else {
			postNode := p.arena.NewNode(ast.Node{Kind: ast.Statement, Line: postLine, ParentBlock: block, Expr: lhs})
			p.arena.Node(node).ForPost = postNode
		}
	}

	body := p.parseBlock(node, fn)
	p.arena.Node(node).Body = body
	p.arena.AddChild(block, node)
}
