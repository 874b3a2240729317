package parser

import (
	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// parseTopLevelForm recognizes the four top-level productions: struct
// forward-decl, struct def, function def, cfunc decl, plus a file-scope
// global declaration.
func (p *parser) parseTopLevelForm() {
	nameTok := p.expect(token.IDENT)
	p.expect(token.COLON)

	switch p.cur().Kind {
	case token.STRUCT:
		p.advance()
		p.parseStructForm(nameTok)
	case token.CFUNC:
		p.advance()
		p.parseFunctionForm(nameTok, true)
	case token.LPAREN:
		p.parseFunctionForm(nameTok, false)
	default:
		// Name : type ; is a file-scope global declaration.
		p.parseGlobalForm(nameTok)
	}
}

func (p *parser) parseStructForm(nameTok token.Token) {
	if p.cur().Kind == token.SEMI {
		p.advance()
		if _, err := p.structs.Declare(nameTok.Spelling); err != nil {
			p.fatal(nameTok.Line, "%s", err)
		}
		return
	}

	p.expect(token.LBRACE)
	var fields []*types.Decl
	var size uint
	for p.cur().Kind != token.RBRACE {
		fieldName := p.expect(token.IDENT)
		p.expect(token.COLON)
		dt, err := p.parseDatatype()
		if err != nil {
			p.fatal(fieldName.Line, "%s", err)
		}
		if dt.Base == types.Struct && dt.StructName == nameTok.Spelling && dt.PtrLevel == 0 {
			p.fatal(fieldName.Line, "struct %q cannot contain itself by value", nameTok.Spelling)
		}
		p.expect(token.SEMI)

		fieldSize := types.SlotSize(dt, p.structs)
		fields = append(fields, &types.Decl{Name: fieldName.Spelling, Type: dt, Slot: size})
		size += fieldSize
	}
	p.expect(token.RBRACE)

	if _, err := p.structs.Define(nameTok.Spelling, fields, size); err != nil {
		p.fatal(nameTok.Line, "%s", err)
	}
}

func (p *parser) parseGlobalForm(nameTok token.Token) {
	dt, err := p.parseDatatype()
	if err != nil {
		p.fatal(nameTok.Line, "%s", err)
	}
	p.expect(token.SEMI)

	// Globals are addressed by a dense slot index accumulated the same way
	// function locals accumulate reserve_slots, including the extra handle
	// slot a by-value struct's body sits behind.
	var total uint
	for _, d := range p.arena.Block(p.arena.RootBlock).Locals {
		total += d.Size(p.structs)
		if d.Type.IsStruct() {
			total++
		}
	}
	decl := &types.Decl{Name: nameTok.Spelling, Type: dt, Slot: total}
	p.arena.AddLocal(p.arena.RootBlock, decl)
}

func (p *parser) parseFunctionForm(nameTok token.Token, foreign bool) {
	p.expect(token.LPAREN)

	var args []*types.Decl
	variadic := false
	for p.cur().Kind != token.RPAREN {
		if len(args) > 0 {
			p.expect(token.COMMA)
		}
		if p.cur().Kind == token.ELLIPSIS {
			p.advance()
			if !foreign {
				p.fatal(nameTok.Line, "only cfunc declarations may be variadic")
			}
			variadic = true
			break
		}
		argName := p.expect(token.IDENT)
		p.expect(token.COLON)
		dt, err := p.parseDatatype()
		if err != nil {
			p.fatal(argName.Line, "%s", err)
		}
		args = append(args, &types.Decl{Name: argName.Spelling, Type: dt, Slot: uint(len(args))})
	}
	p.expect(token.RPAREN)
	p.expect(token.ARROW)
	retType, err := p.parseDatatype()
	if err != nil {
		p.fatal(nameTok.Line, "%s", err)
	}

	fn := &types.Function{
		Name:       nameTok.Spelling,
		Args:       args,
		Return:     retType,
		IsForeign:  foreign,
		IsVariadic: variadic,
		Nargs:      uint(len(args)),
	}

	fnNode := p.arena.NewNode(ast.Node{
		Kind:        ast.FunctionDef,
		Line:        nameTok.Line,
		ParentBlock: p.arena.RootBlock,
		Func:        fn,
	})

	if foreign {
		p.expect(token.SEMI)
		if err := p.funcs.Declare(fn); err != nil {
			p.fatal(nameTok.Line, "%s", err)
		}
		p.arena.AddChild(p.arena.RootBlock, fnNode)
		return
	}

	fn.ReserveSlots = fn.Nargs
	if err := p.funcs.Declare(fn); err != nil {
		p.fatal(nameTok.Line, "%s", err)
	}

	body := p.parseBlock(fnNode, fn)
	p.arena.Node(fnNode).Body = body
	fn.Body = body
	p.arena.AddChild(p.arena.RootBlock, fnNode)
}
