// Package parser implements the Spyre parser: a single
// forward pass over the token sequence that builds an AST in an
// ast.Arena, a struct table and a function table, with per-function
// local-variable slot layout computed as declarations are encountered.
package parser

import (
	"fmt"
	"go/scanner"
	gotoken "go/token"

	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// Result is everything the code generator needs: the AST arena plus the
// struct and function registries the parser populated while building it.
type Result struct {
	Arena   *ast.Arena
	Structs *types.StructRegistry
	Funcs   *types.FunctionRegistry
}

// Parse runs the parser to completion over toks (which must end with an
// EOF token, as scanner.Tokenize produces), or returns the first syntax
// error encountered: parsing halts fatally on the first error.
func Parse(toks []token.Token) (*Result, error) {
	p := &parser{
		toks:    toks,
		arena:   ast.NewArena(toks),
		structs: types.NewStructRegistry(),
		funcs:   types.NewFunctionRegistry(),
	}
	p.skipComments()
	if err := p.parseTopLevel(); err != nil {
		return nil, err
	}
	return &Result{Arena: p.arena, Structs: p.structs, Funcs: p.funcs}, nil
}

type parser struct {
	toks []token.Token
	pos  int

	arena   *ast.Arena
	structs *types.StructRegistry
	funcs   *types.FunctionRegistry
}

func (p *parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+n]
}

// advance consumes the current token, skips over any block comment that
// follows, and returns the new current token.
func (p *parser) advance() token.Token {
	if p.pos < len(p.toks) {
		p.pos++
	}
	p.skipComments()
	return p.cur()
}

// skipComments implements the parser-level recognition of
// `/* ... */` block comments: the lexer never special-cases them, so
// the parser filters runs of SLASH STAR ... STAR SLASH out of the token
// stream it otherwise walks token-by-token.
func (p *parser) skipComments() {
	for p.pos+1 < len(p.toks) && p.toks[p.pos].Kind == token.SLASH && p.toks[p.pos+1].Kind == token.STAR {
		startLine := p.toks[p.pos].Line
		p.pos += 2
		closed := false
		for p.pos+1 < len(p.toks) {
			if p.toks[p.pos].Kind == token.STAR && p.toks[p.pos+1].Kind == token.SLASH {
				p.pos += 2
				closed = true
				break
			}
			p.pos++
		}
		if !closed {
			// Consume to EOF so the caller's error is the last word; report
			// against the comment's opening line.
			p.pos = len(p.toks)
			p.fatal(startLine, "unterminated block comment")
		}
	}
}

// err is the first parse error, short-circuiting the whole pass: the
// compiler halts on the first error.
type parseFatal struct{ err error }

func (p *parser) fatal(line uint, format string, args ...any) {
	panic(parseFatal{err: newParseError(line, fmt.Sprintf(format, args...))})
}

func newParseError(line uint, msg string) error {
	var el scanner.ErrorList
	el.Add(gotoken.Position{Line: int(line)}, msg)
	return el.Err()
}

func (p *parser) expect(k token.Kind) token.Token {
	t := p.cur()
	if t.Kind != k {
		p.fatal(t.Line, "expected %s, got %s %q", k, t.Kind, t.Spelling)
	}
	p.advance()
	return t
}

// parseTopLevel drives the whole pass and recovers the panic-based fatal
// error into a normal Go error return: a structured result/error
// propagation that preserves the first-failure-fatal policy while removing
// process-wide exit from leaf routines: a recovered panic plays that role
// without threading an error return through every recursive-descent call.
func (p *parser) parseTopLevel() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if pf, ok := r.(parseFatal); ok {
				err = pf.err
				return
			}
			panic(r)
		}
	}()

	for p.cur().Kind != token.EOF {
		p.parseTopLevelForm()
	}
	return nil
}

func isReservedKind(k token.Kind) bool {
	switch k {
	case token.IF, token.ELIF, token.ELSE, token.WHILE, token.FOR, token.DO,
		token.FUNC, token.CFUNC, token.RETURN, token.SWITCH, token.CASE,
		token.BREAK, token.CONTINUE, token.STRUCT:
		return true
	default:
		return false
	}
}
