package parser

import (
	"github.com/spyre-lang/spyre/lang/ast"
	"github.com/spyre-lang/spyre/lang/token"
)

// captureExpr detaches a token sub-sequence running up to (but not
// including) one of stop kinds at parenthesis depth 0: sub-expressions are
// captured as detached token sub-sequences running up to a terminator,
// represented as a (start, end) index range rather than an actual spliced
// sub-list.
//
// Any reserved keyword or bare '{'/'}' encountered before the terminator
// (at depth 0) is a parse error: "did you forget a semicolon?".
func (p *parser) captureExpr(stop ...token.Kind) ast.TokenSpan {
	start := p.pos
	depth := 0
	for {
		t := p.cur()
		if depth == 0 {
			for _, sk := range stop {
				if t.Kind == sk {
					return ast.TokenSpan{Start: start, End: p.pos}
				}
			}
		}
		switch t.Kind {
		case token.EOF:
			p.fatal(t.Line, "unexpected end of file while parsing expression")
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth < 0 {
				p.fatal(t.Line, "unmatched ')'")
			}
		case token.LBRACE, token.RBRACE:
			if depth == 0 {
				p.fatal(t.Line, "did you forget a semicolon?")
			}
		default:
			if depth == 0 && isReservedKind(t.Kind) {
				p.fatal(t.Line, "did you forget a semicolon?")
			}
		}
		p.advance()
	}
}
