package parser

import (
	"fmt"

	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

var primitiveBases = map[string]types.Base{
	"int":    types.Int,
	"byte":   types.Byte,
	"float":  types.Float,
	"string": types.String,
}

// parseDatatype implements the datatype grammar: zero or more
// modifier keywords, a base type (primitive name or registered struct
// name), then zero or more '^' incrementing the pointer level.
func (p *parser) parseDatatype() (types.Datatype, error) {
	var mod types.Modifier
	for {
		switch p.cur().Kind {
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
		default:
			goto base
		}
		p.advance()
	}

base:
	baseTok := p.cur()
	if baseTok.Kind != token.IDENT {
		return types.Datatype{}, fmt.Errorf("expected type name, got %s %q", baseTok.Kind, baseTok.Spelling)
	}
	p.advance()

	dt := types.Datatype{Modifiers: mod}
	if base, ok := primitiveBases[baseTok.Spelling]; ok {
		dt.Base = base
	} else if _, ok := p.structs.Lookup(baseTok.Spelling); ok {
		dt.Base = types.Struct
		dt.StructName = baseTok.Spelling
	} else {
		return types.Datatype{}, fmt.Errorf("unknown type %q", baseTok.Spelling)
	}

	for p.cur().Kind == token.CARET {
		dt.PtrLevel++
		p.advance()
	}
	return dt, nil
}
