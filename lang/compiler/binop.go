package compiler

import (
	"fmt"

	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// applyBinaryOp implements binary-operator evaluation: pointer-arithmetic
// scaling first, then Int/Float coercion, then the
// base-prefixed instruction. a is the deeper (first-pushed) operand, b the
// shallower (second-pushed, currently top-of-stack) one.
func (g *generator) applyBinaryOp(line uint, op token.Kind, a, b types.Datatype) types.Datatype {
	if (op == token.PLUS || op == token.MINUS) && a.IsPointer() &&
		b.Base == types.Int && b.PtrLevel == 0 {
		if scale := g.pointerScale(a); scale > 1 {
			g.emit(fmt.Sprintf("ipush %d", scale))
			g.emit("imul")
		}
		g.emit("i" + arithInstr(op))
		return a
	}
	if (op == token.PLUS || op == token.MINUS) && b.IsPointer() &&
		a.Base == types.Int && a.PtrLevel == 0 {
		g.typeErrorf(line, "pointer arithmetic requires the pointer operand first")
	}

	switch op {
	case token.PIPE, token.LTLT, token.GTGT, token.PERCENT:
		if a.Base != types.Int && a.Base != types.Byte {
			g.typeErrorf(line, "%s requires integer operands, got %s", op, a)
		}
		if !a.Equal(b) {
			g.typeErrorf(line, "%s requires matching integer operands, got %s and %s", op, a, b)
		}
		g.emit("i" + arithInstr(op))
		return types.Datatype{Base: types.Int}
	}

	ca, cb := a, b
	switch {
	case a.Base == types.Int && b.Base == types.Float && a.PtrLevel == 0 && b.PtrLevel == 0:
		g.emit("itof 0")
		ca = types.Datatype{Base: types.Float}
	case a.Base == types.Float && b.Base == types.Int && a.PtrLevel == 0 && b.PtrLevel == 0:
		g.emit("itof 1")
		cb = types.Datatype{Base: types.Float}
	case !a.Equal(b):
		g.typeErrorf(line, "type mismatch: %s vs %s", a, b)
	}

	prefix := "i"
	if ca.Base == types.Float && cb.Base == types.Float {
		prefix = "f"
	}

	switch op {
	case token.LAND:
		g.emit("land")
		return types.Datatype{Base: types.Int}
	case token.LOR:
		g.emit("lor")
		return types.Datatype{Base: types.Int}
	case token.EQ:
		g.emit(prefix + "cmp")
		return types.Datatype{Base: types.Int}
	case token.NEQ:
		g.emit(prefix + "cmp")
		g.emit("lnot")
		return types.Datatype{Base: types.Int}
	case token.GT, token.GE, token.LT, token.LE:
		g.emit(prefix + arithInstr(op))
		return types.Datatype{Base: types.Int}
	case token.PLUS, token.MINUS, token.STAR, token.SLASH:
		g.emit(prefix + arithInstr(op))
		if prefix == "f" {
			return types.Datatype{Base: types.Float}
		}
		return types.Datatype{Base: types.Int}
	default:
		g.typeErrorf(line, "operator %s is not supported in expressions", op)
		return types.Datatype{}
	}
}

// pointerScale returns the byte stride of one step of pointer arithmetic
// over ptr: 1 for a byte pointee (no scaling instructions needed), 8 for
// any other scalar/pointer pointee, 8*struct.size for a by-value struct
// pointee.
func (g *generator) pointerScale(ptr types.Datatype) int {
	pointee := ptr.Deref()
	if pointee.IsStruct() {
		if sd, ok := g.structs.Lookup(pointee.StructName); ok {
			return 8 * int(sd.Size)
		}
	}
	if pointee.Base == types.Byte && pointee.PtrLevel == 0 {
		return 1
	}
	return 8
}

func arithInstr(op token.Kind) string {
	switch op {
	case token.PLUS:
		return "add"
	case token.MINUS:
		return "sub"
	case token.STAR:
		return "mul"
	case token.SLASH:
		return "div"
	case token.PERCENT:
		return "mod"
	case token.PIPE:
		return "or"
	case token.LTLT:
		return "shl"
	case token.GTGT:
		return "shr"
	case token.GT:
		return "gt"
	case token.GE:
		return "ge"
	case token.LT:
		return "lt"
	case token.LE:
		return "le"
	default:
		return "?"
	}
}

