// Package types implements Spyre's compile-time type system: Datatype
// descriptors, variable/field declarations, struct definitions and function
// signatures, plus the name registries the parser populates and the code
// generator consults.
package types

import "fmt"

// Base is the closed set of base kinds a Datatype can have.
type Base uint8

const (
	Int Base = iota
	Byte
	Float
	String
	Null
	Struct
)

func (b Base) String() string {
	switch b {
	case Int:
		return "int"
	case Byte:
		return "byte"
	case Float:
		return "float"
	case String:
		return "string"
	case Null:
		return "null"
	case Struct:
		return "struct"
	default:
		return fmt.Sprintf("base(%d)", int(b))
	}
}

// Modifier is a bitset of the type-modifier keywords allowed in
// datatype position. Modifiers never affect type equality.
type Modifier uint8

const (
	Const Modifier = 1 << iota
	Volatile
	Signed
	Unsigned
	Static
)

// Datatype describes a Spyre type: a base kind, pointer nesting level, and
// (for Base==Struct) a reference to the named struct definition.
type Datatype struct {
	Base       Base
	StructName string // valid iff Base == Struct
	PtrLevel   uint
	Modifiers  Modifier
}

// Pointer returns d with PtrLevel incremented by one (the result of unary &).
func (d Datatype) Pointer() Datatype {
	d.PtrLevel++
	return d
}

// Deref returns d with PtrLevel decremented by one (the result of unary ^).
// The caller must check IsPointer first.
func (d Datatype) Deref() Datatype {
	d.PtrLevel--
	return d
}

// IsPointer reports whether d has at least one level of pointer indirection.
func (d Datatype) IsPointer() bool { return d.PtrLevel > 0 }

// IsStruct reports whether d names a struct type directly (not a pointer to
// one).
func (d Datatype) IsStruct() bool { return d.Base == Struct && d.PtrLevel == 0 }

// IsStructPointer reports whether d is a pointer to a struct.
func (d Datatype) IsStructPointer() bool { return d.Base == Struct && d.PtrLevel > 0 }

// Equal implements the typechecking equality rule: bases
// equal, ptr_level equal, struct names equal when the base is Struct, with
// Int and Byte treated as mutually compatible regardless of ptr_level.
func (d Datatype) Equal(o Datatype) bool {
	if d.PtrLevel != o.PtrLevel {
		return false
	}
	if d.Base == o.Base {
		if d.Base == Struct {
			return d.StructName == o.StructName
		}
		return true
	}
	// Int/Byte mutual compatibility applies regardless of ptr_level.
	return isIntOrByte(d.Base) && isIntOrByte(o.Base)
}

func isIntOrByte(b Base) bool { return b == Int || b == Byte }

// PointerArithCompatible reports whether d (a pointer, ptr_level > 0) and i
// (an Int) may participate in pointer arithmetic.
func PointerArithCompatible(d, i Datatype) bool {
	return d.IsPointer() && i.Base == Int && i.PtrLevel == 0
}

func (d Datatype) String() string {
	s := ""
	if d.Modifiers&Const != 0 {
		s += "const "
	}
	if d.Modifiers&Volatile != 0 {
		s += "volatile "
	}
	if d.Modifiers&Unsigned != 0 {
		s += "unsigned "
	}
	if d.Modifiers&Signed != 0 {
		s += "signed "
	}
	if d.Modifiers&Static != 0 {
		s += "static "
	}
	if d.Base == Struct {
		s += d.StructName
	} else {
		s += d.Base.String()
	}
	for i := uint(0); i < d.PtrLevel; i++ {
		s += "^"
	}
	return s
}
