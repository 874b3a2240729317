package types

import "fmt"

// Function describes a Spyre function or cfunc declaration. Body is the
// function body's block, typed any because types must not import ast: the
// parser stores an ast.BlockID there for non-foreign functions and leaves
// it nil for cfuncs.
type Function struct {
	Name         string
	Args         []*Decl
	Return       Datatype
	IsForeign    bool // declared with cfunc
	IsVariadic   bool // cfunc(..., ...); only foreign functions may be variadic
	Nargs        uint
	ReserveSlots uint
	Body         any // ast.BlockID for non-foreign functions, nil otherwise
}

// FunctionRegistry holds one entry per declared function name.
type FunctionRegistry struct {
	byName *swissStringMap[*Function]
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{byName: newSwissStringMap[*Function](8)}
}

// Lookup returns the function named name, if declared.
func (r *FunctionRegistry) Lookup(name string) (*Function, bool) {
	return r.byName.Get(name)
}

// Declare registers fn. Re-declaring an existing name is an error: Spyre has
// no function overloading.
func (r *FunctionRegistry) Declare(fn *Function) error {
	if _, ok := r.byName.Get(fn.Name); ok {
		return fmt.Errorf("function %q already declared", fn.Name)
	}
	r.byName.Put(fn.Name, fn)
	return nil
}
