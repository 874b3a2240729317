package types

import "fmt"

// StructDef describes a user-defined struct type. A forward declaration
// (`Name : struct;`) creates an incomplete entry; a full definition
// (`Name : struct { ... }`) completes it in place. Complete transitions only
// false -> true.
type StructDef struct {
	Name     string
	Complete bool
	Size     uint // slots, accumulated over Fields
	Fields   []*Decl
}

// Field returns the named field, or nil if not found.
func (s *StructDef) Field(name string) *Decl {
	for _, f := range s.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// StructRegistry holds at most one StructDef per name. Lookups
// are on the hot path of every `.` field access during code generation, so
// it is backed by a swiss.Map rather than a plain Go map for fast
// hot-path key lookups.
type StructRegistry struct {
	byName *swissStringMap[*StructDef]
}

// NewStructRegistry returns an empty registry.
func NewStructRegistry() *StructRegistry {
	return &StructRegistry{byName: newSwissStringMap[*StructDef](8)}
}

// Lookup returns the struct named name, if registered.
func (r *StructRegistry) Lookup(name string) (*StructDef, bool) {
	return r.byName.Get(name)
}

// Declare registers an incomplete forward declaration. It is an error to
// forward-declare a name that is already a complete struct.
func (r *StructRegistry) Declare(name string) (*StructDef, error) {
	if existing, ok := r.byName.Get(name); ok {
		if existing.Complete {
			return nil, fmt.Errorf("struct %q already completely defined", name)
		}
		return existing, nil
	}
	sd := &StructDef{Name: name}
	r.byName.Put(name, sd)
	return sd, nil
}

// Define completes (or creates and completes) the struct named name with
// the given fields and accumulated size. Re-defining an already-complete
// struct is an error.
func (r *StructRegistry) Define(name string, fields []*Decl, size uint) (*StructDef, error) {
	sd, ok := r.byName.Get(name)
	if ok && sd.Complete {
		return nil, fmt.Errorf("struct %q already completely defined", name)
	}
	if !ok {
		sd = &StructDef{Name: name}
		r.byName.Put(name, sd)
	}
	sd.Fields = fields
	sd.Size = size
	sd.Complete = true
	return sd, nil
}
