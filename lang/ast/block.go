package ast

import "github.com/spyre-lang/spyre/lang/types"

// Block is a sequence of sibling statements sharing a lexical scope.
// Children is ordered in textual source order; Locals is the
// ordered list of Decls introduced directly in this block (not nested ones).
type Block struct {
	Parent   NodeID
	Children []NodeID
	Locals   []*types.Decl
}

// Local looks up a Decl declared directly in this block by name.
func (b *Block) Local(name string) *types.Decl {
	for _, d := range b.Locals {
		if d.Name == name {
			return d
		}
	}
	return nil
}
