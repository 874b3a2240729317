// Package ast defines Spyre's abstract syntax tree. Nodes and blocks live
// in flat, monotonically-growing slices owned by a single Arena;
// parent/child links are indices rather than pointers, which keeps
// ownership unambiguous and makes the tree trivially walkable and testable
// without any lifetime management.
package ast

import (
	"github.com/spyre-lang/spyre/lang/token"
	"github.com/spyre-lang/spyre/lang/types"
)

// NodeID indexes into Arena.Nodes. The zero value (0) is always the Root
// node, created by NewArena.
type NodeID int

// BlockID indexes into Arena.Blocks. The zero value (0) is always the root
// Block, owned by the Root node.
type BlockID int

// NoNode and NoBlock are the sentinel "absent" values, distinct from the
// valid zero IDs of the root node/block.
const (
	NoNode  NodeID  = -1
	NoBlock BlockID = -1
)

// Arena owns every Node, Block and Token produced while parsing a single
// source file.
type Arena struct {
	Tokens []token.Token

	Nodes  []Node
	Blocks []Block

	Root      NodeID
	RootBlock BlockID
}

// NewArena creates an arena seeded with the Root node and its Block, and the
// full token sequence the parser is about to walk.
func NewArena(toks []token.Token) *Arena {
	a := &Arena{Tokens: toks}
	a.Root = a.newNode(Node{Kind: Root, ParentBlock: NoBlock})
	a.RootBlock = a.newBlock(Block{Parent: a.Root})
	a.Nodes[a.Root].Body = a.RootBlock
	return a
}

// newNode appends n with Body reset to NoBlock: a node's owned block is
// always created after the node itself, so callers assign Body once the
// block exists (NewArena does the same for the Root node). Without the
// reset, a body-less node's zero-valued Body would alias the root block.
func (a *Arena) newNode(n Node) NodeID {
	n.Body = NoBlock
	id := NodeID(len(a.Nodes))
	a.Nodes = append(a.Nodes, n)
	return id
}

func (a *Arena) newBlock(b Block) BlockID {
	id := BlockID(len(a.Blocks))
	a.Blocks = append(a.Blocks, b)
	return id
}

// Node returns a pointer to the node at id for in-place mutation.
func (a *Arena) Node(id NodeID) *Node { return &a.Nodes[id] }

// Block returns a pointer to the block at id for in-place mutation.
func (a *Arena) Block(id BlockID) *Block { return &a.Blocks[id] }

// NewNode appends a node and returns its ID.
func (a *Arena) NewNode(n Node) NodeID { return a.newNode(n) }

// NewBlock appends a block owned by parent and returns its ID.
func (a *Arena) NewBlock(parent NodeID) BlockID { return a.newBlock(Block{Parent: parent}) }

// AddChild appends child to block's Children list.
func (a *Arena) AddChild(block BlockID, child NodeID) {
	a.Blocks[block].Children = append(a.Blocks[block].Children, child)
}

// AddLocal appends decl to block's Locals list.
func (a *Arena) AddLocal(block BlockID, decl *types.Decl) {
	a.Blocks[block].Locals = append(a.Blocks[block].Locals, decl)
}

// Span returns the token slice [start, end).
func (a *Arena) Span(s TokenSpan) []token.Token {
	if s.Start < 0 || s.End < s.Start {
		return nil
	}
	return a.Tokens[s.Start:s.End]
}
