package ast

// Walk visits the AST in textual source order: descend into a node's body
// block first, otherwise continue with its siblings, otherwise ascend. A
// recursive depth-first walk over the Block/Node arena produces exactly
// that order, since "descend, then siblings, then ascend" is simply
// preorder DFS once blocks and nodes are modeled as a tree instead of a
// linked list with parent pointers.
//
// enter is called for every node, in source order, before its body (if any)
// is visited. leaveBlock is called once a node's body block has been fully
// visited (even if that block was empty), with depth equal to the nesting
// depth of that block's own contents, exactly the depth key the
// deferred-instruction stack is indexed by, so a caller can flush it from
// leaveBlock.
func Walk(a *Arena, enter func(id NodeID, depth int), leaveBlock func(owner NodeID, block BlockID, depth int)) {
	var walkBlock func(block BlockID, depth int)
	walkBlock = func(block BlockID, depth int) {
		for _, child := range a.Block(block).Children {
			enter(child, depth)
			n := a.Node(child)
			if n.Body != NoBlock {
				walkBlock(n.Body, depth+1)
				leaveBlock(child, n.Body, depth+1)
			}
		}
	}
	walkBlock(a.RootBlock, 0)
}
