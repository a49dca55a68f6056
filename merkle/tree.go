package merkle

import "github.com/eth2030/superlight/types"

// Tree is a fully materialized n-ary Merkle tree: every internal node's
// children, addressable by the node's own hash. Honest provers use it
// to answer both GetLeafWithProof (via Proof) and GetNode (via Children)
// without recomputing layers per query.
type Tree struct {
	n      int
	root   types.Digest
	leaves []types.Digest
	// nodes maps an internal node's hash to its n children. Leaves are
	// not present as keys — GetNode is only ever called on internal
	// nodes, since the bisection game stops descending at depth 0.
	nodes map[types.Digest][]types.Digest
}

// BuildTree constructs a Tree over leaves (which must number a power of
// n, n >= 2). Returns false if the shape is invalid.
func BuildTree(leaves []types.Digest, n int) (*Tree, bool) {
	if n < 2 || len(leaves) == 0 {
		return nil, false
	}
	t := &Tree{n: n, leaves: append([]types.Digest(nil), leaves...), nodes: make(map[types.Digest][]types.Digest)}

	layer := t.leaves
	for len(layer) > 1 {
		if len(layer)%n != 0 {
			return nil, false
		}
		next := make([]types.Digest, len(layer)/n)
		for g := range next {
			children := append([]types.Digest(nil), layer[g*n:g*n+n]...)
			parts := make([][]byte, n)
			for i := range children {
				parts[i] = children[i][:]
			}
			h := types.Hash(parts...)
			t.nodes[h] = children
			next[g] = h
		}
		layer = next
	}
	t.root = layer[0]
	return t, true
}

// Root returns the tree's root hash.
func (t *Tree) Root() types.Digest { return t.root }

// Depth returns ceil(log_n(len(leaves))).
func (t *Tree) Depth() int {
	d := 0
	size := len(t.leaves)
	for size > 1 {
		size /= t.n
		d++
	}
	return d
}

// Children returns the children of the internal node identified by
// hash, and whether hash was found. A miss means either hash is a leaf
// hash (depth-0 tree) or an unknown/forged hash.
func (t *Tree) Children(hash types.Digest) ([]types.Digest, bool) {
	c, ok := t.nodes[hash]
	return c, ok
}

// Proof builds the inclusion proof for the leaf at index.
func (t *Tree) Proof(index int) (Proof, bool) {
	if index < 0 || index >= len(t.leaves) {
		return nil, false
	}
	_, proof, ok := Build(t.leaves, index, t.n)
	return proof, ok
}

// Leaf returns the leaf hash at index.
func (t *Tree) Leaf(index int) types.Digest { return t.leaves[index] }
