// Package merkle implements the n-ary Merkle tree inclusion-proof
// verifier (component C2 of the superlight protocol). It recomputes a
// leaf-to-root path and compares against a claimed root; it never
// panics on malformed input, matching spec.md §4.2's "never throw"
// failure policy.
package merkle

import "github.com/eth2030/superlight/types"

// Proof is an inclusion proof for one leaf. Proof[level] holds the n-1
// sibling hashes at that level, ordered left-to-right, excluding the
// branch's own child at that level. len(Proof) == ceil(log_n(size)).
type Proof [][]types.Digest

// Verify recomputes the path from leafHash to root in an n-ary tree and
// reports whether it matches root. At level i, the current child's
// position among its n siblings is (index / n^i) mod n; proof[i] supplies
// the other n-1 children in left-to-right order.
//
// Verify never panics: any malformed proof (wrong sibling count at some
// level, proof too shallow or too deep for index) is treated as a
// verification failure, not an error.
func Verify(leafHash types.Digest, index uint64, root types.Digest, proof Proof, n int) bool {
	if n < 2 {
		return false
	}
	current := leafHash
	idx := index
	for _, siblings := range proof {
		if len(siblings) != n-1 {
			return false
		}
		pos := int(idx % uint64(n))
		children := make([][]byte, n)
		cp := current
		inserted := false
		si := 0
		for i := 0; i < n; i++ {
			if i == pos {
				children[i] = cp[:]
				inserted = true
				continue
			}
			if si >= len(siblings) {
				return false
			}
			sib := siblings[si]
			children[i] = sib[:]
			si++
		}
		if !inserted {
			return false
		}
		current = types.Hash(children...)
		idx /= uint64(n)
	}
	return idx == 0 && types.Eq(current, root)
}

// Build constructs the full Merkle tree over leaves (which must number a
// power of n) and returns the root plus the inclusion proof for index.
// Used by honest provers and by tests to produce valid (leaf, proof,
// root) triples.
func Build(leaves []types.Digest, index int, n int) (root types.Digest, proof Proof, ok bool) {
	if n < 2 || len(leaves) == 0 || index < 0 || index >= len(leaves) {
		return types.Digest{}, nil, false
	}
	layer := make([]types.Digest, len(leaves))
	copy(layer, leaves)
	idx := index

	for len(layer) > 1 {
		if len(layer)%n != 0 {
			return types.Digest{}, nil, false
		}
		pos := idx % n
		group := idx / n
		siblings := make([]types.Digest, 0, n-1)
		for i := 0; i < n; i++ {
			if i == pos {
				continue
			}
			siblings = append(siblings, layer[group*n+i])
		}
		proof = append(proof, siblings)

		next := make([]types.Digest, len(layer)/n)
		for g := 0; g < len(next); g++ {
			children := make([][]byte, n)
			for i := 0; i < n; i++ {
				d := layer[g*n+i]
				children[i] = d[:]
			}
			next[g] = types.Hash(children...)
		}
		layer = next
		idx = group
	}
	return layer[0], proof, true
}
