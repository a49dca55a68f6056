package merkle

import "testing"

func TestBuildTreeChildrenAndProofAgree(t *testing.T) {
	ls := leaves(8)
	tree, ok := BuildTree(ls, 2)
	if !ok {
		t.Fatalf("BuildTree failed")
	}
	if tree.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", tree.Depth())
	}

	for i := range ls {
		proof, ok := tree.Proof(i)
		if !ok {
			t.Fatalf("Proof(%d) failed", i)
		}
		if !Verify(ls[i], uint64(i), tree.Root(), proof, 2) {
			t.Fatalf("Verify rejected Tree-derived proof for index %d", i)
		}
	}

	// Walk from the root down to a leaf using Children, checking the
	// node map matches what treeVsTree-style bisection expects.
	node := tree.Root()
	for d := tree.Depth(); d > 0; d-- {
		children, ok := tree.Children(node)
		if !ok || len(children) != 2 {
			t.Fatalf("Children(%x) at depth %d = %v, %v", node, d, children, ok)
		}
		node = children[0]
	}
	if node != ls[0] {
		t.Fatalf("descending via leftmost children did not reach leaf 0")
	}
}

func TestBuildTreeSingleLeafHasNoInternalNodes(t *testing.T) {
	ls := leaves(1)
	tree, ok := BuildTree(ls, 2)
	if !ok {
		t.Fatalf("BuildTree failed for a single leaf")
	}
	if tree.Root() != ls[0] {
		t.Fatalf("single-leaf tree root should equal the leaf")
	}
	if tree.Depth() != 0 {
		t.Fatalf("single-leaf tree depth should be 0")
	}
}

func TestBuildTreeRejectsNonPowerShape(t *testing.T) {
	ls := leaves(3)
	if _, ok := BuildTree(ls, 2); ok {
		t.Fatalf("BuildTree should reject a leaf count that isn't a power of n")
	}
}
