package merkle

import (
	"testing"

	"github.com/eth2030/superlight/types"
)

func leaves(n int) []types.Digest {
	out := make([]types.Digest, n)
	for i := range out {
		out[i] = types.Hash([]byte{byte(i)})
	}
	return out
}

func TestBuildVerifyRoundTrip_Binary(t *testing.T) {
	ls := leaves(8)
	for i := range ls {
		root, proof, ok := Build(ls, i, 2)
		if !ok {
			t.Fatalf("Build failed for index %d", i)
		}
		if !Verify(ls[i], uint64(i), root, proof, 2) {
			t.Fatalf("Verify rejected a valid proof for index %d", i)
		}
	}
}

func TestBuildVerifyRoundTrip_Quaternary(t *testing.T) {
	ls := leaves(16)
	for i := range ls {
		root, proof, ok := Build(ls, i, 4)
		if !ok {
			t.Fatalf("Build failed for index %d", i)
		}
		if !Verify(ls[i], uint64(i), root, proof, 4) {
			t.Fatalf("Verify rejected a valid proof for index %d", i)
		}
	}
}

func TestVerifyRejectsFlippedLeaf(t *testing.T) {
	ls := leaves(4)
	root, proof, _ := Build(ls, 2, 2)
	bad := ls[2]
	bad[0] ^= 0xff
	if Verify(bad, 2, root, proof, 2) {
		t.Fatalf("Verify accepted a flipped leaf")
	}
}

func TestVerifyRejectsFlippedRoot(t *testing.T) {
	ls := leaves(4)
	root, proof, _ := Build(ls, 1, 2)
	root[0] ^= 0xff
	if Verify(ls[1], 1, root, proof, 2) {
		t.Fatalf("Verify accepted a flipped root")
	}
}

func TestVerifyRejectsFlippedSibling(t *testing.T) {
	ls := leaves(4)
	root, proof, _ := Build(ls, 0, 2)
	proof[0][0][0] ^= 0xff
	if Verify(ls[0], 0, root, proof, 2) {
		t.Fatalf("Verify accepted a proof with a flipped sibling")
	}
}

func TestVerifyRejectsWrongIndex(t *testing.T) {
	ls := leaves(4)
	root, proof, _ := Build(ls, 0, 2)
	if Verify(ls[0], 1, root, proof, 2) {
		t.Fatalf("Verify accepted a proof at the wrong index")
	}
}

func TestVerifyRejectsMalformedProofLength(t *testing.T) {
	ls := leaves(4)
	root, proof, _ := Build(ls, 0, 2)
	proof[0] = append(proof[0], types.Digest{})
	if Verify(ls[0], 0, root, proof, 2) {
		t.Fatalf("Verify accepted a proof with too many siblings at a level")
	}
}

func TestVerifyNeverPanicsOnEmptyProof(t *testing.T) {
	var empty Proof
	if Verify(types.Hash([]byte("x")), 0, types.Digest{}, empty, 2) {
		t.Fatalf("an empty proof should not verify against a zero root unless leaf == root")
	}
}

func TestVerifyRejectsBadFanout(t *testing.T) {
	ls := leaves(4)
	root, proof, _ := Build(ls, 0, 2)
	if Verify(ls[0], 0, root, proof, 1) {
		t.Fatalf("Verify should reject fan-out below 2")
	}
}
