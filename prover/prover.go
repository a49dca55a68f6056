// Package prover defines the external prover contract (§6.1) the
// superlight client consumes, and the wire types that cross it. Provers
// may be local or remote; the client only ever depends on this
// four-method interface, never on a concrete transport, so in-process
// adversarial provers can drive tests — per the design note in
// spec.md §9.
package prover

import (
	"github.com/eth2030/superlight/merkle"
	"github.com/eth2030/superlight/mmr"
	"github.com/eth2030/superlight/syncstore"
	"github.com/eth2030/superlight/types"
)

// Latest is the sentinel Period value standing in for spec.md's
// `'latest'` request: "give me the rightmost peak's last leaf."
const Latest uint64 = ^uint64(0)

// MMRInfo is the response to GetMMRInfo: the prover's claimed MMR root
// and peak list.
type MMRInfo struct {
	RootHash types.Digest
	Peaks    []mmr.Peak
}

// LeafWithProof is the response to GetLeafWithProof: the committee at
// the requested period/leaf, plus an n-ary Merkle inclusion proof of
// that leaf under the prover's MMR.
type LeafWithProof struct {
	SyncCommittee types.Committee
	RootHash      types.Digest
	Proof         merkle.Proof
}

// NodeResponse is the response to GetNode: either a leaf marker, or the
// n children of an internal MMR/Merkle-tree node.
type NodeResponse struct {
	IsLeaf   bool
	Children []types.Digest
}

// Prover is the four-method contract every external prover must
// implement (spec.md §6.1). A call may fail (transport error, timeout);
// spec.md §5 treats a failure identically to a malformed response: the
// offending prover loses the current game or is filtered during audit.
type Prover interface {
	// GetMMRInfo returns the prover's claimed MMR root and peaks.
	GetMMRInfo() (MMRInfo, error)

	// GetLeafWithProof returns the committee and inclusion proof for
	// the given period, or for Latest (the rightmost peak's last
	// leaf) when period == prover.Latest.
	GetLeafWithProof(period uint64) (LeafWithProof, error)

	// GetNode returns the children of the node identified by nodeHash
	// within the tree rooted at treeRoot.
	GetNode(treeRoot, nodeHash types.Digest) (NodeResponse, error)

	// GetSyncUpdates returns up to maxCount updates starting at
	// startPeriod, one update per period transition.
	GetSyncUpdates(startPeriod uint64, maxCount uint32) ([]*syncstore.Update, error)

	// Index identifies this prover's slot among its peers, for
	// diagnostics and ProverRecord bookkeeping.
	Index() int
}
