package client

import (
	"context"

	"github.com/eth2030/superlight/prover"
	"github.com/eth2030/superlight/syncstore"
	"github.com/eth2030/superlight/types"
)

// bisectOutcome is treeVsTree's tagged-union result (spec.md §9's
// design note: "implementations SHOULD use a sum type, not an
// overloaded integer-or-boolean return"). Exactly one of the two
// branches is meaningful: either the game reached a leaf (Leaf, true)
// and control passes to the fraud-proof check, or a structural check
// already decided a winner (Winner, false).
type bisectOutcome struct {
	isLeaf  bool
	leaf    uint64
	aHonest bool
}

func leafOutcome(localLeaf uint64) bisectOutcome { return bisectOutcome{isLeaf: true, leaf: localLeaf} }
func winnerOutcome(aHonest bool) bisectOutcome   { return bisectOutcome{isLeaf: false, aHonest: aHonest} }

// peaksVsPeaks plays spec.md §4.5.3: it is the entry point of one
// tournament game between two provers with differing MMR roots. true
// means A is the honest side.
func (c *Client) peaksVsPeaks(ctx context.Context, a, b *ProverRecord) (bool, error) {
	if len(a.Peaks) != len(b.Peaks) {
		return false, c.fatalf("peak list length mismatch between prover %d (%d peaks) and prover %d (%d peaks)",
			a.Index, len(a.Peaks), b.Index, len(b.Peaks))
	}

	var off uint64
	for i := range a.Peaks {
		pa, pb := a.Peaks[i], b.Peaks[i]
		if pa.RootHash == pb.RootHash {
			off += pa.Size
			continue
		}

		depth := logN(pa.Size, int(c.cfg.N))
		outcome, err := c.treeVsTree(ctx, a, b, pa.RootHash, pb.RootHash, depth, pa.RootHash, pb.RootHash, 0)
		if err != nil {
			return false, err
		}
		if !outcome.isLeaf {
			return outcome.aHonest, nil
		}
		return c.checkNodeAndPrevUpdate(ctx, a, b, off+outcome.leaf)
	}

	return false, c.fatalf("prover %d and prover %d have equal peaks but differing MMR roots", a.Index, b.Index)
}

// logN returns the number of times n divides size, i.e. log_n(size) for
// size a power of n. Used to seed treeVsTree's initial depth.
func logN(size uint64, n int) int {
	d := 0
	for size > 1 {
		size /= uint64(n)
		d++
	}
	return d
}

// treeVsTree implements spec.md §4.5.4's bisection: at each level it
// queries both sides' GetNode, structurally validates each response
// against the node hash it claims to open, and recurses into the first
// child index where the two sides disagree. Reaching depth 0 means the
// game has located the first disputed leaf.
func (c *Client) treeVsTree(ctx context.Context, a, b *ProverRecord, treeRootA, treeRootB types.Digest, depth int, nodeA, nodeB types.Digest, index uint64) (bisectOutcome, error) {
	if depth == 0 {
		return leafOutcome(index), nil
	}
	n := int(c.cfg.N)

	respA, errA := callWithTimeout(ctx, c.cfg.RequestTimeout, func() (prover.NodeResponse, error) {
		return a.Prover.GetNode(treeRootA, nodeA)
	})
	respB, errB := callWithTimeout(ctx, c.cfg.RequestTimeout, func() (prover.NodeResponse, error) {
		return b.Prover.GetNode(treeRootB, nodeB)
	})

	if errA != nil || !validNode(respA, nodeA, n) {
		return winnerOutcome(false), nil
	}
	if errB != nil || !validNode(respB, nodeB, n) {
		return winnerOutcome(true), nil
	}

	kidsA, kidsB := respA.Children, respB.Children
	j := -1
	for i := 0; i < n; i++ {
		if kidsA[i] != kidsB[i] {
			j = i
			break
		}
	}
	if j < 0 {
		return bisectOutcome{}, c.fatalf(
			"tree %x and %x claim differing nodes %x/%x with identical children",
			treeRootA, treeRootB, nodeA, nodeB)
	}

	return c.treeVsTree(ctx, a, b, treeRootA, treeRootB, depth-1, kidsA[j], kidsB[j], index*uint64(n)+uint64(j))
}

// validNode reports whether resp is a structurally sound opening of
// nodeHash: not a leaf marker, exactly n children, and
// H(concat(children)) == nodeHash.
func validNode(resp prover.NodeResponse, nodeHash types.Digest, n int) bool {
	if resp.IsLeaf || len(resp.Children) != n {
		return false
	}
	parts := make([][]byte, n)
	for i := range resp.Children {
		parts[i] = resp.Children[i][:]
	}
	return types.Eq(types.Hash(parts...), nodeHash)
}

// checkNodeAndPrevUpdate implements spec.md §4.5.5, the fraud-proof
// check at the leaf bisection identified.
func (c *Client) checkNodeAndPrevUpdate(ctx context.Context, a, b *ProverRecord, period uint64) (bool, error) {
	a.Report.LastDisagreementPeriod = period
	b.Report.LastDisagreementPeriod = period

	committeeA, okA := c.getVerifiedSyncCommittee(ctx, a, period, a.Peaks)
	if !okA {
		return false, nil
	}
	committeeB, okB := c.getVerifiedSyncCommittee(ctx, b, period, b.Peaks)
	if !okB {
		return true, nil
	}

	if period == 0 {
		genesis := c.cfg.Store.GetGenesisSyncCommittee()
		return c.adjudicate(committeeA.Equal(genesis), committeeB.Equal(genesis), a, b)
	}

	prevCommittee, ok := c.getVerifiedSyncCommittee(ctx, a, period-1, a.Peaks)
	if !ok {
		return false, nil
	}

	aOK := c.updateVerifies(ctx, a, prevCommittee, committeeA, period-1)
	bOK := c.updateVerifies(ctx, b, prevCommittee, committeeB, period-1)
	return c.adjudicate(aOK, bOK, a, b)
}

// updateVerifies fetches rec's update for the transition into updatePeriod+1
// and checks it against prev/cur via the sync store's fraud-proof
// predicate. Any fetch failure or malformed update counts as a failed
// check, never an error.
func (c *Client) updateVerifies(ctx context.Context, rec *ProverRecord, prev, cur types.Committee, updatePeriod uint64) bool {
	updates, err := callWithTimeout(ctx, c.cfg.RequestTimeout, func() ([]*syncstore.Update, error) {
		return rec.Prover.GetSyncUpdates(updatePeriod, 1)
	})
	if err != nil || len(updates) != 1 {
		return false
	}
	return c.cfg.Store.SyncUpdateVerify(prev, cur, updates[0])
}

// adjudicate applies spec.md §4.5.5's adjudication table.
func (c *Client) adjudicate(aOK, bOK bool, a, b *ProverRecord) (bool, error) {
	switch {
	case aOK && !bOK:
		return true, nil
	case !aOK && bOK:
		return false, nil
	case !aOK && !bOK:
		return false, nil
	default:
		return false, c.fatalf("prover %d and prover %d both verified at the same disputed leaf", a.Index, b.Index)
	}
}
