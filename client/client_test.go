package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/eth2030/superlight/mmr"
	"github.com/eth2030/superlight/prover"
	"github.com/eth2030/superlight/syncstore"
	"github.com/eth2030/superlight/types"
)

func genesisCommittee(size int) types.Committee {
	return prover.DeriveCommittee(types.Hash([]byte("client-test-genesis")), size)
}

func newConfig(store syncstore.Store, provers ...prover.Prover) Config {
	cfg := DefaultConfig()
	cfg.Store = store
	cfg.Provers = provers
	return cfg
}

// TestSyncSingleHonestProver is spec.md scenario S1: a single honest
// prover over an mmrSize=4 chain. The tournament runs zero games and
// the adopted committee is the prover's last leaf.
func TestSyncSingleHonestProver(t *testing.T) {
	genesis := genesisCommittee(8)
	chain := prover.BuildHonestChain(0, genesis, 4)
	p, err := chain.ToMockProver(0, 2)
	if err != nil {
		t.Fatalf("ToMockProver: %v", err)
	}
	store := syncstore.NewMemoryStore(genesis, 0, 3, nil)

	c := New(newConfig(store, p))
	records, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if !records[0].SyncCommittee.Equal(chain.Committees[3]) {
		t.Fatalf("adopted committee does not match the prover's period-3 leaf")
	}
}

// TestSyncTwoIdenticalProvers is spec.md scenario S2: both provers
// present byte-equal MMR roots and peaks, so no bisection game is ever
// played, and both remain in the winners pool.
func TestSyncTwoIdenticalProvers(t *testing.T) {
	genesis := genesisCommittee(8)
	chain := prover.BuildHonestChain(0, genesis, 4)
	p0, err := chain.ToMockProver(0, 2)
	if err != nil {
		t.Fatalf("ToMockProver: %v", err)
	}
	p1, err := chain.ToMockProver(1, 2)
	if err != nil {
		t.Fatalf("ToMockProver: %v", err)
	}
	store := syncstore.NewMemoryStore(genesis, 0, 3, nil)

	c := New(newConfig(store, p0, p1))
	survivors := c.auditProvers(context.Background(), 4, 2)
	if len(survivors) != 2 {
		t.Fatalf("expected both identical provers to survive the audit, got %d", len(survivors))
	}
	winners, err := c.runTournament(context.Background(), survivors)
	if err != nil {
		t.Fatalf("runTournament: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("identical-root provers should both remain in winners, got %d", len(winners))
	}

	records, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !records[0].SyncCommittee.Equal(chain.Committees[3]) {
		t.Fatalf("adopted committee mismatch")
	}
}

// TestSyncHonestVsDishonestLeafZero is spec.md scenario S3: mmrSize=1,
// so the single peak's tree has depth 0 and the game goes straight to
// checkNodeAndPrevUpdate(period=0), comparing both sides against the
// genesis committee.
func TestSyncHonestVsDishonestLeafZero(t *testing.T) {
	genesis := genesisCommittee(8)
	honest, err := prover.NewMockProver(0, 2, 0, []types.Committee{genesis}, nil)
	if err != nil {
		t.Fatalf("NewMockProver(honest): %v", err)
	}
	bogus := prover.DeriveCommittee(types.Hash([]byte("bogus-genesis")), 8)
	dishonest, err := prover.NewMockProver(1, 2, 0, []types.Committee{bogus}, nil)
	if err != nil {
		t.Fatalf("NewMockProver(dishonest): %v", err)
	}
	store := syncstore.NewMemoryStore(genesis, 0, 0, nil)

	for _, order := range [][]prover.Prover{{honest, dishonest}, {dishonest, honest}} {
		c := New(newConfig(store, order...))
		records, err := c.Sync(context.Background())
		if err != nil {
			t.Fatalf("Sync: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("len(records) = %d, want 1", len(records))
		}
		if !records[0].SyncCommittee.Equal(genesis) {
			t.Fatalf("the honest prover's genesis-matching committee should have won")
		}
	}
}

// TestSyncDishonestAtPeriod5 is spec.md scenario S4: mmrSize=8 (a
// single perfect binary peak of depth 3), diverging at period 5. The
// bisection descends exactly three levels and the fraud-proof check
// uses the verified period-4 committee plus each side's update[4].
func TestSyncDishonestAtPeriod5(t *testing.T) {
	genesis := genesisCommittee(8)
	honestChain := prover.BuildHonestChain(0, genesis, 8)
	dishonestChain := honestChain.Fork(4, 0xAB)

	honestProver, err := honestChain.ToMockProver(0, 2)
	if err != nil {
		t.Fatalf("ToMockProver(honest): %v", err)
	}
	dishonestProver, err := dishonestChain.ToMockProver(1, 2)
	if err != nil {
		t.Fatalf("ToMockProver(dishonest): %v", err)
	}
	store := syncstore.NewMemoryStore(genesis, 0, 7, nil)

	c := New(newConfig(store, honestProver, dishonestProver))
	aHonest, err := c.peaksVsPeaks(context.Background(),
		&ProverRecord{Index: 0, Prover: honestProver, Root: mustRoot(honestProver), Peaks: mustPeaks(honestProver)},
		&ProverRecord{Index: 1, Prover: dishonestProver, Root: mustRoot(dishonestProver), Peaks: mustPeaks(dishonestProver)},
	)
	if err != nil {
		t.Fatalf("peaksVsPeaks: %v", err)
	}
	if !aHonest {
		t.Fatalf("the honest prover should have won the bisection game")
	}

	records, err := c.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !records[0].SyncCommittee.Equal(honestChain.Committees[7]) {
		t.Fatalf("adopted committee should be the honest chain's latest committee")
	}
}

// countingProver wraps a prover.Prover and counts GetNode calls, so
// TestSyncMalformedNodeStopsDescending can assert the game did not
// descend past the level where the malformed response was served.
type countingProver struct {
	prover.Prover
	nodeCalls atomic.Int64
}

func (p *countingProver) GetNode(treeRoot, nodeHash types.Digest) (prover.NodeResponse, error) {
	p.nodeCalls.Add(1)
	return p.Prover.GetNode(treeRoot, nodeHash)
}

// TestSyncMalformedNodeStopsDescending is spec.md scenario S5: the
// dishonest prover serves a node whose children hash doesn't match the
// node hash it claims to open. The structural check must reject it
// immediately, without any further descent.
func TestSyncMalformedNodeStopsDescending(t *testing.T) {
	genesis := genesisCommittee(8)
	honestChain := prover.BuildHonestChain(0, genesis, 8)
	dishonestChain := honestChain.Fork(4, 0xCD)

	honestProver, err := honestChain.ToMockProver(0, 2)
	if err != nil {
		t.Fatalf("ToMockProver(honest): %v", err)
	}
	dishonestMock, err := dishonestChain.ToMockProver(1, 2)
	if err != nil {
		t.Fatalf("ToMockProver(dishonest): %v", err)
	}

	info, err := dishonestMock.GetMMRInfo()
	if err != nil {
		t.Fatalf("GetMMRInfo: %v", err)
	}
	root := info.Peaks[0].RootHash
	forged := prover.NodeResponse{
		IsLeaf:   false,
		Children: []types.Digest{types.Hash([]byte("forged-a")), types.Hash([]byte("forged-b"))},
	}
	dishonestMock.SetNodeOverride(root, root, forged)

	honestCounter := &countingProver{Prover: honestProver}
	dishonestCounter := &countingProver{Prover: dishonestMock}

	store := syncstore.NewMemoryStore(genesis, 0, 7, nil)
	c := New(newConfig(store, honestCounter, dishonestCounter))

	aHonest, err := c.peaksVsPeaks(context.Background(),
		&ProverRecord{Index: 0, Prover: honestCounter, Root: mustRoot(honestCounter), Peaks: mustPeaks(honestCounter)},
		&ProverRecord{Index: 1, Prover: dishonestCounter, Root: mustRoot(dishonestCounter), Peaks: mustPeaks(dishonestCounter)},
	)
	if err != nil {
		t.Fatalf("peaksVsPeaks: %v", err)
	}
	if !aHonest {
		t.Fatalf("the honest prover should win against a structurally malformed node")
	}
	if honestCounter.nodeCalls.Load() != 1 || dishonestCounter.nodeCalls.Load() != 1 {
		t.Fatalf("expected exactly one GetNode call per side, got honest=%d dishonest=%d",
			honestCounter.nodeCalls.Load(), dishonestCounter.nodeCalls.Load())
	}
}

// tamperedLatestProver corrupts the inclusion proof for the 'latest'
// leaf only, so a prover can pass the initial MMR audit and every
// bisection game yet still fail the final commitment check.
type tamperedLatestProver struct {
	prover.Prover
}

func (p *tamperedLatestProver) GetLeafWithProof(period uint64) (prover.LeafWithProof, error) {
	lwp, err := p.Prover.GetLeafWithProof(period)
	if err != nil {
		return lwp, err
	}
	if period == prover.Latest && len(lwp.Proof) > 0 && len(lwp.Proof[0]) > 0 {
		lwp.Proof[0][0][0] ^= 0xff
	}
	return lwp, nil
}

// TestSyncAllProversDishonestFinalAudit is spec.md scenario S6: the
// sole surviving prover fails the final latest-leaf Merkle check, so
// Sync reports total failure.
func TestSyncAllProversDishonestFinalAudit(t *testing.T) {
	genesis := genesisCommittee(8)
	chain := prover.BuildHonestChain(0, genesis, 4)
	mock, err := chain.ToMockProver(0, 2)
	if err != nil {
		t.Fatalf("ToMockProver: %v", err)
	}
	tampered := &tamperedLatestProver{Prover: mock}
	store := syncstore.NewMemoryStore(genesis, 0, 3, nil)

	c := New(newConfig(store, tampered))
	_, err = c.Sync(context.Background())
	if !errors.Is(err, ErrAllProversDishonest) {
		t.Fatalf("Sync: got %v, want ErrAllProversDishonest", err)
	}
}

// TestSyncNoProversSurviveAudit exercises the audit-phase branch of
// the "all provers dishonest" error kind: a prover whose claimed peaks
// don't match the verifier's own mmrSize is dropped before any game is
// ever played.
func TestSyncNoProversSurviveAudit(t *testing.T) {
	genesis := genesisCommittee(8)
	chain := prover.BuildHonestChain(0, genesis, 4)
	mock, err := chain.ToMockProver(0, 2)
	if err != nil {
		t.Fatalf("ToMockProver: %v", err)
	}
	// The verifier's own clock expects mmrSize=8, but the prover only
	// covers 4 leaves — the audit must reject it.
	store := syncstore.NewMemoryStore(genesis, 0, 7, nil)

	c := New(newConfig(store, mock))
	_, err = c.Sync(context.Background())
	if !errors.Is(err, ErrAllProversDishonest) {
		t.Fatalf("Sync: got %v, want ErrAllProversDishonest", err)
	}
}

// TestPeaksVsPeaksRejectsMismatchedPeakLength checks spec.md §4.5.3's
// precondition: unequal peak-list lengths is a fatal protocol
// invariant violation, not a game outcome.
func TestPeaksVsPeaksRejectsMismatchedPeakLength(t *testing.T) {
	genesis := genesisCommittee(4)
	a := &ProverRecord{Index: 0, Peaks: []mmr.Peak{{Size: 4}}}
	b := &ProverRecord{Index: 1, Peaks: []mmr.Peak{{Size: 2}, {Size: 1}}}
	store := syncstore.NewMemoryStore(genesis, 0, 3, nil)
	c := New(newConfig(store))

	_, err := c.peaksVsPeaks(context.Background(), a, b)
	var fatal *FatalProtocolError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected a FatalProtocolError, got %v", err)
	}
}

func mustRoot(p prover.Prover) types.Digest {
	info, err := p.GetMMRInfo()
	if err != nil {
		panic(err)
	}
	return info.RootHash
}

func mustPeaks(p prover.Prover) []mmr.Peak {
	info, err := p.GetMMRInfo()
	if err != nil {
		panic(err)
	}
	return info.Peaks
}
