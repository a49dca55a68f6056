package prover

import (
	"errors"
	"fmt"
	"sync"

	"github.com/eth2030/superlight/merkle"
	"github.com/eth2030/superlight/mmr"
	"github.com/eth2030/superlight/syncstore"
	"github.com/eth2030/superlight/types"
)

// ErrMockUnknownPeriod is returned by GetLeafWithProof when asked about
// a period outside the prover's known range, and by GetSyncUpdates when
// the start period precedes genesis. GetSyncUpdates returns an empty
// slice, not this error, for a start period past the last update.
var ErrMockUnknownPeriod = errors.New("prover: period out of range")

// MockProver is an in-process Prover implementation over a fixed
// committee history, used by client tests to drive honest and
// adversarial scenarios without any network transport — the "in-process
// adversarial provers" design note from spec.md §9.
type MockProver struct {
	mu sync.RWMutex

	index         int
	n             int
	genesisPeriod uint64
	committees    []types.Committee     // committees[i] is the committee for period genesisPeriod+i
	updates       []*syncstore.Update   // updates[i] transitions period genesisPeriod+i -> genesisPeriod+i+1
	peaks         []mmr.Peak
	trees         []*merkle.Tree // trees[j] corresponds to peaks[j]
	root          types.Digest

	// nodeOverrides lets tests force a specific (treeRoot, nodeHash)
	// query to return an arbitrary (possibly malformed) response,
	// simulating spec.md scenario S5.
	nodeOverrides map[[2]types.Digest]NodeResponse
}

// NewMockProver builds a MockProver whose MMR covers exactly
// len(committees) leaves (one per period starting at genesisPeriod),
// using fan-out n. len(updates) must equal len(committees)-1.
func NewMockProver(index, n int, genesisPeriod uint64, committees []types.Committee, updates []*syncstore.Update) (*MockProver, error) {
	if n < 2 {
		return nil, fmt.Errorf("prover: fan-out must be >= 2")
	}
	if len(committees) == 0 {
		return nil, fmt.Errorf("prover: at least one committee is required")
	}
	if len(updates) != len(committees)-1 {
		return nil, fmt.Errorf("prover: need exactly %d updates, got %d", len(committees)-1, len(updates))
	}

	leaves := make([]types.Digest, len(committees))
	for i, c := range committees {
		leaves[i] = c.Root()
	}

	sizes := mmr.Digits(uint64(len(leaves)), n)
	peaks := make([]mmr.Peak, len(sizes))
	trees := make([]*merkle.Tree, len(sizes))
	offset := 0
	for i, size := range sizes {
		group := leaves[offset : offset+int(size)]
		tree, ok := merkle.BuildTree(group, n)
		if !ok {
			return nil, fmt.Errorf("prover: failed to build peak tree of size %d", size)
		}
		peaks[i] = mmr.Peak{RootHash: tree.Root(), Size: size}
		trees[i] = tree
		offset += int(size)
	}

	return &MockProver{
		index:         index,
		n:             n,
		genesisPeriod: genesisPeriod,
		committees:    append([]types.Committee(nil), committees...),
		updates:       append([]*syncstore.Update(nil), updates...),
		peaks:         peaks,
		trees:         trees,
		root:          mmr.BagPeaks(peaks),
		nodeOverrides: make(map[[2]types.Digest]NodeResponse),
	}, nil
}

// Index implements Prover.
func (p *MockProver) Index() int { return p.index }

// GetMMRInfo implements Prover.
func (p *MockProver) GetMMRInfo() (MMRInfo, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return MMRInfo{RootHash: p.root, Peaks: append([]mmr.Peak(nil), p.peaks...)}, nil
}

// GetLeafWithProof implements Prover.
func (p *MockProver) GetLeafWithProof(period uint64) (LeafWithProof, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var globalIndex uint64
	if period == Latest {
		globalIndex = uint64(len(p.committees)) - 1
	} else {
		if period < p.genesisPeriod {
			return LeafWithProof{}, ErrMockUnknownPeriod
		}
		globalIndex = period - p.genesisPeriod
	}
	if globalIndex >= uint64(len(p.committees)) {
		return LeafWithProof{}, ErrMockUnknownPeriod
	}

	peakIdx, localIndex, ok := p.peakIndexFor(globalIndex)
	if !ok {
		return LeafWithProof{}, ErrMockUnknownPeriod
	}
	tree := p.trees[peakIdx]
	proof, ok := tree.Proof(int(localIndex))
	if !ok {
		return LeafWithProof{}, ErrMockUnknownPeriod
	}

	return LeafWithProof{
		SyncCommittee: p.committees[globalIndex],
		RootHash:      tree.Root(),
		Proof:         proof,
	}, nil
}

// peakIndexFor returns which peak (by index into p.peaks/p.trees) covers
// globalIndex, and the local index within that peak.
func (p *MockProver) peakIndexFor(globalIndex uint64) (peakIdx int, localIndex uint64, ok bool) {
	var offset uint64
	for i, pk := range p.peaks {
		if globalIndex < offset+pk.Size {
			return i, globalIndex - offset, true
		}
		offset += pk.Size
	}
	return 0, 0, false
}

// GetNode implements Prover.
func (p *MockProver) GetNode(treeRoot, nodeHash types.Digest) (NodeResponse, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if resp, ok := p.nodeOverrides[[2]types.Digest{treeRoot, nodeHash}]; ok {
		return resp, nil
	}

	for _, tree := range p.trees {
		if tree.Root() != treeRoot {
			continue
		}
		children, ok := tree.Children(nodeHash)
		if !ok {
			return NodeResponse{IsLeaf: true}, nil
		}
		return NodeResponse{IsLeaf: false, Children: children}, nil
	}
	return NodeResponse{}, fmt.Errorf("prover: unknown tree root %s", treeRoot)
}

// GetSyncUpdates implements Prover.
func (p *MockProver) GetSyncUpdates(startPeriod uint64, maxCount uint32) ([]*syncstore.Update, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if startPeriod < p.genesisPeriod {
		return nil, ErrMockUnknownPeriod
	}
	start := int(startPeriod - p.genesisPeriod)
	if start >= len(p.updates) {
		return nil, nil
	}
	end := start + int(maxCount)
	if end > len(p.updates) {
		end = len(p.updates)
	}
	return append([]*syncstore.Update(nil), p.updates[start:end]...), nil
}

// SetNodeOverride forces GetNode(treeRoot, nodeHash) to return resp,
// regardless of the tree's actual contents — used to simulate a
// dishonest prover serving a structurally malformed node (spec.md S5).
func (p *MockProver) SetNodeOverride(treeRoot, nodeHash types.Digest, resp NodeResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodeOverrides[[2]types.Digest{treeRoot, nodeHash}] = resp
}

// Peaks returns a copy of the prover's claimed peaks, for test
// assertions.
func (p *MockProver) Peaks() []mmr.Peak {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]mmr.Peak(nil), p.peaks...)
}
