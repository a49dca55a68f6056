package prover

import (
	"github.com/eth2030/superlight/bls"
	"github.com/eth2030/superlight/syncstore"
	"github.com/eth2030/superlight/types"
)

// The functions below build deterministic committee chains and signed
// updates for tests. They live outside _test.go so the client package's
// tests can reuse them to assemble honest and dishonest prover fleets
// without duplicating this bookkeeping per package.

// DeriveCommittee derives a committee of the given size from seed,
// deterministically and reproducibly (no randomness, per the "never
// run the Go toolchain" testing discipline: fixtures must be hand
// verifiable).
func DeriveCommittee(seed types.Digest, size int) types.Committee {
	c := make(types.Committee, size)
	for i := range c {
		h := types.Hash(seed.Bytes(), []byte{byte(i), byte(i >> 8)})
		copy(c[i][:], h[:])
		// second half of the key derived from a distinct domain tag so
		// 48-byte keys aren't just a repeated 32-byte hash.
		h2 := types.Hash(seed.Bytes(), []byte("superlight-pk-tail"), []byte{byte(i)})
		copy(c[i][types.DigestLength:], h2[:types.PublicKeyLength-types.DigestLength])
	}
	return c
}

// DeriveNextCommittee deterministically rotates prev into the committee
// for the following period, the mock stand-in for a real chain's
// validator-rotation algorithm.
func DeriveNextCommittee(prev types.Committee, period uint64) types.Committee {
	seed := types.Hash(prev.Root().Bytes(), encodeUint64(period))
	return DeriveCommittee(seed, len(prev))
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * (7 - i)))
	}
	return b
}

// SignUpdate builds an Update transitioning some previous committee to
// cur, signed by the first signerCount members of prev (in committee
// order). signerCount may be less than len(prev) to produce a
// below-quorum update for tests.
func SignUpdate(prev, cur types.Committee, signerCount int) *syncstore.Update {
	bits := syncstore.MakeSignerBits(len(prev), signerCount)
	signers := make([][]byte, 0, signerCount)
	for i, pk := range prev {
		if bitSet(bits, i) {
			cp := pk
			signers = append(signers, cp[:])
		}
	}
	sig := bls.Sign(signers, cur.Root().Bytes())
	return &syncstore.Update{NextCommittee: cur, SignerBits: bits, Signature: sig}
}

// belowQuorumCount returns the largest signer count that fails
// syncstore's 2/3 quorum check for a committee of size total.
func belowQuorumCount(total int) int {
	minPassing := (total*syncstore.QuorumNumerator + syncstore.QuorumDenominator - 1) / syncstore.QuorumDenominator
	if minPassing <= 0 {
		return 0
	}
	return minPassing - 1
}

func bitSet(bits []byte, i int) bool {
	byteIdx, bitIdx := i/8, uint(i%8)
	if byteIdx >= len(bits) {
		return false
	}
	return bits[byteIdx]&(1<<bitIdx) != 0
}

// HonestChain is a fully self-consistent committee history: each
// Updates[i] genuinely transitions Committees[i] to Committees[i+1]
// with full quorum.
type HonestChain struct {
	GenesisPeriod uint64
	Committees    []types.Committee
	Updates       []*syncstore.Update
}

// BuildHonestChain derives length committees starting from genesis
// (period genesisPeriod) and signs every transition with full quorum.
func BuildHonestChain(genesisPeriod uint64, genesis types.Committee, length int) *HonestChain {
	committees := make([]types.Committee, length)
	committees[0] = genesis
	for i := 1; i < length; i++ {
		committees[i] = DeriveNextCommittee(committees[i-1], genesisPeriod+uint64(i))
	}
	updates := make([]*syncstore.Update, length-1)
	for i := 0; i < length-1; i++ {
		updates[i] = SignUpdate(committees[i], committees[i+1], len(committees[i]))
	}
	return &HonestChain{GenesisPeriod: genesisPeriod, Committees: committees, Updates: updates}
}

// Fork returns a copy of chain diverging strictly after forkPeriod: the
// committees from forkPeriod+1 onward are re-derived from a different
// seed, and the transition update into forkPeriod+1 is deliberately
// under-signed so it fails syncstore.Store.SyncUpdateVerify against the
// real previous committee, modelling a dishonest prover from that point
// on (spec.md scenario S4). The committee at forkPeriod itself is kept,
// so a fork never diverges at the genesis leaf.
func (c *HonestChain) Fork(forkPeriod uint64, seedTag byte) *HonestChain {
	forkIdx := int(forkPeriod - c.GenesisPeriod)
	committees := append([]types.Committee(nil), c.Committees[:forkIdx+1]...)
	updates := append([]*syncstore.Update(nil), c.Updates[:forkIdx]...)

	for i := forkIdx + 1; i < len(c.Committees); i++ {
		seed := types.Hash(committees[i-1].Root().Bytes(), []byte{seedTag}, encodeUint64(c.GenesisPeriod+uint64(i)))
		committees = append(committees, DeriveCommittee(seed, len(committees[i-1])))
	}
	for i := forkIdx; i < len(committees)-1; i++ {
		signerCount := len(committees[i])
		if i == forkIdx {
			// below quorum: the dishonest fork can't produce a genuine
			// majority signature from the real previous committee.
			signerCount = belowQuorumCount(len(committees[i]))
		}
		updates = append(updates, SignUpdate(committees[i], committees[i+1], signerCount))
	}
	return &HonestChain{GenesisPeriod: c.GenesisPeriod, Committees: committees, Updates: updates}
}

// ToMockProver builds a MockProver (with the given index) over the
// chain's full committee and update history.
func (c *HonestChain) ToMockProver(index, n int) (*MockProver, error) {
	return NewMockProver(index, n, c.GenesisPeriod, c.Committees, c.Updates)
}
