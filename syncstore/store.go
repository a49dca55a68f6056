// Package syncstore implements the verifier-side sync store (component
// C4): the genesis committee and period the verifier already trusts,
// the current period reported by its own clock, and the single-update
// fraud-proof predicate SyncUpdateVerify that the bisection game's
// final fraud-proof check (client.Client's checkNodeAndPrevUpdate) consumes.
package syncstore

import (
	"sync"

	"github.com/eth2030/superlight/bls"
	"github.com/eth2030/superlight/types"
)

// QuorumNumerator and QuorumDenominator fix the minimum aggregate
// participation an update's signers must meet: at least 2/3 of the
// previous committee, the same supermajority threshold the teacher's
// SyncCommitteeTracker.ValidateUpdate and VerifySyncCommitteeSignature
// both enforce.
const (
	QuorumNumerator   = 2
	QuorumDenominator = 3
)

// Update carries the data attesting that the committee transitioned
// from prev to cur during one period: the next committee, a bitfield
// over prev indicating which members signed, and the aggregate
// signature. It is the concrete shape of spec.md §3's "external, opaque
// to the core" sync update — opaque to client and merkle/mmr, but this
// is the one package that must look inside it.
type Update struct {
	NextCommittee types.Committee
	SignerBits    []byte
	Signature     []byte
}

// Store is the verifier-role interface the client consumes (spec.md
// §4.4 / §6.2).
type Store interface {
	GetGenesisSyncCommittee() types.Committee
	GetGenesisPeriod() uint64
	GetCurrentPeriod() uint64
	SyncUpdateVerify(prev, cur types.Committee, update *Update) bool
}

// MemoryStore is a Store backed by an in-memory genesis committee and a
// caller-supplied current-period clock, matching the teacher's
// MemoryLightStore shape (plain fields behind an RWMutex, no
// persistence).
type MemoryStore struct {
	mu               sync.RWMutex
	genesisCommittee types.Committee
	genesisPeriod    uint64
	currentPeriod    uint64
	backend          bls.Backend
}

// NewMemoryStore creates a Store seeded with the genesis committee and
// period, and the current period as reported by the verifier's clock.
// If backend is nil, bls.DefaultBackend() is used.
func NewMemoryStore(genesisCommittee types.Committee, genesisPeriod, currentPeriod uint64, backend bls.Backend) *MemoryStore {
	if backend == nil {
		backend = bls.DefaultBackend()
	}
	return &MemoryStore{
		genesisCommittee: genesisCommittee,
		genesisPeriod:    genesisPeriod,
		currentPeriod:    currentPeriod,
		backend:          backend,
	}
}

// GetGenesisSyncCommittee returns the committee known a priori.
func (s *MemoryStore) GetGenesisSyncCommittee() types.Committee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.genesisCommittee
}

// GetGenesisPeriod returns the genesis period index.
func (s *MemoryStore) GetGenesisPeriod() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.genesisPeriod
}

// GetCurrentPeriod returns the verifier's own current-period clock
// value.
func (s *MemoryStore) GetCurrentPeriod() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPeriod
}

// AdvancePeriod moves the verifier's clock forward. Exposed for tests
// and long-running verifiers that re-run sync() periodically; the
// client never calls it.
func (s *MemoryStore) AdvancePeriod(period uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if period > s.currentPeriod {
		s.currentPeriod = period
	}
}

// SyncUpdateVerify returns true iff (i) update.NextCommittee equals cur,
// and (ii) the aggregate signature in update verifies under the
// aggregate of prev's public keys with sufficient participation —
// spec.md §4.4's two-part predicate. Any malformed input (nil update,
// bitfield too short for prev, insufficient quorum) yields false; it
// never panics.
func (s *MemoryStore) SyncUpdateVerify(prev, cur types.Committee, update *Update) bool {
	if update == nil {
		return false
	}
	if !update.NextCommittee.Equal(cur) {
		return false
	}

	signers, ok := CommitteeParticipation(prev, update.SignerBits)
	if !ok || !MeetsQuorum(len(signers), len(prev)) {
		return false
	}

	msg := cur.Root()
	return s.backend.FastAggregateVerify(signers, msg.Bytes(), update.Signature)
}

// CommitteeParticipation extracts the public keys of committee members
// whose corresponding bit is set in bits. ok is false if bits is too
// short to address every member of committee. This is the exported
// form of the aggregate-participation accounting SyncUpdateVerify
// folds into its predicate, so a Store implementation built on a
// different quorum rule can still reuse the bitfield decoding.
func CommitteeParticipation(committee types.Committee, bits []byte) (signers [][]byte, ok bool) {
	needed := (len(committee) + 7) / 8
	if len(bits) < needed {
		return nil, false
	}
	for i, pk := range committee {
		byteIdx := i / 8
		bitIdx := uint(i % 8)
		if bits[byteIdx]&(1<<bitIdx) != 0 {
			cp := pk
			signers = append(signers, cp[:])
		}
	}
	return signers, true
}

// MeetsQuorum reports whether signers*QuorumDenominator >=
// total*QuorumNumerator, avoiding floating point.
func MeetsQuorum(signers, total int) bool {
	if total == 0 {
		return false
	}
	return signers*QuorumDenominator >= total*QuorumNumerator
}

// MakeSignerBits builds a participation bitfield marking the first n
// members of a committee of the given size as signers. Used by tests
// and mock provers to construct valid updates.
func MakeSignerBits(committeeSize, signers int) []byte {
	bits := make([]byte, (committeeSize+7)/8)
	for i := 0; i < signers && i < committeeSize; i++ {
		bits[i/8] |= 1 << uint(i%8)
	}
	return bits
}
