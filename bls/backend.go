// Package bls abstracts aggregate-signature verification for the sync
// store's fraud-proof predicate (syncstore.SyncUpdateVerify). The
// concrete signature scheme is explicitly out of scope for the
// superlight core per spec.md §1/§6.4 — the core only needs "an
// aggregate signature by prev's public keys verifies" to be decidable.
// This package offers the same two-backend shape the teacher's
// crypto.BLSBackend does: a default pure-Go backend usable with no
// build tags, and a -tags blst backend wired to the real
// supranational/blst BLS12-381 library.
package bls

// Backend verifies an aggregate signature produced by a subset of a
// committee's public keys, all signing the same message (the
// "FastAggregateVerify" case — every honest sync-committee signer
// attests to the same signing root).
type Backend interface {
	// FastAggregateVerify reports whether sig is a valid aggregate of
	// the signatures of exactly the given signer public keys over msg.
	FastAggregateVerify(signers [][]byte, msg []byte, sig []byte) bool

	// Name identifies the backend, for logging/diagnostics.
	Name() string
}

// DefaultBackend returns the Keccak-binding backend used when no
// -tags blst build flag is supplied. It is NOT a real BLS
// implementation; it is the same commitment scheme the teacher's own
// light.VerifySyncCommitteeSignature uses, and matches spec.md §6.4's
// allowance that "any encoding suffices as long as the bytes fed to H
// ... are reproduced exactly on both sides."
func DefaultBackend() Backend {
	return &keccakBackend{}
}
