package bls

import "github.com/eth2030/superlight/types"

// keccakBackend implements Backend as a deterministic Keccak256 binding
// commitment rather than real pairing-based BLS verification:
//
//	expected = H(msg || concat(signers...))
//
// A genuine signer (holder of the matching secret key, in whatever real
// scheme a deployment chooses) is assumed to be able to compute this
// same commitment; this package's job is only to give the core a
// concrete, swappable predicate to call, per spec.md's explicit
// decision to leave the signature scheme external.
type keccakBackend struct{}

func (b *keccakBackend) Name() string { return "keccak-binding" }

func (b *keccakBackend) FastAggregateVerify(signers [][]byte, msg []byte, sig []byte) bool {
	if len(signers) == 0 || len(sig) == 0 {
		return false
	}
	parts := make([][]byte, 0, len(signers)+1)
	parts = append(parts, msg)
	parts = append(parts, signers...)
	expected := types.Hash(parts...)

	if len(sig) != types.DigestLength {
		return false
	}
	for i := range expected {
		if sig[i] != expected[i] {
			return false
		}
	}
	return true
}

// Sign produces the commitment Signature for the given signers and
// message, for use by test fixtures and mock provers constructing
// valid updates.
func Sign(signers [][]byte, msg []byte) []byte {
	parts := make([][]byte, 0, len(signers)+1)
	parts = append(parts, msg)
	parts = append(parts, signers...)
	d := types.Hash(parts...)
	return d.Bytes()
}
