//go:build blst

// Real BLS12-381 adapter using the supranational/blst library, mirroring
// the teacher's crypto/bls_blst_adapter.go: public keys in G1 (48-byte
// compressed P1Affine), signatures in G2 (96-byte compressed P2Affine),
// same "MinPk" scheme Ethereum's sync committee signatures use.
//
// Build with: go build -tags blst
package bls

import blst "github.com/supranational/blst/bindings/go"

// blstDST is the domain separation tag for FastAggregateVerify, matching
// the Ethereum consensus-layer convention.
var blstDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// BlstBackend implements Backend using real BLS12-381 pairing
// verification via blst.
type BlstBackend struct{}

// NewBlstBackend constructs a Backend backed by the blst library.
func NewBlstBackend() *BlstBackend { return &BlstBackend{} }

func (b *BlstBackend) Name() string { return "blst" }

// FastAggregateVerify verifies that sig is a valid BLS aggregate
// signature of all given signer public keys over msg.
func (b *BlstBackend) FastAggregateVerify(signers [][]byte, msg []byte, sig []byte) bool {
	n := len(signers)
	if n == 0 || len(sig) == 0 {
		return false
	}

	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}

	pks := make([]*blst.P1Affine, n)
	for i, pkBytes := range signers {
		pks[i] = new(blst.P1Affine).Uncompress(pkBytes)
		if pks[i] == nil {
			return false
		}
	}

	return s.FastAggregateVerify(true, pks, msg, blstDST)
}
