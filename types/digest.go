// Package types defines the shared data model for the superlight
// verifier: the digest primitive, byte utilities, and committee
// representation consumed by every other package (merkle, mmr,
// syncstore, client).
package types

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// DigestLength is the fixed width, in bytes, of every digest produced by
// Hash. The protocol is parametric in the hash function but not in its
// output width: every peak, node, and leaf hash is this size.
const DigestLength = 32

// Digest is the fixed-width output of the collision-resistant hash H used
// throughout the protocol (Merkle nodes, MMR peaks, committee roots).
type Digest [DigestLength]byte

// ZeroDigest is the all-zero digest, used as a sentinel for "absent".
var ZeroDigest Digest

// IsZero reports whether d is the all-zero digest.
func (d Digest) IsZero() bool { return d == ZeroDigest }

// Bytes returns the byte representation of the digest.
func (d Digest) Bytes() []byte { return d[:] }

// Hex returns the 0x-prefixed hex representation of the digest.
func (d Digest) Hex() string { return fmt.Sprintf("0x%x", d[:]) }

// String implements fmt.Stringer.
func (d Digest) String() string { return d.Hex() }

// BytesToDigest converts a byte slice to a Digest, left-padding with
// zeros if shorter than DigestLength and truncating from the left if
// longer (matching the teacher's types.Hash convention).
func BytesToDigest(b []byte) Digest {
	var d Digest
	if len(b) > DigestLength {
		b = b[len(b)-DigestLength:]
	}
	copy(d[DigestLength-len(b):], b)
	return d
}

// HexToDigest parses a 0x-prefixed (or bare) hex string into a Digest.
func HexToDigest(s string) (Digest, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, err
	}
	return BytesToDigest(b), nil
}

// Eq reports whether two digests are equal. The comparison need not be
// constant-time: per spec, both sides of any disagreement are already
// adversary-controlled, so there is no secret to protect from timing
// leaks here.
func Eq(a, b Digest) bool { return a == b }

// Concat concatenates any number of byte slices into one.
func Concat(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// Hash computes the canonical collision-resistant hash H over the
// concatenation of data. Every digest produced anywhere in the protocol —
// leaves, internal nodes, peaks, bagged roots, committee roots — goes
// through this one function, matching the teacher's single
// crypto.Keccak256 entry point.
func Hash(data ...[]byte) Digest {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	var out Digest
	d.Sum(out[:0])
	return out
}
