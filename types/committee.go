package types

// PublicKeyLength is the width of a single committee member's public key.
// 48 bytes matches a BLS12-381 G1 compressed public key, the same size the
// teacher's sync-committee pubkeys use.
const PublicKeyLength = 48

// PublicKey is a single committee member's public key.
type PublicKey [PublicKeyLength]byte

// Committee is the ordered sequence of public keys active during a period.
type Committee []PublicKey

// Root computes the committee's commitment: H(concat(keys)), in member
// order. Two committees with the same members in different orders are
// NOT considered equal — ordering is part of the committed value, per
// spec.md §3.
func (c Committee) Root() Digest {
	parts := make([][]byte, len(c))
	for i, pk := range c {
		cp := pk
		parts[i] = cp[:]
	}
	return Hash(Concat(parts...))
}

// Equal reports whether two committees contain the same keys in the same
// order.
func (c Committee) Equal(other Committee) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if c[i] != other[i] {
			return false
		}
	}
	return true
}
