// Package mmr implements the Merkle Mountain Range verifier (component
// C3): checking that a set of peaks is well-formed for a claimed leaf
// count, and the index arithmetic that maps a global leaf index to a
// peak and local in-tree index. It is grounded in the same
// peak/bagging vocabulary used by real-world MMR implementations
// (e.g. the pack's jaxnetd utils/mmr and datatrails/forestrie
// merklelog accumulators), generalized here to an arbitrary fan-out n.
package mmr

import "github.com/eth2030/superlight/types"

// Peak is one perfect n-ary tree in the forest: its root hash and the
// number of leaves it covers (a power of n).
type Peak struct {
	RootHash types.Digest
	Size     uint64
}

// Digits returns the base-n digit decomposition of leafCount, most
// significant (largest power) first, skipping zero digits — this is
// exactly the peak-size multiset an honest MMR of leafCount leaves must
// have, per spec.md §3 invariant (b). Each returned value is itself a
// power of n (the size of one peak); a digit d > 1 for power p
// contributes d distinct peaks of size n^p, each listed separately in
// non-increasing size order, matching invariant (c).
func Digits(leafCount uint64, n int) []uint64 {
	if n < 2 || leafCount == 0 {
		return nil
	}
	var powers []uint64 // power, digit pairs in ascending power order
	var digits []uint64
	rem := leafCount
	power := uint64(1)
	for rem > 0 {
		d := rem % uint64(n)
		powers = append(powers, power)
		digits = append(digits, d)
		rem /= uint64(n)
		power *= uint64(n)
	}
	var sizes []uint64
	for i := len(powers) - 1; i >= 0; i-- {
		for k := uint64(0); k < digits[i]; k++ {
			sizes = append(sizes, powers[i])
		}
	}
	return sizes
}

// BagPeaks folds the peak list right-to-left: starting from the
// rightmost peak, acc <- H(concat(peak_i.RootHash, acc)). Bagging an
// empty peak list yields the zero digest (the caller must separately
// check that this only happens when leafCount == 0, per spec.md §4.3).
func BagPeaks(peaks []Peak) types.Digest {
	if len(peaks) == 0 {
		return types.Digest{}
	}
	acc := peaks[len(peaks)-1].RootHash
	for i := len(peaks) - 2; i >= 0; i-- {
		acc = types.Hash(peaks[i].RootHash.Bytes(), acc.Bytes())
	}
	return acc
}

// Verify checks that peaks is a well-formed MMR peak list for leafCount
// leaves under fan-out n, and that bagging them yields root.
//
//  1. The peak sizes, in order, must equal Digits(leafCount, n) exactly
//     (non-increasing, matching the base-n digit decomposition).
//  2. BagPeaks(peaks) must equal root.
//
// An empty peak list is valid only when leafCount == 0, matched against
// a zero root.
func Verify(root types.Digest, peaks []Peak, leafCount uint64, n int) bool {
	if n < 2 {
		return false
	}
	if leafCount == 0 {
		return len(peaks) == 0 && root.IsZero()
	}
	want := Digits(leafCount, n)
	if len(peaks) != len(want) {
		return false
	}
	for i, p := range peaks {
		if p.Size != want[i] {
			return false
		}
	}
	return types.Eq(BagPeaks(peaks), root)
}

// GetPeakAndIndex locates the peak covering globalIndex and the local
// in-tree index within that peak, via a linear scan keeping a running
// leaf offset. ok is false if globalIndex is out of range for the given
// peaks.
func GetPeakAndIndex(peaks []Peak, globalIndex uint64) (peak Peak, localIndex uint64, offset uint64, ok bool) {
	var off uint64
	for _, p := range peaks {
		if globalIndex < off+p.Size {
			return p, globalIndex - off, off, true
		}
		off += p.Size
	}
	return Peak{}, 0, 0, false
}

// TotalLeaves returns the sum of all peak sizes.
func TotalLeaves(peaks []Peak) uint64 {
	var total uint64
	for _, p := range peaks {
		total += p.Size
	}
	return total
}
