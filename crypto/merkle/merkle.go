// Package merkle verifies membership proofs against the root commitment a
// campaign was created with. Roots are produced off-system (see the
// lockdrop-cli tree command); the hashing rules below are therefore a
// portability contract shared with whatever tool built the root:
//
//   - leaf  = keccak256(keccak256(abi.encode(address, uint256))), i.e. the
//     20-byte recipient identity left-padded to 32 bytes followed by the
//     amount as a 32-byte big-endian integer, hashed twice.
//   - node  = keccak256(min(a, b) || max(a, b)) where min/max compare the two
//     child hashes byte-wise. Sorting the pair makes proof verification
//     independent of left/right position, so proofs carry sibling hashes only.
//   - an odd node at the end of a level is promoted unchanged.
package merkle

import (
	"bytes"
	"math/big"
	"sort"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// LeafHash computes the canonical leaf commitment for one (recipient, amount)
// pair.
func LeafHash(recipient [20]byte, amount *big.Int) [32]byte {
	var encoded [64]byte
	copy(encoded[12:32], recipient[:])
	if amount != nil {
		amount.FillBytes(encoded[32:64])
	}
	inner := ethcrypto.Keccak256(encoded[:])
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(inner))
	return out
}

func hashPair(a, b [32]byte) [32]byte {
	var out [32]byte
	if bytes.Compare(a[:], b[:]) <= 0 {
		copy(out[:], ethcrypto.Keccak256(a[:], b[:]))
	} else {
		copy(out[:], ethcrypto.Keccak256(b[:], a[:]))
	}
	return out
}

// Verify recomputes the root from the leaf and ordered sibling hashes and
// reports whether it matches. It never returns an error; any malformed input
// simply fails to reproduce the root.
func Verify(root [32]byte, leaf [32]byte, proof [][32]byte) bool {
	computed := leaf
	for _, sibling := range proof {
		computed = hashPair(computed, sibling)
	}
	return computed == root
}

// Tree is a fully materialised commitment tree over a fixed leaf set. The
// claim engine itself never builds one; trees exist so the root tool and the
// tests can produce roots and proofs with the exact rules Verify expects.
type Tree struct {
	levels [][][32]byte
	index  map[[32]byte]int
}

// NewTree builds a tree over the supplied leaves. Leaves are sorted before
// hashing so the root is independent of input order. At least one leaf is
// required.
func NewTree(leaves [][32]byte) *Tree {
	if len(leaves) == 0 {
		return nil
	}
	base := make([][32]byte, len(leaves))
	copy(base, leaves)
	sort.Slice(base, func(i, j int) bool {
		return bytes.Compare(base[i][:], base[j][:]) < 0
	})
	index := make(map[[32]byte]int, len(base))
	for i, leaf := range base {
		index[leaf] = i
	}
	levels := [][][32]byte{base}
	for len(levels[len(levels)-1]) > 1 {
		prev := levels[len(levels)-1]
		next := make([][32]byte, 0, (len(prev)+1)/2)
		for i := 0; i < len(prev); i += 2 {
			if i+1 == len(prev) {
				next = append(next, prev[i])
				continue
			}
			next = append(next, hashPair(prev[i], prev[i+1]))
		}
		levels = append(levels, next)
	}
	return &Tree{levels: levels, index: index}
}

// Root returns the tree's root commitment.
func (t *Tree) Root() [32]byte {
	if t == nil || len(t.levels) == 0 {
		return [32]byte{}
	}
	top := t.levels[len(t.levels)-1]
	return top[0]
}

// Proof returns the sibling hashes for the supplied leaf, ordered from the
// leaf level upward. The second return is false when the leaf was not part of
// the committed set.
func (t *Tree) Proof(leaf [32]byte) ([][32]byte, bool) {
	if t == nil {
		return nil, false
	}
	pos, ok := t.index[leaf]
	if !ok {
		return nil, false
	}
	proof := make([][32]byte, 0, len(t.levels)-1)
	for _, level := range t.levels[:len(t.levels)-1] {
		sibling := pos ^ 1
		if sibling < len(level) {
			proof = append(proof, level[sibling])
		}
		pos /= 2
	}
	return proof, true
}
