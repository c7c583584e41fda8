package merkle

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func testAddr(fill byte) [20]byte {
	var addr [20]byte
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func TestTreeProofsVerify(t *testing.T) {
	for _, count := range []int{1, 2, 3, 5, 8, 13} {
		leaves := make([][32]byte, 0, count)
		for i := 0; i < count; i++ {
			leaves = append(leaves, LeafHash(testAddr(byte(i+1)), big.NewInt(int64(100+i))))
		}
		tree := NewTree(leaves)
		require.NotNil(t, tree, "count=%d", count)
		root := tree.Root()
		for i := 0; i < count; i++ {
			leaf := LeafHash(testAddr(byte(i+1)), big.NewInt(int64(100+i)))
			proof, ok := tree.Proof(leaf)
			require.True(t, ok, "count=%d leaf=%d", count, i)
			require.True(t, Verify(root, leaf, proof), "count=%d leaf=%d", count, i)
		}
	}
}

func TestVerifyRejectsTamperedAmount(t *testing.T) {
	leaves := [][32]byte{
		LeafHash(testAddr(0x01), big.NewInt(100)),
		LeafHash(testAddr(0x02), big.NewInt(200)),
		LeafHash(testAddr(0x03), big.NewInt(300)),
	}
	tree := NewTree(leaves)
	proof, ok := tree.Proof(leaves[0])
	require.True(t, ok)

	forged := LeafHash(testAddr(0x01), big.NewInt(9999))
	require.False(t, Verify(tree.Root(), forged, proof))
}

func TestVerifyRejectsForeignRoot(t *testing.T) {
	leaves := [][32]byte{
		LeafHash(testAddr(0x01), big.NewInt(100)),
		LeafHash(testAddr(0x02), big.NewInt(200)),
	}
	tree := NewTree(leaves)
	proof, ok := tree.Proof(leaves[0])
	require.True(t, ok)

	other := NewTree([][32]byte{
		LeafHash(testAddr(0x0A), big.NewInt(1)),
		LeafHash(testAddr(0x0B), big.NewInt(2)),
	})
	require.False(t, Verify(other.Root(), leaves[0], proof))
}

func TestSingleLeafTree(t *testing.T) {
	leaf := LeafHash(testAddr(0x07), big.NewInt(42))
	tree := NewTree([][32]byte{leaf})
	proof, ok := tree.Proof(leaf)
	require.True(t, ok)
	require.Empty(t, proof)
	require.Equal(t, leaf, tree.Root())
	require.True(t, Verify(tree.Root(), leaf, proof))
}

func TestProofForUnknownLeaf(t *testing.T) {
	tree := NewTree([][32]byte{
		LeafHash(testAddr(0x01), big.NewInt(100)),
		LeafHash(testAddr(0x02), big.NewInt(200)),
	})
	_, ok := tree.Proof(LeafHash(testAddr(0x03), big.NewInt(300)))
	require.False(t, ok)
}

func TestRootIndependentOfLeafOrder(t *testing.T) {
	a := LeafHash(testAddr(0x01), big.NewInt(100))
	b := LeafHash(testAddr(0x02), big.NewInt(200))
	c := LeafHash(testAddr(0x03), big.NewInt(300))
	require.Equal(t, NewTree([][32]byte{a, b, c}).Root(), NewTree([][32]byte{c, a, b}).Root())
}

func TestEmptyTree(t *testing.T) {
	require.Nil(t, NewTree(nil))
}
