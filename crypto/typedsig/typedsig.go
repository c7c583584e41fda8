// Package typedsig implements domain-separated typed-message signatures in the
// EIP-712 shape: a domain digest bound to a struct digest through a fixed
// two-stage hash, with the signer identity recovered from a (v, r, s)
// secp256k1 signature.
package typedsig

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidSignature is returned when recovery fails or yields the zero
// identity.
var ErrInvalidSignature = errors.New("typedsig: invalid signature")

var domainTypeHash = ethcrypto.Keccak256([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))

// Domain identifies the signing context. Signatures produced against one
// domain never verify against another.
type Domain struct {
	Name              string
	Version           string
	ChainID           uint64
	VerifyingContract [20]byte
}

// Separator returns the domain digest bound into every signature.
func (d Domain) Separator() [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256(
		domainTypeHash,
		ethcrypto.Keccak256([]byte(d.Name)),
		ethcrypto.Keccak256([]byte(d.Version)),
		encodeUint(new(big.Int).SetUint64(d.ChainID)),
		encodeAddress(d.VerifyingContract),
	))
	return out
}

// Digest combines the domain separator with a struct digest using the fixed
// 0x19 0x01 prefix.
func Digest(separator, structHash [32]byte) [32]byte {
	var out [32]byte
	copy(out[:], ethcrypto.Keccak256([]byte{0x19, 0x01}, separator[:], structHash[:]))
	return out
}

// Recover extracts the signing identity from a (v, r, s) signature over the
// supplied digest. Both the 0/1 and 27/28 recovery id conventions are
// accepted.
func Recover(digest [32]byte, v uint8, r, s [32]byte) ([20]byte, error) {
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return [20]byte{}, ErrInvalidSignature
	}
	sig := make([]byte, 65)
	copy(sig[0:32], r[:])
	copy(sig[32:64], s[:])
	sig[64] = v
	pub, err := ethcrypto.SigToPub(digest[:], sig)
	if err != nil {
		return [20]byte{}, ErrInvalidSignature
	}
	var addr [20]byte
	copy(addr[:], ethcrypto.PubkeyToAddress(*pub).Bytes())
	if addr == ([20]byte{}) {
		return [20]byte{}, ErrInvalidSignature
	}
	return addr, nil
}

// Sign produces the (v, r, s) triple for the supplied digest. It exists for
// tooling and tests; the engine itself only ever recovers.
func Sign(digest [32]byte, key *ecdsa.PrivateKey) (uint8, [32]byte, [32]byte, error) {
	sig, err := ethcrypto.Sign(digest[:], key)
	if err != nil {
		return 0, [32]byte{}, [32]byte{}, err
	}
	var r, s [32]byte
	copy(r[:], sig[0:32])
	copy(s[:], sig[32:64])
	return sig[64] + 27, r, s, nil
}

// EncodeUint left-pads an unsigned integer to a 32-byte word for struct
// hashing.
func EncodeUint(v *big.Int) []byte { return encodeUint(v) }

// EncodeAddress left-pads a 20-byte identity to a 32-byte word.
func EncodeAddress(addr [20]byte) []byte { return encodeAddress(addr) }

// EncodeBytes16 right-pads a 16-byte identifier to a 32-byte word, matching
// the solidity bytes16 encoding.
func EncodeBytes16(id [16]byte) []byte {
	out := make([]byte, 32)
	copy(out[:16], id[:])
	return out
}

func encodeUint(v *big.Int) []byte {
	out := make([]byte, 32)
	if v != nil {
		v.FillBytes(out)
	}
	return out
}

func encodeAddress(addr [20]byte) []byte {
	out := make([]byte, 32)
	copy(out[12:], addr[:])
	return out
}
