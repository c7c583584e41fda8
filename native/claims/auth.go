package claims

import (
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"lockdrop/crypto/typedsig"
)

// Typed-message shapes accepted by the engine. The type strings are part of
// the signing contract with off-channel wallets.
var (
	claimAuthorizationTypeHash = ethcrypto.Keccak256([]byte(
		"ClaimAuthorization(bytes16 campaignId,address claimer,uint256 claimAmount,uint256 nonce,uint256 expiry)"))
	delegationAuthorizationTypeHash = ethcrypto.Keccak256([]byte(
		"Delegation(address delegatee,uint256 nonce,uint256 expiry)"))
)

// AuthorizationKind discriminates how a claim call proves it speaks for the
// recipient.
type AuthorizationKind uint8

const (
	// AuthorizationDirect asserts the direct caller is the recipient. No
	// signature is carried or checked.
	AuthorizationDirect AuthorizationKind = iota
	// AuthorizationSigned carries a ClaimAuthorization signed by the
	// recipient, letting a third party submit on their behalf.
	AuthorizationSigned
)

// Authorization is the tagged "signature OR direct call" variant. Modelling
// the direct case as its own kind keeps the blank-signature convention of
// wallet tooling out of the verification path entirely.
type Authorization struct {
	Kind AuthorizationKind
	Sig  SignedAuthorization
}

// DirectAuthorization returns the caller-is-recipient variant.
func DirectAuthorization() Authorization {
	return Authorization{Kind: AuthorizationDirect}
}

// SignedClaimAuthorization wraps a recipient-signed ClaimAuthorization.
func SignedClaimAuthorization(sig SignedAuthorization) Authorization {
	return Authorization{Kind: AuthorizationSigned, Sig: sig}
}

// DelegationKind discriminates the three delegation intents a claim can
// carry. Omission and self-assertion are distinct operations: None applies
// the custodian's default, Direct trusts the calling recipient, Signed
// verifies an off-channel Delegation message.
type DelegationKind uint8

const (
	DelegationNone DelegationKind = iota
	DelegationDirect
	DelegationSigned
)

// Delegation names the requested delegate for newly vested voting power and
// how that request is authorised.
type Delegation struct {
	Kind     DelegationKind
	Delegate [20]byte
	Sig      SignedAuthorization
}

// NoDelegation leaves voting power on the custodian's default.
func NoDelegation() Delegation {
	return Delegation{Kind: DelegationNone}
}

// DirectDelegation assigns the delegate on the authority of the calling
// recipient.
func DirectDelegation(delegate [20]byte) Delegation {
	return Delegation{Kind: DelegationDirect, Delegate: delegate}
}

// SignedDelegation assigns the delegate on the authority of a recipient-signed
// Delegation message.
func SignedDelegation(delegate [20]byte, sig SignedAuthorization) Delegation {
	return Delegation{Kind: DelegationSigned, Delegate: delegate, Sig: sig}
}

// ClaimAuthorizationDigest computes the signing digest for a proxy-claim
// authorization under the supplied domain.
func ClaimAuthorizationDigest(domain typedsig.Domain, id CampaignID, claimer [20]byte, amount *big.Int, nonce uint64, expiry int64) [32]byte {
	var structHash [32]byte
	copy(structHash[:], ethcrypto.Keccak256(
		claimAuthorizationTypeHash,
		typedsig.EncodeBytes16(id),
		typedsig.EncodeAddress(claimer),
		typedsig.EncodeUint(amount),
		typedsig.EncodeUint(new(big.Int).SetUint64(nonce)),
		typedsig.EncodeUint(big.NewInt(expiry)),
	))
	return typedsig.Digest(domain.Separator(), structHash)
}

// DelegationDigest computes the signing digest for a delegation authorization
// under the supplied domain.
func DelegationDigest(domain typedsig.Domain, delegate [20]byte, nonce uint64, expiry int64) [32]byte {
	var structHash [32]byte
	copy(structHash[:], ethcrypto.Keccak256(
		delegationAuthorizationTypeHash,
		typedsig.EncodeAddress(delegate),
		typedsig.EncodeUint(new(big.Int).SetUint64(nonce)),
		typedsig.EncodeUint(big.NewInt(expiry)),
	))
	return typedsig.Digest(domain.Separator(), structHash)
}
