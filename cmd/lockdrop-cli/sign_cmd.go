package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"lockdrop/config"
	"lockdrop/crypto"
	"lockdrop/crypto/typedsig"
	"lockdrop/native/claims"
)

func generateKey(path string) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		fatalf("generate key: %v", err)
	}
	encoded := hex.EncodeToString(key.Bytes())
	if err := os.WriteFile(path, []byte(encoded), 0o600); err != nil {
		fatalf("write key file: %v", err)
	}
	fmt.Printf("Address: %s\n", key.PubKey().Address().String())
	fmt.Printf("Key saved to %s\n", path)
}

func loadKey(path string) *crypto.PrivateKey {
	raw, err := os.ReadFile(path)
	if err != nil {
		fatalf("read key file: %v", err)
	}
	decoded, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		fatalf("decode key file: %v", err)
	}
	key, err := crypto.PrivateKeyFromBytes(decoded)
	if err != nil {
		fatalf("parse key: %v", err)
	}
	return key
}

func signClaim(cfg *config.Config, keyPath, campaignID, amountStr, nonceStr, expiryStr string) {
	domain, err := cfg.SigningDomain()
	if err != nil {
		fatalf("%v", err)
	}
	parsed, err := uuid.Parse(campaignID)
	if err != nil {
		fatalf("invalid campaign id %q: %v", campaignID, err)
	}
	amount, ok := new(big.Int).SetString(amountStr, 10)
	if !ok || amount.Sign() <= 0 {
		fatalf("invalid amount %q", amountStr)
	}
	nonce, expiry := parseNonceExpiry(nonceStr, expiryStr)

	key := loadKey(keyPath)
	claimer := key.PubKey().Address().Raw()
	digest := claims.ClaimAuthorizationDigest(domain, claims.CampaignID(parsed), claimer, amount, nonce, expiry)
	printSignature(digest, key, nonce, expiry)
}

func signDelegation(cfg *config.Config, keyPath, delegateStr, nonceStr, expiryStr string) {
	domain, err := cfg.SigningDomain()
	if err != nil {
		fatalf("%v", err)
	}
	delegate, err := crypto.DecodeAddress(delegateStr)
	if err != nil {
		fatalf("invalid delegate address %q: %v", delegateStr, err)
	}
	nonce, expiry := parseNonceExpiry(nonceStr, expiryStr)

	key := loadKey(keyPath)
	digest := claims.DelegationDigest(domain, delegate.Raw(), nonce, expiry)
	printSignature(digest, key, nonce, expiry)
}

func parseNonceExpiry(nonceStr, expiryStr string) (uint64, int64) {
	nonce, err := strconv.ParseUint(nonceStr, 10, 64)
	if err != nil {
		fatalf("invalid nonce %q: %v", nonceStr, err)
	}
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		fatalf("invalid expiry %q: %v", expiryStr, err)
	}
	return nonce, expiry
}

func printSignature(digest [32]byte, key *crypto.PrivateKey, nonce uint64, expiry int64) {
	v, r, s, err := typedsig.Sign(digest, key.PrivateKey)
	if err != nil {
		fatalf("sign: %v", err)
	}
	fmt.Printf("Signer: %s\n", key.PubKey().Address().String())
	fmt.Printf("Nonce:  %d\n", nonce)
	fmt.Printf("Expiry: %d\n", expiry)
	fmt.Printf("V:      %d\n", v)
	fmt.Printf("R:      0x%s\n", hex.EncodeToString(r[:]))
	fmt.Printf("S:      0x%s\n", hex.EncodeToString(s[:]))
}
