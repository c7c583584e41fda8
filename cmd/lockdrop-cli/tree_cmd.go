package main

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"lockdrop/config"
	"lockdrop/crypto"
	"lockdrop/crypto/merkle"
)

// recipientsFile is the TOML shape the tree command consumes.
type recipientsFile struct {
	Recipient []recipientEntry `toml:"recipient"`
}

type recipientEntry struct {
	Address string `toml:"Address"`
	Amount  string `toml:"Amount"`
}

func buildTree(cfg *config.Config, recipientsPath string, rest []string) {
	var file recipientsFile
	if _, err := toml.DecodeFile(recipientsPath, &file); err != nil {
		fatalf("decode recipients file: %v", err)
	}
	if len(file.Recipient) == 0 {
		fatalf("recipients file %s lists no recipients", recipientsPath)
	}

	campaignID := uuid.NewString()
	if len(rest) > 0 {
		parsed, err := uuid.Parse(rest[0])
		if err != nil {
			fatalf("invalid campaign id %q: %v", rest[0], err)
		}
		campaignID = parsed.String()
	}

	leaves := make([][32]byte, 0, len(file.Recipient))
	entries := make([]storedLeaf, 0, len(file.Recipient))
	total := big.NewInt(0)
	for _, rec := range file.Recipient {
		addr, err := crypto.DecodeAddress(rec.Address)
		if err != nil {
			fatalf("invalid recipient address %q: %v", rec.Address, err)
		}
		amount, ok := new(big.Int).SetString(rec.Amount, 10)
		if !ok || amount.Sign() <= 0 {
			fatalf("invalid recipient amount %q", rec.Amount)
		}
		leaves = append(leaves, merkle.LeafHash(addr.Raw(), amount))
		entries = append(entries, storedLeaf{Address: rec.Address, Amount: amount.String()})
		total.Add(total, amount)
	}

	tree := merkle.NewTree(leaves)
	root := tree.Root()
	for i := range entries {
		addr, _ := crypto.DecodeAddress(entries[i].Address)
		amount, _ := new(big.Int).SetString(entries[i].Amount, 10)
		proof, ok := tree.Proof(merkle.LeafHash(addr.Raw(), amount))
		if !ok {
			fatalf("proof extraction failed for %s", entries[i].Address)
		}
		entries[i].Proof = encodeProof(proof)
	}

	store, err := openTreeStore(cfg.DataDir)
	if err != nil {
		fatalf("open tree store: %v", err)
	}
	defer store.Close()
	if err := store.Put(campaignID, &storedTree{
		Root:   hex.EncodeToString(root[:]),
		Leaves: entries,
	}); err != nil {
		fatalf("store tree: %v", err)
	}

	fmt.Printf("Campaign ID: %s\n", campaignID)
	fmt.Printf("Root:        0x%s\n", hex.EncodeToString(root[:]))
	fmt.Printf("Recipients:  %d\n", len(entries))
	fmt.Printf("Total:       %s\n", total.String())
}

func printProof(cfg *config.Config, campaignID, address string) {
	entry, err := lookupLeaf(cfg, campaignID, address)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Printf("Amount: %s\n", entry.Amount)
	for _, sibling := range entry.Proof {
		fmt.Printf("0x%s\n", sibling)
	}
}

func verifyProof(cfg *config.Config, campaignID, address string) {
	store, err := openTreeStore(cfg.DataDir)
	if err != nil {
		fatalf("open tree store: %v", err)
	}
	defer store.Close()
	tree, err := store.Get(campaignID)
	if err != nil {
		fatalf("load tree %s: %v", campaignID, err)
	}
	entry, err := findLeaf(tree, address)
	if err != nil {
		fatalf("%v", err)
	}
	addr, err := crypto.DecodeAddress(address)
	if err != nil {
		fatalf("invalid address %q: %v", address, err)
	}
	amount, ok := new(big.Int).SetString(entry.Amount, 10)
	if !ok {
		fatalf("corrupt stored amount %q", entry.Amount)
	}
	root, err := decodeHash(tree.Root)
	if err != nil {
		fatalf("corrupt stored root: %v", err)
	}
	proof, err := decodeProof(entry.Proof)
	if err != nil {
		fatalf("corrupt stored proof: %v", err)
	}
	if !merkle.Verify(root, merkle.LeafHash(addr.Raw(), amount), proof) {
		fatalf("proof for %s does not verify against root 0x%s", address, tree.Root)
	}
	fmt.Printf("OK: %s claims %s under root 0x%s\n", address, entry.Amount, tree.Root)
}

func lookupLeaf(cfg *config.Config, campaignID, address string) (*storedLeaf, error) {
	store, err := openTreeStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open tree store: %w", err)
	}
	defer store.Close()
	tree, err := store.Get(campaignID)
	if err != nil {
		return nil, fmt.Errorf("load tree %s: %w", campaignID, err)
	}
	return findLeaf(tree, address)
}

func findLeaf(tree *storedTree, address string) (*storedLeaf, error) {
	for i := range tree.Leaves {
		if tree.Leaves[i].Address == address {
			return &tree.Leaves[i], nil
		}
	}
	return nil, fmt.Errorf("recipient %s is not in the committed set", address)
}

func encodeProof(proof [][32]byte) []string {
	out := make([]string, len(proof))
	for i, sibling := range proof {
		out[i] = hex.EncodeToString(sibling[:])
	}
	return out
}

func decodeProof(encoded []string) ([][32]byte, error) {
	out := make([][32]byte, len(encoded))
	for i, sibling := range encoded {
		hash, err := decodeHash(sibling)
		if err != nil {
			return nil, err
		}
		out[i] = hash
	}
	return out, nil
}

func decodeHash(encoded string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(encoded)
	if err != nil {
		return out, err
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
