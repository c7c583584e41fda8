package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var bucketTrees = []byte("trees")

// ErrTreeNotFound is returned when no tree exists for a campaign id.
var ErrTreeNotFound = errors.New("tree not found")

// treeStore persists generated commitment trees in the local workspace so
// proofs can be re-derived without the original recipients file.
type treeStore struct {
	db *bolt.DB
}

// storedTree is the JSON payload kept per campaign.
type storedTree struct {
	Root   string       `json:"root"`
	Leaves []storedLeaf `json:"leaves"`
}

type storedLeaf struct {
	Address string   `json:"address"`
	Amount  string   `json:"amount"`
	Proof   []string `json:"proof"`
}

func openTreeStore(dataDir string) (*treeStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dataDir, "trees.db"), 0o600, nil)
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTrees)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &treeStore{db: db}, nil
}

func (s *treeStore) Close() error {
	return s.db.Close()
}

func (s *treeStore) Put(campaignID string, tree *storedTree) error {
	payload, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTrees).Put([]byte(campaignID), payload)
	})
}

func (s *treeStore) Get(campaignID string) (*storedTree, error) {
	var tree storedTree
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketTrees).Get([]byte(campaignID))
		if raw == nil {
			return ErrTreeNotFound
		}
		return json.Unmarshal(raw, &tree)
	})
	if err != nil {
		return nil, err
	}
	return &tree, nil
}
