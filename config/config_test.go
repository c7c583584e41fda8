package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"lockdrop/crypto"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockdrop.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./lockdrop-data", cfg.DataDir)
	require.Equal(t, "LockdropClaims", cfg.Domain.Name)
	require.Equal(t, "1", cfg.Domain.Version)
	require.Equal(t, uint64(1), cfg.Domain.ChainID)

	// The default file is written and loads back identically.
	_, err = os.Stat(path)
	require.NoError(t, err)
	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, reloaded)
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockdrop.toml")
	contract := crypto.MustNewAddress(crypto.LockdropPrefix, make([]byte, 20)).String()
	body := `
DataDir = "/var/lib/lockdrop"
KeystorePath = "/var/lib/lockdrop/keys"

[Domain]
Name = "TestDrop"
Version = "2"
ChainID = 1337
VerifyingContract = "` + contract + `"
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/lockdrop", cfg.DataDir)
	require.Equal(t, "/var/lib/lockdrop/keys", cfg.KeystorePath)
	require.Equal(t, "TestDrop", cfg.Domain.Name)
	require.Equal(t, uint64(1337), cfg.Domain.ChainID)

	domain, err := cfg.SigningDomain()
	require.NoError(t, err)
	require.Equal(t, "TestDrop", domain.Name)
	require.Equal(t, "2", domain.Version)
	require.Equal(t, uint64(1337), domain.ChainID)
	require.Equal(t, [20]byte{}, domain.VerifyingContract)
}

func TestLoadFillsMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lockdrop.toml")
	require.NoError(t, os.WriteFile(path, []byte("KeystorePath = \"./keys\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "./lockdrop-data", cfg.DataDir)
	require.Equal(t, "./keys", cfg.KeystorePath)
	require.Equal(t, "LockdropClaims", cfg.Domain.Name)
}

func TestSigningDomainRejectsBadContract(t *testing.T) {
	cfg := &Config{Domain: DomainConfig{Name: "X", Version: "1", ChainID: 1, VerifyingContract: "not-bech32"}}
	_, err := cfg.SigningDomain()
	require.Error(t, err)

	cfg.Domain.VerifyingContract = ""
	cfg.Domain.Name = " "
	_, err = cfg.SigningDomain()
	require.Error(t, err)
}
