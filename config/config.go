package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"lockdrop/crypto"
	"lockdrop/crypto/typedsig"
)

// Config holds the tooling configuration: where local artifacts live and the
// typed-message domain authorizations are signed under. The domain values
// must match the deployment the claim engine verifies for, or every signed
// authorization will recover to the wrong identity.
type Config struct {
	DataDir      string       `toml:"DataDir"`
	KeystorePath string       `toml:"KeystorePath"`
	Domain       DomainConfig `toml:"Domain"`
}

// DomainConfig mirrors typedsig.Domain with a bech32-encoded contract.
type DomainConfig struct {
	Name              string `toml:"Name"`
	Version           string `toml:"Version"`
	ChainID           uint64 `toml:"ChainID"`
	VerifyingContract string `toml:"VerifyingContract"`
}

// Load loads the configuration from the given path, writing a default file
// when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// SigningDomain converts the configured domain into its signing form.
func (c *Config) SigningDomain() (typedsig.Domain, error) {
	domain := typedsig.Domain{
		Name:    strings.TrimSpace(c.Domain.Name),
		Version: strings.TrimSpace(c.Domain.Version),
		ChainID: c.Domain.ChainID,
	}
	if domain.Name == "" {
		return typedsig.Domain{}, fmt.Errorf("config: domain name required")
	}
	if domain.Version == "" {
		return typedsig.Domain{}, fmt.Errorf("config: domain version required")
	}
	if contract := strings.TrimSpace(c.Domain.VerifyingContract); contract != "" {
		addr, err := crypto.DecodeAddress(contract)
		if err != nil {
			return typedsig.Domain{}, fmt.Errorf("config: invalid verifying contract: %w", err)
		}
		domain.VerifyingContract = addr.Raw()
	}
	return domain, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./lockdrop-data"
	}
	if strings.TrimSpace(cfg.Domain.Name) == "" {
		cfg.Domain.Name = "LockdropClaims"
	}
	if strings.TrimSpace(cfg.Domain.Version) == "" {
		cfg.Domain.Version = "1"
	}
	if cfg.Domain.ChainID == 0 {
		cfg.Domain.ChainID = 1
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
