// Package vostconfig is the repository-level configuration file:
// author/email signature defaults and the repo's
// hash-algorithm marker, stored as TOML under the bare repo's "config"
// file.
package vostconfig

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"
)

// Core holds repo-identity settings that are not expected to vary by user.
type Core struct {
	// Hash names the object-hashing algorithm this repo was created with.
	// Always "sha1" for vost; kept as an explicit field, not
	// a constant, so a future reader opening an old repo can tell what it
	// was stamped with.
	Hash string `toml:"hash"`
}

// User holds the signature stamped on commits this repo creates.
type User struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// Config is the full repository configuration file.
type Config struct {
	Core Core `toml:"core"`
	User User `toml:"user"`
}

// Default returns the configuration a freshly-initialized repo gets absent
// any overrides.
func Default() *Config {
	return &Config{
		Core: Core{Hash: "sha1"},
		User: User{Name: "vost", Email: "vost@localhost"},
	}
}

// Overwrite merges non-zero fields of other into c: an explicitly-set
// override always wins over the default it's layered onto.
func (c *Config) Overwrite(other *Config) {
	if other == nil {
		return
	}
	if other.Core.Hash != "" {
		c.Core.Hash = other.Core.Hash
	}
	if other.User.Name != "" {
		c.User.Name = other.User.Name
	}
	if other.User.Email != "" {
		c.User.Email = other.User.Email
	}
}

// Load reads the TOML config file at path, layered onto Default(). A
// missing file is not an error; it simply yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	var onDisk Config
	if _, err := toml.Decode(string(data), &onDisk); err != nil {
		return nil, err
	}
	cfg.Overwrite(&onDisk)
	return cfg, nil
}

// Save writes cfg as TOML to path.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
