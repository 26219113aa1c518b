// Package config reads tplmerge configuration files.
//
//	[scope]
//	account = "acct"
//	org = "default"
//	project = "web"
//
//	[store]
//	dir = "templates"
//
//	[limits]
//	max_depth = 10
//	max_growth_factor = 100
//	min_node_budget = 10000
//
//	[reconcile]
//	addr = "localhost:7070"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/stagecraft/tplmerge/template"
)

// DefaultFile is looked up in the working directory when no file is
// given.
const DefaultFile = "tplmerge.toml"

type Config struct {
	Scope     template.ScopeRef `toml:"scope"`
	Store     Store             `toml:"store"`
	Limits    template.Limits   `toml:"limits"`
	Reconcile Reconcile         `toml:"reconcile"`
}

type Store struct {
	// Dir holds template files. Relative paths are relative to the
	// configuration file.
	Dir string `toml:"dir"`
}

type Reconcile struct {
	// Addr is a host:port or unix socket path of a remote engine.
	Addr string `toml:"addr"`
}

// Default returns the configuration used without a file.
func Default() *Config {
	return &Config{
		Store:  Store{Dir: "templates"},
		Limits: template.DefaultLimits(),
	}
}

// Load reads path over the defaults. A missing DefaultFile is not an
// error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if cfg.Store.Dir != "" && !filepath.IsAbs(cfg.Store.Dir) {
		cfg.Store.Dir = filepath.Join(filepath.Dir(path), cfg.Store.Dir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scope.Project != "" && c.Scope.Org == "" {
		return errors.New("scope: project without org")
	}
	if c.Limits.MaxDepth < 0 || c.Limits.MaxGrowthFactor < 0 || c.Limits.MinNodeBudget < 0 {
		return errors.New("limits: negative value")
	}
	return nil
}

// Save writes c to path.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
