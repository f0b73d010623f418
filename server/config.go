package server

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig is the on-disk TOML representation of a Config, loaded by
// LoadConfigFile. Field names are lowercased to match typical TOML style.
type FileConfig struct {
	ListenAddress   string `toml:"listen_address"`
	BootstrapSecret string `toml:"bootstrap_secret"`
	Seed            int64  `toml:"seed"`
}

// LoadConfigFile reads a TOML config file at path and converts it to a
// Config.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	return Config{
		ListenAddress:   fc.ListenAddress,
		BootstrapSecret: fc.BootstrapSecret,
		Seed:            fc.Seed,
	}, nil
}

// FillDefaults returns a copy of cfg with unset fields given their
// defaults: listen on localhost:8080, seed the driver loop's random source
// from 1.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.ListenAddress == "" {
		out.ListenAddress = "localhost:8080"
	}
	if out.Seed == 0 {
		out.Seed = 1
	}
	return out
}
