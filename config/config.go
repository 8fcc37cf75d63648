// Package config is the contract a command-line front end uses to load
// its settings: a disk-backed struct with defaults and a Load/Save
// pair, decoded from TOML.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/petersieg/palo/errs"
)

// Geometry mirrors fs.Geometry so a config file can specify
// it without importing the fs package (keeps config dependency-light).
type Geometry struct {
	Disks     int `toml:"disks"`
	Cylinders int `toml:"cylinders"`
	Heads     int `toml:"heads"`
	Sectors   int `toml:"sectors"`
}

// Config is the full set of knobs an emulator front end would load
// before constructing a mce.Engine and fs.FS.
type Config struct {
	ConstantROM  string   `toml:"constant_rom"`
	MicrocodeROM []string `toml:"microcode_rom"`
	Disk1        string   `toml:"disk1"`
	Disk2        string   `toml:"disk2"`
	Geometry     Geometry `toml:"geometry"`

	UDPPort int    `toml:"udp_port"`
	LogLevel string `toml:"log_level"`
}

// Default returns the configuration used when no file is present: a
// single-platter Alto II disk (203 cylinders, 2 heads, 12 sectors) and
// the canonical Alto ethernet broadcast port.
func Default() Config {
	return Config{
		Geometry: Geometry{Disks: 1, Cylinders: 203, Heads: 2, Sectors: 12},
		UDPPort:  42424,
		LogLevel: "info",
	}
}

// Load decodes a TOML configuration file at path, starting from
// Default() so a partial file only overrides what it mentions.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errs.Errorf(errs.IoError, "config: cannot read %q: %v", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errs.Errorf(errs.IoError, "config: cannot parse %q: %v", path, err)
	}

	return cfg, nil
}

// Save writes cfg back out as TOML, for tools that let a user tweak
// settings interactively and persist them.
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Errorf(errs.IoError, "config: cannot create %q: %v", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return errs.Errorf(errs.IoError, "config: cannot encode %q: %v", path, err)
	}
	return nil
}
