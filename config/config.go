// Package config loads assembler-wide settings: the memory layout the
// two-pass assembler validates addresses against, the named-trap
// vector table, and output and diagnostic settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config represents the assembler's configuration.
type Config struct {
	// Memory settings bound the addresses the two-pass assembler accepts.
	Memory struct {
		MinAddress     uint16 `toml:"min_address"`
		MinUserAddress uint16 `toml:"min_user_address"`
		MaxAddress     uint16 `toml:"max_address"`
	} `toml:"memory"`

	// Traps maps named TRAP aliases (GETC, OUT, PUTS, IN, PUTSP, HALT) to
	// their 8-bit vectors.
	Traps struct {
		Getc  uint8 `toml:"getc"`
		Out   uint8 `toml:"out"`
		Puts  uint8 `toml:"puts"`
		In    uint8 `toml:"in"`
		Putsp uint8 `toml:"putsp"`
		Halt  uint8 `toml:"halt"`
	} `toml:"traps"`

	// Output holds object-image settings. They are loaded and saved but
	// not read by the encoder, which always emits the origin word first
	// and every word big-endian.
	Output struct {
		IncludeOrigin bool   `toml:"include_origin"`
		WordOrder     string `toml:"word_order"` // "big" or "little"
	} `toml:"output"`

	// Diagnostics holds error-rendering settings. They are loaded and
	// saved but not read by cmd/lc3asm or cmd/lc3tui, which print every
	// error without source context.
	Diagnostics struct {
		MaxErrors    int  `toml:"max_errors"`
		ShowContext  bool `toml:"show_context"`
		ContextLines int  `toml:"context_lines"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns a configuration with default values matching the
// standard LC-3 memory map and TRAP vector table.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Memory.MinAddress = 0x0000
	cfg.Memory.MinUserAddress = 0x3000
	cfg.Memory.MaxAddress = 0xFFFF

	cfg.Traps.Getc = 0x20
	cfg.Traps.Out = 0x21
	cfg.Traps.Puts = 0x22
	cfg.Traps.In = 0x23
	cfg.Traps.Putsp = 0x24
	cfg.Traps.Halt = 0x25

	cfg.Output.IncludeOrigin = true
	cfg.Output.WordOrder = "big"

	cfg.Diagnostics.MaxErrors = 100
	cfg.Diagnostics.ShowContext = true
	cfg.Diagnostics.ContextLines = 1

	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "lc3asm")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "lc3asm")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file, falling back to
// DefaultConfig if it doesn't exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// TrapVector returns the 8-bit vector for a named trap alias (case
// insensitive), and false if name isn't one of the recognized aliases.
func (c *Config) TrapVector(name string) (uint8, bool) {
	switch strings.ToUpper(name) {
	case "GETC":
		return c.Traps.Getc, true
	case "OUT":
		return c.Traps.Out, true
	case "PUTS":
		return c.Traps.Puts, true
	case "IN":
		return c.Traps.In, true
	case "PUTSP":
		return c.Traps.Putsp, true
	case "HALT":
		return c.Traps.Halt, true
	default:
		return 0, false
	}
}
