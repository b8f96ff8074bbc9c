package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Memory.MinUserAddress != 0x3000 {
		t.Errorf("expected MinUserAddress=0x3000, got %#x", cfg.Memory.MinUserAddress)
	}
	if cfg.Memory.MaxAddress != 0xFFFF {
		t.Errorf("expected MaxAddress=0xFFFF, got %#x", cfg.Memory.MaxAddress)
	}
	if cfg.Traps.Halt != 0x25 {
		t.Errorf("expected Halt vector 0x25, got %#x", cfg.Traps.Halt)
	}
	if cfg.Traps.Puts != 0x22 {
		t.Errorf("expected Puts vector 0x22, got %#x", cfg.Traps.Puts)
	}
	if !cfg.Output.IncludeOrigin {
		t.Error("expected IncludeOrigin=true")
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()

	if path == "" {
		t.Fatal("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("expected path to end with config.toml, got %s", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.toml")

	cfg := DefaultConfig()
	cfg.Memory.MinUserAddress = 0x4000
	cfg.Output.WordOrder = "little"
	cfg.Diagnostics.MaxErrors = 5

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if loaded.Memory.MinUserAddress != 0x4000 {
		t.Errorf("expected MinUserAddress=0x4000, got %#x", loaded.Memory.MinUserAddress)
	}
	if loaded.Output.WordOrder != "little" {
		t.Errorf("expected WordOrder=little, got %s", loaded.Output.WordOrder)
	}
	if loaded.Diagnostics.MaxErrors != 5 {
		t.Errorf("expected MaxErrors=5, got %d", loaded.Diagnostics.MaxErrors)
	}
}

func TestLoadNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.toml")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom should not error on non-existent file: %v", err)
	}
	if cfg.Memory.MinUserAddress != 0x3000 {
		t.Error("expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.toml")

	invalidTOML := `
[memory]
min_user_address = "not a number"
`
	if err := os.WriteFile(configPath, []byte(invalidTOML), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	if _, err := LoadFrom(configPath); err == nil {
		t.Error("expected error when loading invalid TOML")
	}
}

func TestTrapVector(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		want uint8
		ok   bool
	}{
		{"HALT", 0x25, true},
		{"puts", 0x22, true},
		{"NOPE", 0, false},
	}

	for _, tt := range tests {
		got, ok := cfg.TrapVector(tt.name)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("TrapVector(%q) = (%#x, %v), want (%#x, %v)", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}
