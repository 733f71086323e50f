package elevator

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elevator.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
cars: 2
minFloor: 0
maxFloor: 20
travelTime: 2s
doorOpenTime: 1500ms
startFloors: [0, 20]
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Cars != 2 || cfg.MinFloor != 0 || cfg.MaxFloor != 20 {
		t.Errorf("Expected 2 cars on 0-20, got %d cars on %d-%d", cfg.Cars, cfg.MinFloor, cfg.MaxFloor)
	}
	if cfg.TravelTime != 2*time.Second || cfg.DoorOpenTime != 1500*time.Millisecond {
		t.Errorf("Expected 2s/1.5s, got %s/%s", cfg.TravelTime, cfg.DoorOpenTime)
	}
	if !slices.Equal(cfg.StartFloors, []int{0, 20}) {
		t.Errorf("Expected start floors [0 20], got %v", cfg.StartFloors)
	}
	// untouched keys keep defaults
	if cfg.DispatchInterval != DefaultConfig().DispatchInterval {
		t.Errorf("Expected default dispatch interval, got %s", cfg.DispatchInterval)
	}
}

func TestLoadConfig_NoStartFloors(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "cars: 3\n"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	for i := 0; i < cfg.Cars; i++ {
		if f := cfg.StartFloor(i); f != cfg.MinFloor {
			t.Errorf("Expected car %d to start at %d, got %d", i+1, cfg.MinFloor, f)
		}
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "cars: [")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
	if _, err := LoadConfig(writeConfig(t, "minFloor: 9\nmaxFloor: 2\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no cars", func(c *Config) { c.Cars = 0 }},
		{"min above max", func(c *Config) { c.MinFloor, c.MaxFloor = 5, 4 }},
		{"zero travel", func(c *Config) { c.TravelTime = 0 }},
		{"negative dwell", func(c *Config) { c.DoorOpenTime = -time.Second }},
		{"start floor count", func(c *Config) { c.StartFloors = []int{1, 2} }},
		{"start floor range", func(c *Config) { c.StartFloors = []int{1, 2, 3, 11} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
