package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedDefaultMatchesBuiltin(t *testing.T) {
	cfg, err := Parse(DefaultYAML(), "embedded")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	def := DefaultConfig()

	if cfg.Map.Width != def.Map.Width || cfg.Map.Height != def.Map.Height {
		t.Errorf("map size = %gx%g, want %gx%g", cfg.Map.Width, cfg.Map.Height, def.Map.Width, def.Map.Height)
	}
	if len(cfg.Map.Teams) != len(def.Map.Teams) {
		t.Errorf("teams = %d, want %d", len(cfg.Map.Teams), len(def.Map.Teams))
	}
	if len(cfg.Map.Obstacles) != 8 {
		t.Errorf("obstacles = %d, want 8", len(cfg.Map.Obstacles))
	}
	if len(cfg.Map.Nodes) != 15 {
		t.Errorf("nodes = %d, want 15", len(cfg.Map.Nodes))
	}
	for name, want := range def.Units {
		got, ok := cfg.Units[name]
		if !ok {
			t.Errorf("unit %q missing from embedded default", name)
			continue
		}
		if got != want {
			t.Errorf("unit %q = %+v, want %+v", name, got, want)
		}
	}
	if cfg.Economy != def.Economy {
		t.Errorf("economy = %+v, want %+v", cfg.Economy, def.Economy)
	}
	if cfg.Combat != def.Combat {
		t.Errorf("combat = %+v, want %+v", cfg.Combat, def.Combat)
	}
	if cfg.Movement != def.Movement {
		t.Errorf("movement = %+v, want %+v", cfg.Movement, def.Movement)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	data := []byte(`
match:
  tick_ms: 50
economy:
  gold_cap: 2000
units:
  barracks: { health: 0 }
`)
	cfg, err := Parse(data, "test")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if cfg.Match.TickMS != 50 {
		t.Errorf("tick_ms = %d, want 50", cfg.Match.TickMS)
	}
	if cfg.Match.DurationMS != 600000 {
		t.Errorf("duration_ms = %d, want default 600000", cfg.Match.DurationMS)
	}
	if cfg.Economy.GoldCap != 2000 {
		t.Errorf("gold_cap = %g, want 2000", cfg.Economy.GoldCap)
	}
	if cfg.Economy.StartGold != 500 {
		t.Errorf("start_gold = %g, want default 500", cfg.Economy.StartGold)
	}
	if _, ok := cfg.Units["barracks"]; ok {
		t.Error("barracks should be removed from the roster")
	}
	if _, ok := cfg.Units["soldier"]; !ok {
		t.Error("soldier should stay in the roster")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"zero width", func(c *Config) { c.Map.Width = 0 }, false},
		{"no teams", func(c *Config) { c.Map.Teams = nil }, false},
		{"duplicate team", func(c *Config) { c.Map.Teams[1].Name = c.Map.Teams[0].Name }, false},
		{"base off map", func(c *Config) { c.Map.Teams[0].BaseX = 5000 }, false},
		{"zero tick", func(c *Config) { c.Match.TickMS = 0 }, false},
		{"inverted annulus", func(c *Config) { c.Economy.SpawnMinDist = 200 }, false},
		{"unknown edge mode", func(c *Config) { c.Movement.EdgeMode = "wrap" }, false},
		{"bounce edge mode", func(c *Config) { c.Movement.EdgeMode = EdgeBounce }, true},
		{"destination check", func(c *Config) { c.Movement.ObstacleCheck = ObstacleCheckDestination }, true},
		{"negative unit cost", func(c *Config) {
			u := c.Units["soldier"]
			u.Cost.Gold = -1
			c.Units["soldier"] = u
		}, false},
		{"empty roster", func(c *Config) { c.Units = map[string]UnitConfig{} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("Validate() error %v does not wrap ErrInvalid", err)
				}
			}
		})
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("match:\n  min_players: 3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Match.MinPlayers != 3 {
		t.Errorf("min_players = %d, want 3", cfg.Match.MinPlayers)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing custom path should fail")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	data, err := Marshal(DefaultConfig())
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	cfg, err := Parse(data, "marshalled")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if len(cfg.Units) != len(DefaultUnits()) {
		t.Errorf("units = %d, want %d", len(cfg.Units), len(DefaultUnits()))
	}
}
