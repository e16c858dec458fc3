package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Load loads the warzone configuration.
// Search order: customPath -> ~/.warzone/configs/warzone.yaml -> ./configs/warzone.yaml -> embedded default.
// Files overlay DefaultConfig, so they only need the keys they change.
func Load(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		return Parse(data, customPath)
	}

	// Try user config directory
	if userCfgPath := userConfigPath(FileName); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if cfg, err := Parse(data, userCfgPath); err == nil {
				return cfg, nil
			}
		}
	}

	// Try local configs directory
	localPath := filepath.Join("configs", FileName)
	if data, err := os.ReadFile(localPath); err == nil {
		if cfg, err := Parse(data, localPath); err == nil {
			return cfg, nil
		}
	}

	// Use embedded default YAML
	cfg, err := Parse(defaultWarzoneYAML, "embedded default")
	if err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// Parse decodes YAML on top of DefaultConfig and validates the result.
// source names the origin in error messages.
func Parse(data []byte, source string) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", source, err)
	}

	// A unit with zero health drops out of the roster
	for name, u := range cfg.Units {
		if u.Health <= 0 {
			delete(cfg.Units, name)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", source, err)
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".warzone", "configs", filename)
}

// Validate reports every problem found, each wrapping ErrInvalid.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		bad("map size %gx%g must be positive", c.Map.Width, c.Map.Height)
	}
	if len(c.Map.Teams) == 0 {
		bad("at least one team is required")
	}
	seen := make(map[string]bool, len(c.Map.Teams))
	for _, t := range c.Map.Teams {
		if t.Name == "" {
			bad("team with empty name")
		}
		if seen[t.Name] {
			bad("duplicate team %q", t.Name)
		}
		seen[t.Name] = true
		if t.BaseX < 0 || t.BaseX > c.Map.Width || t.BaseY < 0 || t.BaseY > c.Map.Height {
			bad("team %q base (%g,%g) outside the map", t.Name, t.BaseX, t.BaseY)
		}
	}
	for i, o := range c.Map.Obstacles {
		if o.Radius <= 0 {
			bad("obstacle %d radius must be positive", i)
		}
	}
	for i, n := range c.Map.Nodes {
		if n.Amount < 0 {
			bad("node %d amount must not be negative", i)
		}
	}

	if c.Match.TickMS <= 0 {
		bad("match.tick_ms must be positive")
	}
	if c.Match.DurationMS <= 0 {
		bad("match.duration_ms must be positive")
	}
	if c.Match.MinPlayers < 1 {
		bad("match.min_players must be at least 1")
	}
	if c.Match.ChatInSnapshot > c.Match.ChatHistory {
		bad("match.chat_in_snapshot exceeds match.chat_history")
	}

	switch c.Movement.EdgeMode {
	case EdgeClamp, EdgeBounce:
	default:
		bad("movement.edge_mode %q (want %s or %s)", c.Movement.EdgeMode, EdgeClamp, EdgeBounce)
	}
	switch c.Movement.ObstacleCheck {
	case ObstacleCheckPath, ObstacleCheckDestination:
	default:
		bad("movement.obstacle_check %q (want %s or %s)", c.Movement.ObstacleCheck, ObstacleCheckPath, ObstacleCheckDestination)
	}

	if c.Combat.ProjectileSpeed <= 0 {
		bad("combat.projectile_speed must be positive")
	}
	if c.Combat.BaseMaxHealth <= 0 {
		bad("combat.base_max_health must be positive")
	}

	if c.Economy.SpawnMinDist < 0 || c.Economy.SpawnMaxDist < c.Economy.SpawnMinDist {
		bad("spawn annulus %g..%g is inverted", c.Economy.SpawnMinDist, c.Economy.SpawnMaxDist)
	}
	if c.Economy.CarryCapacity <= 0 {
		bad("economy.carry_capacity must be positive")
	}
	if c.Economy.EnergyCap <= 0 {
		bad("economy.energy_cap must be positive")
	}
	if c.Economy.GoldCap < 0 {
		bad("economy.gold_cap must not be negative")
	}

	if len(c.Units) == 0 {
		bad("unit table is empty")
	}
	for name, u := range c.Units {
		if u.Damage < 0 || u.Speed < 0 || u.Range < 0 || u.CooldownMS < 0 {
			bad("unit %q has negative stats", name)
		}
		if u.Cost.Gold < 0 || u.Cost.Energy < 0 {
			bad("unit %q has negative cost", name)
		}
		if u.MaxHealth > 0 && u.Health > u.MaxHealth {
			bad("unit %q health exceeds max_health", name)
		}
	}

	return errors.Join(errs...)
}

// Marshal renders the configuration as YAML.
func Marshal(cfg Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}
