// Package config provides YAML-based ruleset loading for the warzone server:
// map layout, unit stat table, economy and combat tuning, and server settings.
package config

// FileName is the config file name looked up in the search path.
const FileName = "warzone.yaml"

// Config is the complete server and ruleset configuration.
type Config struct {
	Server   ServerConfig          `yaml:"server"`
	Match    MatchConfig           `yaml:"match"`
	Map      MapConfig             `yaml:"map"`
	Movement MovementConfig        `yaml:"movement"`
	Combat   CombatConfig          `yaml:"combat"`
	Economy  EconomyConfig         `yaml:"economy"`
	Units    map[string]UnitConfig `yaml:"units"`
}

// ServerConfig holds listener and storage settings.
type ServerConfig struct {
	// Addr is the HTTP listen address serving the WebSocket endpoint.
	Addr   string `yaml:"addr"`
	WSPath string `yaml:"ws_path"`

	// SSHAddr is the spectator SSH address. Empty disables the SSH server.
	SSHAddr string `yaml:"ssh_addr"`

	// HostKeyPath defaults to ~/.warzone/host_key when empty.
	HostKeyPath string `yaml:"host_key"`

	DBPath             string `yaml:"db_path"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`

	// SendBuffer is the per-session outbound queue length.
	SendBuffer int `yaml:"send_buffer"`

	// ReadLimit caps inbound message size in bytes.
	ReadLimit int64 `yaml:"read_limit"`
}

// MatchConfig controls the match lifecycle and tick cadence.
type MatchConfig struct {
	TickMS              int   `yaml:"tick_ms"`
	DurationMS          int   `yaml:"duration_ms"`
	MinPlayers          int   `yaml:"min_players"`
	ResetOnFinishedJoin bool  `yaml:"reset_on_finished_join"`
	ReattachOnReset     bool  `yaml:"reattach_on_reset"`
	ChatHistory         int   `yaml:"chat_history"`
	ChatInSnapshot      int   `yaml:"chat_in_snapshot"`
	Seed                int64 `yaml:"seed"` // 0 = time based
}

// MapConfig describes the battlefield.
type MapConfig struct {
	Width     float64          `yaml:"width"`
	Height    float64          `yaml:"height"`
	Teams     []TeamConfig     `yaml:"teams"`
	Obstacles []ObstacleConfig `yaml:"obstacles"`
	Nodes     []NodeConfig     `yaml:"nodes"`
}

// TeamConfig is a team name and its base position, in declaration order.
type TeamConfig struct {
	Name  string  `yaml:"name"`
	BaseX float64 `yaml:"base_x"`
	BaseY float64 `yaml:"base_y"`
}

// ObstacleConfig is a static circular obstacle.
type ObstacleConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	Kind   string  `yaml:"kind"`
}

// NodeConfig is a resource node; Amount is both the start and max amount.
type NodeConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Amount float64 `yaml:"amount"`
}

// Edge modes for units reaching the map border.
const (
	EdgeClamp  = "clamp"
	EdgeBounce = "bounce"
)

// Obstacle checks applied to explicit move orders.
const (
	ObstacleCheckPath        = "path"
	ObstacleCheckDestination = "destination"
)

// MovementConfig tunes unit movement and target acquisition.
type MovementConfig struct {
	EdgeMode            string  `yaml:"edge_mode"`
	EdgeMargin          float64 `yaml:"edge_margin"`
	ObstacleCheck       string  `yaml:"obstacle_check"`
	ObstacleBlockBuffer float64 `yaml:"obstacle_block_buffer"`
	ObstaclePushBuffer  float64 `yaml:"obstacle_push_buffer"`
	ArriveThreshold     float64 `yaml:"arrive_threshold"`
	VelocityDamping     float64 `yaml:"velocity_damping"`
	DetectionMultiplier float64 `yaml:"detection_multiplier"`
}

// CombatConfig tunes projectiles and siege damage.
type CombatConfig struct {
	ProjectileSpeed  float64 `yaml:"projectile_speed"`
	Overshoot        float64 `yaml:"overshoot"`
	UnitHitRadius    float64 `yaml:"unit_hit_radius"`
	BaseHitRadius    float64 `yaml:"base_hit_radius"`
	BaseDamageFactor float64 `yaml:"base_damage_factor"`
	SiegeRadius      float64 `yaml:"siege_radius"`
	SiegeFactor      float64 `yaml:"siege_factor"`
	BaseMaxHealth    float64 `yaml:"base_max_health"`
}

// EconomyConfig tunes income, spawning and gathering.
type EconomyConfig struct {
	StartGold        float64 `yaml:"start_gold"`
	StartEnergy      float64 `yaml:"start_energy"`
	StartHealth      float64 `yaml:"start_health"`
	GoldPerTick      float64 `yaml:"gold_per_tick"`
	EnergyPerTick    float64 `yaml:"energy_per_tick"`
	EnergyCap        float64 `yaml:"energy_cap"`
	GoldCap          float64 `yaml:"gold_cap"` // 0 = uncapped
	NodeRegenPerTick float64 `yaml:"node_regen_per_tick"`
	SpawnMinDist     float64 `yaml:"spawn_min_dist"`
	SpawnMaxDist     float64 `yaml:"spawn_max_dist"`
	SpawnMargin      float64 `yaml:"spawn_margin"`
	CollectRate      float64 `yaml:"collect_rate"`
	CarryCapacity    float64 `yaml:"carry_capacity"`
	HarvestRadius    float64 `yaml:"harvest_radius"`
	DepositRadius    float64 `yaml:"deposit_radius"`
	SeekArrive       float64 `yaml:"seek_arrive"`
	EnergyConversion float64 `yaml:"energy_conversion"`
	GathererCap      int     `yaml:"gatherer_cap"`
}

// UnitConfig is one row of the unit stat table.
type UnitConfig struct {
	Health     float64    `yaml:"health"`
	MaxHealth  float64    `yaml:"max_health"` // 0 = same as health
	Damage     float64    `yaml:"damage"`
	Speed      float64    `yaml:"speed"`
	Range      float64    `yaml:"range"`
	CooldownMS int        `yaml:"cooldown_ms"`
	Cost       CostConfig `yaml:"cost"`
}

// CostConfig is the gold and energy price of a unit.
type CostConfig struct {
	Gold   float64 `yaml:"gold"`
	Energy float64 `yaml:"energy"`
}

// EffectiveMaxHealth returns MaxHealth, falling back to Health.
func (u UnitConfig) EffectiveMaxHealth() float64 {
	if u.MaxHealth > 0 {
		return u.MaxHealth
	}
	return u.Health
}
