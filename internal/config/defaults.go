package config

import (
	_ "embed"
)

//go:embed defaults/warzone.yaml
var defaultWarzoneYAML []byte

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	out := make([]byte, len(defaultWarzoneYAML))
	copy(out, defaultWarzoneYAML)
	return out
}

// DefaultConfig returns the built-in ruleset.
// It mirrors defaults/warzone.yaml and is used when no file can be parsed.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:               ":3000",
			WSPath:             "/ws",
			SSHAddr:            ":23235",
			DBPath:             "~/.warzone/matches.db",
			IdleTimeoutMinutes: 30,
			SendBuffer:         64,
			ReadLimit:          4096,
		},
		Match: MatchConfig{
			TickMS:              30,
			DurationMS:          600000,
			MinPlayers:          2,
			ResetOnFinishedJoin: true,
			ReattachOnReset:     true,
			ChatHistory:         50,
			ChatInSnapshot:      10,
		},
		Map: MapConfig{
			Width:  1000,
			Height: 800,
			Teams: []TeamConfig{
				{Name: "blue", BaseX: 100, BaseY: 100},
				{Name: "red", BaseX: 900, BaseY: 700},
				{Name: "green", BaseX: 100, BaseY: 700},
				{Name: "yellow", BaseX: 900, BaseY: 100},
				{Name: "purple", BaseX: 500, BaseY: 100},
				{Name: "orange", BaseX: 500, BaseY: 700},
			},
			Obstacles: []ObstacleConfig{
				{X: 500, Y: 200, Radius: 80, Kind: "rock"},
				{X: 300, Y: 400, Radius: 60, Kind: "rock"},
				{X: 700, Y: 400, Radius: 60, Kind: "rock"},
				{X: 500, Y: 600, Radius: 80, Kind: "rock"},
				{X: 150, Y: 150, Radius: 50, Kind: "forest"},
				{X: 850, Y: 150, Radius: 50, Kind: "forest"},
				{X: 150, Y: 650, Radius: 50, Kind: "forest"},
				{X: 850, Y: 650, Radius: 50, Kind: "forest"},
			},
			Nodes: []NodeConfig{
				{X: 500, Y: 400, Amount: 500},
				{X: 350, Y: 350, Amount: 400},
				{X: 650, Y: 450, Amount: 400},
				{X: 200, Y: 400, Amount: 450},
				{X: 800, Y: 400, Amount: 450},
				{X: 350, Y: 200, Amount: 350},
				{X: 500, Y: 150, Amount: 350},
				{X: 650, Y: 200, Amount: 350},
				{X: 350, Y: 600, Amount: 350},
				{X: 500, Y: 650, Amount: 350},
				{X: 650, Y: 600, Amount: 350},
				{X: 200, Y: 250, Amount: 300},
				{X: 800, Y: 550, Amount: 300},
				{X: 200, Y: 550, Amount: 300},
				{X: 800, Y: 250, Amount: 300},
			},
		},
		Movement: MovementConfig{
			EdgeMode:            EdgeClamp,
			EdgeMargin:          10,
			ObstacleCheck:       ObstacleCheckPath,
			ObstacleBlockBuffer: 20,
			ObstaclePushBuffer:  15,
			ArriveThreshold:     2,
			VelocityDamping:     -0.5,
			DetectionMultiplier: 1.6,
		},
		Combat: CombatConfig{
			ProjectileSpeed:  9,
			Overshoot:        15,
			UnitHitRadius:    10,
			BaseHitRadius:    28,
			BaseDamageFactor: 0.25,
			SiegeRadius:      38,
			SiegeFactor:      0.015,
			BaseMaxHealth:    500,
		},
		Economy: EconomyConfig{
			StartGold:        500,
			StartEnergy:      100,
			StartHealth:      100,
			GoldPerTick:      0.5,
			EnergyPerTick:    0.3,
			EnergyCap:        500,
			NodeRegenPerTick: 0.4,
			SpawnMinDist:     100,
			SpawnMaxDist:     150,
			SpawnMargin:      30,
			CollectRate:      15,
			CarryCapacity:    150,
			HarvestRadius:    28,
			DepositRadius:    40,
			SeekArrive:       4,
			EnergyConversion: 0.2,
			GathererCap:      5,
		},
		Units: DefaultUnits(),
	}
}

// DefaultUnits returns the built-in unit stat table.
func DefaultUnits() map[string]UnitConfig {
	return map[string]UnitConfig{
		"soldier":     {Health: 30, Damage: 10, Speed: 2, Range: 80, CooldownMS: 600, Cost: CostConfig{Gold: 30, Energy: 20}},
		"tank":        {Health: 120, Damage: 22, Speed: 0.8, Range: 50, CooldownMS: 900, Cost: CostConfig{Gold: 100, Energy: 50}},
		"fighter":     {Health: 50, Damage: 35, Speed: 3.2, Range: 100, CooldownMS: 400, Cost: CostConfig{Gold: 150, Energy: 80}},
		"cannon":      {Health: 40, Damage: 50, Speed: 0.4, Range: 160, CooldownMS: 1200, Cost: CostConfig{Gold: 200, Energy: 100}},
		"helicopter":  {Health: 60, Damage: 40, Speed: 3.8, Range: 120, CooldownMS: 500, Cost: CostConfig{Gold: 250, Energy: 120}},
		"bomber":      {Health: 70, Damage: 65, Speed: 2.2, Range: 180, CooldownMS: 1500, Cost: CostConfig{Gold: 300, Energy: 150}},
		"collector":   {Health: 25, Damage: 0, Speed: 2, Range: 0, CooldownMS: 9999, Cost: CostConfig{Gold: 20, Energy: 10}},
		"constructor": {Health: 35, Damage: 5, Speed: 1.5, Range: 40, CooldownMS: 800, Cost: CostConfig{Gold: 80, Energy: 60}},
		"turret":      {Health: 80, Damage: 45, Speed: 0, Range: 150, CooldownMS: 400, Cost: CostConfig{Gold: 150, Energy: 100}},
		"barracks":    {Health: 100, Damage: 0, Speed: 0, Range: 0, CooldownMS: 9999, Cost: CostConfig{Gold: 200, Energy: 150}},
	}
}
