package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/warzone/internal/sim"
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "Show the unit table",
	Long:  `Shows every unit type with its stats and cost, as loaded from the configuration.`,
	RunE:  runUnits,
}

func runUnits(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rules, err := sim.Compile(cfg)
	if err != nil {
		return fmt.Errorf("cannot compile ruleset: %w", err)
	}

	roster := rules.Roster()
	if len(roster) == 0 {
		fmt.Println("No units configured.")
		return nil
	}

	fmt.Println("Units:")
	fmt.Println()

	fmt.Printf("  %-12s %-10s %7s %7s %6s %6s %9s %6s %6s\n",
		"Type", "Role", "Health", "Damage", "Speed", "Range", "Cooldown", "Gold", "Energy")
	fmt.Printf("  %-12s %-10s %7s %7s %6s %6s %9s %6s %6s\n",
		"----", "----", "------", "------", "-----", "-----", "--------", "----", "------")

	for _, u := range roster {
		fmt.Printf("  %-12s %-10s %7g %7g %6g %6g %7dms %6g %6g\n",
			u.Type, u.Type.Role(), u.MaxHealth, u.Damage, u.Speed, u.Range, u.CooldownMS, u.Cost.Gold, u.Cost.Energy)
	}

	fmt.Println()
	fmt.Printf("Gatherers are capped at %d per player.\n", rules.Economy.GathererCap)
	return nil
}
