// ABOUTME: CLI commands for water, macros, habits and vitamins.
// ABOUTME: Daily trackers keyed by calendar day.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/models"
	"github.com/spf13/cobra"
)

var (
	trackDate string

	macroCalories float64
	macroProtein  float64
	macroCarbs    float64
	macroFat      float64

	habitMissed bool
)

// dayFlag resolves --date to a calendar day, or "" for today.
func dayFlag() (models.Day, error) {
	if trackDate == "" {
		return "", nil
	}
	t, err := parseTime(trackDate)
	if err != nil {
		return "", fmt.Errorf("invalid date: %s", trackDate)
	}
	return models.DayOf(t, t.Location()), nil
}

var waterCmd = &cobra.Command{
	Use:   "water",
	Short: "Daily water intake",
	Long: `Track today's water intake in millilitres.

The total resets at the start of each day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := coord.Water(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d ml today\n", w.ML)
		return nil
	},
}

var waterAddCmd = &cobra.Command{
	Use:   "add <ml>",
	Short: "Add water",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount: %s", args[0])
		}
		w, err := coord.AddWater(cmd.Context(), ml)
		if err != nil {
			return err
		}
		color.Green("✓ +%d ml", ml)
		fmt.Printf("  %d ml today\n", w.ML)
		return nil
	},
}

var macrosCmd = &cobra.Command{
	Use:   "macros",
	Short: "Daily macros",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFlag()
		if err != nil {
			return err
		}
		m, err := coord.Macros(cmd.Context(), day)
		if err != nil {
			return err
		}
		fmt.Printf("%s\n", color.New(color.Faint).Sprint(m.Date))
		fmt.Printf("  Calories %.0f kcal\n", m.Calories)
		fmt.Printf("  Protein  %.0f g\n", m.Protein)
		fmt.Printf("  Carbs    %.0f g\n", m.Carbs)
		fmt.Printf("  Fat      %.0f g\n", m.Fat)
		return nil
	},
}

var macrosSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set today's macros",
	Long: `Set today's macro totals. Unset flags keep their current value.

Examples:
  levelup macros set --calories 2100 --protein 160
  levelup macros set --fat 70`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := coord.Macros(ctx, "")
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("calories") {
			m.Calories = macroCalories
		}
		if flags.Changed("protein") {
			m.Protein = macroProtein
		}
		if flags.Changed("carbs") {
			m.Carbs = macroCarbs
		}
		if flags.Changed("fat") {
			m.Fat = macroFat
		}

		if err := coord.SetMacros(ctx, *m); err != nil {
			return err
		}
		color.Green("✓ Macros saved for %s", m.Date)
		return nil
	},
}

var habitCmd = &cobra.Command{
	Use:   "habit",
	Short: "Daily habit check-ins",
}

var habitLogCmd = &cobra.Command{
	Use:   "log <habit>",
	Short: "Check in a habit for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := coord.LogHabit(cmd.Context(), args[0], !habitMissed)
		if err != nil {
			return err
		}
		if h.Done {
			color.Green("✓ %s done", h.Habit)
		} else {
			color.Yellow("✗ %s missed", h.Habit)
		}
		return nil
	},
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habit check-ins for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFlag()
		if err != nil {
			return err
		}
		logs, err := coord.Habits(cmd.Context(), day)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			fmt.Println("No habits logged.")
			return nil
		}
		for _, h := range logs {
			mark := color.GreenString("✓")
			if !h.Done {
				mark = color.YellowString("✗")
			}
			fmt.Printf("%s %s %s\n", mark, padRight(h.Habit, 16),
				color.New(color.Faint).Sprint(h.CreatedAt.Local().Format("15:04")))
		}
		return nil
	},
}

var vitaminCmd = &cobra.Command{
	Use:   "vitamin",
	Short: "Vitamin log",
}

var vitaminLogCmd = &cobra.Command{
	Use:   "log <name>",
	Short: "Log a vitamin taken today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := coord.LogVitamin(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		color.Green("✓ Took %s", v.Name)
		return nil
	},
}

var vitaminListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List vitamins for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := dayFlag()
		if err != nil {
			return err
		}
		logs, err := coord.Vitamins(cmd.Context(), day)
		if err != nil {
			return err
		}
		if len(logs) == 0 {
			fmt.Println("No vitamins logged.")
			return nil
		}
		for _, v := range logs {
			fmt.Printf("%s %s\n", padRight(v.Name, 16),
				color.New(color.Faint).Sprint(v.CreatedAt.Local().Format("15:04")))
		}
		return nil
	},
}

func init() {
	waterCmd.AddCommand(waterAddCmd)
	rootCmd.AddCommand(waterCmd)

	macrosCmd.Flags().StringVar(&trackDate, "date", "", "day to show (YYYY-MM-DD)")
	macrosSetCmd.Flags().Float64Var(&macroCalories, "calories", 0, "calories (kcal)")
	macrosSetCmd.Flags().Float64Var(&macroProtein, "protein", 0, "protein (g)")
	macrosSetCmd.Flags().Float64Var(&macroCarbs, "carbs", 0, "carbs (g)")
	macrosSetCmd.Flags().Float64Var(&macroFat, "fat", 0, "fat (g)")
	macrosCmd.AddCommand(macrosSetCmd)
	rootCmd.AddCommand(macrosCmd)

	habitLogCmd.Flags().BoolVar(&habitMissed, "missed", false, "record the habit as missed")
	habitListCmd.Flags().StringVar(&trackDate, "date", "", "day to show (YYYY-MM-DD)")
	habitCmd.AddCommand(habitLogCmd)
	habitCmd.AddCommand(habitListCmd)
	rootCmd.AddCommand(habitCmd)

	vitaminListCmd.Flags().StringVar(&trackDate, "date", "", "day to show (YYYY-MM-DD)")
	vitaminCmd.AddCommand(vitaminLogCmd)
	vitaminCmd.AddCommand(vitaminListCmd)
	rootCmd.AddCommand(vitaminCmd)
}
