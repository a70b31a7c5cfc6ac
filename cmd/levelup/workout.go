// ABOUTME: CLI commands for logging workout minutes.
// ABOUTME: Supports add and log subcommands.
package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var workoutLimit int

var workoutCmd = &cobra.Command{
	Use:     "workout",
	Aliases: []string{"w"},
	Short:   "Log workouts",
	Long: `Log workout minutes and review your history.

Every minute earns 2 XP. Minutes logged on the same day are merged into
one log entry. Every 30 minutes closes a ring.

COMMANDS:

  add      Log minutes for today
  log      Show daily minute totals`,
}

var workoutAddCmd = &cobra.Command{
	Use:   "add <minutes>",
	Short: "Log workout minutes for today",
	Long: `Log workout minutes for today.

Examples:
  levelup workout add 30
  levelup w add 45`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid minutes: %s", args[0])
		}

		res, err := coord.AddWorkoutMinutes(cmd.Context(), minutes)
		if err != nil {
			return err
		}

		color.Green("✓ Logged %d minutes (+%d XP)", minutes, res.XPGained)
		if res.LeveledUp {
			color.New(color.Bold, color.FgMagenta).Printf("  LEVEL UP! You are now level %d\n", res.Profile.Level)
		}
		if res.LootBoxesGranted > 0 {
			color.Cyan("  +%d loot box(es)", res.LootBoxesGranted)
		}
		fmt.Printf("  %d minutes to the next ring\n", res.MinutesToNextRing)
		return nil
	},
}

var workoutLogCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"ls", "list"},
	Short:   "Show daily workout totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := coord.WorkoutLog(cmd.Context())
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No workouts logged.")
			return nil
		}

		if workoutLimit > 0 && len(entries) > workoutLimit {
			entries = entries[len(entries)-workoutLimit:]
		}
		for _, e := range entries {
			fmt.Printf("%s %d min\n", color.New(color.Faint).Sprint(e.Date), e.Minutes)
		}
		return nil
	},
}

func init() {
	workoutLogCmd.Flags().IntVarP(&workoutLimit, "limit", "n", 14, "max number of days")

	workoutCmd.AddCommand(workoutAddCmd)
	workoutCmd.AddCommand(workoutLogCmd)
	rootCmd.AddCommand(workoutCmd)
}
