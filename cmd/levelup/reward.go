// ABOUTME: CLI commands for level rewards.
// ABOUTME: Supports add, list, edit and rm; IDs accept a unique prefix.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/spf13/cobra"
)

var (
	rewardDescription string
	rewardLevel       int
	rewardTitle       string
)

var rewardCmd = &cobra.Command{
	Use:     "reward",
	Aliases: []string{"r"},
	Short:   "Manage level rewards",
	Long: `Rewards are treats you promise yourself at a level.

A reward unlocks as soon as you reach its level and stays unlocked.

Examples:
  levelup reward add 5 "New running shoes"
  levelup reward list
  levelup reward edit abc123 --level 4
  levelup reward rm abc123`,
}

var rewardAddCmd = &cobra.Command{
	Use:   "add <level> <title>",
	Short: "Add a reward",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var level int
		if _, err := fmt.Sscanf(args[0], "%d", &level); err != nil || level < 1 {
			return fmt.Errorf("invalid level: %s", args[0])
		}

		if _, err := coord.Load(cmd.Context()); err != nil {
			return err
		}
		r, err := coord.AddReward(cmd.Context(), level, args[1], rewardDescription)
		if err != nil {
			return err
		}

		color.Green("✓ Added reward for level %d", r.Level)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(shortID(r.ID)), r.Title)
		if r.Unlocked {
			color.Cyan("  Already unlocked!")
		}
		return nil
	},
}

var rewardListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List rewards",
	RunE: func(cmd *cobra.Command, args []string) error {
		rewards, err := coord.Rewards(cmd.Context())
		if err != nil {
			return err
		}
		if len(rewards) == 0 {
			fmt.Println("No rewards defined.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, r := range rewards {
			mark := faint.Sprint("locked  ")
			if r.Unlocked {
				mark = color.GreenString("unlocked")
			}
			desc := ""
			if r.Description != "" {
				desc = faint.Sprintf(" (%s)", truncate(r.Description, 30))
			}
			fmt.Printf("%s %s %s %s%s\n",
				faint.Sprint(shortID(r.ID)),
				padRight(fmt.Sprintf("L%d", r.Level), 4),
				mark,
				r.Title,
				desc)
		}
		return nil
	},
}

var rewardEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a reward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var e coordinator.RewardEdit
		if cmd.Flags().Changed("level") {
			e.Level = &rewardLevel
		}
		if cmd.Flags().Changed("title") {
			e.Title = &rewardTitle
		}
		if cmd.Flags().Changed("description") {
			e.Description = &rewardDescription
		}
		if e.Level == nil && e.Title == nil && e.Description == nil {
			return fmt.Errorf("nothing to change: use --level, --title or --description")
		}

		r, err := coord.EditReward(cmd.Context(), args[0], e)
		if err != nil {
			return err
		}
		color.Green("✓ Updated %s", r.Title)
		return nil
	},
}

var rewardRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "del"},
	Short:   "Delete a reward",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := coord.DeleteReward(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ Deleted reward %s", args[0])
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	rewardAddCmd.Flags().StringVarP(&rewardDescription, "description", "d", "", "reward description")

	rewardEditCmd.Flags().IntVar(&rewardLevel, "level", 0, "new unlock level")
	rewardEditCmd.Flags().StringVar(&rewardTitle, "title", "", "new title")
	rewardEditCmd.Flags().StringVarP(&rewardDescription, "description", "d", "", "new description")

	rewardCmd.AddCommand(rewardAddCmd)
	rewardCmd.AddCommand(rewardListCmd)
	rewardCmd.AddCommand(rewardEditCmd)
	rewardCmd.AddCommand(rewardRmCmd)
	rootCmd.AddCommand(rewardCmd)
}
