// ABOUTME: CLI commands for identity and profile display.
// ABOUTME: Covers signup, profile, status and bio.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/config"
	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/models"
	"github.com/spf13/cobra"
)

var signupCmd = &cobra.Command{
	Use:   "signup <user-id> [display name]",
	Short: "Set the local identity",
	Long: `Save the user ID and display name this device acts as.

The profile itself is created on first use.

Examples:
  levelup signup ada
  levelup signup ada "Ada Lovelace"`,
	Args:        cobra.RangeArgs(1, 2),
	Annotations: noRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		c.UserID = strings.TrimSpace(args[0])
		if c.UserID == "" {
			return fmt.Errorf("user id cannot be empty")
		}
		c.DisplayName = c.UserID
		if len(args) > 1 && strings.TrimSpace(args[1]) != "" {
			c.DisplayName = strings.TrimSpace(args[1])
		}

		if err := c.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		color.Green("✓ Signed in as %s", c.DisplayName)
		fmt.Printf("  Config: %s\n", config.GetConfigPath())
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"me", "p"},
	Short:   "Show level, XP and stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		p, err := coord.Load(ctx)
		if err != nil {
			return err
		}
		inv, err := coord.LootBoxes(ctx)
		if err != nil {
			return err
		}
		water, err := coord.Water(ctx)
		if err != nil {
			return err
		}
		status, _ := coord.Status(ctx)

		printProfile(p)
		fmt.Printf("  Loot boxes  %d unopened (%d earned)\n", inv.Count, inv.LifetimeClaimed)
		fmt.Printf("  Water today %d ml\n", water.ML)
		if status != "" {
			fmt.Printf("  Status      %s\n", status)
		}
		if p.Bio != "" {
			fmt.Printf("  Bio         %s\n", truncate(p.Bio, 60))
		}
		return nil
	},
}

func printProfile(p *models.Profile) {
	faint := color.New(color.Faint)
	bold := color.New(color.Bold)

	bold.Printf("%s  Level %d\n", p.DisplayName, p.Level)
	fmt.Printf("  XP          %d %s\n", p.XP,
		faint.Sprintf("(%d to next level)", game.XPToNextLevel(p.XP)))
	fmt.Printf("  Minutes     %d %s\n", p.TotalMinutes,
		faint.Sprintf("(%d to next ring)", game.MinutesToNextLevel(p.TotalMinutes)))
	fmt.Printf("  %s %d  %s %d  %s %d  %s %d\n",
		padRight("STR", 3), p.Strength,
		padRight("SPD", 3), p.Speed,
		padRight("DEF", 3), p.Defense,
		padRight("FOC", 3), p.Focus)
}

var statusCmd = &cobra.Command{
	Use:   "status [message]",
	Short: "Show or set your status message",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			s, err := coord.Status(cmd.Context())
			if err != nil {
				return err
			}
			if s == "" {
				fmt.Println("No status set.")
				return nil
			}
			fmt.Println(s)
			return nil
		}

		if _, err := coord.Load(cmd.Context()); err != nil {
			return err
		}
		if err := coord.SetStatus(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ Status updated")
		return nil
	},
}

var bioCmd = &cobra.Command{
	Use:   "bio <text>",
	Short: "Set your bio",
	Long: `Set your profile bio.

The bio is saved locally right away and written to the profile store
shortly after, or when the command exits.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := coord.Load(cmd.Context()); err != nil {
			return err
		}
		if err := coord.SetBio(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ Bio updated")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(bioCmd)
}
