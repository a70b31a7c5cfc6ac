// ABOUTME: CLI commands for daily quests and loot boxes.
// ABOUTME: One quest claim per day; loot boxes come from levels.
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/harperreed/levelup/internal/game"
	"github.com/spf13/cobra"
)

var questCmd = &cobra.Command{
	Use:     "quest",
	Aliases: []string{"q"},
	Short:   "Daily quests",
	Long: `Daily quests grant XP and an attribute point.

Only one quest can be claimed per day. The board resets at midnight.`,
}

var questListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show today's quest board",
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := coord.Quests(cmd.Context())
		if err != nil {
			return err
		}

		faint := color.New(color.Faint)
		for _, q := range board.Quests {
			fmt.Printf("%s %s %s\n",
				padRight(q.ID, 10),
				padRight(q.Title, 20),
				faint.Sprintf("+%d XP, +%d %s", q.XP, q.StatDelta, q.Category))
		}

		fmt.Println()
		if board.ClaimedToday && board.NextAvailable != nil {
			color.Yellow("Claimed today. Next claim in %s.", formatWait(time.Until(*board.NextAvailable)))
		} else {
			color.Green("A quest is available to claim.")
		}
		return nil
	},
}

var questClaimCmd = &cobra.Command{
	Use:   "claim <quest-id>",
	Short: "Claim a quest for today",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := coord.ClaimQuest(cmd.Context(), args[0])
		var blocked *coordinator.ClaimBlockedError
		if errors.As(err, &blocked) {
			color.Yellow("Already claimed today. Next claim in %s.", formatWait(blocked.Until(time.Now())))
			return nil
		}
		if err != nil {
			return err
		}

		color.Green("✓ %s complete (+%d XP, +%d %s)",
			res.Quest.Title, res.XPGained, res.Quest.StatDelta, res.Quest.Category)
		if res.LeveledUp {
			color.New(color.Bold, color.FgMagenta).Printf("  LEVEL UP! You are now level %d\n", res.Profile.Level)
		}
		if res.LootBoxesGranted > 0 {
			color.Cyan("  +%d loot box(es)", res.LootBoxesGranted)
		}
		return nil
	},
}

// formatWait renders a wait as "3h 12m".
func formatWait(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

var lootboxCmd = &cobra.Command{
	Use:     "lootbox",
	Aliases: []string{"loot"},
	Short:   "Open loot boxes",
	Long: `Loot boxes are earned one per level.

Opening one rolls a stat boost or bonus XP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inv, err := coord.LootBoxes(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%d unopened, %d earned in total\n", inv.Count, inv.LifetimeClaimed)
		return nil
	},
}

var lootboxOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open one loot box",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := coord.OpenLootBox(cmd.Context())
		if errors.Is(err, coordinator.ErrNoLootBoxes) {
			fmt.Println("No loot boxes to open. Level up to earn more.")
			return nil
		}
		if err != nil {
			return err
		}

		switch res.Drop.Kind {
		case game.DropBonusXP:
			color.Green("✓ Bonus XP! +%d XP", res.Drop.Amount)
		default:
			color.Green("✓ +%d %s", res.Drop.Amount, res.Drop.Stat)
		}
		if res.LeveledUp {
			color.New(color.Bold, color.FgMagenta).Printf("  LEVEL UP! You are now level %d\n", res.Profile.Level)
		}
		fmt.Printf("  %d loot box(es) left\n", res.Remaining)
		return nil
	},
}

func init() {
	questCmd.AddCommand(questListCmd)
	questCmd.AddCommand(questClaimCmd)
	rootCmd.AddCommand(questCmd)

	lootboxCmd.AddCommand(lootboxOpenCmd)
	rootCmd.AddCommand(lootboxCmd)
}
