// ABOUTME: CLI commands for Charm-based sync of the device cache.
// ABOUTME: Supports link, unlink, status, repair, reset, and wipe operations.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/localcache"
	"github.com/spf13/cobra"
)

// kvName is the Charm KV database holding the device cache.
const kvName = "levelup"

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync the device cache across devices",
	Long: `Sync the device cache across devices using Charm Cloud.

The cache holds your rewards, loot boxes, workout log, water and vault.
It is E2E encrypted with your SSH key before upload.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     levelup sync link

  2. On other devices, link with the same Charm account:
     levelup sync link

  3. Check sync status:
     levelup sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  now         Sync immediately
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local cache and restore from cloud (destructive)
  wipe        Delete cloud and local cache (destructive)

Data syncs automatically after each write.`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.

Example:
  levelup sync link`,
	Annotations: noRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("link"); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.Green("\n✓ Device linked to Charm")
		fmt.Println("Your device cache will now sync automatically.")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local data.
You can link again later with 'levelup sync link'.`,
	Annotations: noRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runCharm("unlink"); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local data is preserved.")
		return nil
	},
}

func runCharm(arg string) error {
	c := exec.Command("charm", arg)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show current sync status including:
- Cache backend
- Charm account info
- Local data info`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("Cache backend:", cfg.GetCacheBackend())
		fmt.Println("Database:", cfg.GetDBPath())

		if cb, ok := cache.(*localcache.CharmBackend); ok {
			id, err := cb.ID()
			if err != nil {
				color.Yellow("Not linked to Charm")
				fmt.Println("\nRun 'levelup sync link' to connect to Charm.")
				return nil
			}
			fmt.Println("Charm ID:", id)
			fmt.Println("Server:", cb.Host())
			if cb.IsReadOnly() {
				color.Yellow("  Cache is read-only (another levelup process holds the lock)")
			}
		}
		fmt.Println()

		rewards, _ := coord.Rewards(cmd.Context())
		entries, _ := coord.WorkoutLog(cmd.Context())
		inv, _ := coord.LootBoxes(cmd.Context())

		color.Green("✓ Cache ready")
		fmt.Printf("  Rewards: %d\n", len(rewards))
		fmt.Printf("  Workout days: %d\n", len(entries))
		fmt.Printf("  Loot boxes: %d\n", inv.Count)
		return nil
	},
}

var syncNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Sync immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := coord.Sync(); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		color.Green("✓ Synced")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local cache data",
	Long: `Delete all cloud backups and the local cache.

This is a DESTRUCTIVE operation. The cached rewards, loot boxes, workout
log and vault will be permanently deleted. The profile store is untouched;
use 'levelup wipe' to reset progress.`,
	Annotations: noRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will PERMANENTLY DELETE all cloud backups and the local cache.")
		fmt.Print("Type 'wipe' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "wipe" {
			fmt.Println("Canceled.")
			return nil
		}

		result, err := kv.Wipe(kvName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.Green("✓ Cache wiped successfully")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted: %d\n", result.LocalFilesDeleted)
		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair cache corruption",
	Long: `Repair cache corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	Annotations: noRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Repairing levelup cache...")
		result, err := kv.Repair(kvName, force)

		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}

		if err != nil {
			if !force {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		color.Green("\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local cache and restore from cloud",
	Long: `Delete the local cache and restore it from Charm Cloud.

Use this to:
- Fix sync conflicts
- Reset a device to cloud state`,
	Annotations: noRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("This will DELETE the local cache and restore from cloud.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}

		if err := kv.Reset(kvName); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		color.Green("✓ Local cache reset and restored from cloud")
		return nil
	},
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncNowCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}
