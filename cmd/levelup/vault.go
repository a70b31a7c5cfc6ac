// ABOUTME: CLI commands for the PIN-gated image vault.
// ABOUTME: Images are stored as data URLs in the device cache.
package main

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/config"
	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/spf13/cobra"
)

var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "PIN-gated image vault",
	Long: `A private image vault that only opens on days you worked out.

Examples:
  levelup vault pin 1234
  levelup vault add ~/Pictures/goal.jpg "Summer goal"
  levelup vault unlock 1234`,
}

var vaultPinCmd = &cobra.Command{
	Use:   "pin <pin>",
	Short: "Set the vault PIN (4-8 digits)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := coord.SetVaultPIN(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ Vault PIN set")
		return nil
	},
}

var vaultAddCmd = &cobra.Command{
	Use:   "add <file> [title]",
	Short: "Add an image to the vault",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := dataURL(args[0])
		if err != nil {
			return err
		}
		title := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		if len(args) > 1 {
			title = args[1]
		}

		img, err := coord.AddVaultImage(cmd.Context(), src, title)
		if err != nil {
			return err
		}
		color.Green("✓ Added %s", img.Title)
		fmt.Printf("  ID: %s\n", shortID(img.ID))
		return nil
	},
}

// dataURL reads path and encodes it as a base64 data URL.
func dataURL(path string) (string, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mt, "image/") {
		return "", fmt.Errorf("not an image: %s", path)
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

var vaultUnlockCmd = &cobra.Command{
	Use:     "unlock <pin>",
	Aliases: []string{"list", "ls"},
	Short:   "Unlock the vault and list its images",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		images, err := coord.UnlockVault(cmd.Context(), args[0])
		switch {
		case errors.Is(err, coordinator.ErrWorkoutRequired):
			color.Yellow("The vault opens after today's workout.")
			return nil
		case errors.Is(err, coordinator.ErrVaultLocked):
			return fmt.Errorf("vault locked: wrong or missing PIN")
		case err != nil:
			return err
		}

		if len(images) == 0 {
			fmt.Println("The vault is empty.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, img := range images {
			fmt.Printf("%s %s %s\n",
				faint.Sprint(shortID(img.ID)),
				faint.Sprint(img.AddedAt.Local().Format("2006-01-02")),
				img.Title)
		}
		return nil
	},
}

var vaultRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Remove an image from the vault",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := coord.RemoveVaultImage(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ Removed %s", args[0])
		return nil
	},
}

func init() {
	vaultCmd.AddCommand(vaultPinCmd)
	vaultCmd.AddCommand(vaultAddCmd)
	vaultCmd.AddCommand(vaultUnlockCmd)
	vaultCmd.AddCommand(vaultRmCmd)
	rootCmd.AddCommand(vaultCmd)
}
