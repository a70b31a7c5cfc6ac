// ABOUTME: CLI commands for exporting, importing and wiping progress.
// ABOUTME: Supports JSON and YAML export formats.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	wipeYes      bool
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export your progress",
	Long: `Export your progress in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)

OPTIONS:

  --output, -o   Write to file instead of stdout

EXAMPLES:

  levelup export json                  # Export as JSON
  levelup export json -o backup.json   # Save to file
  levelup export yaml                  # Export as YAML`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = coord.ExportJSON(cmd.Context())
		case "yaml":
			data, err = coord.ExportYAML(cmd.Context())
		default:
			return fmt.Errorf("unknown format: %s (use json or yaml)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import progress from JSON",
	Long: `Import progress from a JSON backup file.

The profile, workout log, rewards, loot boxes and water are replaced by
the backup. Level is recomputed from XP.

EXAMPLES:

  levelup import backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		if err := coord.ImportJSON(cmd.Context(), data); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

var wipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Reset your progress",
	Long: `Reset level, XP, stats, rewards, loot boxes and trackers to a fresh start.

This is a DESTRUCTIVE operation. Export first if you may want it back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !wipeYes {
			fmt.Println("This will RESET all your progress to level 1.")
			fmt.Print("Type 'wipe' to confirm: ")
			confirm, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if strings.TrimSpace(confirm) != "wipe" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		if err := coord.Wipe(cmd.Context()); err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}
		color.Green("✓ Progress reset")
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	wipeCmd.Flags().BoolVarP(&wipeYes, "yes", "y", false, "skip confirmation")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(wipeCmd)
}
