// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"github.com/harperreed/levelup/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP lets AI assistants log workouts, claim quests and open loot boxes for
you. The server communicates via stdin/stdout.

CONFIGURATION:

  {
    "mcpServers": {
      "levelup": {
        "command": "levelup",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  get_profile     Level, XP, stats and progress to the next level
  log_workout     Log workout minutes for today
  add_water       Add water to today's total
  list_quests     Today's quest board
  claim_quest     Claim a daily quest
  open_loot_box   Open one loot box
  list_rewards    Level rewards
  add_reward      Add a level reward
  leaderboard     Top players by XP
  send_message    Send a chat message

AVAILABLE RESOURCES:

  levelup://profile   Current profile
  levelup://today     Today's minutes, water and quest state
  levelup://rewards   Level rewards`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(coord, socialSvc)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
