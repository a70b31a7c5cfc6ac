// ABOUTME: CLI command for the JSON HTTP API.
// ABOUTME: Serves until interrupted, then shuts down gracefully.
package main

import (
	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/harperreed/levelup/internal/api"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the levelup JSON API for the signed-in user.

ROUTES:

  GET  /api/profile               Profile, loot boxes and water
  POST /api/workouts              {"minutes": 30}
  POST /api/water                 {"ml": 250}
  GET  /api/quests                Today's quest board
  POST /api/quests/:id/claim      Claim a quest (409 if already claimed)
  POST /api/lootboxes/open        Open a loot box (409 if none)
  GET  /api/rewards               List rewards
  POST /api/rewards               {"level": 5, "title": "..."}
  GET  /api/leaderboard           ?limit=10
  GET  /api/messages              ?peer=<user>&limit=50
  POST /api/messages              {"text": "...", "recipient_id": "..."}

The listen address defaults to http_addr from the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetHTTPAddr()
		}
		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		if _, err := coord.Load(cmd.Context()); err != nil {
			return err
		}

		router := api.NewRouter(api.NewHandler(coord, socialSvc, logger), cfg.GetCORSOrigins())

		ctx, cancel := signalContext()
		defer cancel()

		color.Green("✓ Listening on http://%s", addr)
		return api.Serve(ctx, addr, router)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
