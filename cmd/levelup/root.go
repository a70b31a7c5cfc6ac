// ABOUTME: Root Cobra command for the levelup CLI.
// ABOUTME: Opens storage, cache, realtime and the coordinator via PersistentPre/PostRunE.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/harperreed/levelup/internal/config"
	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/harperreed/levelup/internal/localcache"
	"github.com/harperreed/levelup/internal/realtime"
	"github.com/harperreed/levelup/internal/session"
	"github.com/harperreed/levelup/internal/social"
	"github.com/harperreed/levelup/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg       *config.Config
	repo      *storage.DB
	cache     localcache.Backend
	rt        realtime.Channel
	sessions  *session.Manager
	coord     *coordinator.Coordinator
	socialSvc *social.Service
	logger    *log.Logger

	verbose bool
)

// noRuntime marks commands that manage setup or the cache files themselves
// and must run without opening the runtime.
var noRuntime = map[string]string{"runtime": "none"}

func needsRuntime(cmd *cobra.Command) bool {
	if cmd.Annotations["runtime"] == "none" {
		return false
	}
	switch cmd.Name() {
	case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	if p := cmd.Parent(); p != nil && p.Name() == "completion" {
		return false
	}
	return true
}

var rootCmd = &cobra.Command{
	Use:   "levelup",
	Short: "Gamified fitness tracker",
	Long: `Levelup turns workouts into XP, levels, loot boxes and daily quests.

HOW IT WORKS:

  Every workout minute earns 2 XP. Every 100 XP is a level.
  Each level earns a loot box. One daily quest can be claimed per day.
  Rewards you define unlock when you reach their level.

QUICK START:

  $ levelup signup ada "Ada"          # Create your local identity
  $ levelup workout add 45            # Log 45 minutes
  $ levelup quest list                # See today's quests
  $ levelup quest claim pushups       # Claim one quest per day
  $ levelup lootbox open              # Open a loot box
  $ levelup profile                   # Level, XP, stats

TRACKING:

  $ levelup water add 250             # Daily water, resets at midnight
  $ levelup macros set --calories 2100 --protein 160
  $ levelup habit log stretch
  $ levelup vitamin log D3

SOCIAL:

  $ levelup chat send "hello"         # Global chat
  $ levelup chat send "hi" --to bob   # Direct message
  $ levelup chat watch                # Live feed
  $ levelup leaderboard

SYNC:

  The device cache lives in Charm KV and syncs across your devices.
  Set cache_backend to "badger" in the config to keep it local only.

MCP AND HTTP:

  levelup mcp     Model Context Protocol server on stdio
  levelup serve   JSON HTTP API

CONFIGURATION:

  ~/.config/levelup/config.json, overridden by LEVELUP_* environment
  variables (a .env file in the working directory is loaded too).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger()
		if !needsRuntime(cmd) {
			return nil
		}
		return openRuntime(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeRuntime()
	},
}

func newLogger() *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{Prefix: "levelup"})
	if verbose {
		l.SetLevel(log.DebugLevel)
	} else {
		l.SetLevel(log.WarnLevel)
	}
	return l
}

func openRuntime(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	loc, err := cfg.GetLocation()
	if err != nil {
		return err
	}

	repo, err = cfg.OpenStorage()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	cache, err = cfg.OpenCache()
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	rt, err = cfg.OpenRealtime(ctx)
	if err != nil {
		return fmt.Errorf("failed to open realtime channel: %w", err)
	}

	sessions = session.NewManager()
	if cfg.UserID != "" {
		sessions.SignIn(session.Session{UserID: cfg.UserID, DisplayName: cfg.DisplayName})
	}

	coord = coordinator.New(coordinator.Options{
		Repo:        repo,
		Cache:       cache,
		Sessions:    sessions,
		Logger:      logger,
		Location:    loc,
		BioDelay:    cfg.GetBioDebounce(),
		MacrosDelay: cfg.GetMacrosDebounce(),
	})
	socialSvc = social.NewService(repo, rt, sessions, logger)
	return nil
}

func closeRuntime() error {
	var errs []error
	if coord != nil {
		errs = append(errs, coord.Close())
		coord = nil
	}
	if rt != nil {
		errs = append(errs, rt.Close())
		rt = nil
	}
	if cache != nil {
		errs = append(errs, cache.Close())
		cache = nil
	}
	if repo != nil {
		errs = append(errs, repo.Close())
		repo = nil
	}
	socialSvc = nil
	sessions = nil
	return errors.Join(errs...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Execute runs the root command. The runtime is closed even when the
// command fails, so pending debounced writes are flushed.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeRuntime(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
