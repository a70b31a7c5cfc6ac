// ABOUTME: CLI commands for friends, chat and the leaderboard.
// ABOUTME: chat watch streams realtime messages until interrupted.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/models"
	"github.com/spf13/cobra"
)

var (
	chatTo    string
	chatLimit int
	boardSize int
)

var friendCmd = &cobra.Command{
	Use:   "friend",
	Short: "Manage friends",
}

var friendAddCmd = &cobra.Command{
	Use:   "add <user-id>",
	Short: "Add a friend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := socialSvc.AddFriend(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ Added %s", args[0])
		return nil
	},
}

var friendRmCmd = &cobra.Command{
	Use:     "rm <user-id>",
	Aliases: []string{"remove"},
	Short:   "Remove a friend",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := socialSvc.RemoveFriend(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("✓ Removed %s", args[0])
		return nil
	},
}

var friendListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List friends",
	RunE: func(cmd *cobra.Command, args []string) error {
		friends, err := socialSvc.Friends(cmd.Context())
		if err != nil {
			return err
		}
		if len(friends) == 0 {
			fmt.Println("No friends yet.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, f := range friends {
			fmt.Printf("%s %s L%d\n", faint.Sprint(padRight(f.ID, 12)), padRight(f.DisplayName, 20), f.Level)
		}
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Global and direct chat",
	Long: `Send and read chat messages.

Without --to, messages go to the global channel.

Examples:
  levelup chat send "Leg day done"
  levelup chat send "Race you tomorrow" --to bob
  levelup chat list --to bob
  levelup chat watch`,
}

var chatSendCmd = &cobra.Command{
	Use:   "send <text>",
	Short: "Send a message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := socialSvc.Send(cmd.Context(), args[0], peerFlag())
		if err != nil {
			return err
		}
		color.Green("✓ Sent")
		printMessage(m)
		return nil
	},
}

var chatListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show recent messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		var msgs []*models.ChatMessage
		var err error
		if chatTo != "" {
			msgs, err = socialSvc.Direct(cmd.Context(), chatTo, chatLimit)
		} else {
			msgs, err = socialSvc.Global(cmd.Context(), chatLimit)
		}
		if err != nil {
			return err
		}
		if len(msgs) == 0 {
			fmt.Println("No messages.")
			return nil
		}
		for _, m := range msgs {
			printMessage(m)
		}
		return nil
	},
}

var chatWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream messages as they arrive",
	Long: `Show recent history, then print new messages until Ctrl-C.

With the default in-process realtime channel only messages sent by this
process appear. Set realtime to "redis" to see messages from other devices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		conv, err := socialSvc.Open(ctx, peerFlag(), printMessage)
		if err != nil {
			return err
		}
		defer conv.Close()

		for _, m := range conv.Messages() {
			printMessage(m)
		}
		fmt.Println(color.New(color.Faint).Sprint("-- watching, Ctrl-C to stop --"))

		<-conv.Done()
		return nil
	},
}

func peerFlag() *string {
	if chatTo == "" {
		return nil
	}
	peer := chatTo
	return &peer
}

func printMessage(m *models.ChatMessage) {
	faint := color.New(color.Faint)
	to := ""
	if m.RecipientID != nil {
		to = faint.Sprintf(" → %s", *m.RecipientID)
	}
	fmt.Printf("%s %s%s: %s\n",
		faint.Sprint(m.CreatedAt.Local().Format("01-02 15:04")),
		color.CyanString(m.DisplayName),
		to,
		m.Text)
}

var leaderboardCmd = &cobra.Command{
	Use:     "leaderboard",
	Aliases: []string{"lb", "top"},
	Short:   "Show the top players by XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := socialSvc.Leaderboard(cmd.Context(), boardSize)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No players yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s %s L%-3d %d XP\n",
				padRight(fmt.Sprintf("#%d", e.Rank), 4),
				padRight(truncate(e.DisplayName, 20), 20),
				e.Level,
				e.XP)
		}
		return nil
	},
}

func init() {
	friendCmd.AddCommand(friendAddCmd)
	friendCmd.AddCommand(friendRmCmd)
	friendCmd.AddCommand(friendListCmd)
	rootCmd.AddCommand(friendCmd)

	chatCmd.PersistentFlags().StringVar(&chatTo, "to", "", "direct message peer user ID")
	chatListCmd.Flags().IntVarP(&chatLimit, "limit", "n", 20, "max number of messages")
	chatCmd.AddCommand(chatSendCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatWatchCmd)
	rootCmd.AddCommand(chatCmd)

	leaderboardCmd.Flags().IntVarP(&boardSize, "limit", "n", 10, "number of players")
	rootCmd.AddCommand(leaderboardCmd)
}
