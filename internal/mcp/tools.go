// ABOUTME: MCP tool implementations for levelup.
// ABOUTME: Workouts, water, quests, loot boxes, rewards, leaderboard and chat.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/levelup/internal/coordinator"
	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the player's level, XP, attributes and progress toward the next level",
	}, s.handleGetProfile)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_workout",
		Description: "Log workout minutes for today (2 XP per minute)",
	}, s.handleLogWorkout)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_water",
		Description: "Add water in millilitres to today's total",
	}, s.handleAddWater)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_quests",
		Description: "List today's quests and whether today's claim is used",
	}, s.handleListQuests)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "claim_quest",
		Description: "Claim a daily quest; one claim per day",
	}, s.handleClaimQuest)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "open_loot_box",
		Description: "Open one loot box for a random stat point or bonus XP",
	}, s.handleOpenLootBox)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_rewards",
		Description: "List rewards and which are unlocked",
	}, s.handleListRewards)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_reward",
		Description: "Create a reward that unlocks at a level",
	}, s.handleAddReward)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "leaderboard",
		Description: "Top players by XP",
	}, s.handleLeaderboard)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "send_message",
		Description: "Send a chat message to the global channel or a friend",
	}, s.handleSendMessage)
}

// Tool input/output types

type emptyInput struct{}

type profileOutput struct {
	ID                string         `json:"id"`
	DisplayName       string         `json:"display_name"`
	Level             int            `json:"level"`
	XP                int            `json:"xp"`
	XPToNextLevel     int            `json:"xp_to_next_level"`
	TotalMinutes      int            `json:"total_minutes"`
	MinutesToNextRing int            `json:"minutes_to_next_ring"`
	Stats             map[string]int `json:"stats"`
	WaterML           int            `json:"water_ml"`
	LootBoxes         int            `json:"loot_boxes"`
	Status            string         `json:"status,omitempty"`
}

type logWorkoutInput struct {
	Minutes int `json:"minutes" jsonschema:"Workout duration in minutes"`
}

type addWaterInput struct {
	ML int `json:"ml" jsonschema:"Amount of water in millilitres"`
}

type claimQuestInput struct {
	QuestID string `json:"quest_id" jsonschema:"Quest ID from list_quests"`
}

type addRewardInput struct {
	Level       int    `json:"level" jsonschema:"Level at which the reward unlocks"`
	Title       string `json:"title" jsonschema:"Reward title"`
	Description string `json:"description,omitempty" jsonschema:"Optional description"`
}

type leaderboardInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max entries (default 10)"`
}

type sendMessageInput struct {
	Text        string `json:"text" jsonschema:"Message text"`
	RecipientID string `json:"recipient_id,omitempty" jsonschema:"Friend user ID; omit for the global channel"`
}

type resultOutput struct {
	Message string `json:"message"`
	Result  any    `json:"result,omitempty"`
}

// Tool handlers

func (s *Server) handleGetProfile(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, profileOutput, error) {
	p, err := s.coord.Profile(ctx)
	if err != nil {
		return nil, profileOutput{}, fmt.Errorf("failed to load profile: %w", err)
	}
	inv, err := s.coord.LootBoxes(ctx)
	if err != nil {
		return nil, profileOutput{}, fmt.Errorf("failed to load loot boxes: %w", err)
	}
	water, err := s.coord.Water(ctx)
	if err != nil {
		return nil, profileOutput{}, fmt.Errorf("failed to load water: %w", err)
	}

	stats := make(map[string]int)
	for _, st := range models.AllStats {
		stats[string(st)] = p.StatValue(st)
	}

	return nil, profileOutput{
		ID:                p.ID,
		DisplayName:       p.DisplayName,
		Level:             p.Level,
		XP:                p.XP,
		XPToNextLevel:     game.XPToNextLevel(p.XP),
		TotalMinutes:      p.TotalMinutes,
		MinutesToNextRing: game.MinutesToNextLevel(p.TotalMinutes),
		Stats:             stats,
		WaterML:           water.ML,
		LootBoxes:         inv.Count,
		Status:            p.StatusMessage,
	}, nil
}

func (s *Server) handleLogWorkout(ctx context.Context, req *mcp.CallToolRequest, input logWorkoutInput) (*mcp.CallToolResult, resultOutput, error) {
	res, err := s.coord.AddWorkoutMinutes(ctx, input.Minutes)
	if err != nil {
		return nil, resultOutput{}, fmt.Errorf("failed to log workout: %w", err)
	}

	msg := fmt.Sprintf("Logged %d minutes (+%d XP). Level %d, %d XP.", input.Minutes, res.XPGained, res.Profile.Level, res.Profile.XP)
	if res.LeveledUp {
		msg += fmt.Sprintf(" Level up! %d loot box(es) granted.", res.LootBoxesGranted)
	}
	return nil, resultOutput{Message: msg, Result: res}, nil
}

func (s *Server) handleAddWater(ctx context.Context, req *mcp.CallToolRequest, input addWaterInput) (*mcp.CallToolResult, resultOutput, error) {
	bucket, err := s.coord.AddWater(ctx, input.ML)
	if err != nil {
		return nil, resultOutput{}, fmt.Errorf("failed to add water: %w", err)
	}
	return nil, resultOutput{
		Message: fmt.Sprintf("Water today: %d ml", bucket.ML),
		Result:  bucket,
	}, nil
}

func (s *Server) handleListQuests(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	board, err := s.coord.Quests(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list quests: %w", err)
	}
	return nil, board, nil
}

func (s *Server) handleClaimQuest(ctx context.Context, req *mcp.CallToolRequest, input claimQuestInput) (*mcp.CallToolResult, resultOutput, error) {
	res, err := s.coord.ClaimQuest(ctx, input.QuestID)
	if err != nil {
		var blocked *coordinator.ClaimBlockedError
		if errors.As(err, &blocked) {
			return nil, resultOutput{
				Message: fmt.Sprintf("Already claimed today. Next claim at %s.", blocked.NextAvailable.Format("2006-01-02 15:04")),
			}, nil
		}
		return nil, resultOutput{}, fmt.Errorf("failed to claim quest: %w", err)
	}

	msg := fmt.Sprintf("Claimed %s: +%d XP, +%d %s.", res.Quest.Title, res.XPGained, res.Quest.StatDelta, res.Quest.Category)
	if res.LeveledUp {
		msg += fmt.Sprintf(" Level up to %d!", res.Profile.Level)
	}
	return nil, resultOutput{Message: msg, Result: res}, nil
}

func (s *Server) handleOpenLootBox(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, resultOutput, error) {
	res, err := s.coord.OpenLootBox(ctx)
	if errors.Is(err, coordinator.ErrNoLootBoxes) {
		return nil, resultOutput{Message: "No loot boxes to open. Level up to earn more."}, nil
	}
	if err != nil {
		return nil, resultOutput{}, fmt.Errorf("failed to open loot box: %w", err)
	}

	var msg string
	switch res.Drop.Kind {
	case game.DropStat:
		msg = fmt.Sprintf("+%d %s!", res.Drop.Amount, res.Drop.Stat)
	case game.DropBonusXP:
		msg = fmt.Sprintf("+%d bonus XP!", res.Drop.Amount)
	}
	msg += fmt.Sprintf(" %d box(es) left.", res.Remaining)
	return nil, resultOutput{Message: msg, Result: res}, nil
}

func (s *Server) handleListRewards(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, any, error) {
	rewards, err := s.coord.Rewards(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	if len(rewards) == 0 {
		return nil, map[string]interface{}{"message": "No rewards found."}, nil
	}
	return nil, rewards, nil
}

func (s *Server) handleAddReward(ctx context.Context, req *mcp.CallToolRequest, input addRewardInput) (*mcp.CallToolResult, resultOutput, error) {
	r, err := s.coord.AddReward(ctx, input.Level, input.Title, input.Description)
	if err != nil {
		return nil, resultOutput{}, fmt.Errorf("failed to add reward: %w", err)
	}
	state := "locked"
	if r.Unlocked {
		state = "unlocked"
	}
	return nil, resultOutput{
		Message: fmt.Sprintf("Added reward %q at level %d (%s)", r.Title, r.Level, state),
		Result:  r,
	}, nil
}

func (s *Server) handleLeaderboard(ctx context.Context, req *mcp.CallToolRequest, input leaderboardInput) (*mcp.CallToolResult, any, error) {
	if s.social == nil {
		return nil, nil, fmt.Errorf("social features are not available")
	}
	entries, err := s.social.Leaderboard(ctx, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	if len(entries) == 0 {
		return nil, map[string]interface{}{"message": "No players yet."}, nil
	}
	return nil, entries, nil
}

func (s *Server) handleSendMessage(ctx context.Context, req *mcp.CallToolRequest, input sendMessageInput) (*mcp.CallToolResult, resultOutput, error) {
	if s.social == nil {
		return nil, resultOutput{}, fmt.Errorf("social features are not available")
	}
	var recipient *string
	if input.RecipientID != "" {
		recipient = &input.RecipientID
	}
	m, err := s.social.Send(ctx, input.Text, recipient)
	if err != nil {
		return nil, resultOutput{}, fmt.Errorf("failed to send message: %w", err)
	}

	where := "global chat"
	if recipient != nil {
		where = *recipient
	}
	return nil, resultOutput{
		Message: fmt.Sprintf("Sent to %s", where),
		Result:  m,
	}, nil
}
