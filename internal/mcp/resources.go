// ABOUTME: MCP resource implementations for levelup.
// ABOUTME: Provides levelup://profile, levelup://today and levelup://rewards.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/levelup/internal/game"
	"github.com/harperreed/levelup/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "levelup://profile",
		Name:        "Player Profile",
		Description: "Level, XP, attributes, loot boxes and progress rings",
		MIMEType:    "application/json",
	}, s.handleProfileResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "levelup://today",
		Name:        "Today's Activity",
		Description: "Workout minutes, water, quest claim, habits and vitamins for today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "levelup://rewards",
		Name:        "Rewards",
		Description: "All rewards with their unlock level and state",
		MIMEType:    "application/json",
	}, s.handleRewardsResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// Resource handlers

func (s *Server) handleProfileResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	p, err := s.coord.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	inv, err := s.coord.LootBoxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load loot boxes: %w", err)
	}

	return jsonResource("levelup://profile", map[string]interface{}{
		"profile":              p,
		"xp_into_level":        game.XPIntoLevel(p.XP),
		"xp_to_next_level":     game.XPToNextLevel(p.XP),
		"minutes_to_next_ring": game.MinutesToNextLevel(p.TotalMinutes),
		"loot_boxes":           inv,
	})
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	today := s.coord.Today()

	entries, err := s.coord.WorkoutLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load workout log: %w", err)
	}
	minutes := 0
	for _, e := range entries {
		if e.Date == today {
			minutes = e.Minutes
		}
	}

	water, err := s.coord.Water(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load water: %w", err)
	}
	board, err := s.coord.Quests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load quests: %w", err)
	}
	habits, err := s.coord.Habits(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	vitamins, err := s.coord.Vitamins(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list vitamins: %w", err)
	}

	if habits == nil {
		habits = []*models.HabitLog{}
	}
	if vitamins == nil {
		vitamins = []*models.VitaminLog{}
	}

	return jsonResource("levelup://today", map[string]interface{}{
		"date":            today,
		"workout_minutes": minutes,
		"water_ml":        water.ML,
		"quest_claimed":   board.ClaimedToday,
		"habits":          habits,
		"vitamins":        vitamins,
	})
}

func (s *Server) handleRewardsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	rewards, err := s.coord.Rewards(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return jsonResource("levelup://rewards", rewards)
}
