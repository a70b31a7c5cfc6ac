// ABOUTME: Daily quest catalogue.
// ABOUTME: Each quest grants XP and a bump to one attribute once per day.
package game

import (
	"fmt"
	"strings"

	"github.com/harperreed/levelup/internal/models"
)

// Quest is a daily task with an XP and attribute reward.
type Quest struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    models.Stat `json:"category"`
	XP          int         `json:"xp"`
	StatDelta   int         `json:"stat_delta"`
}

// DailyQuests is the quest board shown every day.
var DailyQuests = []Quest{
	{ID: "pushups", Title: "50 Push-ups", Description: "Complete 50 push-ups in any number of sets", Category: models.StatStrength, XP: 20, StatDelta: 1},
	{ID: "sprint", Title: "Sprint Intervals", Description: "Run 6 x 100m sprints", Category: models.StatSpeed, XP: 20, StatDelta: 1},
	{ID: "plank", Title: "Plank Hold", Description: "Hold a plank for 3 minutes total", Category: models.StatDefense, XP: 20, StatDelta: 1},
	{ID: "meditate", Title: "Meditate", Description: "Meditate for 10 minutes", Category: models.StatFocus, XP: 20, StatDelta: 1},
	{ID: "boss", Title: "Boss Workout", Description: "Train for 60 minutes straight", Category: models.StatStrength, XP: 50, StatDelta: 2},
}

// FindQuest looks up a quest by ID, case-insensitively.
func FindQuest(id string) (Quest, error) {
	for _, q := range DailyQuests {
		if strings.EqualFold(q.ID, id) {
			return q, nil
		}
	}
	return Quest{}, fmt.Errorf("unknown quest: %s", id)
}
