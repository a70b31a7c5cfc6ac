// ABOUTME: Reward unlock synchronizer.
// ABOUTME: Unlocks are monotonic; a reward is never locked again.
package game

import "github.com/harperreed/levelup/internal/models"

// SyncRewards unlocks every reward whose level threshold has been reached.
// The input slice is not modified.
func SyncRewards(rewards []models.Reward, level int) ([]models.Reward, bool) {
	out := make([]models.Reward, len(rewards))
	changed := false
	for i, r := range rewards {
		if !r.Unlocked && r.Level <= level {
			r.Unlocked = true
			changed = true
		}
		out[i] = r
	}
	return out, changed
}
