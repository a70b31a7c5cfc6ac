// ABOUTME: Tests for the level engine, loot-box reconciler and reward sync.
// ABOUTME: Covers idempotent grants and monotonic unlocks.
package game

import (
	"math/rand"
	"testing"

	"github.com/harperreed/levelup/internal/models"
)

func TestLevelFromXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{1, 1},
		{99, 1},
		{100, 2},
		{180, 2},
		{199, 2},
		{200, 3},
		{1050, 11},
		{-5, 1},
	}

	for _, tt := range tests {
		if got := LevelFromXP(tt.xp); got != tt.want {
			t.Errorf("LevelFromXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestLevelFromXPMatchesFormula(t *testing.T) {
	for xp := 0; xp < 5000; xp += 7 {
		if got, want := LevelFromXP(xp), xp/100+1; got != want {
			t.Fatalf("LevelFromXP(%d) = %d, want %d", xp, got, want)
		}
	}
}

func TestXPProgress(t *testing.T) {
	if got := XPIntoLevel(180); got != 80 {
		t.Errorf("XPIntoLevel(180) = %d, want 80", got)
	}
	if got := XPToNextLevel(180); got != 20 {
		t.Errorf("XPToNextLevel(180) = %d, want 20", got)
	}
	if got := XPToNextLevel(200); got != 100 {
		t.Errorf("XPToNextLevel(200) = %d, want 100", got)
	}
}

func TestMinutesToNextLevel(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{0, 30},
		{10, 20},
		{29, 1},
		{30, 30},
		{60, 30},
		{75, 15},
	}
	for _, tt := range tests {
		if got := MinutesToNextLevel(tt.total); got != tt.want {
			t.Errorf("MinutesToNextLevel(%d) = %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestReconcileLootBoxesIdempotent(t *testing.T) {
	inv := models.LootBoxInventory{Count: 2, LifetimeClaimed: 4}

	first, granted := ReconcileLootBoxes(5, inv)
	if !granted {
		t.Fatal("expected first reconcile to grant")
	}
	if first.Count != 3 || first.LifetimeClaimed != 4+1 {
		t.Errorf("first = %+v, want {Count:3 LifetimeClaimed:5}", first)
	}

	second, granted := ReconcileLootBoxes(5, first)
	if granted {
		t.Error("expected second reconcile to be a no-op")
	}
	if second != first {
		t.Errorf("second = %+v, want %+v", second, first)
	}
}

func TestReconcileLootBoxesMultiLevelJump(t *testing.T) {
	got, granted := ReconcileLootBoxes(4, models.LootBoxInventory{})
	if !granted || got.Count != 3 || got.LifetimeClaimed != 3 {
		t.Errorf("got %+v granted=%v, want 3/3 granted", got, granted)
	}
}

func TestReconcileLootBoxesLevelOne(t *testing.T) {
	got, granted := ReconcileLootBoxes(1, models.LootBoxInventory{})
	if granted || got.Count != 0 {
		t.Errorf("level 1 should owe nothing, got %+v", got)
	}
}

func TestReconcileLootBoxesNeverTakesBack(t *testing.T) {
	inv := models.LootBoxInventory{Count: 1, LifetimeClaimed: 6}
	got, granted := ReconcileLootBoxes(3, inv)
	if granted || got != inv {
		t.Errorf("lower level changed inventory: %+v", got)
	}
}

func TestSyncRewardsMonotonic(t *testing.T) {
	rewards := []models.Reward{
		{ID: "a", Level: 2},
		{ID: "b", Level: 5},
		{ID: "c", Level: 9, Unlocked: true},
	}

	synced, changed := SyncRewards(rewards, 5)
	if !changed {
		t.Error("expected change at level 5")
	}
	if !synced[0].Unlocked || !synced[1].Unlocked || !synced[2].Unlocked {
		t.Errorf("unexpected unlocks: %+v", synced)
	}
	if rewards[0].Unlocked {
		t.Error("input slice was modified")
	}

	again, changed := SyncRewards(synced, 1)
	if changed {
		t.Error("lower level should not report change")
	}
	for _, r := range again {
		if !r.Unlocked {
			t.Errorf("reward %s was re-locked", r.ID)
		}
	}
}

func TestTableRoll(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := map[DropKind]int{}
	for i := 0; i < 1000; i++ {
		d := LootBoxTable.Roll(rng)
		if d.Amount <= 0 {
			t.Fatalf("drop with non-positive amount: %+v", d)
		}
		if d.Kind == DropStat && d.Stat == "" {
			t.Fatalf("stat drop without stat: %+v", d)
		}
		seen[d.Kind]++
	}
	if seen[DropStat] == 0 || seen[DropBonusXP] == 0 {
		t.Errorf("expected both drop kinds, got %v", seen)
	}
}

func TestTableRollEmpty(t *testing.T) {
	d := Table{}.Roll(rand.New(rand.NewSource(1)))
	if d.Kind != DropBonusXP {
		t.Errorf("empty table drop = %+v", d)
	}
}

func TestFindQuest(t *testing.T) {
	q, err := FindQuest("PUSHUPS")
	if err != nil {
		t.Fatalf("FindQuest failed: %v", err)
	}
	if q.Category != models.StatStrength {
		t.Errorf("Category = %s, want strength", q.Category)
	}
	if _, err := FindQuest("nope"); err == nil {
		t.Error("expected error for unknown quest")
	}
}
