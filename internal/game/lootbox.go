// ABOUTME: Loot-box accrual reconciler and weighted drop tables.
// ABOUTME: One box is owed per level gained; grants are idempotent per level.
package game

import (
	"math/rand"

	"github.com/harperreed/levelup/internal/models"
)

// ReconcileLootBoxes grants any boxes owed for reaching level.
// Entitlement is level-1 boxes in total; LifetimeClaimed records how many
// were already granted, so calling it again with the same level is a no-op.
func ReconcileLootBoxes(level int, inv models.LootBoxInventory) (models.LootBoxInventory, bool) {
	expected := level - 1
	if expected <= inv.LifetimeClaimed {
		return inv, false
	}
	delta := expected - inv.LifetimeClaimed
	return models.LootBoxInventory{
		Count:           inv.Count + delta,
		LifetimeClaimed: expected,
	}, true
}

// DropKind is what a loot box contains.
type DropKind string

const (
	DropStat    DropKind = "stat"
	DropBonusXP DropKind = "bonus_xp"
)

// Drop is the result of opening one loot box.
type Drop struct {
	Kind   DropKind    `json:"kind"`
	Stat   models.Stat `json:"stat,omitempty"`
	Amount int         `json:"amount"`
}

// TableEntry is a weighted loot table row.
type TableEntry struct {
	Drop   Drop
	Weight int
}

// Table is a weighted loot table.
type Table []TableEntry

// LootBoxTable is the table rolled when a box is opened.
var LootBoxTable = Table{
	{Drop: Drop{Kind: DropStat, Stat: models.StatStrength, Amount: 1}, Weight: 20},
	{Drop: Drop{Kind: DropStat, Stat: models.StatSpeed, Amount: 1}, Weight: 20},
	{Drop: Drop{Kind: DropStat, Stat: models.StatDefense, Amount: 1}, Weight: 20},
	{Drop: Drop{Kind: DropStat, Stat: models.StatFocus, Amount: 1}, Weight: 20},
	{Drop: Drop{Kind: DropStat, Stat: models.StatStrength, Amount: 3}, Weight: 4},
	{Drop: Drop{Kind: DropBonusXP, Amount: 25}, Weight: 12},
	{Drop: Drop{Kind: DropBonusXP, Amount: 50}, Weight: 4},
}

// Roll picks one drop from the table.
func (t Table) Roll(rng *rand.Rand) Drop {
	if len(t) == 0 {
		return Drop{Kind: DropBonusXP, Amount: 10}
	}

	total := 0
	for _, e := range t {
		total += e.Weight
	}

	n := rng.Intn(total)
	current := 0
	for _, e := range t {
		current += e.Weight
		if n < current {
			return e.Drop
		}
	}
	return t[len(t)-1].Drop
}
