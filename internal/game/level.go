// ABOUTME: Level and XP engine plus the minutes-based progress ring.
// ABOUTME: The two progress metrics are independent display facets.
package game

// XPPerLevel is the XP needed to advance one level.
const XPPerLevel = 100

// MinutesPerRing is the size of the minutes progress ring.
const MinutesPerRing = 30

// XPPerWorkoutMinute is the XP earned for each logged workout minute.
const XPPerWorkoutMinute = 2

// LevelFromXP maps accumulated XP to a level. Level 1 starts at 0 XP.
func LevelFromXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPIntoLevel returns how far xp is into its current level.
func XPIntoLevel(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

// XPToNextLevel returns the XP still needed to reach the next level.
func XPToNextLevel(xp int) int {
	return XPPerLevel - XPIntoLevel(xp)
}

// MinutesToNextLevel is the minutes ring: minutes left until the ring fills.
// It is not derived from XP and does not predict the next XP level.
func MinutesToNextLevel(totalMinutes int) int {
	if totalMinutes < 0 {
		totalMinutes = 0
	}
	return MinutesPerRing - totalMinutes%MinutesPerRing
}
