package gamification

// XPPerLevel is the width of every level band. Level n spans
// [(n-1)*XPPerLevel, n*XPPerLevel).
const XPPerLevel = 100

// LevelForXP returns floor(totalXP/XPPerLevel)+1. Negative totals count as zero.
func LevelForXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// Progress describes where a total XP value sits inside its level band.
type Progress struct {
	Level        int     `json:"level"`
	TotalXP      int     `json:"total_xp"`
	LevelFloorXP int     `json:"level_floor_xp"`
	NextLevelXP  int     `json:"next_level_xp"`
	XPIntoLevel  int     `json:"xp_into_level"`
	XPPerLevel   int     `json:"xp_per_level"`
	Fraction     float64 `json:"fraction"`
}

// ProgressFor derives the progress bar from the same linear curve LevelForXP
// uses, so XPIntoLevel is always in [0, XPPerLevel).
func ProgressFor(totalXP int) Progress {
	if totalXP < 0 {
		totalXP = 0
	}
	level := LevelForXP(totalXP)
	floor := (level - 1) * XPPerLevel
	into := totalXP - floor
	return Progress{
		Level:        level,
		TotalXP:      totalXP,
		LevelFloorXP: floor,
		NextLevelXP:  level * XPPerLevel,
		XPIntoLevel:  into,
		XPPerLevel:   XPPerLevel,
		Fraction:     float64(into) / float64(XPPerLevel),
	}
}

// AwardXP adds reward to totalXP and reports the level before and after.
// Negative rewards are ignored so XP never decreases.
func AwardXP(totalXP, reward int) (newTotal, oldLevel, newLevel int) {
	if reward < 0 {
		reward = 0
	}
	oldLevel = LevelForXP(totalXP)
	newTotal = totalXP + reward
	return newTotal, oldLevel, LevelForXP(newTotal)
}
