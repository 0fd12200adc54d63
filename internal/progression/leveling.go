// Package progression holds the pure rules of the progression engine:
// XP to level mapping, level titles, calendar-day arithmetic and the
// streak state machine. Nothing in here touches storage.
package progression

import "math"

// XPPerLevelUnit scales the quadratic level curve: level n starts at n*n*100 XP.
const XPPerLevelUnit = 100

// LevelFromXP returns floor(sqrt(xp/100)), clamped at zero.
func LevelFromXP(xp int) int {
	if xp <= 0 {
		return 0
	}
	level := int(math.Floor(math.Sqrt(float64(xp) / XPPerLevelUnit)))
	// 浮点误差修正，保证 XPForLevel(level) <= xp < XPForLevel(level+1)
	for level > 0 && XPForLevel(level) > xp {
		level--
	}
	for XPForLevel(level+1) <= xp {
		level++
	}
	return level
}

// XPForLevel is the XP threshold at which level starts.
func XPForLevel(level int) int {
	if level <= 0 {
		return 0
	}
	return level * level * XPPerLevelUnit
}

type titleRung struct {
	minLevel int
	title    string
}

// highest first
var titleLadder = []titleRung{
	{50, "Legendary Master"},
	{40, "Grand Master"},
	{30, "Master"},
	{20, "Expert"},
	{15, "Veteran"},
	{10, "Adept"},
	{5, "Skilled"},
	{2, "Apprentice"},
}

const defaultTitle = "Beginner"

// TitleForLevel returns the title of the highest rung level has reached.
func TitleForLevel(level int) string {
	for _, rung := range titleLadder {
		if level >= rung.minLevel {
			return rung.title
		}
	}
	return defaultTitle
}

// LevelProgress is the progress bar within the current level.
type LevelProgress struct {
	Level          int
	CurrentLevelXP int
	NextLevelXP    int
	Percent        float64
}

// ProgressForXP computes level bounds and the percentage inside the level,
// clamped to [0, 100]. Equal bounds yield 0.
func ProgressForXP(xp int) LevelProgress {
	level := LevelFromXP(xp)
	lower := XPForLevel(level)
	upper := XPForLevel(level + 1)

	p := LevelProgress{
		Level:          level,
		CurrentLevelXP: lower,
		NextLevelXP:    upper,
	}
	if upper == lower {
		return p
	}

	pct := float64(xp-lower) / float64(upper-lower) * 100
	p.Percent = math.Max(0, math.Min(100, math.Round(pct*100)/100))
	return p
}
