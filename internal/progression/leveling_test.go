package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromXP_KnownValues(t *testing.T) {
	cases := map[int]int{
		0:    0,
		99:   0,
		100:  1,
		399:  1,
		400:  2,
		2500: 5,
		-50:  0,
	}
	for xp, want := range cases {
		assert.Equal(t, want, LevelFromXP(xp), "xp=%d", xp)
	}
}

func TestLevelFromXP_BoundsHoldForAllXP(t *testing.T) {
	for xp := 0; xp <= 300000; xp += 7 {
		level := LevelFromXP(xp)
		if !assert.LessOrEqual(t, XPForLevel(level), xp, "xp=%d", xp) {
			return
		}
		if !assert.Less(t, xp, XPForLevel(level+1), "xp=%d", xp) {
			return
		}
	}
}

func TestXPForLevel_InverseOfLevelFromXP(t *testing.T) {
	for level := 0; level <= 100; level++ {
		assert.Equal(t, level, LevelFromXP(XPForLevel(level)))
	}
	assert.Equal(t, 0, XPForLevel(-3))
}

func TestTitleForLevel(t *testing.T) {
	assert.Equal(t, "Beginner", TitleForLevel(0))
	assert.Equal(t, "Beginner", TitleForLevel(1))
	assert.Equal(t, "Apprentice", TitleForLevel(2))
	assert.Equal(t, "Skilled", TitleForLevel(9))
	assert.Equal(t, "Adept", TitleForLevel(10))
	assert.Equal(t, "Master", TitleForLevel(35))
	assert.Equal(t, "Legendary Master", TitleForLevel(50))
	assert.Equal(t, "Legendary Master", TitleForLevel(900))
	assert.Equal(t, "Beginner", TitleForLevel(-1))
}

func TestProgressForXP(t *testing.T) {
	p := ProgressForXP(150)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, 100, p.CurrentLevelXP)
	assert.Equal(t, 400, p.NextLevelXP)
	assert.InDelta(t, 16.67, p.Percent, 0.001)

	p = ProgressForXP(0)
	assert.Equal(t, 0, p.Level)
	assert.Equal(t, 0, p.CurrentLevelXP)
	assert.Equal(t, 100, p.NextLevelXP)
	assert.Equal(t, 0.0, p.Percent)

	p = ProgressForXP(399)
	assert.LessOrEqual(t, p.Percent, 100.0)
	assert.GreaterOrEqual(t, p.Percent, 0.0)
}
