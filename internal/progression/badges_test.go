package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func codes(defs []BadgeDef) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Code)
	}
	return out
}

func TestQualifiedBadges(t *testing.T) {
	assert.Empty(t, QualifiedBadges(Snapshot{}))

	got := codes(QualifiedBadges(Snapshot{Level: 5, CurrentStreak: 3, StepsCompleted: 1}))
	assert.ElementsMatch(t, []string{"first_step", "streak_3", "level_5"}, got)

	got = codes(QualifiedBadges(Snapshot{Level: 30, CurrentStreak: 31, StepsCompleted: 12}))
	assert.Len(t, got, len(Badges()))
}
