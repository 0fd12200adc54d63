package progression

// BadgeDef describes a badge a learner can earn once.
type BadgeDef struct {
	Code        string
	Name        string
	Description string
}

// Snapshot is the learner state badges are evaluated against.
type Snapshot struct {
	Level          int
	CurrentStreak  int
	StepsCompleted int
}

type badgeRule struct {
	def BadgeDef
	met func(Snapshot) bool
}

var badgeRules = []badgeRule{
	{BadgeDef{"first_step", "First Steps", "Complete your first learning step"}, func(s Snapshot) bool { return s.StepsCompleted >= 1 }},
	{BadgeDef{"steps_10", "Trailblazer", "Complete 10 learning steps"}, func(s Snapshot) bool { return s.StepsCompleted >= 10 }},
	{BadgeDef{"streak_3", "Getting Started", "Reach a 3-day streak"}, func(s Snapshot) bool { return s.CurrentStreak >= 3 }},
	{BadgeDef{"streak_7", "Week Warrior", "Reach a 7-day streak"}, func(s Snapshot) bool { return s.CurrentStreak >= 7 }},
	{BadgeDef{"streak_30", "Monthly Master", "Reach a 30-day streak"}, func(s Snapshot) bool { return s.CurrentStreak >= 30 }},
	{BadgeDef{"level_5", "Rising Star", "Reach level 5"}, func(s Snapshot) bool { return s.Level >= 5 }},
	{BadgeDef{"level_10", "Powerhouse", "Reach level 10"}, func(s Snapshot) bool { return s.Level >= 10 }},
	{BadgeDef{"level_25", "Legend in the Making", "Reach level 25"}, func(s Snapshot) bool { return s.Level >= 25 }},
}

// QualifiedBadges returns every badge the snapshot qualifies for. Callers
// filter out the ones already earned.
func QualifiedBadges(s Snapshot) []BadgeDef {
	var out []BadgeDef
	for _, r := range badgeRules {
		if r.met(s) {
			out = append(out, r.def)
		}
	}
	return out
}

// Badges lists the whole catalogue in display order.
func Badges() []BadgeDef {
	out := make([]BadgeDef, len(badgeRules))
	for i, r := range badgeRules {
		out[i] = r.def
	}
	return out
}
