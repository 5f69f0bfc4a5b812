package mastery

import "time"

// NeutralEstimate is the prior for a skill with no recorded evidence.
const NeutralEstimate = 0.5

// SkillMastery holds the mastery evidence for one (student, skill) pair.
// Estimate moves only in response to check results; there is no external
// write path.
type SkillMastery struct {
	StudentID string
	SkillID   string

	// Estimate is the exponentially weighted accuracy in [0, 1].
	Estimate float64

	// Confidence grows with attempts and saturates below 1.
	Confidence float64

	AttemptCount int
	LastUpdated  time.Time

	// Streak is the run of consecutive fully correct answers; MissStreak the
	// run of consecutive misses. Each resets the other.
	Streak     int
	MissStreak int

	// Difficulty is the current working difficulty for the skill (1..5).
	Difficulty int
}

// WeightedEstimate blends the estimate with the neutral prior in proportion
// to confidence, so a lucky first answer does not read as mastery.
func (sm SkillMastery) WeightedEstimate() float64 {
	return sm.Confidence*sm.Estimate + (1-sm.Confidence)*NeutralEstimate
}
