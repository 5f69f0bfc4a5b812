package path

import (
	"fmt"
	"sort"
	"strings"

	"github.com/opengov/earlymath/internal/curriculum"
	"github.com/opengov/earlymath/internal/mastery"
	"github.com/opengov/earlymath/internal/problems"
)

// Config tunes topic selection.
type Config struct {
	// MasteryThreshold is the confidence-weighted mastery a prerequisite
	// must reach before its dependents unlock.
	MasteryThreshold float64
}

// DefaultConfig returns the planner tuning used when no configuration
// overrides it.
func DefaultConfig() Config {
	return Config{MasteryThreshold: 0.8}
}

// Decision is one planning outcome: what to practice next and why.
type Decision struct {
	StudentID  string
	Topic      string
	Difficulty int
	Rationale  string
}

// Planner selects the next topic and difficulty from a mastery snapshot.
// It performs no I/O: every decision is a pure function of the snapshot and
// the curriculum graph, so callers can plan while holding session state.
type Planner struct {
	graph *curriculum.Graph
	cfg   Config
}

// New creates a planner over a curriculum graph.
func New(graph *curriculum.Graph, cfg Config) *Planner {
	return &Planner{graph: graph, cfg: cfg}
}

// Next picks the topic with the lowest confidence-weighted mastery among
// topics whose prerequisites all sit at or above the mastery threshold and
// whose grade does not exceed the student's. Ties go to the topic practiced
// least recently, then to the lexically smaller ID. Difficulty comes from
// the topic's mastery record, where the streak ladder maintains it.
func (p *Planner) Next(studentID string, grade int, snapshot map[string]mastery.SkillMastery) (*Decision, error) {
	type candidate struct {
		topic    curriculum.Topic
		weighted float64
		record   mastery.SkillMastery
		hasRec   bool
	}

	var eligible []candidate
	var blocked []BlockedTopic

	for _, topic := range p.graph.TopologicalOrder() {
		if topic.Grade > grade {
			blocked = append(blocked, BlockedTopic{
				Topic:  topic.ID,
				Reason: fmt.Sprintf("grade %d is above student grade %d", topic.Grade, grade),
			})
			continue
		}

		var unmet []string
		for _, prereqID := range topic.Prerequisites {
			if p.weighted(snapshot, prereqID) < p.cfg.MasteryThreshold {
				unmet = append(unmet, prereqID)
			}
		}
		if len(unmet) > 0 {
			blocked = append(blocked, BlockedTopic{
				Topic:              topic.ID,
				UnmetPrerequisites: unmet,
				Reason:             fmt.Sprintf("unmet prerequisites: %s", strings.Join(unmet, ", ")),
			})
			continue
		}

		rec, hasRec := snapshot[topic.ID]
		eligible = append(eligible, candidate{
			topic:    topic,
			weighted: p.weighted(snapshot, topic.ID),
			record:   rec,
			hasRec:   hasRec,
		})
	}

	if len(eligible) == 0 {
		return nil, &NoEligibleTopicError{StudentID: studentID, Blocked: blocked}
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.weighted != b.weighted {
			return a.weighted < b.weighted
		}
		// Least recently practiced first; a topic never practiced has the
		// zero time and therefore wins.
		if !a.record.LastUpdated.Equal(b.record.LastUpdated) {
			return a.record.LastUpdated.Before(b.record.LastUpdated)
		}
		return a.topic.ID < b.topic.ID
	})

	chosen := eligible[0]
	difficulty := chosen.record.Difficulty
	if difficulty < problems.MinDifficulty {
		difficulty = problems.MinDifficulty
	}

	var rationale string
	if chosen.hasRec {
		rationale = fmt.Sprintf("%s has the lowest weighted mastery (%.2f) of %d eligible topics; practicing at difficulty %d",
			chosen.topic.ID, chosen.weighted, len(eligible), difficulty)
	} else {
		rationale = fmt.Sprintf("%s has not been practiced yet (weighted mastery %.2f); starting at difficulty %d",
			chosen.topic.ID, chosen.weighted, difficulty)
	}

	return &Decision{
		StudentID:  studentID,
		Topic:      chosen.topic.ID,
		Difficulty: difficulty,
		Rationale:  rationale,
	}, nil
}

// weighted returns the confidence-weighted mastery for a topic, reading
// absent records as the neutral prior.
func (p *Planner) weighted(snapshot map[string]mastery.SkillMastery, topicID string) float64 {
	if rec, ok := snapshot[topicID]; ok {
		return rec.WeightedEstimate()
	}
	return mastery.NeutralEstimate
}
