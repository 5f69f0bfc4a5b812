package problems

import (
	"crypto/sha256"
	"fmt"
	"math/rand/v2"
	"sort"
)

// Difficulty scale bounds.
const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Grade bounds; 0 is kindergarten.
const (
	MinGrade = 0
	MaxGrade = 12
)

// body is the family-specific portion of a generated problem.
type body struct {
	question      string
	answer        string
	answerType    AnswerType
	tolerance     Tolerance
	solutionSteps []string
	hints         []string
	explanation   string
	params        map[string]int64
	partials      map[string]float64
}

// families maps topic IDs to their generator functions. Every topic in the
// default curriculum has an entry here.
var families = map[string]func(r *rand.Rand, difficulty int) body{
	"counting":       generateCounting,
	"addition":       generateAddition,
	"subtraction":    generateSubtraction,
	"multiplication": generateMultiplication,
	"division":       generateDivision,
	"fractions":      generateFractions,
	"decimals":       generateDecimals,
	"algebra":        generateAlgebra,
}

// Topics returns the topic IDs the generator can produce, sorted.
func Topics() []string {
	ids := make([]string, 0, len(families))
	for id := range families {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Supports reports whether a generator exists for the topic.
func Supports(topic string) bool {
	_, ok := families[topic]
	return ok
}

// Generate produces a problem instance for the given topic. The same
// (topic, difficulty, grade, seed) always yields the identical instance,
// which keeps cache fingerprints stable and sessions reproducible.
func Generate(topic string, difficulty, grade int, seed int64) (*Problem, error) {
	if difficulty < MinDifficulty || difficulty > MaxDifficulty {
		return nil, &InvalidParameterError{
			Param:  "difficulty",
			Value:  difficulty,
			Reason: fmt.Sprintf("must be between %d and %d", MinDifficulty, MaxDifficulty),
		}
	}
	if grade < MinGrade || grade > MaxGrade {
		return nil, &InvalidParameterError{
			Param:  "grade",
			Value:  grade,
			Reason: fmt.Sprintf("must be between %d (K) and %d", MinGrade, MaxGrade),
		}
	}
	family, ok := families[topic]
	if !ok {
		return nil, &InvalidParameterError{
			Param:  "topic",
			Value:  topic,
			Reason: "no generator for this topic",
		}
	}

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	b := family(r, difficulty)

	return &Problem{
		ID:             problemID(topic, difficulty, grade, seed),
		Topic:          topic,
		Difficulty:     difficulty,
		Grade:          grade,
		Seed:           seed,
		Question:       b.question,
		Answer:         b.answer,
		AnswerType:     b.answerType,
		Tolerance:      b.tolerance,
		SolutionSteps:  b.solutionSteps,
		Hints:          b.hints,
		Explanation:    b.explanation,
		Params:         b.params,
		PartialAnswers: b.partials,
	}, nil
}

// GeneratePracticeSet produces n problems for a topic, advancing the seed per
// problem so the set varies but is still fully determined by the base seed.
func GeneratePracticeSet(topic string, difficulty, grade int, seed int64, n int) ([]*Problem, error) {
	if n <= 0 {
		return nil, &InvalidParameterError{Param: "n", Value: n, Reason: "must be positive"}
	}
	set := make([]*Problem, 0, n)
	for i := range n {
		p, err := Generate(topic, difficulty, grade, seed+int64(i))
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// problemID derives a stable ID from the generation inputs.
func problemID(topic string, difficulty, grade int, seed int64) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%d|%d", topic, difficulty, grade, seed)))
	return fmt.Sprintf("prob-%s-%x", topic, h[:4])
}

// randIn returns a uniform value in [lo, hi], both inclusive.
func randIn(r *rand.Rand, lo, hi int64) int64 {
	return lo + r.Int64N(hi-lo+1)
}
