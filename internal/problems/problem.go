package problems

// AnswerType describes the numeric representation of the canonical answer.
type AnswerType string

const (
	AnswerTypeInteger  AnswerType = "integer"  // e.g. "623", "-15"
	AnswerTypeDecimal  AnswerType = "decimal"  // e.g. "3.75", "0.5"
	AnswerTypeFraction AnswerType = "fraction" // e.g. "3/4", "7/2"
)

// Tolerance controls how submissions are compared against the canonical answer.
type Tolerance struct {
	// Relative is the relative tolerance applied when comparing decimal
	// values. Zero means exact.
	Relative float64

	// AcceptEquivalentForms accepts mathematically equivalent renderings of
	// the answer: reduced or unreduced fractions, a fraction for a decimal
	// answer, "7.0" for an integer. When false the answer must be given in
	// the canonical form, which is how simplification problems insist on
	// lowest terms.
	AcceptEquivalentForms bool
}

// Problem is one generated problem instance. Instances are immutable once
// created: the checker and the display layer read them, nothing mutates them.
type Problem struct {
	// ID is stable for a given (topic, difficulty, grade, seed).
	ID string

	Topic      string
	Difficulty int // 1..5
	Grade      int // 0 (K) .. 12
	Seed       int64

	// Question is the prompt shown to the student, e.g. "What is 27 + 15?".
	Question string

	// Answer is the canonical correct answer as a string.
	// For numeric: "42", "0.75"; for fractions: "3/4".
	Answer     string
	AnswerType AnswerType
	Tolerance  Tolerance

	// SolutionSteps is the worked solution, one line per step.
	SolutionSteps []string

	// Hints are ordered from gentle nudge to nearly revealing.
	Hints []string

	// Explanation is a short summary of the method, shown after checking.
	Explanation string

	// Params holds the generator's operands, e.g. {"a": 27, "b": 15}.
	Params map[string]int64

	// PartialAnswers maps recognizable intermediate results to the credit
	// they earn, keyed in normalized answer form. Populated only for problem
	// types with separately verifiable steps (two-step equations).
	PartialAnswers map[string]float64
}

// CheckResult is the verdict for a single submission.
type CheckResult struct {
	ProblemID     string
	Submitted     string
	Correct       bool
	PartialCredit float64 // 0..1; always 1 when Correct
	Feedback      string
}
