package problems

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	feedbackCorrect      = "Great job! That's correct!"
	feedbackIncorrect    = "Not quite. Try again! You can do it!"
	feedbackPartialStep  = "Good thinking! That matches an important step. Now take it one step further."
	feedbackUnsimplified = "Your fraction equals the answer, but it can be simplified further. Keep reducing!"
)

// Check compares a submission against the problem's canonical answer.
// It never returns an error: malformed submissions yield Correct=false with
// diagnostic feedback.
//
// Normalization rules:
//   - Whitespace is trimmed
//   - For integers: leading zeros are ignored ("007" matches "7") and an
//     integral decimal is accepted ("7.0" matches "7")
//   - For decimals: values within the problem's relative tolerance match,
//     so trailing zeros are ignored ("3.50" matches "3.5")
//   - For fractions: the submission is reduced to lowest terms with the sign
//     on the numerator; equivalent fractions and the decimal form match when
//     the problem accepts equivalent forms
func Check(p *Problem, submitted string) CheckResult {
	result := CheckResult{ProblemID: p.ID, Submitted: submitted}

	trimmed := strings.TrimSpace(submitted)
	if trimmed == "" {
		result.Feedback = "I didn't see an answer. Give it a try!"
		return result
	}

	sub, err := parseSubmission(trimmed)
	if err != nil {
		result.Feedback = fmt.Sprintf("I couldn't read %q as a number. Try digits like 12, 3.5, or 3/4.", trimmed)
		return result
	}

	if answersMatch(p, sub) {
		result.Correct = true
		result.PartialCredit = 1
		result.Feedback = feedbackCorrect
		return result
	}

	if credit, feedback, ok := partialCredit(p, sub); ok {
		result.PartialCredit = credit
		result.Feedback = feedback
		return result
	}

	result.Feedback = feedbackIncorrect
	return result
}

// parsedAnswer is a submission parsed into a comparable form.
type parsedAnswer struct {
	isFraction     bool
	num, den       int64 // lowest terms, sign on the numerator
	rawNum, rawDen int64 // as written, sign normalized but not reduced
	value          float64
}

// parseSubmission extracts a numeric value from a submission. Accepts
// integers, decimals, and a/b fractions.
func parseSubmission(s string) (parsedAnswer, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "/") {
		num, den, err := parseFraction(s)
		if err != nil {
			return parsedAnswer{}, err
		}
		if den == 0 {
			return parsedAnswer{}, fmt.Errorf("zero denominator")
		}
		// Normalize sign: negative sign on numerator only.
		if den < 0 {
			num, den = -num, -den
		}
		g := gcd(abs(num), den)
		return parsedAnswer{
			isFraction: true,
			num:        num / g,
			den:        den / g,
			rawNum:     num,
			rawDen:     den,
			value:      float64(num) / float64(den),
		}, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return parsedAnswer{}, fmt.Errorf("not a number: %q", s)
	}
	return parsedAnswer{value: f}, nil
}

func answersMatch(p *Problem, sub parsedAnswer) bool {
	want, err := parseSubmission(p.Answer)
	if err != nil {
		// Canonical answers come from the generator; an unparseable one can
		// never be matched.
		return false
	}

	switch p.AnswerType {
	case AnswerTypeInteger:
		if sub.isFraction {
			return p.Tolerance.AcceptEquivalentForms && sub.den == 1 && float64(sub.num) == want.value
		}
		return sub.value == want.value && sub.value == math.Trunc(sub.value)

	case AnswerTypeDecimal:
		if sub.isFraction && !p.Tolerance.AcceptEquivalentForms {
			return false
		}
		return floatsEqual(sub.value, want.value, p.Tolerance.Relative)

	case AnswerTypeFraction:
		if !p.Tolerance.AcceptEquivalentForms {
			if !sub.isFraction {
				// A whole-number canonical answer ("1/1", "3/1") leaves
				// nothing to simplify, so the bare integer is canonical too.
				return want.den == 1 && sub.value == float64(want.num)
			}
			// Otherwise the canonical form is required, exactly as the
			// generator wrote it. This is how simplification problems reject
			// an unreduced but equal fraction.
			return sub.rawNum == want.num && sub.rawDen == want.den
		}
		if sub.isFraction {
			return sub.num == want.num && sub.den == want.den
		}
		return floatsEqual(sub.value, want.value, p.Tolerance.Relative)

	default:
		return false
	}
}

// partialCredit looks for credit-worthy intermediate answers. Sources, in
// order: the problem's PartialAnswers table, then the rule that an
// equivalent-but-unreduced fraction on a simplification problem earns half
// credit.
func partialCredit(p *Problem, sub parsedAnswer) (credit float64, feedback string, ok bool) {
	if len(p.PartialAnswers) > 0 {
		if credit, found := p.PartialAnswers[partialKey(sub)]; found {
			return credit, feedbackPartialStep, true
		}
	}

	if p.AnswerType == AnswerTypeFraction && !p.Tolerance.AcceptEquivalentForms && sub.isFraction {
		want, err := parseSubmission(p.Answer)
		if err == nil && sub.num == want.num && sub.den == want.den {
			return 0.5, feedbackUnsimplified, true
		}
	}

	return 0, "", false
}

// partialKey renders a parsed submission in the form PartialAnswers keys use.
func partialKey(sub parsedAnswer) string {
	if sub.isFraction {
		return fmt.Sprintf("%d/%d", sub.num, sub.den)
	}
	if sub.value == math.Trunc(sub.value) {
		return strconv.FormatInt(int64(sub.value), 10)
	}
	return strconv.FormatFloat(sub.value, 'f', -1, 64)
}

// floatsEqual reports whether a and b agree within relative tolerance rel.
// A rel of zero requires exact equality.
func floatsEqual(a, b, rel float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= rel*scale
}

// parseFraction parses "a/b" into numerator and denominator.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

// gcd returns the greatest common divisor of a and b.
// Both a and b must be non-negative.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// abs returns the absolute value of n.
func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
