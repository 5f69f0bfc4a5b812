package problems

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

func generateFractions(r *rand.Rand, difficulty int) body {
	if difficulty <= 2 {
		return generateFractionSimplify(r, difficulty)
	}
	return generateFractionSum(r, difficulty)
}

// generateFractionSimplify asks for a fraction in lowest terms. The answer
// must be given in exactly that form; an equivalent unreduced fraction earns
// partial credit in the checker.
func generateFractionSimplify(r *rand.Rand, difficulty int) body {
	var n, d int64
	if difficulty == 1 {
		n, d = randIn(r, 1, 5), randIn(r, 2, 10)
	} else {
		n, d = randIn(r, 2, 12), randIn(r, 4, 16)
	}
	g := gcd(n, d)
	answer := fmt.Sprintf("%d/%d", n/g, d/g)

	return body{
		question:   fmt.Sprintf("Simplify the fraction %d/%d", n, d),
		answer:     answer,
		answerType: AnswerTypeFraction,
		tolerance:  Tolerance{Relative: 1e-6},
		solutionSteps: []string{
			"Identify the numerator and denominator",
			fmt.Sprintf("Find the greatest common factor of %d and %d: it is %d", n, d, g),
			fmt.Sprintf("Divide both by %d", g),
			fmt.Sprintf("The answer is %s", answer),
		},
		hints: []string{
			"Look for common factors",
			"Remember to simplify your answer",
			"Use visual aids like pie charts",
		},
		explanation: "Fractions represent parts of a whole. Dividing the top and bottom by the same number keeps the value equal.",
		params:      map[string]int64{"n": n, "d": d},
	}
}

func generateFractionSum(r *rand.Rand, difficulty int) body {
	var nHi, dHi int64
	switch difficulty {
	case 3:
		nHi, dHi = 5, 8
	case 4:
		nHi, dHi = 9, 12
	default:
		nHi, dHi = 12, 16
	}
	n1, d1 := randIn(r, 1, nHi), randIn(r, 2, dHi)
	n2, d2 := randIn(r, 1, nHi), randIn(r, 2, dHi)

	l := lcm(d1, d2)
	e1, e2 := n1*(l/d1), n2*(l/d2)
	sum := e1 + e2
	g := gcd(sum, l)
	answer := fmt.Sprintf("%d/%d", sum/g, l/g)

	return body{
		question:   fmt.Sprintf("What is %d/%d + %d/%d?", n1, d1, n2, d2),
		answer:     answer,
		answerType: AnswerTypeFraction,
		tolerance:  Tolerance{Relative: 1e-6, AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("Find a common denominator for %d and %d: use %d", d1, d2, l),
			fmt.Sprintf("%d/%d becomes %d/%d and %d/%d becomes %d/%d", n1, d1, e1, l, n2, d2, e2, l),
			fmt.Sprintf("Add the numerators: %d + %d = %d", e1, e2, sum),
			fmt.Sprintf("The answer is %s", answer),
		},
		hints: []string{
			"Look for a common denominator",
			"Remember to simplify your answer",
			"Use visual aids like pie charts",
		},
		explanation: "Fractions represent parts of a whole. To add them, rewrite both over a common denominator first.",
		params:      map[string]int64{"n1": n1, "d1": d1, "n2": n2, "d2": d2},
	}
}

// generateDecimals produces decimal addition problems. Operands are built in
// tenths or hundredths so the canonical answer is exact.
func generateDecimals(r *rand.Rand, difficulty int) body {
	scale := int64(10)
	if difficulty >= 3 {
		scale = 100
	}
	var lo, hi int64
	switch difficulty {
	case 1:
		lo, hi = 1, 99
	case 2:
		lo, hi = 10, 199
	case 3:
		lo, hi = 100, 999
	case 4:
		lo, hi = 100, 4999
	default:
		lo, hi = 1000, 9999
	}
	a, b := randIn(r, lo, hi), randIn(r, lo, hi)
	sum := a + b

	aStr := formatScaled(a, scale)
	bStr := formatScaled(b, scale)
	answer := formatScaled(sum, scale)

	return body{
		question:   fmt.Sprintf("What is %s + %s?", aStr, bStr),
		answer:     answer,
		answerType: AnswerTypeDecimal,
		tolerance:  Tolerance{Relative: 1e-6, AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We need to add %s and %s", aStr, bStr),
			"Line up the decimal points",
			"Add digit by digit, starting from the right",
			fmt.Sprintf("%s + %s = %s", aStr, bStr, answer),
		},
		hints: []string{
			"Line up the decimal points before adding",
			"Add the digits column by column",
			fmt.Sprintf("Think of it as %d + %d, then place the decimal point", a, b),
		},
		explanation: fmt.Sprintf("Decimals add like whole numbers once the decimal points line up. %s plus %s equals %s.", aStr, bStr, answer),
		params:      map[string]int64{"a": a, "b": b, "scale": scale},
	}
}

// formatScaled renders value/scale as a plain decimal string.
func formatScaled(value, scale int64) string {
	return strconv.FormatFloat(float64(value)/float64(scale), 'f', -1, 64)
}

// lcm returns the least common multiple of a and b.
func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}
