package problems

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

func generateAlgebra(r *rand.Rand, difficulty int) body {
	switch {
	case difficulty <= 2:
		return generateOneStepAdd(r, difficulty)
	case difficulty <= 4:
		return generateOneStepMul(r, difficulty)
	default:
		return generateTwoStep(r)
	}
}

// generateOneStepAdd builds x + a = b. The solution is constructed first so
// x stays positive.
func generateOneStepAdd(r *rand.Rand, difficulty int) body {
	hi := int64(10)
	if difficulty == 2 {
		hi = 25
	}
	x := randIn(r, 1, hi)
	a := randIn(r, 1, hi)
	b := x + a
	answer := strconv.FormatInt(x, 10)

	return body{
		question:   fmt.Sprintf("Solve for x: x + %d = %d", a, b),
		answer:     answer,
		answerType: AnswerTypeInteger,
		tolerance:  Tolerance{AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We have x + %d = %d", a, b),
			fmt.Sprintf("Subtract %d from both sides", a),
			fmt.Sprintf("x = %d - %d", b, a),
			fmt.Sprintf("x = %s", answer),
		},
		hints: []string{
			"Isolate the variable x",
			"What operation undoes the one in the equation?",
			"Check your answer by substituting back",
		},
		explanation: "To solve for x, we isolate it on one side of the equation.",
		params:      map[string]int64{"a": a, "b": b},
	}
}

// generateOneStepMul builds ax = b. At difficulty 3 the quotient is exact;
// at difficulty 4 it may be a fraction.
func generateOneStepMul(r *rand.Rand, difficulty int) body {
	a := randIn(r, 2, 10)
	var b int64
	if difficulty == 3 {
		b = a * randIn(r, 2, 10)
	} else {
		b = randIn(r, 10, 50)
	}

	var answer string
	answerType := AnswerTypeInteger
	if b%a == 0 {
		answer = strconv.FormatInt(b/a, 10)
	} else {
		g := gcd(b, a)
		answer = fmt.Sprintf("%d/%d", b/g, a/g)
		answerType = AnswerTypeFraction
	}

	return body{
		question:   fmt.Sprintf("Solve for x: %dx = %d", a, b),
		answer:     answer,
		answerType: answerType,
		tolerance:  Tolerance{Relative: 1e-6, AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We have %dx = %d", a, b),
			fmt.Sprintf("Divide both sides by %d", a),
			fmt.Sprintf("x = %d/%d", b, a),
			fmt.Sprintf("x = %s", answer),
		},
		hints: []string{
			"Isolate the variable x",
			"What operation undoes the one in the equation?",
			"Check your answer by substituting back",
		},
		explanation: "To solve for x, we isolate it on one side of the equation.",
		params:      map[string]int64{"a": a, "b": b},
	}
}

// generateTwoStep builds ax + b = c. The value of ax alone is a verifiable
// intermediate and earns half credit.
func generateTwoStep(r *rand.Rand) body {
	a := randIn(r, 2, 10)
	x := randIn(r, 2, 12)
	b := randIn(r, 1, 20)
	c := a*x + b
	intermediate := a * x
	answer := strconv.FormatInt(x, 10)

	return body{
		question:   fmt.Sprintf("Solve for x: %dx + %d = %d", a, b, c),
		answer:     answer,
		answerType: AnswerTypeInteger,
		tolerance:  Tolerance{AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We have %dx + %d = %d", a, b, c),
			fmt.Sprintf("Subtract %d from both sides: %dx = %d", b, a, intermediate),
			fmt.Sprintf("Divide both sides by %d", a),
			fmt.Sprintf("x = %s", answer),
		},
		hints: []string{
			"Isolate the variable x",
			fmt.Sprintf("First subtract %d from both sides", b),
			"Then undo the multiplication",
		},
		explanation: "To solve for x, we isolate it step by step: undo the addition first, then the multiplication.",
		params:      map[string]int64{"a": a, "b": b, "c": c},
		partials:    map[string]float64{strconv.FormatInt(intermediate, 10): 0.5},
	}
}
