package problems

import (
	"fmt"
	"math/rand/v2"
	"strconv"
)

func generateCounting(r *rand.Rand, difficulty int) body {
	steps := []int64{1, 2, 5, 10, 100}
	step := steps[difficulty-1]
	start := step * randIn(r, 1, 20)
	answer := start + step

	var question string
	if step == 1 {
		question = fmt.Sprintf("What number comes after %d?", start)
	} else {
		question = fmt.Sprintf("Counting by %ds, what number comes after %d?", step, start)
	}

	return body{
		question:   question,
		answer:     strconv.FormatInt(answer, 10),
		answerType: AnswerTypeInteger,
		tolerance:  Tolerance{AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We are counting by %ds", step),
			fmt.Sprintf("Starting at %d", start),
			fmt.Sprintf("Adding %d more", step),
			fmt.Sprintf("%d + %d = %d", start, step, answer),
		},
		hints: []string{
			"Say the numbers out loud as you count",
			fmt.Sprintf("Each step adds %d", step),
			fmt.Sprintf("Start at %d and count up once", start),
		},
		explanation: fmt.Sprintf("Counting by %ds means adding %d each time. After %d comes %d.", step, step, start, answer),
		params:      map[string]int64{"start": start, "step": step},
	}
}

func generateAddition(r *rand.Rand, difficulty int) body {
	var lo, hi int64
	switch difficulty {
	case 1:
		lo, hi = 1, 10
	case 2:
		lo, hi = 10, 50
	case 3:
		lo, hi = 50, 100
	case 4:
		lo, hi = 100, 1000
	default:
		lo, hi = 1000, 10000
	}
	a, b := randIn(r, lo, hi), randIn(r, lo, hi)
	answer := a + b

	return body{
		question:   fmt.Sprintf("What is %d + %d?", a, b),
		answer:     strconv.FormatInt(answer, 10),
		answerType: AnswerTypeInteger,
		tolerance:  Tolerance{AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We need to add %d and %d", a, b),
			fmt.Sprintf("Starting with %d", a),
			fmt.Sprintf("Adding %d", b),
			fmt.Sprintf("%d + %d = %d", a, b, answer),
		},
		hints: []string{
			"Line up the numbers vertically",
			"Start adding from the ones place",
			fmt.Sprintf("Think: what do you get when you combine %d and %d?", a, b),
		},
		explanation: fmt.Sprintf("Addition combines two numbers. %d plus %d equals %d.", a, b, answer),
		params:      map[string]int64{"a": a, "b": b},
	}
}

func generateSubtraction(r *rand.Rand, difficulty int) body {
	var a, b int64
	switch difficulty {
	case 1:
		a, b = randIn(r, 5, 20), randIn(r, 1, 10)
	case 2:
		a, b = randIn(r, 20, 100), randIn(r, 10, 50)
	case 3:
		a, b = randIn(r, 100, 1000), randIn(r, 50, 500)
	case 4:
		a, b = randIn(r, 1000, 5000), randIn(r, 500, 2500)
	default:
		a, b = randIn(r, 5000, 10000), randIn(r, 2500, 5000)
	}
	// Keep the result non-negative.
	a, b = max(a, b), min(a, b)
	answer := a - b

	return body{
		question:   fmt.Sprintf("What is %d - %d?", a, b),
		answer:     strconv.FormatInt(answer, 10),
		answerType: AnswerTypeInteger,
		tolerance:  Tolerance{AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We need to subtract %d from %d", b, a),
			fmt.Sprintf("Starting with %d", a),
			fmt.Sprintf("Taking away %d", b),
			fmt.Sprintf("%d - %d = %d", a, b, answer),
		},
		hints: []string{
			"Think of subtraction as taking away",
			fmt.Sprintf("Start with %d and remove %d", a, b),
			"You can use a number line to help",
		},
		explanation: fmt.Sprintf("Subtraction finds the difference. %d minus %d equals %d.", a, b, answer),
		params:      map[string]int64{"a": a, "b": b},
	}
}

func generateMultiplication(r *rand.Rand, difficulty int) body {
	var lo, hi int64
	switch difficulty {
	case 1:
		lo, hi = 1, 5
	case 2:
		lo, hi = 2, 10
	case 3:
		lo, hi = 5, 20
	case 4:
		lo, hi = 10, 50
	default:
		lo, hi = 20, 100
	}
	a, b := randIn(r, lo, hi), randIn(r, lo, hi)
	answer := a * b

	return body{
		question:   fmt.Sprintf("What is %d × %d?", a, b),
		answer:     strconv.FormatInt(answer, 10),
		answerType: AnswerTypeInteger,
		tolerance:  Tolerance{AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We need to multiply %d by %d", a, b),
			fmt.Sprintf("This means %d groups of %d", a, b),
			fmt.Sprintf("Or adding %d to itself %d times", b, a),
			fmt.Sprintf("%d × %d = %d", a, b, answer),
		},
		hints: []string{
			fmt.Sprintf("Think of %d groups with %d items in each", a, b),
			fmt.Sprintf("You can add %d + %d + ... (%d times)", b, b, a),
			"Draw an array to visualize",
		},
		explanation: fmt.Sprintf("Multiplication is repeated addition. %d times %d equals %d.", a, b, answer),
		params:      map[string]int64{"a": a, "b": b},
	}
}

func generateDivision(r *rand.Rand, difficulty int) body {
	var lo, hi int64
	switch difficulty {
	case 1:
		lo, hi = 1, 5
	case 2:
		lo, hi = 2, 10
	case 3:
		lo, hi = 5, 20
	case 4:
		lo, hi = 10, 50
	default:
		lo, hi = 20, 100
	}
	// Construct the dividend from divisor and quotient so division is exact.
	b := randIn(r, lo, hi)
	q := randIn(r, lo, hi)
	a := b * q

	return body{
		question:   fmt.Sprintf("What is %d ÷ %d?", a, b),
		answer:     strconv.FormatInt(q, 10),
		answerType: AnswerTypeInteger,
		tolerance:  Tolerance{AcceptEquivalentForms: true},
		solutionSteps: []string{
			fmt.Sprintf("We need to divide %d by %d", a, b),
			fmt.Sprintf("How many groups of %d fit in %d?", b, a),
			fmt.Sprintf("Or: if we share %d items among %d groups equally", a, b),
			fmt.Sprintf("%d ÷ %d = %d", a, b, q),
		},
		hints: []string{
			fmt.Sprintf("Think: how many %ds are in %d?", b, a),
			"Division is the opposite of multiplication",
			fmt.Sprintf("Try: %d × ? = %d", b, a),
		},
		explanation: fmt.Sprintf("Division splits a number into equal groups. %d divided by %d equals %d.", a, b, q),
		params:      map[string]int64{"a": a, "b": b},
	}
}
