package tutor

import "math/rand/v2"

// hintLadder holds the static hints served before the tutor walks the
// problem through. Levels are 1-based.
var hintLadder = []string{
	"Think about what the problem is asking. What do we need to find?",
	"Try breaking the problem into smaller steps. What's the first thing we should do?",
	"Look at the numbers carefully. Is there a pattern or relationship?",
}

// Hint returns the static hint for the given level. Levels past the
// ladder get the walk-through offer.
func Hint(level int) string {
	if level >= 1 && level <= len(hintLadder) {
		return hintLadder[level-1]
	}
	return "Let's work through this together step by step!"
}

// MaxHintLevel is the number of distinct hints before the walk-through.
const MaxHintLevel = 3

var encouragements = map[string][]string{
	"correct": {
		"Fantastic work! You're getting better at this!",
		"That's absolutely right! You're a math star!",
		"Excellent! You really understand this concept!",
		"Way to go! Your hard work is paying off!",
	},
	"incorrect": {
		"That's not quite right, but I love how you're thinking! Let's try again.",
		"Good try! Making mistakes is how we learn. Let's look at it differently.",
		"Almost there! You're on the right track. Want to try once more?",
		"Nice effort! Let's work through this together.",
	},
	"general": {
		"Keep up the great work! You're doing amazing!",
		"I'm so proud of how hard you're working!",
		"You're making excellent progress!",
		"Learning math is an adventure, and you're doing great!",
	},
}

// Encouragement picks a message for the given context: "correct",
// "incorrect", or anything else for the general pool.
func Encouragement(kind string) string {
	pool, ok := encouragements[kind]
	if !ok {
		pool = encouragements["general"]
	}
	return pool[rand.IntN(len(pool))]
}
