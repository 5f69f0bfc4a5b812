package tutor

import (
	"fmt"
	"strings"

	"github.com/opengov/earlymath/internal/llm"
)

const greetingSystemPrompt = `You are a friendly, patient, and encouraging math tutor for K-12 students. Use simple, age-appropriate language. Be enthusiastic and supportive.`

func buildGreetingUserMessage(topic string) string {
	return fmt.Sprintf("Start a tutoring session on %s. Greet the student warmly and briefly introduce what we'll learn.", topic)
}

func fallbackGreeting(topic string) string {
	return fmt.Sprintf("Hi! Today we're going to learn about %s. This is going to be fun!", topic)
}

const tutorGuidelines = `Guidelines:
1. Use simple, clear explanations appropriate for young students
2. Break down complex concepts into small, manageable steps
3. Use visual descriptions and real-world examples
4. Be encouraging and patient - never make the student feel bad
5. If they're struggling, provide gentle hints rather than direct answers
6. Use analogies and stories to make concepts memorable
7. Celebrate their successes with enthusiasm
8. Ask guiding questions to help them think through problems

Teaching approach:
- Start with concrete examples before abstract concepts
- Provide multiple representations (visual, verbal, symbolic)
- Connect to what they already know

Remember: Your goal is to help them understand, not just get the right answer.`

// tutorSystemPrompt builds the persona prompt for one session, carrying
// the planner's topic, grade, and difficulty context.
func tutorSystemPrompt(s *Session) string {
	var b strings.Builder

	topic := s.Topic
	if topic == "" {
		topic = "mathematics"
	}
	fmt.Fprintf(&b, "You are an expert math tutor helping a grade %d student with %s.\n", s.Grade, topic)
	if s.Difficulty > 0 {
		fmt.Fprintf(&b, "The student is practicing at difficulty level %d.\n", s.Difficulty)
	}
	if s.Rationale != "" {
		fmt.Fprintf(&b, "Why this topic now: %s.\n", s.Rationale)
	}
	b.WriteString("\n")
	b.WriteString(tutorGuidelines)

	return b.String()
}

// buildAskMessages assembles the provider conversation: the greeting,
// the most recent window turns, and the new question.
func buildAskMessages(s *Session, question string, window int) []llm.Message {
	recent := s.Turns
	if window > 0 && len(recent) > window {
		recent = recent[len(recent)-window:]
	}

	msgs := make([]llm.Message, 0, len(recent)+2)
	if s.Greeting != "" {
		msgs = append(msgs, llm.Message{Role: llm.RoleAssistant, Content: s.Greeting})
	}
	for _, t := range recent {
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, llm.Message{Role: llm.RoleUser, Content: question})

	return msgs
}

const problemSystemPrompt = `You are writing one math word problem for a K-12 student. Keep the numbers friendly and the language age-appropriate. Use plain ASCII text for all math. No LaTeX, no Unicode symbols.`

func buildProblemUserMessage(topic string, grade int, difficulty string) string {
	return fmt.Sprintf("Write one %s %s problem for a grade %d student. Give the final answer and a short step-by-step explanation.", difficulty, topic, grade)
}

func buildExplainSystemPrompt(concept string, grade int) string {
	return fmt.Sprintf("Explain %s to a grade %d student using simple language, examples, and visuals.", concept, grade)
}

func buildExplainUserMessage(concept string) string {
	return fmt.Sprintf("Explain %s in a fun and easy way.", concept)
}

func fallbackExplanation(concept string) string {
	return fmt.Sprintf("Let me explain %s in a simple way: start with a small example, work it out step by step, and look for the pattern.", concept)
}
