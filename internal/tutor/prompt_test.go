package tutor

import (
	"slices"
	"strings"
	"testing"

	"github.com/opengov/earlymath/internal/llm"
)

func TestTutorSystemPrompt_CarriesContext(t *testing.T) {
	s := &Session{
		Topic:      "fractions",
		Grade:      3,
		Difficulty: 2,
		Rationale:  "lowest weighted mastery",
	}

	got := tutorSystemPrompt(s)
	for _, want := range []string{"grade 3", "fractions", "difficulty level 2", "lowest weighted mastery"} {
		if !strings.Contains(got, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestTutorSystemPrompt_EmptyTopicDefaults(t *testing.T) {
	got := tutorSystemPrompt(&Session{Grade: 5})
	if !strings.Contains(got, "mathematics") {
		t.Error("empty topic should fall back to mathematics")
	}
	if strings.Contains(got, "difficulty level") {
		t.Error("zero difficulty should be omitted")
	}
}

func TestBuildAskMessages_WindowsHistory(t *testing.T) {
	s := &Session{Greeting: "Hello!"}
	for _, c := range []string{"q1", "r1", "q2", "r2", "q3", "r3"} {
		role := llm.RoleUser
		if strings.HasPrefix(c, "r") {
			role = llm.RoleAssistant
		}
		s.Turns = append(s.Turns, Turn{Role: role, Content: c})
	}

	msgs := buildAskMessages(s, "q4", 4)

	var contents []string
	for _, m := range msgs {
		contents = append(contents, m.Content)
	}
	want := []string{"Hello!", "q2", "r2", "q3", "r3", "q4"}
	if !slices.Equal(contents, want) {
		t.Errorf("messages = %v, want %v", contents, want)
	}

	if msgs[0].Role != llm.RoleAssistant {
		t.Error("greeting should be an assistant message")
	}
	if msgs[len(msgs)-1].Role != llm.RoleUser {
		t.Error("question should be a user message")
	}
}

func TestBuildAskMessages_NoGreetingNoWindow(t *testing.T) {
	s := &Session{}
	msgs := buildAskMessages(s, "first question", 10)
	if len(msgs) != 1 {
		t.Fatalf("messages = %d, want just the question", len(msgs))
	}
	if msgs[0].Content != "first question" {
		t.Errorf("content = %q", msgs[0].Content)
	}
}
