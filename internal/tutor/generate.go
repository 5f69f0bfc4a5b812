package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/opengov/earlymath/internal/llm"
)

// GeneratedProblem is an LLM-written word problem. Unlike the template
// generator it trades determinism for richer, story-shaped problems.
type GeneratedProblem struct {
	Problem     string
	Solution    string
	Explanation string
}

type problemOutput struct {
	Problem     string `json:"problem"`
	Solution    string `json:"solution"`
	Explanation string `json:"explanation"`
}

// GenerateProblem asks the provider for one word problem. Provider
// faults degrade to a static fallback problem rather than failing the
// practice flow; only caller cancellation surfaces as an error.
func (m *Manager) GenerateProblem(ctx context.Context, topic string, grade, difficulty int) (*GeneratedProblem, error) {
	ctx = llm.WithPurpose(ctx, "problem-gen")

	word := difficultyWord(difficulty)
	req := llm.Request{
		System: problemSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildProblemUserMessage(topic, grade, word)},
		},
		Schema:      ProblemSchema,
		MaxTokens:   300,
		Temperature: m.cfg.Temperature,
	}
	fp := llm.NewFingerprint(map[string]string{
		"op":         "problem-gen",
		"topic":      topic,
		"grade":      strconv.Itoa(grade),
		"difficulty": word,
	})

	content, err := m.cache.GetOrCompute(ctx, fp, func(ctx context.Context) (json.RawMessage, error) {
		resp, err := m.resolver.Invoke(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.Content, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generate problem: %w", err)
		}
		return fallbackProblem(topic, grade), nil
	}

	var out problemOutput
	if err := json.Unmarshal(content, &out); err != nil {
		return fallbackProblem(topic, grade), nil
	}
	return &GeneratedProblem{
		Problem:     out.Problem,
		Solution:    out.Solution,
		Explanation: out.Explanation,
	}, nil
}

// ExplainConcept returns an age-appropriate explanation of a concept.
// Provider faults degrade to a static opener so the caller always has
// something to show.
func (m *Manager) ExplainConcept(ctx context.Context, concept string, grade int) (string, error) {
	ctx = llm.WithPurpose(ctx, "concept-explain")

	req := llm.Request{
		System: buildExplainSystemPrompt(concept, grade),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildExplainUserMessage(concept)},
		},
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
	}
	fp := llm.NewFingerprint(map[string]string{
		"op":      "concept-explain",
		"concept": concept,
		"grade":   strconv.Itoa(grade),
	})

	content, err := m.cache.GetOrCompute(ctx, fp, func(ctx context.Context) (json.RawMessage, error) {
		resp, err := m.resolver.Invoke(ctx, req)
		if err != nil {
			return nil, err
		}
		return resp.Content, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("explain %s: %w", concept, err)
		}
		return fallbackExplanation(concept), nil
	}
	return string(content), nil
}

func difficultyWord(d int) string {
	switch {
	case d <= 1:
		return "easy"
	case d == 2:
		return "medium"
	default:
		return "hard"
	}
}

func fallbackProblem(topic string, grade int) *GeneratedProblem {
	return &GeneratedProblem{
		Problem:     fmt.Sprintf("What is 2 + 2? (Grade %d %s)", grade, topic),
		Solution:    "4",
		Explanation: "Basic addition: 2 + 2 equals 4.",
	}
}
