package llm

import "testing"

func TestNewFingerprint_Deterministic(t *testing.T) {
	a := NewFingerprint(map[string]string{
		"topic":      "addition",
		"difficulty": "2",
		"grade":      "1",
	})
	b := NewFingerprint(map[string]string{
		"grade":      "1",
		"difficulty": "2",
		"topic":      "addition",
	})
	if a != b {
		t.Fatalf("expected identical fingerprints, got %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}

func TestNewFingerprint_SensitiveToValues(t *testing.T) {
	base := NewFingerprint(map[string]string{"topic": "addition", "difficulty": "2"})
	changed := NewFingerprint(map[string]string{"topic": "addition", "difficulty": "3"})
	if base == changed {
		t.Fatal("expected different fingerprints for different difficulties")
	}

	renamed := NewFingerprint(map[string]string{"subject": "addition", "difficulty": "2"})
	if base == renamed {
		t.Fatal("expected different fingerprints for different keys")
	}
}

func TestMessageDigest(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "how do I add fractions?"},
		{Role: RoleAssistant, Content: "find a common denominator"},
	}

	if MessageDigest(msgs) != MessageDigest(msgs) {
		t.Fatal("expected stable digest")
	}

	reordered := []Message{msgs[1], msgs[0]}
	if MessageDigest(msgs) == MessageDigest(reordered) {
		t.Fatal("expected order to change the digest")
	}

	flippedRole := []Message{
		{Role: RoleAssistant, Content: "how do I add fractions?"},
		{Role: RoleAssistant, Content: "find a common denominator"},
	}
	if MessageDigest(msgs) == MessageDigest(flippedRole) {
		t.Fatal("expected role to change the digest")
	}
}
