package llm

import "testing"

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 3, OutputPerMTok: 15}
	got := c.Cost(1_000_000, 1_000_000)
	if got != 18 {
		t.Errorf("cost = %f, want 18", got)
	}
	if c.Cost(0, 0) != 0 {
		t.Errorf("zero tokens must cost 0")
	}
}

func TestLookupCost(t *testing.T) {
	if LookupCost("gpt-4o-mini") == nil {
		t.Error("expected pricing for gpt-4o-mini")
	}
	if LookupCost("no-such-model") != nil {
		t.Error("expected nil for unknown model")
	}
}

func TestResponseCost_PricedAndUnknownModels(t *testing.T) {
	priced := ResponseCost(&Response{
		Model: "claude-haiku-4-5-20251001",
		Usage: Usage{InputTokens: 1000, OutputTokens: 1000},
	})
	if priced < 0.0059 || priced > 0.0061 {
		t.Errorf("cost = %f, want ~0.006", priced)
	}

	if c := ResponseCost(&Response{Model: "mock"}); c != 0 {
		t.Errorf("unknown model cost = %f, want 0", c)
	}
}
