package store

import (
	"context"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil database handle")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"skill_mastery", "sessions", "session_turns", "llm_events", "answer_events", "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := range 5 {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestMasterySaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := context.Background()

	updated := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	rows := []SkillMasteryRow{
		{StudentID: "ada", SkillID: "counting", Estimate: 0.9, Confidence: 0.7, AttemptCount: 12, LastUpdated: updated, Streak: 3, Difficulty: 2},
		{StudentID: "ada", SkillID: "addition", Estimate: 0.4, Confidence: 0.3, AttemptCount: 4, LastUpdated: updated, MissStreak: 1, Difficulty: 1},
		{StudentID: "bob", SkillID: "counting", Estimate: 0.5, Confidence: 0.2, AttemptCount: 2, LastUpdated: updated, Difficulty: 1},
	}
	if err := repo.SaveStudent(ctx, rows); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.LoadStudent(ctx, "ada")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows for ada, got %d", len(got))
	}

	// Ordered by skill_id: addition before counting.
	if got[0].SkillID != "addition" || got[1].SkillID != "counting" {
		t.Fatalf("unexpected order: %s, %s", got[0].SkillID, got[1].SkillID)
	}
	counting := got[1]
	if counting.Estimate != 0.9 || counting.Confidence != 0.7 {
		t.Errorf("estimate/confidence = %v/%v, want 0.9/0.7", counting.Estimate, counting.Confidence)
	}
	if counting.AttemptCount != 12 || counting.Streak != 3 || counting.Difficulty != 2 {
		t.Errorf("counters did not round-trip: %+v", counting)
	}
	if !counting.LastUpdated.Equal(updated) {
		t.Errorf("last_updated = %v, want %v", counting.LastUpdated, updated)
	}

	// Unknown student loads empty.
	none, err := repo.LoadStudent(ctx, "nobody")
	if err != nil {
		t.Fatalf("load unknown: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no rows, got %d", len(none))
	}
}

func TestMasteryUpsertOverwrites(t *testing.T) {
	s := openTestStore(t)
	repo := s.MasteryRepo()
	ctx := context.Background()

	row := SkillMasteryRow{
		StudentID: "ada", SkillID: "fractions",
		Estimate: 0.3, Confidence: 0.2, AttemptCount: 1,
		LastUpdated: time.Now().UTC(), Difficulty: 1,
	}
	if err := repo.SaveStudent(ctx, []SkillMasteryRow{row}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	row.Estimate = 0.6
	row.AttemptCount = 5
	row.Difficulty = 3
	if err := repo.SaveStudent(ctx, []SkillMasteryRow{row}); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.LoadStudent(ctx, "ada")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Estimate != 0.6 || got[0].AttemptCount != 5 || got[0].Difficulty != 3 {
		t.Fatalf("upsert did not overwrite: %+v", got[0])
	}
}

func TestSessionSaveAndLoad(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	session := SessionRow{
		ID: "sess-1", StudentID: "ada", State: "active",
		Topic: "fractions", Grade: 3, Difficulty: 2,
		Rationale: "lowest weighted mastery", TurnsUsed: 2, CostUSD: 0.0015,
		StartedAt: started, LastActive: started.Add(time.Minute),
	}
	turns := []TurnRow{
		{SessionID: "sess-1", Index: 0, Role: "user", Content: "why flip the second fraction?", CreatedAt: started},
		{SessionID: "sess-1", Index: 1, Role: "assistant", Content: "dividing is multiplying by the reciprocal", CreatedAt: started.Add(30 * time.Second)},
	}

	if err := repo.SaveSession(ctx, session, turns); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, gotTurns, err := repo.LoadSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("expected session")
	}
	if got.StudentID != "ada" || got.State != "active" || got.Topic != "fractions" {
		t.Fatalf("session did not round-trip: %+v", got)
	}
	if got.Difficulty != 2 || got.Rationale != "lowest weighted mastery" {
		t.Fatalf("path context did not round-trip: %+v", got)
	}
	if got.TurnsUsed != 2 || got.CostUSD != 0.0015 {
		t.Fatalf("budget fields did not round-trip: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, started)
	}
	if len(gotTurns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(gotTurns))
	}
	if gotTurns[0].Role != "user" || gotTurns[1].Role != "assistant" {
		t.Fatalf("turn order wrong: %+v", gotTurns)
	}

	// Missing session loads as nil without error.
	missing, _, err := repo.LoadSession(ctx, "sess-none")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for missing session")
	}
}

func TestSessionCheckpointIdempotent(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	now := time.Now().UTC()
	session := SessionRow{ID: "sess-2", StudentID: "ada", State: "active", StartedAt: now, LastActive: now}
	turns := []TurnRow{
		{SessionID: "sess-2", Index: 0, Role: "user", Content: "hi", CreatedAt: now},
	}

	if err := repo.SaveSession(ctx, session, turns); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// Re-checkpoint with the same turns plus one new turn and a state change.
	session.State = "closed"
	session.TurnsUsed = 1
	turns = append(turns, TurnRow{SessionID: "sess-2", Index: 1, Role: "assistant", Content: "hello!", CreatedAt: now})
	if err := repo.SaveSession(ctx, session, turns); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, gotTurns, err := repo.LoadSession(ctx, "sess-2")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.State != "closed" {
		t.Fatalf("state = %q, want closed", got.State)
	}
	if len(gotTurns) != 2 {
		t.Fatalf("expected 2 turns after idempotent checkpoint, got %d", len(gotTurns))
	}
}

func TestAppendAndQueryLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "tutor-chat", InputTokens: 100, OutputTokens: 50, LatencyMs: 400, Success: true, RequestBody: "[user]\nhi", ResponseBody: `{"reply":"hello"}`},
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "problem-gen", InputTokens: 200, OutputTokens: 80, LatencyMs: 600, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "tutor-chat", InputTokens: 150, OutputTokens: 60, LatencyMs: 500, Success: false, ErrorMessage: "rate limited"},
	}
	for i, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	// Most recent first.
	if got[0].Purpose != "tutor-chat" || got[0].Provider != "openai" {
		t.Fatalf("unexpected first event: %+v", got[0])
	}
	if got[0].Sequence <= got[1].Sequence {
		t.Fatalf("expected descending sequence, got %d then %d", got[0].Sequence, got[1].Sequence)
	}
	if got[0].Success {
		t.Fatal("expected failed event")
	}
	if got[0].ErrorMessage != "rate limited" {
		t.Fatalf("error message = %q", got[0].ErrorMessage)
	}

	// Fetch one by ID with bodies.
	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	first := all[len(all)-1]
	byID, err := repo.GetLLMEvent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if byID == nil {
		t.Fatal("expected event")
	}
	if byID.RequestBody != "[user]\nhi" || byID.ResponseBody != `{"reply":"hello"}` {
		t.Fatalf("bodies did not round-trip: %+v", byID)
	}

	// Missing ID returns nil without error.
	none, err := repo.GetLLMEvent(ctx, 99999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if none != nil {
		t.Fatal("expected nil for missing event")
	}
}

func TestLLMUsageAggregation(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "tutor-chat", InputTokens: 100, OutputTokens: 40, LatencyMs: 400, Success: true},
		{Provider: "anthropic", Model: "claude-haiku-4-5-20251001", Purpose: "tutor-chat", InputTokens: 300, OutputTokens: 60, LatencyMs: 600, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "problem-gen", InputTokens: 50, OutputTokens: 20, LatencyMs: 200, Success: true},
	}
	for i, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("expected 2 purposes, got %d", len(byPurpose))
	}
	// Ordered by purpose: problem-gen before tutor-chat.
	chat := byPurpose[1]
	if chat.Purpose != "tutor-chat" || chat.Calls != 2 {
		t.Fatalf("unexpected purpose row: %+v", chat)
	}
	if chat.InputTokens != 400 || chat.OutputTokens != 100 {
		t.Fatalf("token sums wrong: %+v", chat)
	}
	if chat.AvgLatencyMs != 500 {
		t.Fatalf("avg latency = %d, want 500", chat.AvgLatencyMs)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 {
		t.Fatalf("expected 2 models, got %d", len(byModel))
	}
	if byModel[0].Model != "claude-haiku-4-5-20251001" || byModel[0].Calls != 2 {
		t.Fatalf("unexpected model row: %+v", byModel[0])
	}
}

func TestAppendAnswer(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	err := repo.AppendAnswer(ctx, AnswerEventData{
		StudentID: "ada", Topic: "addition", ProblemID: "prob-addition-1a2b3c4d",
		Difficulty: 2, Submitted: "12", Correct: true, PartialCredit: 1,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	var count int
	err = s.DB().QueryRow(
		"SELECT COUNT(*) FROM answer_events WHERE student_id = ? AND topic = ?",
		"ada", "addition",
	).Scan(&count)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 answer event, got %d", count)
	}
}
