package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opengov/earlymath/internal/llm"
	"github.com/opengov/earlymath/internal/path"
	"github.com/opengov/earlymath/internal/store"
)

// Resolver routes one request to a provider. *llm.Router satisfies it.
type Resolver interface {
	Invoke(ctx context.Context, req llm.Request) (*llm.Response, error)
}

// Manager owns every live tutoring session. Sessions serialize on their
// own lock, so asks on different sessions proceed independently.
type Manager struct {
	resolver Resolver
	cache    *llm.ResponseCache
	repo     store.SessionRepo
	cfg      Config

	mu   sync.RWMutex
	live map[string]*managedSession

	now func() time.Time
}

type managedSession struct {
	mu sync.Mutex
	s  Session
}

// NewManager creates a session manager. The cache may be nil to disable
// reply caching; the repo may be nil to disable persistence.
func NewManager(resolver Resolver, cache *llm.ResponseCache, repo store.SessionRepo, cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.HistoryWindow == 0 {
		cfg.HistoryWindow = def.HistoryWindow
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	return &Manager{
		resolver: resolver,
		cache:    cache,
		repo:     repo,
		cfg:      cfg,
		live:     make(map[string]*managedSession),
		now:      time.Now,
	}
}

// Start opens a session for the student, greets them, and persists the
// first checkpoint. The planner decision seeds the tutoring context; a
// nil decision starts a general mathematics session.
func (m *Manager) Start(ctx context.Context, studentID string, grade int, dec *path.Decision) (*Session, error) {
	if n := m.liveCount(); m.cfg.MaxConcurrent > 0 && n >= m.cfg.MaxConcurrent {
		return nil, fmt.Errorf("session limit reached (%d live)", n)
	}

	now := m.now()
	s := Session{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		Topic:      "mathematics",
		Grade:      grade,
		Difficulty: 1,
		State:      StateActive,
		StartedAt:  now,
		LastActive: now,
	}
	if dec != nil {
		s.Topic = dec.Topic
		s.Difficulty = dec.Difficulty
		s.Rationale = dec.Rationale
	}

	s.Greeting = m.greet(ctx, &s)

	if err := m.checkpoint(context.WithoutCancel(ctx), &s); err != nil {
		return nil, fmt.Errorf("persist session %s: %w", s.ID, err)
	}

	ms := &managedSession{s: s}
	m.mu.Lock()
	m.live[s.ID] = ms
	m.mu.Unlock()

	snap := s.clone()
	return &snap, nil
}

// greet asks the provider for a warm topic introduction, falling back to
// a static greeting when nothing is reachable.
func (m *Manager) greet(ctx context.Context, s *Session) string {
	ctx = llm.WithPurpose(ctx, "tutor-greeting")

	req := llm.Request{
		System: greetingSystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildGreetingUserMessage(s.Topic)},
		},
		MaxTokens:   200,
		Temperature: m.cfg.Temperature,
	}
	fp := llm.NewFingerprint(map[string]string{
		"op":    "tutor-greeting",
		"topic": s.Topic,
		"grade": strconv.Itoa(s.Grade),
	})

	content, err := m.cache.GetOrCompute(ctx, fp, func(ctx context.Context) (json.RawMessage, error) {
		resp, err := m.resolver.Invoke(ctx, req)
		if err != nil {
			return nil, err
		}
		s.CostUSD += llm.ResponseCost(resp)
		return resp.Content, nil
	})
	if err != nil {
		return fallbackGreeting(s.Topic)
	}
	return string(content)
}

// Ask sends one student message and returns the tutor's reply. The user
// and reply turns land in the transcript only after the reply resolves,
// so a failed ask can be retried cleanly.
func (m *Manager) Ask(ctx context.Context, sessionID, message string) (string, error) {
	ms, err := m.lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := m.now()
	s := &ms.s

	s.expire(now, m.cfg.IdleAfter, m.cfg.CloseAfter)
	if s.Terminal() {
		m.checkpointWarn(ctx, s)
		return "", &SessionClosedError{SessionID: s.ID, State: s.State}
	}
	if berr := overBudget(s, m.cfg); berr != nil {
		s.State = StateIdle
		m.checkpointWarn(ctx, s)
		return "", berr
	}

	if m.cfg.AskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.cfg.AskTimeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, "tutor-chat")

	req := llm.Request{
		System:      tutorSystemPrompt(s),
		Messages:    buildAskMessages(s, message, m.cfg.HistoryWindow),
		MaxTokens:   m.cfg.MaxTokens,
		Temperature: m.cfg.Temperature,
	}
	fp := chatFingerprint(s, req.Messages)

	var resp *llm.Response
	content, err := m.cache.GetOrCompute(ctx, fp, func(ctx context.Context) (json.RawMessage, error) {
		r, err := m.resolver.Invoke(ctx, req)
		if err != nil {
			return nil, err
		}
		resp = r
		return r.Content, nil
	})
	if err != nil {
		return m.askFallback(ctx, s, fp, message, now, err)
	}

	reply := string(content)
	m.commitTurns(s, message, reply, now)
	if resp != nil {
		s.CostUSD += llm.ResponseCost(resp)
	}
	m.checkpointWarn(ctx, s)
	return reply, nil
}

// askFallback handles a failed reply resolution. Deadline expiry parks
// the session idle. Full provider exhaustion serves a stale cached reply
// when one exists and otherwise moves the session to errored. Anything
// else leaves the session active for another try.
func (m *Manager) askFallback(ctx context.Context, s *Session, fp llm.Fingerprint, message string, now time.Time, cause error) (string, error) {
	// Exhaustion is checked before the deadline: per-attempt timeouts
	// unwrap to context.DeadlineExceeded too, and those mean every
	// provider failed, not that the ask deadline passed.
	var exhausted *llm.AllProvidersExhaustedError
	if errors.As(cause, &exhausted) {
		if cached, ok := m.cache.Stale(fp); ok {
			reply := string(cached)
			m.commitTurns(s, message, reply, now)
			m.checkpointWarn(ctx, s)
			return reply, nil
		}
		s.State = StateErrored
		m.checkpointWarn(ctx, s)
		return "", fmt.Errorf("tutor reply: %w", cause)
	}

	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		s.State = StateIdle
		m.checkpointWarn(ctx, s)
		return "", fmt.Errorf("tutor reply: %w", cause)
	}

	return "", fmt.Errorf("tutor reply: %w", cause)
}

// commitTurns appends the question/reply pair and charges the turn.
func (m *Manager) commitTurns(s *Session, message, reply string, now time.Time) {
	s.Turns = append(s.Turns,
		Turn{Role: llm.RoleUser, Content: message, At: now},
		Turn{Role: llm.RoleAssistant, Content: reply, At: m.now()},
	)
	s.TurnsUsed++
	s.State = StateActive
	s.LastActive = m.now()
}

// End closes the session and persists the final checkpoint.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	ms, err := m.lookup(ctx, sessionID)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	s := &ms.s
	if s.Terminal() {
		return &SessionClosedError{SessionID: s.ID, State: s.State}
	}
	s.State = StateClosed
	s.LastActive = m.now()

	if err := m.checkpoint(context.WithoutCancel(ctx), s); err != nil {
		return fmt.Errorf("persist session %s: %w", s.ID, err)
	}
	return nil
}

// Snapshot returns a copy of the session for display.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (Session, error) {
	ms, err := m.lookup(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.s.clone(), nil
}

// Close checkpoints every live session. Active sessions park idle so a
// later run can resume them.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.RLock()
	all := make([]*managedSession, 0, len(m.live))
	for _, ms := range m.live {
		all = append(all, ms)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, ms := range all {
		ms.mu.Lock()
		if ms.s.State == StateActive {
			ms.s.State = StateIdle
		}
		err := m.checkpoint(ctx, &ms.s)
		ms.mu.Unlock()
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// lookup finds a live session or rehydrates one from the store.
func (m *Manager) lookup(ctx context.Context, id string) (*managedSession, error) {
	m.mu.RLock()
	ms := m.live[id]
	m.mu.RUnlock()
	if ms != nil {
		return ms, nil
	}

	if m.repo == nil {
		return nil, fmt.Errorf("unknown session %s", id)
	}
	row, turns, err := m.repo.LoadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("unknown session %s", id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing := m.live[id]; existing != nil {
		return existing, nil
	}
	ms = &managedSession{s: sessionFromRows(row, turns)}
	m.live[id] = ms
	return ms, nil
}

func (m *Manager) liveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, ms := range m.live {
		ms.mu.Lock()
		if !ms.s.Terminal() {
			n++
		}
		ms.mu.Unlock()
	}
	return n
}

// overBudget reports whether the session spent its budget.
func overBudget(s *Session, cfg Config) *BudgetExhaustedError {
	over := &BudgetExhaustedError{
		SessionID:  s.ID,
		TurnsUsed:  s.TurnsUsed,
		MaxTurns:   cfg.MaxTurns,
		CostUSD:    s.CostUSD,
		MaxCostUSD: cfg.MaxCostUSD,
	}
	switch {
	case cfg.MaxTurns > 0 && s.TurnsUsed >= cfg.MaxTurns:
		return over
	case cfg.MaxCostUSD > 0 && s.CostUSD >= cfg.MaxCostUSD:
		return over
	}
	return nil
}

func chatFingerprint(s *Session, msgs []llm.Message) llm.Fingerprint {
	return llm.NewFingerprint(map[string]string{
		"op":      "tutor-chat",
		"topic":   s.Topic,
		"grade":   strconv.Itoa(s.Grade),
		"history": llm.MessageDigest(msgs),
	})
}

// checkpoint persists the session and transcript. A nil repo disables
// persistence.
func (m *Manager) checkpoint(ctx context.Context, s *Session) error {
	if m.repo == nil {
		return nil
	}
	row, turns := sessionRows(s)
	return m.repo.SaveSession(ctx, row, turns)
}

// checkpointWarn persists best-effort. A mid-conversation checkpoint
// failure should not eat the reply the student is waiting on.
func (m *Manager) checkpointWarn(ctx context.Context, s *Session) {
	if err := m.checkpoint(context.WithoutCancel(ctx), s); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to checkpoint session %s: %v\n", s.ID, err)
	}
}

// roleGreeting marks the greeting row in the transcript table. Ask pairs
// start at turn_index 1 so indexes stay stable across checkpoints.
const roleGreeting = "greeting"

func sessionRows(s *Session) (store.SessionRow, []store.TurnRow) {
	row := store.SessionRow{
		ID:         s.ID,
		StudentID:  s.StudentID,
		State:      string(s.State),
		Topic:      s.Topic,
		Grade:      s.Grade,
		Difficulty: s.Difficulty,
		Rationale:  s.Rationale,
		TurnsUsed:  s.TurnsUsed,
		CostUSD:    s.CostUSD,
		StartedAt:  s.StartedAt,
		LastActive: s.LastActive,
	}

	turns := make([]store.TurnRow, 0, len(s.Turns)+1)
	if s.Greeting != "" {
		turns = append(turns, store.TurnRow{
			SessionID: s.ID,
			Index:     0,
			Role:      roleGreeting,
			Content:   s.Greeting,
			CreatedAt: s.StartedAt,
		})
	}
	for i, t := range s.Turns {
		turns = append(turns, store.TurnRow{
			SessionID: s.ID,
			Index:     i + 1,
			Role:      string(t.Role),
			Content:   t.Content,
			CreatedAt: t.At,
		})
	}
	return row, turns
}

func sessionFromRows(row *store.SessionRow, turns []store.TurnRow) Session {
	s := Session{
		ID:         row.ID,
		StudentID:  row.StudentID,
		Topic:      row.Topic,
		Grade:      row.Grade,
		Difficulty: row.Difficulty,
		Rationale:  row.Rationale,
		State:      State(row.State),
		TurnsUsed:  row.TurnsUsed,
		CostUSD:    row.CostUSD,
		StartedAt:  row.StartedAt,
		LastActive: row.LastActive,
	}
	for _, t := range turns {
		if t.Role == roleGreeting {
			s.Greeting = t.Content
			continue
		}
		s.Turns = append(s.Turns, Turn{
			Role:    llm.Role(t.Role),
			Content: t.Content,
			At:      t.CreatedAt,
		})
	}
	return s
}
