package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SkillMasteryRow is the persisted form of one (student, skill) mastery
// record.
type SkillMasteryRow struct {
	StudentID    string
	SkillID      string
	Estimate     float64
	Confidence   float64
	AttemptCount int
	LastUpdated  time.Time
	Streak       int
	MissStreak   int
	Difficulty   int
}

// MasteryRepo persists per-student mastery state.
type MasteryRepo interface {
	// LoadStudent returns every mastery row for the student.
	LoadStudent(ctx context.Context, studentID string) ([]SkillMasteryRow, error)

	// SaveStudent upserts the given mastery rows.
	SaveStudent(ctx context.Context, rows []SkillMasteryRow) error
}

// SessionRow is the persisted form of a tutoring session.
type SessionRow struct {
	ID         string
	StudentID  string
	State      string
	Topic      string
	Grade      int
	Difficulty int
	Rationale  string
	TurnsUsed  int
	CostUSD    float64
	StartedAt  time.Time
	LastActive time.Time
}

// TurnRow is one persisted conversation turn.
type TurnRow struct {
	SessionID string
	Index     int
	Role      string
	Content   string
	CreatedAt time.Time
}

// SessionRepo persists tutoring sessions and their transcripts.
type SessionRepo interface {
	// SaveSession upserts the session row and its turns.
	SaveSession(ctx context.Context, session SessionRow, turns []TurnRow) error

	// LoadSession returns the session and its turns in order, or
	// (nil, nil, nil) when no such session exists.
	LoadSession(ctx context.Context, id string) (*SessionRow, []TurnRow, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID           int
	Sequence     int64
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// AnswerEventData captures the data for a single answer attempt event.
type AnswerEventData struct {
	StudentID     string
	Topic         string
	ProblemID     string
	Difficulty    int
	Submitted     string
	Correct       bool
	PartialCredit float64
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendAnswer records an answer attempt event.
	AppendAnswer(ctx context.Context, data AnswerEventData) error

	// QueryLLMEvents returns LLM events, most recent first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event by ID, or nil if it doesn't exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
