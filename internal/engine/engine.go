// Package engine wires the planner, generators, mastery model, provider
// router, and tutor into one facade for the presentation layer. The engine
// holds working state in memory and hands it to the store at request
// boundaries; the store remains the source of truth across restarts.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/opengov/earlymath/internal/config"
	"github.com/opengov/earlymath/internal/curriculum"
	"github.com/opengov/earlymath/internal/llm"
	"github.com/opengov/earlymath/internal/mastery"
	"github.com/opengov/earlymath/internal/path"
	"github.com/opengov/earlymath/internal/problems"
	"github.com/opengov/earlymath/internal/store"
	"github.com/opengov/earlymath/internal/tutor"
)

// Engine is the tutoring core behind the presentation layer. All methods
// are safe for concurrent use.
type Engine struct {
	cfg     config.Config
	graph   *curriculum.Graph
	model   *mastery.Model
	planner *path.Planner
	router  *llm.Router
	cache   *llm.ResponseCache
	tutors  *tutor.Manager
	st      *store.Store

	mu     sync.Mutex
	loaded map[string]bool
}

// New builds an Engine from configuration: curriculum graph, SQLite store
// (when a path is configured), provider router with retry and event
// logging, response cache, mastery model, planner, and session manager.
func New(ctx context.Context, cfg config.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}

	var st *store.Store
	if cfg.DBPath != "" {
		var err error
		st, err = store.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}

	var eventRepo store.EventRepo
	if st != nil {
		eventRepo = st.EventRepo()
	}
	router, err := llm.NewRouterFromConfig(ctx, cfg.LLM, eventRepo)
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, fmt.Errorf("assemble provider router: %w", err)
	}

	return newEngine(cfg, router, st), nil
}

// newEngine finishes assembly from a ready router and store. Tests build
// routers over mock providers and pass them here.
func newEngine(cfg config.Config, router *llm.Router, st *store.Store) *Engine {
	graph := curriculum.Default()
	cache := llm.NewResponseCache(cfg.Cache)

	var sessionRepo store.SessionRepo
	if st != nil {
		sessionRepo = st.SessionRepo()
	}

	return &Engine{
		cfg:     cfg,
		graph:   graph,
		model:   mastery.NewModel(cfg.Mastery),
		planner: path.New(graph, cfg.Planner),
		router:  router,
		cache:   cache,
		tutors:  tutor.NewManager(router, cache, sessionRepo, cfg.Tutor),
		st:      st,
	}
}

// NextTopic plans what the student should practice next.
func (e *Engine) NextTopic(ctx context.Context, studentID string, grade int) (*path.Decision, error) {
	if err := e.ensureLoaded(ctx, studentID); err != nil {
		return nil, err
	}
	return e.planner.Next(studentID, grade, e.model.Snapshot(studentID))
}

// GenerateProblem produces one deterministic problem instance.
func (e *Engine) GenerateProblem(topic string, difficulty, grade int, seed int64) (*problems.Problem, error) {
	return problems.Generate(topic, difficulty, grade, seed)
}

// CheckAnswer grades a submission, folds the result into the student's
// mastery, and checkpoints both the mastery rows and the answer event.
// The verdict is returned alongside the updated mastery record.
func (e *Engine) CheckAnswer(ctx context.Context, studentID string, p *problems.Problem, submitted string) (problems.CheckResult, mastery.SkillMastery, error) {
	if err := e.ensureLoaded(ctx, studentID); err != nil {
		return problems.CheckResult{}, mastery.SkillMastery{}, err
	}

	result := problems.Check(p, submitted)
	sm := e.model.Update(studentID, p.Topic, result)

	if e.st != nil {
		rows := e.model.ExportStudent(studentID)
		if err := e.st.MasteryRepo().SaveStudent(ctx, rows); err != nil {
			return result, sm, fmt.Errorf("save mastery for %s: %w", studentID, err)
		}
		event := store.AnswerEventData{
			StudentID:     studentID,
			Topic:         p.Topic,
			ProblemID:     p.ID,
			Difficulty:    p.Difficulty,
			Submitted:     submitted,
			Correct:       result.Correct,
			PartialCredit: result.PartialCredit,
		}
		if err := e.st.EventRepo().AppendAnswer(ctx, event); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to log answer event: %v\n", err)
		}
	}

	return result, sm, nil
}

// MasterySnapshot returns the student's mastery records keyed by topic.
func (e *Engine) MasterySnapshot(ctx context.Context, studentID string) (map[string]mastery.SkillMastery, error) {
	if err := e.ensureLoaded(ctx, studentID); err != nil {
		return nil, err
	}
	return e.model.Snapshot(studentID), nil
}

// StartTutoring opens a tutoring session seeded with the planner's
// current decision. A fully blocked curriculum is not fatal here: the
// session starts on general mathematics instead.
func (e *Engine) StartTutoring(ctx context.Context, studentID string, grade int) (*tutor.Session, error) {
	if err := e.ensureLoaded(ctx, studentID); err != nil {
		return nil, err
	}

	dec, err := e.planner.Next(studentID, grade, e.model.Snapshot(studentID))
	if err != nil {
		var blocked *path.NoEligibleTopicError
		if !errors.As(err, &blocked) {
			return nil, err
		}
		dec = nil
	}

	return e.tutors.Start(ctx, studentID, grade, dec)
}

// AskTutor sends one student message to the session's tutor.
func (e *Engine) AskTutor(ctx context.Context, sessionID, message string) (string, error) {
	return e.tutors.Ask(ctx, sessionID, message)
}

// EndTutoring closes a session.
func (e *Engine) EndTutoring(ctx context.Context, sessionID string) error {
	return e.tutors.End(ctx, sessionID)
}

// TutorSession returns a display copy of a session.
func (e *Engine) TutorSession(ctx context.Context, sessionID string) (tutor.Session, error) {
	return e.tutors.Snapshot(ctx, sessionID)
}

// Curriculum returns the topic graph the engine plans over.
func (e *Engine) Curriculum() *curriculum.Graph {
	return e.graph
}

// ProviderHealth reports each provider's routing state, preference order
// first. Reading health never mutates it.
func (e *Engine) ProviderHealth() []llm.ProviderHealth {
	return e.router.Health()
}

// CacheStats reports response cache effectiveness counters.
func (e *Engine) CacheStats() llm.CacheStats {
	return e.cache.Stats()
}

// Close flushes live sessions and releases the store.
func (e *Engine) Close(ctx context.Context) error {
	err := e.tutors.Close(ctx)
	if e.st != nil {
		if cerr := e.st.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// ensureLoaded hydrates the student's mastery records from the store the
// first time the engine touches them.
func (e *Engine) ensureLoaded(ctx context.Context, studentID string) error {
	if e.st == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loaded == nil {
		e.loaded = make(map[string]bool)
	}
	if e.loaded[studentID] {
		return nil
	}

	rows, err := e.st.MasteryRepo().LoadStudent(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load mastery for %s: %w", studentID, err)
	}
	e.model.LoadStudent(studentID, rows)
	e.loaded[studentID] = true
	return nil
}
