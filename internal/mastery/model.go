package mastery

import (
	"sync"
	"time"

	"github.com/opengov/earlymath/internal/problems"
	"github.com/opengov/earlymath/internal/store"
)

// Params tunes the mastery update rule.
type Params struct {
	// InitialRate is the EMA learning rate for the first attempt.
	InitialRate float64

	// RateDecay slows the learning rate as evidence accumulates: the rate
	// for attempt n is InitialRate / (1 + n/RateDecay).
	RateDecay float64

	// MinRate floors the learning rate so late evidence still moves the
	// estimate.
	MinRate float64

	// ConfidenceK sets how fast confidence saturates: after n attempts
	// confidence is n / (n + ConfidenceK).
	ConfidenceK float64

	// AdvanceStreak is the number of consecutive fully correct answers that
	// raises the working difficulty one level.
	AdvanceStreak int

	// DemoteMisses is the number of consecutive misses that lowers it.
	DemoteMisses int
}

// DefaultParams returns the tuning used when no configuration overrides it.
func DefaultParams() Params {
	return Params{
		InitialRate:   0.5,
		RateDecay:     4,
		MinRate:       0.1,
		ConfidenceK:   4,
		AdvanceStreak: 3,
		DemoteMisses:  2,
	}
}

// Model tracks mastery per (student, skill). Updates for the same pair
// serialize on a per-record lock; distinct pairs update concurrently.
type Model struct {
	params Params

	mu      sync.Mutex
	records map[recordKey]*record
}

type recordKey struct {
	studentID string
	skillID   string
}

type record struct {
	mu sync.Mutex
	SkillMastery
}

// NewModel creates an empty mastery model.
func NewModel(params Params) *Model {
	return &Model{
		params:  params,
		records: make(map[recordKey]*record),
	}
}

// record returns the live record for a pair, creating it at the neutral
// prior on first touch.
func (m *Model) record(studentID, skillID string) *record {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := recordKey{studentID, skillID}
	if rec, ok := m.records[k]; ok {
		return rec
	}
	rec := &record{SkillMastery: neutralMastery(studentID, skillID)}
	m.records[k] = rec
	return rec
}

func neutralMastery(studentID, skillID string) SkillMastery {
	return SkillMastery{
		StudentID:  studentID,
		SkillID:    skillID,
		Estimate:   NeutralEstimate,
		Difficulty: problems.MinDifficulty,
	}
}

// Update folds one check result into the pair's mastery record and returns
// the updated snapshot. The outcome is 1 for a correct answer, otherwise the
// partial credit earned.
func (m *Model) Update(studentID, skillID string, result problems.CheckResult) SkillMastery {
	rec := m.record(studentID, skillID)
	rec.mu.Lock()
	defer rec.mu.Unlock()

	outcome := result.PartialCredit
	if result.Correct {
		outcome = 1
	}

	// Learning rate decays with evidence but never below the floor.
	alpha := m.params.InitialRate / (1 + float64(rec.AttemptCount)/m.params.RateDecay)
	if alpha < m.params.MinRate {
		alpha = m.params.MinRate
	}
	rec.Estimate += alpha * (outcome - rec.Estimate)

	rec.AttemptCount++
	rec.Confidence = float64(rec.AttemptCount) / (float64(rec.AttemptCount) + m.params.ConfidenceK)
	rec.LastUpdated = time.Now()

	if result.Correct {
		rec.Streak++
		rec.MissStreak = 0
		if rec.Streak >= m.params.AdvanceStreak && rec.Difficulty < problems.MaxDifficulty {
			rec.Difficulty++
			rec.Streak = 0
		}
	} else {
		rec.MissStreak++
		rec.Streak = 0
		if rec.MissStreak >= m.params.DemoteMisses && rec.Difficulty > problems.MinDifficulty {
			rec.Difficulty--
			rec.MissStreak = 0
		}
	}

	return rec.SkillMastery
}

// Estimate returns the pair's mastery record. The second return is false
// when no evidence has been recorded, in which case the neutral prior is
// returned.
func (m *Model) Estimate(studentID, skillID string) (SkillMastery, bool) {
	m.mu.Lock()
	rec, ok := m.records[recordKey{studentID, skillID}]
	m.mu.Unlock()

	if !ok {
		return neutralMastery(studentID, skillID), false
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.AttemptCount == 0 {
		return rec.SkillMastery, false
	}
	return rec.SkillMastery, true
}

// Snapshot returns all records for a student keyed by skill ID.
func (m *Model) Snapshot(studentID string) map[string]SkillMastery {
	m.mu.Lock()
	recs := make([]*record, 0)
	for k, rec := range m.records {
		if k.studentID == studentID {
			recs = append(recs, rec)
		}
	}
	m.mu.Unlock()

	snapshot := make(map[string]SkillMastery, len(recs))
	for _, rec := range recs {
		rec.mu.Lock()
		snapshot[rec.SkillID] = rec.SkillMastery
		rec.mu.Unlock()
	}
	return snapshot
}

// LoadStudent seeds the model with persisted rows for a student, replacing
// any records already held for the same pairs.
func (m *Model) LoadStudent(studentID string, rows []store.SkillMasteryRow) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range rows {
		sm := SkillMastery{
			StudentID:    studentID,
			SkillID:      row.SkillID,
			Estimate:     row.Estimate,
			Confidence:   row.Confidence,
			AttemptCount: row.AttemptCount,
			LastUpdated:  row.LastUpdated,
			Streak:       row.Streak,
			MissStreak:   row.MissStreak,
			Difficulty:   row.Difficulty,
		}
		// Rows written before the difficulty ladder carry a zero difficulty.
		if sm.Difficulty < problems.MinDifficulty {
			sm.Difficulty = problems.MinDifficulty
		}
		if sm.Difficulty > problems.MaxDifficulty {
			sm.Difficulty = problems.MaxDifficulty
		}
		m.records[recordKey{studentID, row.SkillID}] = &record{SkillMastery: sm}
	}
}

// ExportStudent returns the student's records as persistence rows.
func (m *Model) ExportStudent(studentID string) []store.SkillMasteryRow {
	snapshot := m.Snapshot(studentID)

	rows := make([]store.SkillMasteryRow, 0, len(snapshot))
	for _, sm := range snapshot {
		rows = append(rows, store.SkillMasteryRow{
			StudentID:    sm.StudentID,
			SkillID:      sm.SkillID,
			Estimate:     sm.Estimate,
			Confidence:   sm.Confidence,
			AttemptCount: sm.AttemptCount,
			LastUpdated:  sm.LastUpdated,
			Streak:       sm.Streak,
			MissStreak:   sm.MissStreak,
			Difficulty:   sm.Difficulty,
		})
	}
	return rows
}
