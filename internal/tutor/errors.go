package tutor

import "fmt"

// SessionClosedError reports a turn sent to a session that is no longer
// accepting them.
type SessionClosedError struct {
	SessionID string
	State     State
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session %s is %s", e.SessionID, e.State)
}

// BudgetExhaustedError reports that a session spent its turn or cost
// budget. The session parks idle; it does not close.
type BudgetExhaustedError struct {
	SessionID  string
	TurnsUsed  int
	MaxTurns   int
	CostUSD    float64
	MaxCostUSD float64
}

func (e *BudgetExhaustedError) Error() string {
	if e.MaxTurns > 0 && e.TurnsUsed >= e.MaxTurns {
		return fmt.Sprintf("session %s used all %d turns", e.SessionID, e.MaxTurns)
	}
	return fmt.Sprintf("session %s spent $%.4f of its $%.4f budget", e.SessionID, e.CostUSD, e.MaxCostUSD)
}
