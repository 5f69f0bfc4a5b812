package tutor

import "time"

// Config bounds tutoring sessions.
type Config struct {
	// MaxTurns is the number of questions a session may spend.
	// Zero disables the turn cap.
	MaxTurns int

	// MaxCostUSD caps provider spend per session. Zero disables the
	// cost cap.
	MaxCostUSD float64

	// MaxConcurrent caps live sessions per manager. Zero disables the
	// cap.
	MaxConcurrent int

	// HistoryWindow is the number of recent turns included in each
	// provider request.
	HistoryWindow int

	// IdleAfter is the inactivity span after which a session parks
	// idle.
	IdleAfter time.Duration

	// CloseAfter is the inactivity span after which a session closes
	// for good.
	CloseAfter time.Duration

	// AskTimeout bounds one reply end to end, provider failover
	// included.
	AskTimeout time.Duration

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the session limits used when no configuration
// overrides them.
func DefaultConfig() Config {
	return Config{
		MaxTurns:      30,
		MaxCostUSD:    0.50,
		MaxConcurrent: 3,
		HistoryWindow: 10,
		IdleAfter:     10 * time.Minute,
		CloseAfter:    time.Hour,
		AskTimeout:    60 * time.Second,
		MaxTokens:     500,
		Temperature:   0.7,
	}
}
