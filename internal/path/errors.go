package path

import (
	"fmt"
	"strings"
)

// BlockedTopic describes one topic the planner could not offer.
type BlockedTopic struct {
	Topic              string
	UnmetPrerequisites []string
	Reason             string
}

// NoEligibleTopicError reports that no topic can be offered to the student.
// It lists every considered topic with the reason it was blocked, so a
// misconfigured curriculum surfaces instead of silently defaulting.
type NoEligibleTopicError struct {
	StudentID string
	Blocked   []BlockedTopic
}

func (e *NoEligibleTopicError) Error() string {
	if len(e.Blocked) == 0 {
		return fmt.Sprintf("no eligible topic for student %s: curriculum has no topics in scope", e.StudentID)
	}
	parts := make([]string, 0, len(e.Blocked))
	for _, b := range e.Blocked {
		parts = append(parts, fmt.Sprintf("%s (%s)", b.Topic, b.Reason))
	}
	return fmt.Sprintf("no eligible topic for student %s: %s", e.StudentID, strings.Join(parts, "; "))
}
