package problems

import "fmt"

// InvalidParameterError reports a generation argument outside its supported
// range or a topic with no registered generator.
type InvalidParameterError struct {
	Param  string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Param, e.Value, e.Reason)
}
