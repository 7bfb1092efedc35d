package planner

import (
	"errors"
	"fmt"
)

// Sentinel kinds for planning errors.
var (
	// ErrInvalidTarget means the target has no copy for a subject. It is
	// reported per subject and never aborts a whole request.
	ErrInvalidTarget = errors.New("target has no copy for subject")
	// ErrSubjectExcluded means the subject carries no coefficient in the
	// exam model, so swapping it cannot move the average.
	ErrSubjectExcluded = errors.New("subject is not weighted in exam model")
	ErrInvalidGoal     = errors.New("invalid goal")
	ErrConfiguration   = errors.New("configuration error")
)

// ConfigurationError rejects exam configuration that leaves an average
// undefined, such as a zero coefficient sum.
type ConfigurationError struct {
	ExamModelID string
	Reason      string
}

func (e *ConfigurationError) Error() string {
	if e.ExamModelID == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: exam model %q: %s", e.ExamModelID, e.Reason)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}
