package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the journal does not exist for the user.
var ErrNotFound = errors.New("journal not found")

const (
	StepLoadJournal           = "load_journal"
	StepUpdateJournal         = "update_journal"
	StepInsertQuote           = "insert_quote"
	StepInsertRecommendations = "insert_recommendations"
)

// StepError is one failed persistence step.
type StepError struct {
	Step string
	Err  error
}

// PersistenceError collects every store write that failed during a run.
// Steps that succeeded are not rolled back.
type PersistenceError struct {
	Failures []StepError
}

func (e *PersistenceError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Step, f.Err))
	}
	return "persist analysis: " + strings.Join(parts, "; ")
}

func (e *PersistenceError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Err)
	}
	return out
}

// Steps lists the failed step names in order.
func (e *PersistenceError) Steps() []string {
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Step)
	}
	return out
}

// Failed reports whether step is among the failures.
func (e *PersistenceError) Failed(step string) bool {
	for _, f := range e.Failures {
		if f.Step == step {
			return true
		}
	}
	return false
}
