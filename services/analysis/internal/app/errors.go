package app

import "errors"

var (
	// ErrAlreadyAnalyzed indicates the journal already carries an analysis.
	ErrAlreadyAnalyzed    = errors.New("journal already analyzed")
	ErrAnalysisInProgress = errors.New("journal analysis in progress")
	ErrQueueDisabled      = errors.New("analysis queue disabled in standalone mode")
)
