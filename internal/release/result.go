package release

import (
	"errors"
	"fmt"
	"time"

	"relcut/internal/version"
)

// Pipeline stages in execution order.
const (
	StageChangelog Stage = "changelog"
	StageBump      Stage = "bump"
	StageMetadata  Stage = "metadata"
	StageCommit    Stage = "commit"
	StagePush      Stage = "push"
)

// Stage names one step of the release pipeline.
type Stage string

// Stage outcomes.
const (
	StatusOK       Status = "ok"
	StatusSkipped  Status = "skipped"
	StatusDeclined Status = "declined"
	StatusFailed   Status = "failed"
)

// Status describes how a stage ended.
type Status string

// ErrAborted marks a run terminated by a declined confirmation.
var ErrAborted = errors.New("declined by operator")

// Result is the outcome of one stage in one pass.
type Result struct {
	Stage  Stage
	Phase  version.Phase
	Status Status
	Detail string
	Err    error
}

// abort returns the error that terminates the run, or nil when the pipeline
// may continue. A declined push is the one decline that does not abort.
func (res Result) abort() error {
	switch res.Status {
	case StatusFailed:
		if res.Err != nil {
			return fmt.Errorf("%s stage: %w", res.Stage, res.Err)
		}
		return fmt.Errorf("%s stage failed", res.Stage)
	case StatusDeclined:
		if res.Stage == StagePush {
			return nil
		}
		return fmt.Errorf("%s stage: %w", res.Stage, ErrAborted)
	}
	return nil
}

// Outcome labels for a whole run.
const (
	OutcomeCompleted = "completed"
	OutcomeDeclined  = "declined"
	OutcomeFailed    = "failed"
)

// Report collects everything a run did.
type Report struct {
	RunID         string
	Phase         version.Phase
	Branch        string
	VersionBefore string
	VersionAfter  string
	Tag           string
	Results       []Result
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Outcome reduces the stage results to a single label. A declined push does
// not demote a run: the release is complete locally.
func (r *Report) Outcome() string {
	declined := false
	for _, res := range r.Results {
		switch res.Status {
		case StatusFailed:
			return OutcomeFailed
		case StatusDeclined:
			if res.Stage != StagePush {
				declined = true
			}
		}
	}
	if declined {
		return OutcomeDeclined
	}
	return OutcomeCompleted
}

// Problem describes the first fatal result, or returns an empty string for
// a run that completed.
func (r *Report) Problem() string {
	for _, res := range r.Results {
		if err := res.abort(); err != nil {
			if res.Detail != "" {
				return fmt.Sprintf("%s: %s", res.Stage, res.Detail)
			}
			return err.Error()
		}
	}
	return ""
}
