package jobs

import (
	"github.com/tunefab/tunefab/pkg/api/types/data"
	"github.com/tunefab/tunefab/pkg/api/types/misc/rfctime"
)

// Status of an AutoML Job. It is owned by the hub; clients only read it.
type Status string

const (
	Queued    Status = "queued"
	Running   Status = "running"
	Stopping  Status = "stopping"
	Succeeded Status = "succeeded"
	Failed    Status = "failed"
	Stopped   Status = "stopped"
)

func (s Status) Known() bool {
	switch s {
	case Queued, Running, Stopping, Succeeded, Failed, Stopped:
		return true
	default:
		return false
	}
}

// IsTerminal returns true when the hub will never update the Job anymore.
//
// Unknown statuses are non-terminal, so that old clients keep polling
// against newer hubs.
func (s Status) IsTerminal() bool {
	switch s {
	case Succeeded, Failed, Stopped:
		return true
	default:
		return false
	}
}

// Spec is what a client asks the hub to do.
type Spec struct {
	// Name is a human-given name of the Job, unique in the hub.
	Name string `json:"name"`

	// Input is the training dataset (CSV with header).
	Input data.Location `json:"input"`

	// TargetColumn is the header name of the label column in Input.
	TargetColumn string `json:"targetColumn"`

	// Output is the prefix under which the hub stores artifacts.
	Output data.Location `json:"output"`

	// MaxCandidates caps the number of candidate pipelines explored.
	MaxCandidates int `json:"maxCandidates"`

	// Objective is the metric the hub ranks candidates by.
	//
	// When empty, the hub picks its default for the problem type.
	Objective string `json:"objective,omitempty"`
}

func (s Spec) Equal(o Spec) bool {
	return s.Name == o.Name &&
		s.Input.Equal(o.Input) &&
		s.TargetColumn == o.TargetColumn &&
		s.Output.Equal(o.Output) &&
		s.MaxCandidates == o.MaxCandidates &&
		s.Objective == o.Objective
}

type Summary struct {
	JobId     string          `json:"jobId"`
	Status    Status          `json:"status"`
	CreatedAt rfctime.RFC3339 `json:"createdAt"`
	UpdatedAt rfctime.RFC3339 `json:"updatedAt"`
}

func (s Summary) Equal(o Summary) bool {
	return s.JobId == o.JobId &&
		s.Status == o.Status &&
		s.CreatedAt.Equal(o.CreatedAt) &&
		s.UpdatedAt.Equal(o.UpdatedAt)
}

type Detail struct {
	Summary
	Spec Spec `json:"spec"`

	// BestCandidate is set when the Job has succeeded.
	BestCandidate *Candidate `json:"bestCandidate,omitempty"`

	// FailureReason is set when the Job has failed.
	FailureReason string `json:"failureReason,omitempty"`
}

func (d Detail) Equal(o Detail) bool {
	bcEq := (d.BestCandidate == nil && o.BestCandidate == nil) ||
		(d.BestCandidate != nil && o.BestCandidate != nil && d.BestCandidate.Equal(*o.BestCandidate))

	return d.Summary.Equal(o.Summary) &&
		d.Spec.Equal(o.Spec) &&
		bcEq &&
		d.FailureReason == o.FailureReason
}

// Metric is a named evaluation metric value.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (m Metric) Equal(o Metric) bool {
	return m.Name == o.Name && m.Value == o.Value
}

// Candidate is a trained pipeline produced by a Job, ranked by its
// objective metric.
type Candidate struct {
	Name          string        `json:"name"`
	Objective     Metric        `json:"objective"`
	Image         string        `json:"image"`
	ModelArtifact data.Location `json:"modelArtifact"`
}

func (c Candidate) Equal(o Candidate) bool {
	return c.Name == o.Name &&
		c.Objective.Equal(o.Objective) &&
		c.Image == o.Image &&
		c.ModelArtifact.Equal(o.ModelArtifact)
}
