package model

import "time"

type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusInProgress RunStatus = "in_progress"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusWaiting    RunStatus = "waiting"
	RunStatusRequested  RunStatus = "requested"
	RunStatusPending    RunStatus = "pending"
)

type RunConclusion string

const (
	ConclusionSuccess   RunConclusion = "success"
	ConclusionFailure   RunConclusion = "failure"
	ConclusionCancelled RunConclusion = "cancelled"
	ConclusionSkipped   RunConclusion = "skipped"
	ConclusionTimedOut  RunConclusion = "timed_out"
	ConclusionNeutral   RunConclusion = "neutral"
)

// RunRepository is the repository stub embedded in a workflow run payload.
type RunRepository struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

type Run struct {
	ID           int64         `json:"id"`
	Name         string        `json:"name"`
	Status       RunStatus     `json:"status"`
	Conclusion   RunConclusion `json:"conclusion"`
	Event        string        `json:"event"`
	HeadBranch   string        `json:"head_branch"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	RunStartedAt time.Time     `json:"run_started_at"`
	Repository   RunRepository `json:"repository"`
}

type RunsResponse struct {
	TotalCount int   `json:"total_count"`
	Runs       []Run `json:"workflow_runs"`
}

// WorkflowName returns the run's workflow display name, or "unknown" when the
// API omits it.
func (r Run) WorkflowName() string {
	if r.Name == "" {
		return "unknown"
	}
	return r.Name
}
