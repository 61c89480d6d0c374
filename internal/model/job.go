package model

import "time"

type Job struct {
	ID              int64         `json:"id"`
	RunID           int64         `json:"run_id"`
	Name            string        `json:"name"`
	Status          RunStatus     `json:"status"`
	Conclusion      RunConclusion `json:"conclusion"`
	StartedAt       time.Time     `json:"started_at"`
	CompletedAt     *time.Time    `json:"completed_at"`
	Labels          []string      `json:"labels"`
	RunnerName      string        `json:"runner_name"`
	RunnerGroupName string        `json:"runner_group_name"`

	// Denormalized from the parent run before the job leaves the fetch
	// layer. Not part of the API payload.
	RepoFullName string `json:"repo_full_name,omitempty"`
	WorkflowName string `json:"workflow_name,omitempty"`
}

type JobsResponse struct {
	TotalCount int   `json:"total_count"`
	Jobs       []Job `json:"jobs"`
}

// Completed reports whether the job has finished running. Only completed
// jobs have a billable duration.
func (j Job) Completed() bool {
	return j.CompletedAt != nil && !j.CompletedAt.IsZero()
}

func (j Job) Duration() time.Duration {
	if !j.Completed() || j.StartedAt.IsZero() {
		return 0
	}
	return j.CompletedAt.Sub(j.StartedAt)
}
