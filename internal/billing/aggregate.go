package billing

import (
	"time"

	"github.com/altin/gh-actions-cost/internal/model"
)

const dayLayout = "2006-01-02"

// DurationMinutes converts wall-clock time to billed minutes, rounding up
// the way hosted runners bill: a one-second job costs a full minute.
func DurationMinutes(started, completed time.Time) int64 {
	ms := completed.Sub(started).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return (ms + 59999) / 60000
}

// Result is the billing view of one completed job.
type Result struct {
	Job             model.Job
	OS              OS
	DurationMinutes int64
	Multiplier      int64
	BillableMinutes int64
}

// Classify computes the billing result for a single completed job.
func Classify(job model.Job, overrides []LabelMapping) Result {
	os := DetectOS(job.Labels, overrides)
	minutes := DurationMinutes(job.StartedAt, *job.CompletedAt)
	mult := Multiplier(os)
	return Result{
		Job:             job,
		OS:              os,
		DurationMinutes: minutes,
		Multiplier:      mult,
		BillableMinutes: minutes * mult,
	}
}

// Bucket accumulates usage along one grouping dimension.
type Bucket struct {
	Minutes         int64 `json:"minutes"`
	BillableMinutes int64 `json:"billable_minutes"`
	JobCount        int   `json:"job_count"`
}

func (b *Bucket) add(r Result) {
	b.Minutes += r.DurationMinutes
	b.BillableMinutes += r.BillableMinutes
	b.JobCount++
}

// WorkflowBucket adds the distinct-run count for a "repo/workflow" key.
// One run can spawn many jobs, so RunCount counts run ids, not jobs.
type WorkflowBucket struct {
	Bucket
	RunCount int `json:"run_count"`
}

// RepoBucket adds the set of workflow names seen in the repository.
type RepoBucket struct {
	Bucket
	Workflows map[string]struct{} `json:"workflows"`
}

// Aggregated is the full usage rollup over all completed jobs. Immutable
// once produced; order of input jobs does not affect the result.
type Aggregated struct {
	TotalMinutes         int64                      `json:"total_minutes"`
	TotalBillableMinutes int64                      `json:"total_billable_minutes"`
	JobCount             int                        `json:"job_count"`
	RunCount             int                        `json:"run_count"`
	ByOS                 map[OS]*Bucket             `json:"by_os"`
	ByWorkflow           map[string]*WorkflowBucket `json:"by_workflow"`
	ByRepo               map[string]*RepoBucket     `json:"by_repo"`
	ByDate               map[string]*Bucket         `json:"by_date"`
}

// Aggregate folds completed jobs into the multi-dimensional rollup. Jobs
// without a completion timestamp are excluded from every total.
func Aggregate(jobs []model.Job, overrides []LabelMapping) *Aggregated {
	agg := &Aggregated{
		ByOS:       make(map[OS]*Bucket, len(Categories)),
		ByWorkflow: make(map[string]*WorkflowBucket),
		ByRepo:     make(map[string]*RepoBucket),
		ByDate:     make(map[string]*Bucket),
	}
	for _, os := range Categories {
		agg.ByOS[os] = &Bucket{}
	}

	allRuns := make(map[int64]struct{})
	workflowRuns := make(map[string]map[int64]struct{})

	for _, job := range jobs {
		if !job.Completed() {
			continue
		}
		r := Classify(job, overrides)

		agg.TotalMinutes += r.DurationMinutes
		agg.TotalBillableMinutes += r.BillableMinutes
		agg.JobCount++
		agg.ByOS[r.OS].add(r)

		workflow := job.WorkflowName
		if workflow == "" {
			workflow = "unknown"
		}
		wfKey := job.RepoFullName + "/" + workflow
		wb := agg.ByWorkflow[wfKey]
		if wb == nil {
			wb = &WorkflowBucket{}
			agg.ByWorkflow[wfKey] = wb
		}
		wb.add(r)
		if workflowRuns[wfKey] == nil {
			workflowRuns[wfKey] = make(map[int64]struct{})
		}
		workflowRuns[wfKey][job.RunID] = struct{}{}

		rb := agg.ByRepo[job.RepoFullName]
		if rb == nil {
			rb = &RepoBucket{Workflows: make(map[string]struct{})}
			agg.ByRepo[job.RepoFullName] = rb
		}
		rb.add(r)
		rb.Workflows[workflow] = struct{}{}

		day := job.StartedAt.UTC().Format(dayLayout)
		db := agg.ByDate[day]
		if db == nil {
			db = &Bucket{}
			agg.ByDate[day] = db
		}
		db.add(r)

		allRuns[job.RunID] = struct{}{}
	}

	agg.RunCount = len(allRuns)
	for key, runs := range workflowRuns {
		agg.ByWorkflow[key].RunCount = len(runs)
	}
	return agg
}
