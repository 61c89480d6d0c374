package output

import (
	"sort"

	"github.com/altin/gh-actions-cost/internal/api"
	"github.com/altin/gh-actions-cost/internal/billing"
)

// Row is one line of a grouped rollup, ready for rendering.
type Row struct {
	Key             string   `json:"key"`
	Minutes         int64    `json:"minutes"`
	BillableMinutes int64    `json:"billable_minutes"`
	JobCount        int      `json:"job_count"`
	RunCount        int      `json:"run_count,omitempty"`
	Workflows       []string `json:"workflows,omitempty"`
}

// Report is the serialization-stable view handed to every renderer. It is
// derived from the aggregate once; renderers never touch the aggregate.
type Report struct {
	Org       string `json:"org"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	GroupBy   string `json:"group_by"`

	TotalMinutes         int64 `json:"total_minutes"`
	TotalBillableMinutes int64 `json:"total_billable_minutes"`
	JobCount             int   `json:"job_count"`
	RunCount             int   `json:"run_count"`
	RepoCount            int   `json:"repo_count"`

	EstimatedCost float64            `json:"estimated_cost_usd"`
	Projection    billing.Projection `json:"projection"`

	ByOS       []Row `json:"by_os"`
	ByWorkflow []Row `json:"by_workflow"`
	ByRepo     []Row `json:"by_repo"`
	ByPeriod   []Row `json:"by_period"`
}

// Build assembles the report. groupBy selects the period axis: day uses
// the aggregate's date rollup directly, week and month re-bucket it.
func Build(org string, window api.Window, agg *billing.Aggregated, groupBy string) *Report {
	r := &Report{
		Org:                  org,
		StartDate:            window.Start.Format("2006-01-02"),
		EndDate:              window.End.Format("2006-01-02"),
		Days:                 window.Days(),
		GroupBy:              groupBy,
		TotalMinutes:         agg.TotalMinutes,
		TotalBillableMinutes: agg.TotalBillableMinutes,
		JobCount:             agg.JobCount,
		RunCount:             agg.RunCount,
		RepoCount:            len(agg.ByRepo),
	}
	r.EstimatedCost = billing.EstimateCost(agg)
	r.Projection = billing.Project(r.EstimatedCost, r.Days)

	for _, os := range billing.Categories {
		b := agg.ByOS[os]
		r.ByOS = append(r.ByOS, Row{
			Key:             string(os),
			Minutes:         b.Minutes,
			BillableMinutes: b.BillableMinutes,
			JobCount:        b.JobCount,
		})
	}

	for key, b := range agg.ByWorkflow {
		r.ByWorkflow = append(r.ByWorkflow, Row{
			Key:             key,
			Minutes:         b.Minutes,
			BillableMinutes: b.BillableMinutes,
			JobCount:        b.JobCount,
			RunCount:        b.RunCount,
		})
	}
	sortRows(r.ByWorkflow)

	for key, b := range agg.ByRepo {
		names := make([]string, 0, len(b.Workflows))
		for name := range b.Workflows {
			names = append(names, name)
		}
		sort.Strings(names)
		r.ByRepo = append(r.ByRepo, Row{
			Key:             key,
			Minutes:         b.Minutes,
			BillableMinutes: b.BillableMinutes,
			JobCount:        b.JobCount,
			Workflows:       names,
		})
	}
	sortRows(r.ByRepo)

	var periods map[string]*billing.Bucket
	switch groupBy {
	case "week":
		periods = billing.GroupByWeek(agg)
	case "month":
		periods = billing.GroupByMonth(agg)
	default:
		periods = agg.ByDate
	}
	for key, b := range periods {
		r.ByPeriod = append(r.ByPeriod, Row{
			Key:             key,
			Minutes:         b.Minutes,
			BillableMinutes: b.BillableMinutes,
			JobCount:        b.JobCount,
		})
	}
	sort.Slice(r.ByPeriod, func(i, j int) bool { return r.ByPeriod[i].Key < r.ByPeriod[j].Key })

	return r
}

// sortRows orders by billable minutes descending, key ascending on ties.
func sortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].BillableMinutes != rows[j].BillableMinutes {
			return rows[i].BillableMinutes > rows[j].BillableMinutes
		}
		return rows[i].Key < rows[j].Key
	})
}
