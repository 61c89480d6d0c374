package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// RenderCSV writes every rollup as flat rows: one per OS, workflow,
// repository, and period bucket, plus a totals row.
func RenderCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"group", "key", "minutes", "billable_minutes", "jobs", "runs"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	write := func(group string, rows []Row) {
		for _, row := range rows {
			runs := ""
			if row.RunCount > 0 {
				runs = strconv.Itoa(row.RunCount)
			}
			cw.Write([]string{group, row.Key, itoa(row.Minutes), itoa(row.BillableMinutes), strconv.Itoa(row.JobCount), runs})
		}
	}
	write("os", r.ByOS)
	write("workflow", r.ByWorkflow)
	write("repo", r.ByRepo)
	write(r.GroupBy, r.ByPeriod)

	cw.Write([]string{"total", r.Org, itoa(r.TotalMinutes), itoa(r.TotalBillableMinutes), strconv.Itoa(r.JobCount), strconv.Itoa(r.RunCount)})
	cw.Flush()
	return cw.Error()
}
