package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fatih/color"
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	styleBorder = lipgloss.NewStyle().Foreground(lipgloss.Color("#374151"))
)

// RenderTable writes the styled terminal report.
func RenderTable(w io.Writer, r *Report) error {
	writeSummary(w, r)

	writeSection(w, "Usage by operating system", []string{"OS", "MINUTES", "BILLABLE", "JOBS"}, osRows(r.ByOS))
	writeSection(w, "Usage by workflow", []string{"WORKFLOW", "MINUTES", "BILLABLE", "JOBS", "RUNS"}, workflowRows(r.ByWorkflow))
	writeSection(w, "Usage by repository", []string{"REPOSITORY", "MINUTES", "BILLABLE", "JOBS", "WORKFLOWS"}, repoRows(r.ByRepo))

	periodHeader := map[string]string{"day": "DATE", "week": "WEEK OF", "month": "MONTH"}[r.GroupBy]
	if periodHeader == "" {
		periodHeader = "DATE"
	}
	writeSection(w, "Usage by "+r.GroupBy, []string{periodHeader, "MINUTES", "BILLABLE", "JOBS"}, periodRows(r.ByPeriod))
	return nil
}

// writeSummary prints the headline numbers with fatih/color so they stay
// readable when the output is piped through a pager.
func writeSummary(w io.Writer, r *Report) {
	bold := color.New(color.Bold)
	cost := color.New(color.FgGreen, color.Bold)

	fmt.Fprintf(w, "\n%s  %s .. %s (%d days)\n\n",
		bold.Sprintf("Actions usage for %s", r.Org), r.StartDate, r.EndDate, r.Days)
	fmt.Fprintf(w, "  Jobs: %d across %d runs in %d repositories\n", r.JobCount, r.RunCount, r.RepoCount)
	fmt.Fprintf(w, "  Minutes: %d raw, %d billable\n", r.TotalMinutes, r.TotalBillableMinutes)
	fmt.Fprintf(w, "  Estimated cost: %s\n", cost.Sprintf("$%.2f", r.EstimatedCost))
	fmt.Fprintf(w, "  Projected: $%.2f/day  $%.2f/week  $%.2f/month\n",
		r.Projection.Daily, r.Projection.Weekly, r.Projection.Monthly)
}

func writeSection(w io.Writer, title string, headers []string, rows [][]string) {
	fmt.Fprintf(w, "\n%s\n", styleTitle.Render(title))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func osRows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Key, itoa(r.Minutes), itoa(r.BillableMinutes), strconv.Itoa(r.JobCount)})
	}
	return out
}

func workflowRows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Key, itoa(r.Minutes), itoa(r.BillableMinutes), strconv.Itoa(r.JobCount), strconv.Itoa(r.RunCount)})
	}
	return out
}

func repoRows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Key, itoa(r.Minutes), itoa(r.BillableMinutes), strconv.Itoa(r.JobCount), strconv.Itoa(len(r.Workflows))})
	}
	return out
}

func periodRows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{r.Key, itoa(r.Minutes), itoa(r.BillableMinutes), strconv.Itoa(r.JobCount)})
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
