package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/altin/gh-actions-cost/internal/model"
)

// ListJobs returns every job of a workflow run, including ones still in
// flight; completeness filtering happens downstream. A run that has been
// deleted since the runs listing yields an empty list.
func (c *Client) ListJobs(ctx context.Context, run model.Run) ([]model.Job, error) {
	v := url.Values{}
	v.Set("filter", "all")
	v.Set("per_page", "100")
	path := fmt.Sprintf("repos/%s/actions/runs/%d/jobs?%s", run.Repository.FullName, run.ID, v.Encode())

	var jobs []model.Job
	err := c.paginate(ctx, path, func(data []byte) error {
		var page model.JobsResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("decode jobs page: %w", err)
		}
		jobs = append(jobs, page.Jobs...)
		return nil
	})
	if err != nil {
		if isIgnorable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list jobs for run %d: %w", run.ID, err)
	}
	return jobs, nil
}
