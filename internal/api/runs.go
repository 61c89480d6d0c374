package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/altin/gh-actions-cost/internal/model"
)

// ListRuns returns the repository's workflow runs created inside the
// window. The server is asked to filter by calendar day; results are then
// re-filtered against the exact instants since the `created` qualifier can
// over-include. Inaccessible or Actions-disabled repositories yield an
// empty list.
func (c *Client) ListRuns(ctx context.Context, repo model.Repository, window Window) ([]model.Run, error) {
	v := url.Values{}
	v.Set("created", window.CreatedQuery())
	v.Set("per_page", "100")
	path := fmt.Sprintf("repos/%s/actions/runs?%s", repo.FullName, v.Encode())

	var runs []model.Run
	err := c.paginate(ctx, path, func(data []byte) error {
		var page model.RunsResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("decode runs page: %w", err)
		}
		for _, r := range page.Runs {
			if window.Contains(r.CreatedAt) {
				runs = append(runs, r)
			}
		}
		return nil
	})
	if err != nil {
		if isIgnorable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list runs for %s: %w", repo.FullName, err)
	}
	return runs, nil
}
