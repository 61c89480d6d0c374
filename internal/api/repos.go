package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/altin/gh-actions-cost/internal/model"
)

// ListOrgRepos returns every repository in the organization, following
// pagination to exhaustion. onPage, when set, receives the running total as
// pages arrive. There is no fallback for this tier, so errors propagate.
func (c *Client) ListOrgRepos(ctx context.Context, onPage func(count int)) ([]model.Repository, error) {
	v := url.Values{}
	v.Set("per_page", "100")
	v.Set("type", "all")
	path := fmt.Sprintf("orgs/%s/repos?%s", c.org, v.Encode())

	var repos []model.Repository
	err := c.paginate(ctx, path, func(data []byte) error {
		var page []model.Repository
		if err := json.Unmarshal(data, &page); err != nil {
			return fmt.Errorf("decode repositories page: %w", err)
		}
		repos = append(repos, page...)
		if onPage != nil {
			onPage(len(repos))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list repositories for %s: %w", c.org, err)
	}
	return repos, nil
}
