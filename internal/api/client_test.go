package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/altin/gh-actions-cost/internal/model"
)

// fakeDoer replays a scripted sequence of responses.
type fakeDoer struct {
	script []fakeResp
	paths  []string
}

type fakeResp struct {
	body string
	link string
	err  error
}

func (f *fakeDoer) RequestWithContext(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	f.paths = append(f.paths, path)
	if len(f.script) == 0 {
		return nil, errors.New("fakeDoer: script exhausted")
	}
	next := f.script[0]
	f.script = f.script[1:]
	if next.err != nil {
		return nil, next.err
	}
	h := http.Header{}
	if next.link != "" {
		h.Set("Link", next.link)
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(next.body)),
	}, nil
}

func newTestClient(doer *fakeDoer) *Client {
	return &Client{
		rest:    doer,
		org:     "acme",
		limiter: rate.NewLimiter(rate.Inf, 1),
		sleep:   func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	s, err := time.Parse(dayLayout, start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := time.Parse(dayLayout, end)
	if err != nil {
		t.Fatal(err)
	}
	return Window{Start: s, End: e}
}

func TestListOrgReposFollowsPagination(t *testing.T) {
	doer := &fakeDoer{script: []fakeResp{
		{
			body: `[{"name":"one","full_name":"acme/one"},{"name":"two","full_name":"acme/two"}]`,
			link: `<https://api.github.com/orgs/acme/repos?page=2>; rel="next"`,
		},
		{body: `[{"name":"three","full_name":"acme/three"}]`},
	}}
	c := newTestClient(doer)

	var counts []int
	repos, err := c.ListOrgRepos(context.Background(), func(n int) { counts = append(counts, n) })
	if err != nil {
		t.Fatal(err)
	}
	if len(repos) != 3 {
		t.Fatalf("got %d repos, want 3", len(repos))
	}
	if len(counts) != 2 || counts[0] != 2 || counts[1] != 3 {
		t.Errorf("page counts = %v, want [2 3]", counts)
	}
	// The second request goes to the absolute next-page URL unchanged.
	if len(doer.paths) != 2 || doer.paths[1] != "https://api.github.com/orgs/acme/repos?page=2" {
		t.Errorf("requested paths = %v", doer.paths)
	}
}

func TestPrimaryLimitRetriesThenSucceeds(t *testing.T) {
	limited := httpError(403, "API rate limit exceeded", map[string]string{
		"X-Ratelimit-Remaining": "0",
		"Retry-After":           "1",
	})
	doer := &fakeDoer{script: []fakeResp{
		{err: limited},
		{err: limited},
		{body: `[]`},
	}}
	c := newTestClient(doer)

	var waits []LimitKind
	c.onWait = func(kind LimitKind, wait time.Duration) { waits = append(waits, kind) }

	if _, err := c.ListOrgRepos(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if len(doer.paths) != 3 {
		t.Errorf("made %d requests, want 3", len(doer.paths))
	}
	if len(waits) != 2 || waits[0] != LimitPrimary || waits[1] != LimitPrimary {
		t.Errorf("onWait calls = %v, want two primary", waits)
	}
}

func TestPrimaryLimitBudgetExhausted(t *testing.T) {
	limited := httpError(403, "API rate limit exceeded", map[string]string{
		"X-Ratelimit-Remaining": "0",
		"Retry-After":           "1",
	})
	doer := &fakeDoer{script: []fakeResp{{err: limited}, {err: limited}, {err: limited}}}
	c := newTestClient(doer)

	_, err := c.ListOrgRepos(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	// Three attempts total for a primary limit, no more.
	if len(doer.paths) != 3 {
		t.Errorf("made %d requests, want 3", len(doer.paths))
	}
}

func TestSecondaryLimitBudgetSmaller(t *testing.T) {
	limited := httpError(403, "You have exceeded a secondary rate limit", map[string]string{
		"Retry-After": "1",
	})
	doer := &fakeDoer{script: []fakeResp{{err: limited}, {err: limited}, {body: `[]`}}}
	c := newTestClient(doer)

	_, err := c.ListOrgRepos(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error: secondary limits get one retry only")
	}
	if len(doer.paths) != 2 {
		t.Errorf("made %d requests, want 2", len(doer.paths))
	}
}

func TestNonLimitErrorFailsFast(t *testing.T) {
	doer := &fakeDoer{script: []fakeResp{{err: httpError(500, "boom", nil)}}}
	c := newTestClient(doer)

	if _, err := c.ListOrgRepos(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if len(doer.paths) != 1 {
		t.Errorf("made %d requests, want 1 (no retry on server errors)", len(doer.paths))
	}
}

func TestSleepHonorsCancellation(t *testing.T) {
	limited := httpError(429, "", nil)
	doer := &fakeDoer{script: []fakeResp{{err: limited}, {body: `[]`}}}
	c := newTestClient(doer)
	c.sleep = sleepContext

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListOrgRepos(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestListRunsRefiltersWindow(t *testing.T) {
	doer := &fakeDoer{script: []fakeResp{{body: `{
		"total_count": 3,
		"workflow_runs": [
			{"id": 1, "name": "ci", "created_at": "2026-08-10T12:00:00Z"},
			{"id": 2, "name": "ci", "created_at": "2026-07-31T23:59:59Z"},
			{"id": 3, "name": "ci", "created_at": "2026-08-31T23:59:59Z"}
		]
	}`}}}
	c := newTestClient(doer)
	repo := model.Repository{Name: "one", FullName: "acme/one"}

	runs, err := c.ListRuns(context.Background(), repo, mustWindow(t, "2026-08-01", "2026-08-31"))
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2 (out-of-window run dropped)", len(runs))
	}
	for _, r := range runs {
		if r.ID == 2 {
			t.Error("run created before the window survived the re-filter")
		}
	}
	if !strings.Contains(doer.paths[0], "created=2026-08-01..2026-08-31") {
		t.Errorf("request path missing created filter: %s", doer.paths[0])
	}
}

func TestListRunsSwallowsInaccessible(t *testing.T) {
	for _, status := range []int{404, 403, 409} {
		doer := &fakeDoer{script: []fakeResp{{err: httpError(status, "", nil)}}}
		c := newTestClient(doer)
		repo := model.Repository{Name: "gone", FullName: "acme/gone"}

		runs, err := c.ListRuns(context.Background(), repo, mustWindow(t, "2026-08-01", "2026-08-31"))
		if err != nil {
			t.Errorf("status %d: err = %v, want nil", status, err)
		}
		if runs != nil {
			t.Errorf("status %d: runs = %v, want nil", status, runs)
		}
	}
}

func TestListJobs(t *testing.T) {
	doer := &fakeDoer{script: []fakeResp{{body: `{
		"total_count": 2,
		"jobs": [
			{"id": 10, "run_id": 7, "name": "build", "labels": ["ubuntu-latest"]},
			{"id": 11, "run_id": 7, "name": "test", "labels": ["macos-14"]}
		]
	}`}}}
	c := newTestClient(doer)
	run := model.Run{ID: 7, Repository: model.RunRepository{FullName: "acme/one"}}

	jobs, err := c.ListJobs(context.Background(), run)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(jobs))
	}
	if !strings.Contains(doer.paths[0], "repos/acme/one/actions/runs/7/jobs") {
		t.Errorf("request path = %s", doer.paths[0])
	}
	if jobs[0].Labels[0] != "ubuntu-latest" {
		t.Errorf("labels not decoded: %+v", jobs[0])
	}
}

func TestListJobsSwallowsMissingRun(t *testing.T) {
	doer := &fakeDoer{script: []fakeResp{{err: httpError(404, "Not Found", nil)}}}
	c := newTestClient(doer)
	run := model.Run{ID: 7, Repository: model.RunRepository{FullName: "acme/one"}}

	jobs, err := c.ListJobs(context.Background(), run)
	if err != nil || jobs != nil {
		t.Errorf("got (%v, %v), want (nil, nil)", jobs, err)
	}
}
