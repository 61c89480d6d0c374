package fetch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/altin/gh-actions-cost/internal/api"
	"github.com/altin/gh-actions-cost/internal/cache"
	"github.com/altin/gh-actions-cost/internal/model"
)

// DefaultConcurrency bounds in-flight requests per tier.
const DefaultConcurrency = 5

// Tier names one level of the repos -> runs -> jobs hierarchy.
type Tier string

const (
	TierRepos Tier = "repos"
	TierRuns  Tier = "runs"
	TierJobs  Tier = "jobs"
)

// Progress receives monotonically non-decreasing completion counts per
// tier. For the repos tier the total grows as pages are discovered.
type Progress func(tier Tier, completed, total int)

// Lister is the slice of the API client the orchestrator drives.
type Lister interface {
	ListOrgRepos(ctx context.Context, onPage func(count int)) ([]model.Repository, error)
	ListRuns(ctx context.Context, repo model.Repository, window api.Window) ([]model.Run, error)
	ListJobs(ctx context.Context, run model.Run) ([]model.Job, error)
}

type Options struct {
	Concurrency  int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Orchestrator walks the three-tier hierarchy, consulting the cache before
// each tier and populating it after. Tiers are strictly sequential.
type Orchestrator struct {
	client     Lister
	store      *cache.Store
	host       string
	org        string
	opts       Options
	onProgress Progress
}

func New(client Lister, store *cache.Store, host, org string, opts Options, onProgress Progress) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Orchestrator{
		client:     client,
		store:      store,
		host:       host,
		org:        org,
		opts:       opts,
		onProgress: onProgress,
	}
}

// Dataset is everything one invocation fetched.
type Dataset struct {
	Repos []model.Repository
	Runs  []model.Run
	Jobs  []model.Job
}

// Fetch resolves all three tiers in order. An empty tier short-circuits the
// ones below it.
func (o *Orchestrator) Fetch(ctx context.Context, window api.Window) (*Dataset, error) {
	ds := &Dataset{}
	var err error

	if ds.Repos, err = o.Repos(ctx); err != nil {
		return nil, err
	}
	if len(ds.Repos) == 0 {
		return ds, nil
	}
	if ds.Runs, err = o.Runs(ctx, ds.Repos, window); err != nil {
		return nil, err
	}
	if len(ds.Runs) == 0 {
		return ds, nil
	}
	if ds.Jobs, err = o.Jobs(ctx, ds.Runs, window); err != nil {
		return nil, err
	}
	return ds, nil
}

// Repos lists the organization's repositories. This is the starting tier:
// there is no fallback, so failures propagate.
func (o *Orchestrator) Repos(ctx context.Context) ([]model.Repository, error) {
	key := []string{"repos", o.host, o.org}
	var cached []model.Repository
	if o.cacheGet(key, &cached) {
		o.report(TierRepos, len(cached), len(cached))
		return cached, nil
	}

	repos, err := o.client.ListOrgRepos(ctx, func(count int) {
		o.report(TierRepos, count, count)
	})
	if err != nil {
		return nil, err
	}
	o.cacheSet(key, repos)
	return repos, nil
}

// Runs lists workflow runs inside the window for every repository, at most
// Concurrency repositories at a time. A repository without accessible
// Actions data contributes nothing and never fails the batch.
func (o *Orchestrator) Runs(ctx context.Context, repos []model.Repository, window api.Window) ([]model.Run, error) {
	key := []string{"runs", o.host, o.org, window.CreatedQuery()}
	var cached []model.Run
	if o.cacheGet(key, &cached) {
		o.report(TierRuns, len(repos), len(repos))
		return cached, nil
	}

	results := make([][]model.Run, len(repos))
	err := o.forEach(ctx, TierRuns, len(repos), func(i int) error {
		runs, err := o.client.ListRuns(ctx, repos[i], window)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil // per-entity failure, skip
		}
		results[i] = runs
		return nil
	})
	if err != nil {
		return nil, err
	}

	var runs []model.Run
	for _, rs := range results {
		runs = append(runs, rs...)
	}
	o.cacheSet(key, runs)
	return runs, nil
}

// Jobs lists jobs for every run, keeping only completed ones and stamping
// each with its repository and workflow name before it leaves the pipeline.
func (o *Orchestrator) Jobs(ctx context.Context, runs []model.Run, window api.Window) ([]model.Job, error) {
	key := []string{"jobs", o.host, o.org, window.CreatedQuery()}
	var cached []model.Job
	if o.cacheGet(key, &cached) {
		o.report(TierJobs, len(runs), len(runs))
		return cached, nil
	}

	results := make([][]model.Job, len(runs))
	err := o.forEach(ctx, TierJobs, len(runs), func(i int) error {
		run := runs[i]
		jobs, err := o.client.ListJobs(ctx, run)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}
		kept := jobs[:0]
		for _, j := range jobs {
			if !j.Completed() {
				continue
			}
			j.RepoFullName = run.Repository.FullName
			j.WorkflowName = run.WorkflowName()
			kept = append(kept, j)
		}
		results[i] = kept
		return nil
	})
	if err != nil {
		return nil, err
	}

	var jobs []model.Job
	for _, js := range results {
		jobs = append(jobs, js...)
	}
	o.cacheSet(key, jobs)
	return jobs, nil
}

// forEach runs work over n parents with the tier's concurrency bound,
// reporting completion counts through a single mutex so the sink never
// observes them out of order.
func (o *Orchestrator) forEach(ctx context.Context, tier Tier, n int, work func(i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)

	var mu sync.Mutex
	completed := 0
	for i := range n {
		g.Go(func() error {
			if err := work(i); err != nil {
				return err
			}
			mu.Lock()
			completed++
			o.report(tier, completed, n)
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (o *Orchestrator) report(tier Tier, completed, total int) {
	if o.onProgress != nil {
		o.onProgress(tier, completed, total)
	}
}

func (o *Orchestrator) cacheGet(key []string, out any) bool {
	if !o.opts.CacheEnabled || o.store == nil {
		return false
	}
	return o.store.Get(key, o.opts.CacheTTL, out)
}

func (o *Orchestrator) cacheSet(key []string, data any) {
	if !o.opts.CacheEnabled || o.store == nil {
		return
	}
	o.store.Set(key, data, o.opts.CacheTTL)
}
