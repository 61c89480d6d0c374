package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond paces outbound REST calls. GitHub's secondary
// rate limits trip on request bursts, so every call waits on a shared
// limiter before going out.
const DefaultRequestsPerSecond = 10

// WaitFunc is notified before the client sleeps out a rate-limit window.
type WaitFunc func(kind LimitKind, wait time.Duration)

// restDoer is the slice of go-gh's RESTClient the client depends on.
type restDoer interface {
	RequestWithContext(ctx context.Context, method string, path string, body io.Reader) (*http.Response, error)
}

type Options struct {
	// Host targets a GitHub Enterprise Server instance. Empty means
	// github.com (or whatever GH_HOST resolves to).
	Host string
	// Org is the organization whose Actions usage is being read.
	Org string
	// RequestsPerSecond overrides DefaultRequestsPerSecond when > 0.
	RequestsPerSecond float64
	// OnRateLimitWait, when set, is called before each rate-limit backoff.
	OnRateLimitWait WaitFunc
}

type Client struct {
	rest    restDoer
	org     string
	limiter *rate.Limiter
	onWait  WaitFunc
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewClient(opts Options) (*Client, error) {
	rest, err := ghAPI.NewRESTClient(ghAPI.ClientOptions{Host: opts.Host})
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client (is gh authenticated?): %w", err)
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &Client{
		rest:    rest,
		org:     opts.Org,
		limiter: rate.NewLimiter(rate.Limit(rps), 5),
		onWait:  opts.OnRateLimitWait,
		sleep:   sleepContext,
	}, nil
}

func (c *Client) Org() string {
	return c.org
}

// paginate requests path and every subsequent rel="next" page, handing each
// raw page body to onPage until the server stops advertising a next page.
func (c *Client) paginate(ctx context.Context, path string, onPage func(data []byte) error) error {
	next := path
	for next != "" {
		data, nextURL, err := c.doPage(ctx, next)
		if err != nil {
			return err
		}
		if err := onPage(data); err != nil {
			return err
		}
		next = nextURL
	}
	return nil
}

// doPage performs a single GET with the rate-limit retry policy: up to two
// extra attempts after a primary limit, one after a secondary limit. Waits
// honor the server's hint and are announced through onWait.
func (c *Client) doPage(ctx context.Context, path string) ([]byte, string, error) {
	primaryLeft := primaryAttempts - 1
	secondaryLeft := secondaryAttempts - 1

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", err
		}
		resp, err := c.rest.RequestWithContext(ctx, http.MethodGet, path, nil)
		if err == nil {
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return nil, "", fmt.Errorf("read response for %s: %w", path, readErr)
			}
			return data, findNextPage(resp.Header.Get("Link")), nil
		}

		kind, wait := classifyRateLimit(err)
		switch kind {
		case LimitPrimary:
			if primaryLeft == 0 {
				return nil, "", err
			}
			primaryLeft--
		case LimitSecondary:
			if secondaryLeft == 0 {
				return nil, "", err
			}
			secondaryLeft--
		default:
			return nil, "", err
		}

		if c.onWait != nil {
			c.onWait(kind, wait)
		}
		if err := c.sleep(ctx, wait); err != nil {
			return nil, "", err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
