package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

type LimitKind int

const (
	LimitNone LimitKind = iota
	// LimitPrimary means the hourly quota is exhausted; the reset headers
	// say when it comes back.
	LimitPrimary
	// LimitSecondary is the abuse-detection throttle tripped by bursts.
	// It gets a smaller retry budget than the primary limit.
	LimitSecondary
)

const (
	primaryAttempts   = 3
	secondaryAttempts = 2

	// Used when the server gives no usable reset hint.
	defaultLimitWait = 60 * time.Second
)

func (k LimitKind) String() string {
	switch k {
	case LimitPrimary:
		return "primary"
	case LimitSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// classifyRateLimit inspects a request error for GitHub's rate-limit
// signals and returns how long to wait before retrying. 403 and 429 are the
// only carriers; anything else is not a rate limit.
func classifyRateLimit(err error) (LimitKind, time.Duration) {
	var httpErr *ghAPI.HTTPError
	if !errors.As(err, &httpErr) {
		return LimitNone, 0
	}
	if httpErr.StatusCode != http.StatusForbidden && httpErr.StatusCode != http.StatusTooManyRequests {
		return LimitNone, 0
	}

	if httpErr.Headers.Get("X-Ratelimit-Remaining") == "0" {
		return LimitPrimary, waitHint(httpErr.Headers)
	}

	msg := strings.ToLower(httpErr.Message)
	if httpErr.Headers.Get("Retry-After") != "" ||
		strings.Contains(msg, "secondary rate limit") ||
		strings.Contains(msg, "abuse") ||
		httpErr.StatusCode == http.StatusTooManyRequests {
		return LimitSecondary, waitHint(httpErr.Headers)
	}
	return LimitNone, 0
}

// waitHint extracts the server's retry hint: Retry-After seconds first,
// then the X-Ratelimit-Reset epoch.
func waitHint(h http.Header) time.Duration {
	if ra := h.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	if reset := h.Get("X-Ratelimit-Reset"); reset != "" {
		if unix, err := strconv.ParseInt(reset, 10, 64); err == nil {
			if d := time.Until(time.Unix(unix, 0)); d > 0 {
				return d
			}
		}
	}
	return defaultLimitWait
}

// isIgnorable reports whether a listing error means the entity simply has
// no accessible Actions data: deleted repos, private repos the token cannot
// see, and repos with Actions disabled all land here.
func isIgnorable(err error) bool {
	var httpErr *ghAPI.HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	switch httpErr.StatusCode {
	case http.StatusNotFound, http.StatusForbidden, http.StatusConflict:
		return true
	}
	return false
}
