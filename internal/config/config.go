package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/altin/gh-actions-cost/internal/api"
	"github.com/altin/gh-actions-cost/internal/billing"
)

const (
	dayLayout       = "2006-01-02"
	DefaultDays     = 30
	DefaultCacheTTL = time.Hour
)

// Config is one invocation's fully resolved settings. Flags win over the
// config file, which wins over defaults.
type Config struct {
	Org         string
	Host        string
	Window      api.Window
	Concurrency int
	Mappings    []billing.LabelMapping

	CacheEnabled bool
	CacheTTL     time.Duration
	CacheDir     string

	Format     string // table, json, csv
	GroupBy    string // day, week, month
	NoProgress bool
}

func (c *Config) Validate() error {
	if c.Org == "" {
		return fmt.Errorf("organization is required (use --org)")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	switch c.Format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("unsupported format %q (want table, json, or csv)", c.Format)
	}
	switch c.GroupBy {
	case "day", "week", "month":
	default:
		return fmt.Errorf("unsupported group-by %q (want day, week, or month)", c.GroupBy)
	}
	for i, m := range c.Mappings {
		if m.Pattern == "" {
			return fmt.Errorf("label mapping with empty pattern")
		}
		os, err := billing.ParseOS(string(m.OS))
		if err != nil {
			return fmt.Errorf("label mapping %q: %w", m.Pattern, err)
		}
		// File-sourced mappings may spell the OS in any case; detection
		// compares against the canonical lowercase tokens.
		c.Mappings[i].OS = os
	}
	return nil
}

// ParseMapping parses one "pattern:os" flag value.
func ParseMapping(s string) (billing.LabelMapping, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return billing.LabelMapping{}, fmt.Errorf("invalid label mapping %q (want pattern:os)", s)
	}
	os, err := billing.ParseOS(parts[1])
	if err != nil {
		return billing.LabelMapping{}, fmt.Errorf("label mapping %q: %w", s, err)
	}
	return billing.LabelMapping{Pattern: parts[0], OS: os}, nil
}

func ParseMappings(values []string) ([]billing.LabelMapping, error) {
	var out []billing.LabelMapping
	for _, v := range values {
		m, err := ParseMapping(v)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ParseWindow resolves the reporting range. Explicit start/end dates win;
// otherwise the window is the trailing days ending today (UTC).
func ParseWindow(start, end string, days int) (api.Window, error) {
	if start != "" || end != "" {
		if start == "" || end == "" {
			return api.Window{}, fmt.Errorf("--start and --end must be given together")
		}
		s, err := time.ParseInLocation(dayLayout, start, time.UTC)
		if err != nil {
			return api.Window{}, fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", start)
		}
		e, err := time.ParseInLocation(dayLayout, end, time.UTC)
		if err != nil {
			return api.Window{}, fmt.Errorf("invalid end date %q (want YYYY-MM-DD)", end)
		}
		if e.Before(s) {
			return api.Window{}, fmt.Errorf("end date %s is before start date %s", end, start)
		}
		return api.Window{Start: s, End: e}, nil
	}

	if days < 1 {
		days = DefaultDays
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return api.Window{Start: today.AddDate(0, 0, -(days - 1)), End: today}, nil
}

// fileConfig is the optional YAML config file shape.
type fileConfig struct {
	Host        string                 `yaml:"host"`
	Org         string                 `yaml:"org"`
	Concurrency int                    `yaml:"concurrency"`
	Mappings    []billing.LabelMapping `yaml:"mappings"`
	Cache       struct {
		Enabled *bool  `yaml:"enabled"`
		TTL     string `yaml:"ttl"`
		Dir     string `yaml:"dir"`
	} `yaml:"cache"`
}

// ApplyFile merges the YAML file at path into c, filling only fields the
// flags left unset. File mappings append after flag mappings so explicit
// flags keep priority.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if c.Org == "" {
		c.Org = f.Org
	}
	if c.Host == "" {
		c.Host = f.Host
	}
	if c.Concurrency == 0 && f.Concurrency > 0 {
		c.Concurrency = f.Concurrency
	}
	c.Mappings = append(c.Mappings, f.Mappings...)
	if f.Cache.Enabled != nil {
		c.CacheEnabled = *f.Cache.Enabled
	}
	if f.Cache.TTL != "" {
		ttl, err := time.ParseDuration(f.Cache.TTL)
		if err != nil {
			return fmt.Errorf("parse cache ttl %q: %w", f.Cache.TTL, err)
		}
		c.CacheTTL = ttl
	}
	if f.Cache.Dir != "" {
		c.CacheDir = f.Cache.Dir
	}
	return nil
}
