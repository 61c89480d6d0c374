package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/altin/gh-actions-cost/internal/billing"
	"github.com/altin/gh-actions-cost/internal/model"
)

func validConfig() Config {
	return Config{
		Org:         "acme",
		Concurrency: 5,
		CacheTTL:    time.Hour,
		Format:      "table",
		GroupBy:     "day",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing org", func(c *Config) { c.Org = "" }, "organization is required"},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "concurrency"},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, "ttl"},
		{"bad format", func(c *Config) { c.Format = "xml" }, "unsupported format"},
		{"bad group-by", func(c *Config) { c.GroupBy = "year" }, "unsupported group-by"},
		{"empty mapping pattern", func(c *Config) {
			c.Mappings = []billing.LabelMapping{{Pattern: "", OS: billing.OSLinux}}
		}, "empty pattern"},
		{"bad mapping os", func(c *Config) {
			c.Mappings = []billing.LabelMapping{{Pattern: "x-*", OS: "solaris"}}
		}, "x-*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseMapping(t *testing.T) {
	tests := []struct {
		in      string
		want    billing.LabelMapping
		wantErr bool
	}{
		{in: "self-hosted-*:linux", want: billing.LabelMapping{Pattern: "self-hosted-*", OS: billing.OSLinux}},
		{in: "gpu:windows", want: billing.LabelMapping{Pattern: "gpu", OS: billing.OSWindows}},
		{in: "build:farm:macos", wantErr: true},
		{in: "no-os", wantErr: true},
		{in: ":linux", wantErr: true},
		{in: "pattern:", wantErr: true},
		{in: "x:beos", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMapping(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMapping(%q) = %+v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMapping(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMapping(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseWindowExplicit(t *testing.T) {
	w, err := ParseWindow("2026-08-01", "2026-08-31", 0)
	if err != nil {
		t.Fatal(err)
	}
	if w.CreatedQuery() != "2026-08-01..2026-08-31" {
		t.Errorf("window = %s", w.CreatedQuery())
	}
	if w.Start.Location() != time.UTC {
		t.Error("window dates must be UTC")
	}
}

func TestParseWindowErrors(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"start without end", "2026-08-01", ""},
		{"end without start", "", "2026-08-31"},
		{"end before start", "2026-08-31", "2026-08-01"},
		{"garbage start", "august", "2026-08-31"},
		{"garbage end", "2026-08-01", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseWindow(tt.start, tt.end, 0); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseWindowTrailingDays(t *testing.T) {
	w, err := ParseWindow("", "", 7)
	if err != nil {
		t.Fatal(err)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !w.End.Equal(today) {
		t.Errorf("End = %v, want today %v", w.End, today)
	}
	if !w.Start.Equal(today.AddDate(0, 0, -6)) {
		t.Errorf("Start = %v, want %v", w.Start, today.AddDate(0, 0, -6))
	}
}

func TestParseWindowDefaultDays(t *testing.T) {
	w, err := ParseWindow("", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if !w.Start.Equal(today.AddDate(0, 0, -(DefaultDays - 1))) {
		t.Errorf("Start = %v, want %d trailing days", w.Start, DefaultDays)
	}
}

func TestApplyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gha-cost.yml")
	content := `
host: ghe.example.com
org: file-org
concurrency: 8
mappings:
  - pattern: "self-hosted-*"
    os: linux
cache:
  enabled: false
  ttl: 30m
  dir: /tmp/gha-cost-cache
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("fills unset fields", func(t *testing.T) {
		c := Config{CacheEnabled: true}
		if err := c.ApplyFile(path); err != nil {
			t.Fatal(err)
		}
		if c.Org != "file-org" || c.Host != "ghe.example.com" || c.Concurrency != 8 {
			t.Errorf("merged config = %+v", c)
		}
		if c.CacheEnabled {
			t.Error("cache.enabled=false in file was not applied")
		}
		if c.CacheTTL != 30*time.Minute || c.CacheDir != "/tmp/gha-cost-cache" {
			t.Errorf("cache settings = ttl %v dir %q", c.CacheTTL, c.CacheDir)
		}
	})

	t.Run("flags win", func(t *testing.T) {
		c := Config{
			Org:         "flag-org",
			Host:        "github.com",
			Concurrency: 3,
			Mappings:    []billing.LabelMapping{{Pattern: "gpu-*", OS: billing.OSWindows}},
		}
		if err := c.ApplyFile(path); err != nil {
			t.Fatal(err)
		}
		if c.Org != "flag-org" || c.Host != "github.com" || c.Concurrency != 3 {
			t.Errorf("flag values overridden: %+v", c)
		}
		// Flag mappings stay first so they match before file ones.
		if len(c.Mappings) != 2 || c.Mappings[0].Pattern != "gpu-*" {
			t.Errorf("mappings = %+v", c.Mappings)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var c Config
		if err := c.ApplyFile(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("bad yaml", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yml")
		os.WriteFile(bad, []byte("org: [unclosed"), 0o644)
		var c Config
		if err := c.ApplyFile(bad); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})

	t.Run("mixed-case os is normalized", func(t *testing.T) {
		mixed := filepath.Join(t.TempDir(), "mixed.yml")
		os.WriteFile(mixed, []byte("org: acme\nmappings:\n  - pattern: \"runner-*\"\n    os: Linux\n"), 0o644)
		c := validConfig()
		if err := c.ApplyFile(mixed); err != nil {
			t.Fatal(err)
		}
		if err := c.Validate(); err != nil {
			t.Fatal(err)
		}
		if got := c.Mappings[0].OS; got != billing.OSLinux {
			t.Fatalf("mapping OS = %q, want %q", got, billing.OSLinux)
		}
		// A matching job must land in the fixed linux bucket, not a
		// casing variant the aggregate has no bucket for.
		started := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
		completed := started.Add(time.Minute)
		job := model.Job{
			ID: 1, RunID: 1, StartedAt: started, CompletedAt: &completed,
			Labels: []string{"runner-42"}, RepoFullName: "acme/web", WorkflowName: "ci",
		}
		agg := billing.Aggregate([]model.Job{job}, c.Mappings)
		if agg.ByOS[billing.OSLinux].JobCount != 1 {
			t.Errorf("linux bucket = %+v", agg.ByOS[billing.OSLinux])
		}
	})

	t.Run("bad ttl", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "ttl.yml")
		os.WriteFile(bad, []byte("cache:\n  ttl: forever\n"), 0o644)
		var c Config
		if err := c.ApplyFile(bad); err == nil {
			t.Error("expected error for unparsable ttl")
		}
	})
}
