package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/altin/gh-actions-cost/internal/api"
	"github.com/altin/gh-actions-cost/internal/billing"
	"github.com/altin/gh-actions-cost/internal/cache"
	"github.com/altin/gh-actions-cost/internal/config"
	"github.com/altin/gh-actions-cost/internal/fetch"
	"github.com/altin/gh-actions-cost/internal/output"
	"github.com/altin/gh-actions-cost/internal/ui"
)

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}

	store := cache.NewStore(cfg.CacheDir)
	interactive := !cfg.NoProgress && cfg.Format == "table" && isatty.IsTerminal(os.Stderr.Fd())

	var (
		runner     *ui.Runner
		onProgress fetch.Progress
		onWait     api.WaitFunc
	)
	if interactive {
		runner = ui.NewRunner()
		onProgress = runner.OnProgress
		onWait = runner.OnRateLimitWait
	} else {
		onWait = func(kind api.LimitKind, wait time.Duration) {
			color.New(color.FgYellow).Fprintf(os.Stderr, "%s rate limit, waiting %s\n", kind, wait.Round(time.Second))
		}
	}

	client, err := api.NewClient(api.Options{
		Host:            cfg.Host,
		Org:             cfg.Org,
		OnRateLimitWait: onWait,
	})
	if err != nil {
		return err
	}

	orch := fetch.New(client, store, hostKey(cfg.Host), cfg.Org, fetch.Options{
		Concurrency:  cfg.Concurrency,
		CacheEnabled: cfg.CacheEnabled,
		CacheTTL:     cfg.CacheTTL,
	}, onProgress)

	ctx := context.Background()
	var ds *fetch.Dataset
	if interactive {
		err = runner.Run(func() error {
			var fetchErr error
			ds, fetchErr = orch.Fetch(ctx, cfg.Window)
			return fetchErr
		})
	} else {
		ds, err = orch.Fetch(ctx, cfg.Window)
	}
	if err != nil {
		return err
	}

	if msg := zeroWorkMessage(ds, cfg.Window); msg != "" {
		fmt.Println(msg)
		return nil
	}

	agg := billing.Aggregate(ds.Jobs, cfg.Mappings)
	report := output.Build(cfg.Org, cfg.Window, agg, cfg.GroupBy)

	switch cfg.Format {
	case "json":
		return output.RenderJSON(os.Stdout, report)
	case "csv":
		return output.RenderCSV(os.Stdout, report)
	default:
		return output.RenderTable(os.Stdout, report)
	}
}

// zeroWorkMessage returns the informational message for an empty tier, or
// "" when there is data to report.
func zeroWorkMessage(ds *fetch.Dataset, window api.Window) string {
	switch {
	case len(ds.Repos) == 0:
		return "No repositories found in the organization."
	case len(ds.Runs) == 0:
		return fmt.Sprintf("No workflow runs between %s and %s.",
			window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
	case len(ds.Jobs) == 0:
		return "No completed jobs in the requested window."
	default:
		return ""
	}
}

// resolveConfig merges flags, the optional config file, and defaults, in
// that order of precedence, then validates. Everything here fails before
// any network access.
func resolveConfig() (*config.Config, error) {
	mappings, err := config.ParseMappings(flagLabels)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{
		Org:          flagOrg,
		Host:         flagHost,
		Concurrency:  flagConcurrency,
		Mappings:     mappings,
		CacheEnabled: !flagNoCache,
		CacheDir:     flagCacheDir,
		Format:       flagFormat,
		GroupBy:      flagGroupBy,
		NoProgress:   flagNoProgress,
	}
	var flagTTL time.Duration
	if flagCacheTTL != "" {
		flagTTL, err = time.ParseDuration(flagCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("invalid --cache-ttl %q: %w", flagCacheTTL, err)
		}
		cfg.CacheTTL = flagTTL
	}

	if flagConfigFile != "" {
		if err := cfg.ApplyFile(flagConfigFile); err != nil {
			return nil, err
		}
		// Flags always win over the file.
		if flagNoCache {
			cfg.CacheEnabled = false
		}
		if flagCacheTTL != "" {
			cfg.CacheTTL = flagTTL
		}
	}

	if cfg.Concurrency == 0 {
		cfg.Concurrency = fetch.DefaultConcurrency
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = config.DefaultCacheTTL
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = cache.DefaultDir()
	}

	cfg.Window, err = config.ParseWindow(flagStart, flagEnd, flagDays)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func hostKey(host string) string {
	if host == "" {
		return "github.com"
	}
	return host
}
