package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/altin/gh-actions-cost/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached fetch results",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count, size, and age",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.NewStore(cacheDir())
		st := store.Stats()
		fmt.Printf("Entries: %d\n", st.Count)
		fmt.Printf("Size:    %s\n", formatBytes(st.Bytes))
		if st.Count > 0 {
			fmt.Printf("Oldest:  %s\n", st.OldestAge.Round(time.Second))
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached fetch results",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := cache.NewStore(cacheDir())
		count, bytes := store.Clear()
		fmt.Printf("Removed %d entries (%s)\n", count, formatBytes(bytes))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func cacheDir() string {
	if flagCacheDir != "" {
		return flagCacheDir
	}
	return cache.DefaultDir()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
