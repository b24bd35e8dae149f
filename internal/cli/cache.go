package cli

import (
	"fmt"
	"sort"

	"github.com/purestream711/PureStream-sub004/internal/cache"
	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/spf13/cobra"
)

var clearCatalog bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear cached state",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status [profile-id]",
	Short: "Show cache metadata and freshness",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheStatus,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <profile-id>",
	Short: "Drop a profile's cached collections and metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheClear,
}

func init() {
	cacheClearCmd.Flags().BoolVar(&clearCatalog, "catalog", false, "Also drop the profile's cached catalog")
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStatus(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return trackCLIError("cache status", err)
	}
	defer a.Close()

	profileID := ""
	if len(args) == 1 {
		profileID = args[0]
	}
	rows, err := a.db.ListMetadata(profileID)
	if err != nil {
		return trackCLIError("cache status", fmt.Errorf("list metadata: %w", err))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, "Nothing cached yet.")
		return nil
	}

	policy := cache.NewPolicy()
	table := make([][]string, 0, len(rows))
	for _, m := range rows {
		state := "fresh"
		if policy.MetadataNeedsRefresh(&m, false) {
			state = "stale"
		}
		table = append(table, []string{
			m.Key,
			string(m.CacheType),
			formatTimeSince(m.LastRefreshed),
			fmt.Sprintf("%d", m.ItemCount),
			cache.TTLFor(m.CacheType).String(),
			state,
		})
	}
	_, _ = fmt.Fprintln(out, renderTable(
		[]string{"KEY", "TYPE", "REFRESHED", "ITEMS", "TTL", "STATE"},
		table,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))

	if profileID != "" {
		if counts, err := a.catalogService(nil).Counts(profileID); err == nil {
			_, _ = fmt.Fprintf(out, "Catalog: %d movies, %d shows\n", counts[models.MediaTypeMovie], counts[models.MediaTypeShow])
		}
	}

	stats, err := a.db.GetStats()
	if err == nil {
		_, _ = fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d profiles, %d collection entries, %d KiB",
			stats.Profiles, stats.Entries, stats.DatabaseBytes/1024)))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	profileID := args[0]
	a, err := openApp()
	if err != nil {
		return trackCLIError("cache clear", err)
	}
	defer a.Close()

	if _, err := a.db.GetProfile(profileID); err != nil {
		return trackCLIError("cache clear", err)
	}
	if err := a.db.ClearForProfile(profileID); err != nil {
		return trackCLIError("cache clear", fmt.Errorf("clear cache: %w", err))
	}
	scope := "collections"
	if clearCatalog {
		if err := a.catalogService(nil).InvalidateProfile(profileID); err != nil {
			return trackCLIError("cache clear", fmt.Errorf("clear catalog: %w", err))
		}
		scope = "collections+catalog"
	}
	telemetryClient.TrackCacheCleared(scope)

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s for %s.\n", scope, profileID)
	return nil
}
