package cli

import (
	"fmt"

	"github.com/purestream711/PureStream-sub004/internal/catalog"
	"github.com/spf13/cobra"
)

var (
	syncFrom  string
	syncForce bool
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local catalog cache",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync <profile-id>",
	Short: "Refresh the profile's libraries from a catalog export",
	Long: `Refresh stale libraries from a catalog export directory.

The directory holds libraries.json ([{"id","title","type"}]) and one
<library-id>.json item list per library. Only the profile's selected
libraries are pulled; a profile with no selection selects every library.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogSync,
}

func init() {
	catalogSyncCmd.Flags().StringVar(&syncFrom, "from", "", "Catalog export directory (required)")
	catalogSyncCmd.Flags().BoolVar(&syncForce, "force", false, "Refresh even when the cache is fresh")
	_ = catalogSyncCmd.MarkFlagRequired("from")
	catalogCmd.AddCommand(catalogSyncCmd)
}

func runCatalogSync(cmd *cobra.Command, args []string) error {
	profileID := args[0]
	a, err := openApp()
	if err != nil {
		return trackCLIError("catalog sync", err)
	}
	defer a.Close()

	profile, err := a.db.GetProfile(profileID)
	if err != nil {
		return trackCLIError("catalog sync", err)
	}

	svc := a.catalogService(catalog.NewFileRemote(syncFrom))
	libs, err := svc.Libraries(cmd.Context(), profileID, syncForce)
	if err != nil {
		return trackCLIError("catalog sync", fmt.Errorf("list libraries: %w", err))
	}

	if len(profile.SelectedLibraries) == 0 {
		for _, lib := range libs {
			profile.SelectedLibraries = append(profile.SelectedLibraries, lib.ID)
		}
		if err := a.db.UpdateProfile(profile); err != nil {
			return trackCLIError("catalog sync", fmt.Errorf("select libraries: %w", err))
		}
	}
	selected := make(map[string]bool, len(profile.SelectedLibraries))
	for _, id := range profile.SelectedLibraries {
		selected[id] = true
	}

	out := cmd.OutOrStdout()
	rows := [][]string{}
	for _, lib := range libs {
		if !selected[lib.ID] {
			continue
		}
		res, err := svc.Refresh(cmd.Context(), profileID, lib, syncForce)
		if err != nil {
			return trackCLIError("catalog sync", fmt.Errorf("refresh %s: %w", lib.ID, err))
		}
		telemetryClient.TrackCatalogSynced(res.Count, res.Evicted, res.FromCache)

		source := "remote"
		if res.FromCache {
			source = "cache"
		}
		rows = append(rows, []string{lib.ID, lib.Title, string(lib.Type), fmt.Sprintf("%d", res.Count), fmt.Sprintf("%d", res.Evicted), source})
	}

	_, _ = fmt.Fprintln(out, renderTable(
		[]string{"LIBRARY", "TITLE", "TYPE", "ITEMS", "EVICTED", "SOURCE"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
	))
	return nil
}
