package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/purestream711/PureStream-sub004/internal/dashboard"
	"github.com/spf13/cobra"
)

var outputJSON bool

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <profile-id>",
	Short: "Show a profile's dashboard from the cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runDashboard,
}

var collectionCmd = &cobra.Command{
	Use:   "collection <profile-id> <collection-id>",
	Short: "List the cached items of one dashboard collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runCollection,
}

func init() {
	dashboardCmd.Flags().BoolVar(&outputJSON, "json", false, "Print JSON")
	collectionCmd.Flags().BoolVar(&outputJSON, "json", false, "Print JSON")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return trackCLIError("dashboard", err)
	}
	defer a.Close()

	view, err := dashboard.NewService(a.db, a.catalogService(nil)).Dashboard(cmd.Context(), args[0])
	if err != nil {
		return trackCLIError("dashboard", err)
	}
	telemetryClient.TrackDashboardViewed(len(view.Collections), view.Stale)

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), view)
	}
	renderDashboard(cmd.OutOrStdout(), view)
	return nil
}

func runCollection(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return trackCLIError("collection", err)
	}
	defer a.Close()

	view, err := dashboard.NewService(a.db, a.catalogService(nil)).Collection(cmd.Context(), args[0], args[1])
	if err != nil {
		return trackCLIError("collection", err)
	}

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), view)
	}

	rows := make([][]string, 0, len(view.Items))
	for i, item := range view.Items {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), item.Title, yearString(item.Year), string(item.Type), item.ID})
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, headingStyle.Render(view.Collection.Title))
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(out, mutedStyle.Render("  no cached items"))
		return nil
	}
	_, _ = fmt.Fprintln(out, renderTable([]string{"#", "TITLE", "YEAR", "TYPE", "ID"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignRight}))
	if view.Missing > 0 {
		_, _ = fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("%d cached entries no longer in the catalog", view.Missing)))
	}
	return nil
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#10B981")).
			Padding(0, 1)
	aiBadge = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F59E0B")).
		Bold(true).
		Render("AI")
)

func renderDashboard(w io.Writer, view *dashboard.View) {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Dashboard: " + view.ProfileID))
	b.WriteString("\n")

	if view.Featured != nil {
		fmt.Fprintf(&b, "Featured: %s (%s)\n", view.Featured.Title, yearString(view.Featured.Year))
	} else if view.FeaturedItemID != nil {
		fmt.Fprintf(&b, "Featured: %s\n", *view.FeaturedItemID)
	}

	for _, c := range view.Collections {
		line := fmt.Sprintf("%d. %s", c.Order+1, c.Title)
		if c.IsAI() {
			line += " " + aiBadge + mutedStyle.Render(fmt.Sprintf(" %d items", c.ItemCount))
		}
		b.WriteString(line + "\n")
	}

	status := "never curated"
	if view.LastCuration != nil {
		status = "curated " + formatTimeSince(*view.LastCuration)
	}
	if view.Stale {
		status += ", stale"
	}
	b.WriteString(mutedStyle.Render(status))

	_, _ = fmt.Fprintln(w, cardStyle.Render(b.String()))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
