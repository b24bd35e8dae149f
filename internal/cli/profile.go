package cli

import (
	"fmt"
	"strings"

	"github.com/purestream711/PureStream-sub004/internal/models"
	"github.com/spf13/cobra"
)

var (
	profileName      string
	profileLibraries []string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage viewer profiles",
}

var profileCreateCmd = &cobra.Command{
	Use:   "create <profile-id>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileCreate,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfileList,
}

func init() {
	profileCreateCmd.Flags().StringVar(&profileName, "name", "", "Display name (defaults to the id)")
	profileCreateCmd.Flags().StringSliceVar(&profileLibraries, "library", nil, "Selected library id (repeatable)")
	profileCmd.AddCommand(profileCreateCmd)
	profileCmd.AddCommand(profileListCmd)
}

func runProfileCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return trackCLIError("profile create", err)
	}
	defer a.Close()

	name := profileName
	if name == "" {
		name = args[0]
	}
	p := &models.Profile{ID: args[0], Name: name, SelectedLibraries: profileLibraries}
	if err := a.db.CreateProfile(p); err != nil {
		return trackCLIError("profile create", fmt.Errorf("create profile: %w", err))
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created profile %s.\n", p.ID)
	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return trackCLIError("profile list", err)
	}
	defer a.Close()

	profiles, err := a.db.ListProfiles()
	if err != nil {
		return trackCLIError("profile list", fmt.Errorf("list profiles: %w", err))
	}
	out := cmd.OutOrStdout()
	if len(profiles) == 0 {
		_, _ = fmt.Fprintln(out, "No profiles yet. Use 'purestream profile create <id>'.")
		return nil
	}

	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		curated := "never"
		if p.LastCurationAt != nil {
			curated = formatTimeSince(*p.LastCurationAt)
		}
		rows = append(rows, []string{p.ID, p.Name, strings.Join(p.SelectedLibraries, ","), curated})
	}
	_, _ = fmt.Fprintln(out, renderTable([]string{"ID", "NAME", "LIBRARIES", "CURATED"}, rows, nil))
	return nil
}
