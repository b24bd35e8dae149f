// Package cli provides the command-line interface for PureStream.
package cli

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/purestream711/PureStream-sub004/internal/curation"
	"github.com/purestream711/PureStream-sub004/internal/telemetry"
	"github.com/purestream711/PureStream-sub004/pkg/version"
	"github.com/spf13/cobra"
)

var telemetryClient telemetry.Client = telemetry.NewNoop()

var commandStartTime time.Time

var rootCmd = &cobra.Command{
	Use:   "purestream",
	Short: "Offline-first catalog cache and AI curation",
	Long: `Offline-first catalog cache and AI curation

Keeps a local cache of your media libraries, asks a recommendation model for
titles per category, matches them against the cache and builds each profile's
dashboard collections.

Configuration:
  $PURESTREAM_HOME/config.yaml, or PURESTREAM_* environment variables.
  Provider keys: ANTHROPIC_API_KEY, OPENAI_API_KEY, OPENROUTER_API_KEY.

Telemetry:
  Telemetry is enabled by default, always anonymous, and will never track
  profile names, titles, or IP addresses.

  Opt-out with:
  	PURESTREAM_TELEMETRY_TRACKING_ENABLED=false`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commandStartTime = time.Now()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() != "purestream" {
			durationMs := time.Since(commandStartTime).Milliseconds()
			hasFlags := cmd.Flags().NFlag() > 0
			telemetryClient.TrackCLICommandExecuted(cmd.CommandPath(), hasFlags, durationMs)
		}

		if cmd.Flags().Changed("help") {
			telemetryClient.TrackCLIHelpViewed(cmd.Name(), os.Args[1:])
		}
	},
}

func init() {
	rootCmd.AddCommand(curateCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(profileCmd)
}

// Execute runs the CLI with fang enhancements.
func Execute(ctx context.Context, tc telemetry.Client) error {
	if tc == nil {
		tc = telemetry.New(nil)
	}
	telemetryClient = tc

	return fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(version.Short()),
		fang.WithCommit(version.ShortCommit()),
	)
}

// trackCLIError wraps an error with telemetry tracking.
// Call this before returning errors from CLI commands.
func trackCLIError(cmdName string, err error) error {
	if err == nil {
		return nil
	}
	telemetryClient.TrackCLIError(cmdName, classifyError(err))
	return err
}

// classifyError determines the error type for telemetry.
func classifyError(err error) string {
	if kind := curation.KindOf(err); kind != 0 {
		return kind.String()
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, curation.ErrBusy):
		return "busy"
	}

	errStr := err.Error()
	switch {
	case containsAny(errStr, "config", "configuration"):
		return "config_error"
	case containsAny(errStr, "database", "db"):
		return "database_error"
	case containsAny(errStr, "network", "timeout", "connection"):
		return "network_error"
	case containsAny(errStr, "permission", "access denied"):
		return "permission_error"
	case containsAny(errStr, "not found", "does not exist"):
		return "not_found_error"
	case containsAny(errStr, "invalid", "parse", "format"):
		return "validation_error"
	default:
		return "unknown_error"
	}
}

// containsAny checks if s contains any of the substrings (case-insensitive).
func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
