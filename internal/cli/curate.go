package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"
	"github.com/purestream711/PureStream-sub004/internal/config"
	"github.com/purestream711/PureStream-sub004/internal/curation"
	"github.com/purestream711/PureStream-sub004/internal/llm"
	"github.com/purestream711/PureStream-sub004/internal/recommend"
	"github.com/spf13/cobra"
)

var (
	curateForce      bool
	curateIfStale    bool
	curateBestEffort bool
	curateCandidates string
	curateQuiet      bool
)

var curateCmd = &cobra.Command{
	Use:   "curate <profile-id>",
	Short: "Run AI curation for a profile",
	Long: `Fetch recommendations for every configured category, match them against
the profile's cached catalog and replace its AI dashboard collections.

With --if-stale the run is skipped while the dashboard cache is fresh.
With --candidates the recommendation model is replaced by a JSON file
mapping category ids to [{"title": "...", "year": 1999}] lists.`,
	Args: cobra.ExactArgs(1),
	RunE: runCurate,
}

func init() {
	curateCmd.Flags().BoolVar(&curateForce, "force", false, "Run even when the dashboard cache is fresh (with --if-stale)")
	curateCmd.Flags().BoolVar(&curateIfStale, "if-stale", false, "Skip the run while the dashboard cache is fresh")
	curateCmd.Flags().BoolVar(&curateBestEffort, "best-effort", false, "Keep successful categories when others fail")
	curateCmd.Flags().StringVar(&curateCandidates, "candidates", "", "Read candidates from a JSON file instead of a model")
	curateCmd.Flags().BoolVarP(&curateQuiet, "quiet", "q", false, "Hide stage progress")
}

func runCurate(cmd *cobra.Command, args []string) error {
	profileID := args[0]
	out := cmd.OutOrStdout()

	a, err := openApp()
	if err != nil {
		return trackCLIError("curate", err)
	}
	defer a.Close()

	source, err := buildSource(a.cfg)
	if err != nil {
		return trackCLIError("curate", err)
	}

	policy := curation.ParseFailurePolicy(a.cfg.Curation.FailurePolicy)
	if curateBestEffort {
		policy = curation.BestEffort
	}

	bar := NewProgressBar(len(stageProgress), 18)
	orch := curation.New(a.db, a.catalogService(nil), source, curation.Options{
		Categories:     a.cfg.Curation.Categories,
		CandidateLimit: a.cfg.Curation.CandidateLimit,
		FailurePolicy:  policy,
		LockDir:        a.paths.Locks,
		Logger:         a.logger,
		Telemetry:      telemetryClient,
		Observer: func(_ string, stage curation.Stage) {
			if curateQuiet {
				return
			}
			if step, ok := stageProgress[stage]; ok {
				bar.Update(step, stage.String())
				clearLine(out)
				_, _ = fmt.Fprint(out, bar.Render())
			}
			if stage.Terminal() {
				_, _ = fmt.Fprintln(out)
			}
		},
	})

	var res *curation.Result
	if curateIfStale {
		var ran bool
		res, ran, err = orch.RunIfStale(cmd.Context(), profileID, curateForce)
		if err == nil && !ran {
			_, _ = fmt.Fprintf(out, "Dashboard for %s is fresh; nothing to do.\n", profileID)
			return nil
		}
	} else {
		res, err = orch.Run(cmd.Context(), profileID)
	}
	if err != nil {
		return trackCLIError("curate", err)
	}

	printCurationResult(out, res)
	return nil
}

// buildSource picks the candidate file or the configured model provider.
func buildSource(cfg *config.Config) (recommend.Source, error) {
	if curateCandidates != "" {
		return loadCandidates(curateCandidates)
	}

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return nil, err
	}
	return recommend.NewGuarded(
		recommend.NewLLMSource(provider, recommend.WithModel(cfg.LLM.DefaultModel)),
		guardConfig(cfg),
		nil,
	), nil
}

// guardConfig lets one run fetch every category without waiting on the limiter.
func guardConfig(cfg *config.Config) recommend.GuardConfig {
	gc := recommend.DefaultGuardConfig()
	gc.FailureThreshold = cfg.Curation.BreakerThreshold
	gc.RequestsPerMinute = cfg.Curation.RequestsPerMinute
	gc.Burst = max(gc.Burst, len(cfg.Curation.Categories))
	return gc
}

func loadCandidates(path string) (recommend.StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}
	var src recommend.StaticSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parse candidates %s: %w", path, err)
	}
	return src, nil
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B6B6B"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

func printCurationResult(w io.Writer, res *curation.Result) {
	_, _ = fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("Curated %s", res.ProfileID)))
	for _, c := range res.Categories {
		if c.Err != nil {
			_, _ = fmt.Fprintf(w, "  %s %s\n", c.Category.Title, errorStyle.Render("failed: "+c.Err.Error()))
			continue
		}
		line := fmt.Sprintf("  %-20s %d matched of %d candidates", c.Category.Title, len(c.ItemIDs), c.Candidates)
		if c.Malformed > 0 {
			line += mutedStyle.Render(fmt.Sprintf(" (%d malformed skipped)", c.Malformed))
		}
		_, _ = fmt.Fprintln(w, line)
	}
	if res.FeaturedItemID != nil {
		_, _ = fmt.Fprintf(w, "  Featured: %s\n", *res.FeaturedItemID)
	}
	_, _ = fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("  run %s, %d entries", res.RunID, res.MatchCount())))
}
