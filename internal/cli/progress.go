package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/purestream711/PureStream-sub004/internal/curation"
)

// ProgressBar renders curation stage progress.
type ProgressBar struct {
	completed int
	total     int
	label     string
	width     int
}

// NewProgressBar creates a new progress bar with the specified total and width.
func NewProgressBar(total int, width int) *ProgressBar {
	if width <= 0 {
		width = 15
	}
	return &ProgressBar{
		total: total,
		width: width,
	}
}

// Update sets the current progress and label.
func (p *ProgressBar) Update(completed int, label string) {
	p.completed = completed
	p.label = label
}

// Render returns the formatted progress bar string.
func (p *ProgressBar) Render() string {
	if p.total == 0 {
		return ""
	}

	percent := float64(p.completed) / float64(p.total)
	filled := min(int(float64(p.width)*percent), p.width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	progressStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981")).
		Bold(true)

	barStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10B981"))

	countStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B6B6B"))

	return barStyle.Render("["+bar+"]") +
		countStyle.Render(fmt.Sprintf(" %d/%d ", p.completed, p.total)) +
		progressStyle.Render(p.label)
}

// stageProgress maps pipeline stages onto bar steps.
var stageProgress = map[curation.Stage]int{
	curation.StageFetchingCandidates: 1,
	curation.StageMatching:           2,
	curation.StagePersisting:         3,
	curation.StageSelectingFeatured:  4,
	curation.StageUpdatingProfile:    5,
	curation.StageDone:               6,
}

// clearLine clears the current line for in-place progress updates.
func clearLine(w io.Writer) {
	_, _ = fmt.Fprint(w, "\r\033[K")
}
