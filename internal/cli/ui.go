package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1F4E79"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B")).
			Bold(true)

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6"))
)

// written is one artifact saved to disk.
type written struct {
	artifact *report.Artifact
	path     string
}

func printSummary(w io.Writer, result *models.AnalysisResult, files []written) {
	fmt.Fprintln(w, titleStyle.Render("CRE Underwriting Report"))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Property:"), result.PropertyInfo.Address)

	status := passStyle.Render("PASS")
	if result.Recommendation == models.RecommendationFail {
		status = failStyle.Render("FAIL")
	}
	fmt.Fprintf(w, "%s %s (%d%% confidence)\n", labelStyle.Render("Status:"), status, result.ConfidenceScore)

	for _, f := range files {
		fmt.Fprintf(w, "  %s %-11s %s (%d bytes)\n",
			passStyle.Render("✓"), f.artifact.Format.Label(), pathStyle.Render(f.path), len(f.artifact.Data))
		if f.artifact.Overflow {
			fmt.Fprintf(w, "  %s %s content ran past the page; %d risk factors may be cut off\n",
				warnStyle.Render("!"), f.artifact.Format.Label(), len(result.RiskFactors))
		}
	}
}
