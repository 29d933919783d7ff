// Package report: Markdown output, for pasting into a PR description or
// an issue tracker that doesn't render raw HTML.
package report

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownGenerator renders a Report as Markdown.
type MarkdownGenerator struct {
	// IncludeDetails lists every member of each finding; without it, member
	// lists longer than three are cut to the first three plus a total count.
	// The findings table is emitted either way.
	IncludeDetails bool
}

// Generate writes report to w as Markdown.
func (g *MarkdownGenerator) Generate(report *Report, w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Title)
	if report.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", report.Description)
	}
	fmt.Fprintf(&b, "- Corpus: `%s`\n", report.CorpusSource)
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Version: %s\n\n", report.Version)

	fmt.Fprintf(&b, "## Statistics\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total items | %d |\n", report.Statistics.TotalItems)
	fmt.Fprintf(&b, "| Duplicate groups | %d |\n", report.Statistics.DuplicateGroups)
	fmt.Fprintf(&b, "| Items in duplicate groups | %d |\n", report.Statistics.ItemsInDuplicateGroups)
	fmt.Fprintf(&b, "| Largest group | %d |\n", report.Statistics.LargestGroupSize)
	fmt.Fprintf(&b, "| Build duration | %s |\n", report.Statistics.BuildDuration)
	fmt.Fprintf(&b, "| Queries run | %d |\n\n", report.Statistics.QueryCount)

	fmt.Fprintf(&b, "## Findings (%d)\n\n", len(report.Findings))
	if len(report.Findings) == 0 {
		fmt.Fprintf(&b, "No near-duplicate groups found.\n")
	} else {
		fmt.Fprintf(&b, "| ID | Algorithm | Confidence | Similarity | Members |\n|---|---|---|---|---|\n")
		for _, f := range report.Findings {
			members := strings.Join(f.Members, ", ")
			if !g.IncludeDetails && len(f.Members) > 3 {
				members = fmt.Sprintf("%s, ... (%d total)", strings.Join(f.Members[:3], ", "), len(f.Members))
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %.1f%% | %s |\n",
				f.ID, f.Algorithm, f.Confidence, f.EstimatedSimilarity*100, members)
		}
	}

	_, err := w.Write([]byte(b.String()))
	return err
}

// Extension returns the file extension.
func (g *MarkdownGenerator) Extension() string {
	return "md"
}
