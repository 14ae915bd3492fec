package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/goodreader/internal/resolver"
	"github.com/lepinkainen/goodreader/internal/wishlist"
)

var (
	summaryHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("214")).
				MarginTop(1)

	summaryGoodStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("114"))

	summaryWarnStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("178"))

	summaryDimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// FormatSummary builds the end-of-run terminal report: totals, the entries
// that matched nothing, the entries with no copy on the shelf anywhere, and
// where the covers came from.
func FormatSummary(summary *resolver.Summary, coverSources map[string]int) string {
	var b strings.Builder

	total := len(summary.Results)
	found := total - len(summary.NotFound)
	available := found - len(summary.NoneAvailable)

	b.WriteString(summaryHeaderStyle.Render("Results"))
	b.WriteString("\n")
	b.WriteString(summaryGoodStyle.Render(fmt.Sprintf("%d of %d books matched a catalog record, %d available somewhere", found, total, available)))
	b.WriteString("\n")

	if len(summary.NotFound) > 0 {
		b.WriteString(summaryHeaderStyle.Render("Not found in the catalog"))
		b.WriteString("\n")
		writeEntryList(&b, summary.NotFound)
	}

	if len(summary.NoneAvailable) > 0 {
		b.WriteString(summaryHeaderStyle.Render("Found but no copies available"))
		b.WriteString("\n")
		writeEntryList(&b, summary.NoneAvailable)
	}

	if len(coverSources) > 0 {
		b.WriteString(summaryHeaderStyle.Render("Cover sources"))
		b.WriteString("\n")
		sources := make([]string, 0, len(coverSources))
		for source := range coverSources {
			sources = append(sources, source)
		}
		sort.Strings(sources)
		for _, source := range sources {
			b.WriteString(summaryDimStyle.Render(fmt.Sprintf("  %s: %d", source, coverSources[source])))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func writeEntryList(b *strings.Builder, entries []wishlist.Entry) {
	for _, entry := range entries {
		b.WriteString(summaryWarnStyle.Render(fmt.Sprintf("  %s: %s", entry.Author, entry.Title)))
		b.WriteString("\n")
	}
}
