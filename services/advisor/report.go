package advisor

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

const barWidth = 24

// bar renders a signed magnitude as a unicode bar, scaled against the
// largest gap in the report.
func bar(value, max float64) string {
	if max == 0 {
		return ""
	}
	n := int(math.Round(math.Abs(value) / max * barWidth))
	if n == 0 && value != 0 {
		n = 1
	}
	rendered := strings.Repeat("█", n)
	if value < 0 {
		return "-" + rendered
	}
	return rendered
}

// RenderReport writes the suggestion comparison as a table, the
// terminal stand-in for the original bar chart: one row per feature,
// ranked by how far the campaign falls short of the top-funded cohort.
func RenderReport(w io.Writer, report Report) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)

	t.SetTitle(fmt.Sprintf(
		"%s — funding success probability %.1f%%",
		report.Title, report.Probability*100,
	))
	t.AppendHeader(table.Row{"feature", "strength", "top cohort", "gap", ""})

	maxGap := 0.0
	for _, s := range report.Suggestions {
		if math.Abs(s.Gap) > maxGap {
			maxGap = math.Abs(s.Gap)
		}
	}

	for _, s := range report.Suggestions {
		t.AppendRow(table.Row{
			s.Feature,
			fmt.Sprintf("%.3f", s.Strength),
			fmt.Sprintf("%.3f", s.Reference),
			fmt.Sprintf("%+.3f", s.Gap),
			bar(s.Gap, maxGap),
		})
	}

	t.Render()
}

// FormatReportText renders the report as plain text for email
// delivery.
func FormatReportText(report Report) string {
	var out strings.Builder
	fmt.Fprintf(&out, "Campaign: %s\n", report.Title)
	fmt.Fprintf(&out, "Url: %s\n", report.Url)
	fmt.Fprintf(&out, "Funding success probability: %.1f%%\n\n", report.Probability*100)
	out.WriteString("Largest gaps against the top-funded cohort:\n")

	for _, s := range report.Suggestions {
		fmt.Fprintf(
			&out, "  %-26s strength %+.3f, top cohort %+.3f, gap %+.3f\n",
			s.Feature, s.Strength, s.Reference, s.Gap,
		)
	}
	return out.String()
}
