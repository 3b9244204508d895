// Package render produces the human-readable markdown view of a valuation
// report. Formatting only: every number is printed as computed, no rounding
// of the underlying report.
package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"stock_valuation/pkg/core/report"
	"stock_valuation/pkg/core/valuation"
)

// Markdown renders the report as a markdown document.
func Markdown(rep *report.Report) string {
	var b strings.Builder

	name := rep.Symbol
	if rep.Profile != nil && rep.Profile.Name != "" {
		name = fmt.Sprintf("%s (%s)", rep.Profile.Name, rep.Symbol)
	}
	fmt.Fprintf(&b, "# Valuation Report: %s\n\n", name)
	fmt.Fprintf(&b, "Generated %s · report %s\n\n", rep.GeneratedAt.Format("2006-01-02 15:04 MST"), rep.ID)

	if rep.Profile != nil {
		fmt.Fprintf(&b, "Sector: %s · Industry: %s", rep.Profile.Sector, rep.Profile.Industry)
		if cap := rep.Profile.MarketCap; cap != nil {
			fmt.Fprintf(&b, " · Market cap: %s", money(*cap))
		}
		b.WriteString("\n\n")
	}

	b.WriteString("## Valuation models\n\n")
	b.WriteString("| Model | Intrinsic value | Current price | Upside | Bearish | Bullish |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, res := range []*valuation.Result{rep.Valuations.DCF, rep.Valuations.Comparable, rep.Valuations.DDM} {
		if res == nil {
			continue
		}
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.1f%% | %.2f | %.2f |\n",
			res.Model, res.IntrinsicValue, res.CurrentPrice, res.Upside*100,
			res.Scenarios.Bearish, res.Scenarios.Bullish)
	}
	b.WriteString("\n")

	if len(rep.ModelErrors) > 0 {
		b.WriteString("### Excluded models\n\n")
		for _, mt := range []valuation.ModelType{valuation.ModelDCF, valuation.ModelComparable, valuation.ModelDDM} {
			if reason, ok := rep.ModelErrors[string(mt)]; ok {
				fmt.Fprintf(&b, "- %s: %s\n", mt, reason)
			}
		}
		b.WriteString("\n")
	}

	if rec := rep.Recommendation; rec != nil {
		b.WriteString("## Recommendation\n\n")
		fmt.Fprintf(&b, "**%s** — consensus target %.2f (%.1f%% upside)\n\n",
			strings.ToUpper(string(rec.Rating)), rec.TargetPrice, rec.Upside*100)
		writeList(&b, "Strengths", rec.Strengths)
		writeList(&b, "Weaknesses", rec.Weaknesses)
		writeList(&b, "Opportunities", rec.Opportunities)
		writeList(&b, "Threats", rec.Threats)
	}

	if len(rep.Peers) > 0 {
		fmt.Fprintf(&b, "## Peers\n\n%s\n", strings.Join(rep.Peers, ", "))
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// money formats a dollar amount with a compact suffix.
func money(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// Validate checks that the string parses as markdown. Goldmark is very
// permissive, so this is a basic structural check.
func Validate(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}
