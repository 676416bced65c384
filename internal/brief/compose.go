// Package brief composes the weekly executive brief and renders it as Markdown or PDF.
package brief

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

// Brief is a composed executive brief.
type Brief struct {
	AsOf     time.Time
	KPIs     models.KPISnapshot
	Markdown string
}

var risks = []string{
	"Fatigued contacts detected above threshold.",
	"Monitor unsub trends in SMS-heavy segments.",
}

var nextActions = []string{
	"Reduce frequency for fatigued personas.",
	"Promote subject line winners to 100% of traffic.",
	"Shift budget to channels with higher predicted engagement.",
}

// Compose builds the brief for k. asOf is the date printed in the title.
func Compose(k models.KPISnapshot, asOf time.Time) Brief {
	var b strings.Builder

	fmt.Fprintf(&b, "# Weekly Executive Brief — %s\n\n", asOf.Format("2006-01-02"))

	b.WriteString("## KPI Snapshot\n\n")
	fmt.Fprintf(&b, "- Sends: %s\n", formatCount(k.Sends))
	fmt.Fprintf(&b, "- Open Rate: %s\n", formatPercent(k.OpenRate, 1))
	fmt.Fprintf(&b, "- CTR: %s\n", formatPercent(k.CTR, 1))
	fmt.Fprintf(&b, "- CTOR: %s\n", formatPercent(k.CTOR, 1))
	fmt.Fprintf(&b, "- Unsub Rate: %s\n\n", formatPercent(k.UnsubRate, 2))

	b.WriteString("## Risks & Alerts\n\n")
	for _, r := range risks {
		b.WriteString("- " + r + "\n")
	}
	b.WriteString("\n## AI Next Best Actions\n\n")
	for _, a := range nextActions {
		b.WriteString("- " + a + "\n")
	}

	return Brief{AsOf: asOf, KPIs: k, Markdown: b.String()}
}

func formatPercent(v *float64, decimals int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v*100, 'f', decimals, 64) + "%"
}

// formatCount renders n with comma thousands separators.
func formatCount(n *int64) string {
	if n == nil {
		return "n/a"
	}
	return message.NewPrinter(language.English).Sprintf("%d", *n)
}
