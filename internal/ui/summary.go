package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cloudlens/advisor/internal/assembly"
	"github.com/cloudlens/advisor/internal/models"
)

// RenderSummary renders the assembled report as a styled terminal summary.
func RenderSummary(data *assembly.ReportData) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Advisor Summary - %s/%s", data.ClientName, data.Environment)))
	b.WriteString("\n")

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		summaryCard("Recommendations", fmt.Sprintf("%d", data.TotalRecommendations)),
		summaryCard("Total Savings / Year", fmt.Sprintf("%s %s", data.TotalPotentialSavings.StringFixed(2), data.Currency)),
		summaryCard("Monthly Estimate", fmt.Sprintf("%s %s", data.EstimatedMonthlySavings.StringFixed(2), data.Currency)),
		summaryCard("Average", fmt.Sprintf("%s %s", data.AveragePotentialSavings.StringFixed(2), data.Currency)),
	)
	b.WriteString(cards)
	b.WriteString("\n\n")

	b.WriteString(LabelStyle.Render("By category"))
	b.WriteString("\n")
	for _, c := range models.Categories() {
		b.WriteString(fmt.Sprintf("  %-24s %s\n",
			string(c), ValueStyle.Render(fmt.Sprintf("%d", data.CategoryDistribution[string(c)]))))
	}
	b.WriteString("\n")

	b.WriteString(LabelStyle.Render("By impact"))
	b.WriteString("\n")
	for _, i := range models.Impacts() {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			ImpactStyle(string(i)).Render(fmt.Sprintf("%-8s", string(i))),
			ValueStyle.Render(fmt.Sprintf("%d", data.ImpactDistribution[string(i)]))))
	}

	if len(data.TopRecommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(LabelStyle.Render("Top recommendations by savings"))
		b.WriteString("\n")
		for i, rec := range data.TopRecommendations {
			amount := "-"
			if rec.HasSavings {
				amount = AmountStyle.Render(fmt.Sprintf("%s %s", rec.PotentialSavings.StringFixed(2), rec.Currency))
			}
			b.WriteString(fmt.Sprintf("  %2d. %s %-10s %s  %s\n",
				i+1,
				ImpactStyle(rec.Impact).Render(fmt.Sprintf("%-6s", rec.Impact)),
				rec.Category,
				truncate(rec.RecommendationText, 60),
				amount))
		}
	}

	if data.ProcessingErrors > 0 {
		b.WriteString("\n")
		b.WriteString(WarnStyle.Render(fmt.Sprintf("⚠ %d row(s) skipped due to processing errors", data.ProcessingErrors)))
		b.WriteString("\n")
	}

	return b.String()
}

func summaryCard(label, value string) string {
	content := ValueStyle.Render(value) + "\n" + LabelStyle.Render(label)
	return BoxStyle.Render(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
