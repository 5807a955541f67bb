// Package insights derives one-sentence business summaries from an analysis.
package insights

import (
	"fmt"

	"github.com/cost-copilot/backend/internal/analyzer"
)

// Summarize keys off the final query classification. Pure function.
func Summarize(a *analyzer.Analysis) string {
	if !a.DataAvailable {
		return "Analysis completed with limited data availability. Recommend reviewing data sources."
	}

	switch a.QueryClassification {
	case analyzer.ClassCostInquiry:
		var total float64
		for _, m := range a.MonthlyTotals {
			total += m.TotalCost
		}
		return fmt.Sprintf("Cost analysis completed. Total analyzed spend: $%.2f. Key drivers identified with optimization recommendations provided.", total)

	case analyzer.ClassOptimization:
		var savings float64
		for _, opp := range a.OptimizationOpportunities {
			savings += opp.PotentialSavings
		}
		return fmt.Sprintf("Optimization analysis identified %d opportunities for $%.2f monthly savings potential.", len(a.OptimizationOpportunities), savings)

	case analyzer.ClassTrend:
		if len(a.TrendData) >= 2 {
			recent := a.TrendData[0].Cost
			previous := a.TrendData[1].Cost
			// A zero previous month would divide by zero; treat it as 1.
			denom := previous
			if denom < 1 {
				denom = 1
			}
			change := (recent - previous) / denom * 100
			return fmt.Sprintf("Trend analysis completed. Most recent month-over-month change: %+.1f%%. Detailed variance analysis provided.", change)
		}

	case analyzer.ClassGovernance:
		var cost float64
		for _, res := range a.UntaggedResources {
			cost += res.Cost
		}
		return fmt.Sprintf("Governance review completed. %d untagged resources identified with $%.2f monthly cost impact.", len(a.UntaggedResources), cost)

	case analyzer.ClassSecurity:
		return "Security and token usage analysis completed. All systems operating within normal security parameters."
	}

	return "Analysis completed successfully with comprehensive insights and recommendations provided."
}
