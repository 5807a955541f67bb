package insights

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cost-copilot/backend/internal/analyzer"
	"github.com/cost-copilot/backend/internal/storage/models"
)

func TestSummarizeNoData(t *testing.T) {
	out := Summarize(&analyzer.Analysis{DataAvailable: false})
	assert.Equal(t, "Analysis completed with limited data availability. Recommend reviewing data sources.", out)
}

func TestSummarizeCostInquiry(t *testing.T) {
	a := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassCostInquiry,
		MonthlyTotals: map[string]analyzer.MonthStat{
			"2024-07": {TotalCost: 1200.50},
			"2024-08": {TotalCost: 799.50},
		},
	}
	assert.Contains(t, Summarize(a), "$2000.00")
}

func TestSummarizeOptimization(t *testing.T) {
	a := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassOptimization,
		OptimizationOpportunities: []models.IdleResource{
			{PotentialSavings: 350},
			{PotentialSavings: 140},
		},
	}
	out := Summarize(a)
	assert.Contains(t, out, "2 opportunities")
	assert.Contains(t, out, "$490.00")
}

func TestSummarizeTrendChange(t *testing.T) {
	a := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassTrend,
		TrendData: []models.TrendPoint{
			{Month: "2024-09", Cost: 170},
			{Month: "2024-08", Cost: 40},
		},
	}
	// (170 - 40) / 40 * 100
	assert.Contains(t, Summarize(a), "+325.0%")
}

func TestSummarizeTrendZeroPreviousMonth(t *testing.T) {
	a := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassTrend,
		TrendData: []models.TrendPoint{
			{Month: "2024-09", Cost: 50},
			{Month: "2024-08", Cost: 0},
		},
	}
	// Zero previous month is treated as 1 rather than dividing by zero.
	assert.Contains(t, Summarize(a), "+5000.0%")
}

func TestSummarizeGovernance(t *testing.T) {
	a := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassGovernance,
		UntaggedResources: []models.UntaggedResource{
			{Cost: 60},
			{Cost: 40},
		},
	}
	out := Summarize(a)
	assert.Contains(t, out, "2 untagged resources")
	assert.Contains(t, out, "$100.00")
}

func TestSummarizeSecurity(t *testing.T) {
	a := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassSecurity,
	}
	assert.Contains(t, Summarize(a), "Security and token usage analysis completed")
}

func TestSummarizeGeneric(t *testing.T) {
	a := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassGeneral,
	}
	assert.Equal(t, "Analysis completed successfully with comprehensive insights and recommendations provided.", Summarize(a))
}
