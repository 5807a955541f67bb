package synth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cost-copilot/backend/internal/analyzer"
	"github.com/cost-copilot/backend/internal/knowledge"
	"github.com/cost-copilot/backend/internal/usage"
)

type stubGenerator struct {
	completion string
	err        error
	calls      int
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.completion, nil
}

func testAnalysis() *analyzer.Analysis {
	return &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassCostInquiry,
		MonthlyTotals: map[string]analyzer.MonthStat{
			"2024-07": {TotalCost: 1200, ResourceCount: 12},
		},
		ServiceBreakdown:       map[string]analyzer.CategoryStat{},
		ResourceGroupBreakdown: map[string]analyzer.CategoryStat{},
	}
}

func testRetrieval() []knowledge.Result {
	return []knowledge.Result{
		{Topic: "Cost Optimization", Content: "Right-size underutilized instances.", RelevanceScore: 0.9, SourceType: knowledge.SourceKeyword},
	}
}

func TestSynthesizeWithBackend(t *testing.T) {
	gen := &stubGenerator{completion: "Your July spend was $1200.\nYou should right-size idle VMs to cut waste."}
	accountant := usage.NewAccountant(0, 7)
	s := New(gen, accountant, Pricing{InputPer1K: 0.00025, OutputPer1K: 0.00075})

	answer := s.Synthesize(context.Background(), "what was my july spend", testRetrieval(), testAnalysis())

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, gen.completion, answer.Answer)
	assert.InDelta(t, 0.9, answer.Confidence, 1e-9)
	assert.Equal(t, analyzer.ClassCostInquiry, answer.QueryClassification)
	assert.Contains(t, answer.Sources, "Cost Optimization")
	assert.Contains(t, answer.Sources, "Live database analysis")

	// Output tokens follow the fixed words-times-1.3 estimate; the
	// completion has 13 words.
	assert.Equal(t, 16, answer.TokenUsage.OutputTokens)
	assert.Greater(t, answer.TokenUsage.InputTokens, 0)
	assert.Equal(t, answer.TokenUsage.InputTokens+answer.TokenUsage.OutputTokens, answer.TokenUsage.TotalTokens)
	assert.Greater(t, answer.TokenUsage.EstimatedCost, 0.0)

	stats := accountant.Snapshot()
	assert.Equal(t, 1, stats.TotalRequests)
	assert.Equal(t, answer.TokenUsage.TotalTokens, stats.TotalTokensUsed)
}

func TestSynthesizeLowConfidenceWithoutData(t *testing.T) {
	gen := &stubGenerator{completion: "No billing data was found for that period."}
	s := New(gen, usage.NewAccountant(0, 7), Pricing{})

	analysis := testAnalysis()
	analysis.DataAvailable = false

	answer := s.Synthesize(context.Background(), "spend for 1999", nil, analysis)
	assert.InDelta(t, 0.6, answer.Confidence, 1e-9)
	assert.False(t, answer.DataAvailable)
}

func TestSynthesizeExtractsRecommendations(t *testing.T) {
	gen := &stubGenerator{completion: "Summary of your costs.\n" +
		"- You should right-size the idle compute fleet\n" +
		"- Consider reserved instances for steady workloads\n" +
		"- I recommend tagging every production resource\n" +
		"- Another action item: enable budget alerts everywhere\n"}
	s := New(gen, usage.NewAccountant(0, 7), Pricing{})

	answer := s.Synthesize(context.Background(), "how do i cut costs", nil, testAnalysis())

	require.Len(t, answer.Recommendations, 3)
	assert.Equal(t, "You should right-size the idle compute fleet", answer.Recommendations[0])
	assert.Equal(t, "Consider reserved instances for steady workloads", answer.Recommendations[1])
	assert.Equal(t, "I recommend tagging every production resource", answer.Recommendations[2])
}

func TestSynthesizeFallsBackOnBackendError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	accountant := usage.NewAccountant(0, 7)
	s := New(gen, accountant, Pricing{InputPer1K: 0.00025, OutputPer1K: 0.00075})

	answer := s.Synthesize(context.Background(), "what was my july spend", testRetrieval(), testAnalysis())

	assert.Equal(t, 1, gen.calls)
	assert.InDelta(t, fallbackConfidence, answer.Confidence, 1e-9)
	assert.Equal(t, analyzer.ClassCostInquiry, answer.QueryClassification)
	assert.Contains(t, answer.Answer, "Fallback Mode")
	assert.Contains(t, answer.Sources, "Database analysis (fallback mode)")
	assert.Zero(t, answer.TokenUsage.TotalTokens)

	// Failed calls never hit the accountant.
	assert.Zero(t, accountant.Snapshot().TotalRequests)
}

func TestSynthesizeNilGeneratorUsesFallback(t *testing.T) {
	s := New(nil, usage.NewAccountant(0, 7), Pricing{})

	answer := s.Synthesize(context.Background(), "total spend", testRetrieval(), testAnalysis())

	assert.InDelta(t, fallbackConfidence, answer.Confidence, 1e-9)
	assert.True(t, answer.DataAvailable)
	assert.Contains(t, answer.Answer, "Cost Summary")
	assert.Zero(t, answer.TokenUsage.TotalTokens)
}

func TestSynthesizeSecurityAlwaysUsesReport(t *testing.T) {
	gen := &stubGenerator{completion: "should never be used"}
	s := New(gen, usage.NewAccountant(0, 7), Pricing{})

	analysis := &analyzer.Analysis{
		DataAvailable:       true,
		QueryClassification: analyzer.ClassSecurity,
		SecurityInfo: &analyzer.SecurityInfo{
			TotalTokensUsed:           450,
			TotalInputTokens:          300,
			TotalOutputTokens:         150,
			TotalRequests:             2,
			TotalCost:                 0.03,
			SecurityPatternsMonitored: 20,
		},
	}

	answer := s.Synthesize(context.Background(), "how many tokens used", nil, analysis)

	assert.Zero(t, gen.calls)
	assert.InDelta(t, securityConfidence, answer.Confidence, 1e-9)
	assert.Equal(t, analyzer.ClassSecurity, answer.QueryClassification)
	assert.Contains(t, answer.Answer, "450 tokens")
	assert.Contains(t, answer.Answer, "20 known malicious patterns")
	assert.Zero(t, answer.TokenUsage.TotalTokens)
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 13, estimateTokens("one two three four five six seven eight nine ten"))
	assert.Zero(t, estimateTokens(""))
}
