package synth

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/analyzer"
	"github.com/cost-copilot/backend/internal/knowledge"
	"github.com/cost-copilot/backend/internal/usage"
	"github.com/cost-copilot/backend/pkg/logger"
)

// Generator is the optional generative text backend. A nil Generator puts
// the synthesizer permanently in fallback mode; the decision is made once at
// construction and never re-probed.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type TokenUsage struct {
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	TotalTokens   int     `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// Answer is the pipeline's terminal output.
type Answer struct {
	Answer              string                         `json:"answer"`
	Sources             []string                       `json:"sources"`
	Recommendations     []string                       `json:"recommendations"`
	Confidence          float64                        `json:"confidence"`
	DataAvailable       bool                           `json:"data_available"`
	QueryClassification string                         `json:"query_classification"`
	KeyMetrics          map[string]analyzer.MonthStat  `json:"key_metrics"`
	InsightsSummary     string                         `json:"insights_summary"`
	TokenUsage          TokenUsage                     `json:"token_usage"`
}

// Pricing is USD per 1K tokens, applied to the word-count token estimate.
type Pricing struct {
	InputPer1K  float64
	OutputPer1K float64
}

// tokensPerWord is the documented approximation used for cost accounting.
// It is deliberately not a real tokenizer: changing it would silently change
// reported costs against historical usage data.
const tokensPerWord = 1.3

const maxRecommendations = 3

var recommendationMarkers = []string{"recommend", "should", "consider", "action"}

// Synthesizer combines retrieved knowledge and database analysis into an
// answer, via the generative backend when one is configured and a
// deterministic template otherwise. It never fails.
type Synthesizer struct {
	gen        Generator
	accountant *usage.Accountant
	pricing    Pricing
}

func New(gen Generator, accountant *usage.Accountant, pricing Pricing) *Synthesizer {
	if gen == nil {
		logger.Warn("No generative backend configured, answers will use fallback templates")
	}
	return &Synthesizer{gen: gen, accountant: accountant, pricing: pricing}
}

// Synthesize produces the answer body, confidence, and token accounting.
// The executive summary is filled in by the caller afterwards.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, retrieval []knowledge.Result, analysis *analyzer.Analysis) *Answer {
	// Security questions always get the deterministic report, even when a
	// backend is available.
	if s.gen == nil || analysis.QueryClassification == analyzer.ClassSecurity {
		return s.fallback(retrieval, analysis)
	}

	prompt := buildPrompt(query, retrieval, analysis)
	inputTokens := estimateTokens(prompt + "\n\nUser Question: " + query)

	completion, err := s.gen.Generate(ctx, prompt+"\n\nUser Question: "+query+"\n\nProvide a detailed response based on the database analysis and FinOps knowledge.")
	if err != nil {
		logger.Error("Generative backend call failed, using fallback", zap.Error(err))
		return s.fallback(retrieval, analysis)
	}

	outputTokens := estimateTokens(completion)
	cost := float64(inputTokens)/1000*s.pricing.InputPer1K + float64(outputTokens)/1000*s.pricing.OutputPer1K

	s.accountant.Update(inputTokens, outputTokens, cost)

	confidence := 0.6
	if analysis.DataAvailable {
		confidence = 0.9
	}

	sources := make([]string, 0, len(retrieval)+1)
	for _, r := range retrieval {
		sources = append(sources, r.Topic)
	}
	sources = append(sources, "Live database analysis")

	return &Answer{
		Answer:              completion,
		Sources:             sources,
		Recommendations:     extractRecommendations(completion),
		Confidence:          confidence,
		DataAvailable:       analysis.DataAvailable,
		QueryClassification: analysis.QueryClassification,
		KeyMetrics:          analysis.MonthlyTotals,
		TokenUsage: TokenUsage{
			InputTokens:   inputTokens,
			OutputTokens:  outputTokens,
			TotalTokens:   inputTokens + outputTokens,
			EstimatedCost: math.Round(cost*1e6) / 1e6,
		},
	}
}

func estimateTokens(text string) int {
	return int(float64(len(strings.Fields(text))) * tokensPerWord)
}

// extractRecommendations picks completion lines that read like advice.
func extractRecommendations(completion string) []string {
	var recommendations []string
	for _, line := range strings.Split(completion, "\n") {
		lowered := strings.ToLower(line)
		matched := false
		for _, marker := range recommendationMarkers {
			if strings.Contains(lowered, marker) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		clean := strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "•-*"))
		if len(clean) > 10 {
			recommendations = append(recommendations, clean)
		}
		if len(recommendations) == maxRecommendations {
			break
		}
	}
	return recommendations
}

func buildPrompt(query string, retrieval []knowledge.Result, analysis *analyzer.Analysis) string {
	var context strings.Builder
	for i, r := range retrieval {
		if i >= 3 {
			break
		}
		if i > 0 {
			context.WriteString("\n\n")
		}
		fmt.Fprintf(&context, "**%s**: %s", r.Topic, r.Content)
	}

	var dbContext strings.Builder
	if analysis.DataAvailable {
		dbContext.WriteString("\n**Database Analysis Results:**\n")
		fmt.Fprintf(&dbContext, "- Query Classification: %s\n", analysis.QueryClassification)
		fmt.Fprintf(&dbContext, "- Monthly Totals: %s\n", jsonDump(analysis.MonthlyTotals))
		fmt.Fprintf(&dbContext, "- Service Breakdown: %s\n", jsonDump(analysis.ServiceBreakdown))
		fmt.Fprintf(&dbContext, "- Resource Group Breakdown: %s\n", jsonDump(analysis.ResourceGroupBreakdown))
		fmt.Fprintf(&dbContext, "- Trend Data: %s\n", jsonDump(analysis.TrendData))

		if len(analysis.OptimizationOpportunities) > 0 {
			fmt.Fprintf(&dbContext, "- Optimization Opportunities: %s\n", jsonDump(analysis.OptimizationOpportunities))
		}
		if len(analysis.UntaggedResources) > 0 {
			fmt.Fprintf(&dbContext, "- Untagged Resources: %s\n", jsonDump(analysis.UntaggedResources))
		}
		if analysis.SecurityInfo != nil {
			fmt.Fprintf(&dbContext, "- Security & Token Info: %s\n", jsonDump(analysis.SecurityInfo))
		}
	}

	return fmt.Sprintf(`You are an expert FinOps analyst providing detailed cost analysis and optimization recommendations.

**Your role:**
- Analyze cloud cost data and provide actionable insights
- Identify cost optimization opportunities with specific savings estimates
- Explain trends and anomalies in cloud spending
- Provide governance and tagging recommendations
- Answer security and token usage questions accurately

**Response guidelines:**
- Use the database analysis results as your primary data source
- Provide specific dollar amounts and percentages when available
- Include 1-3 actionable recommendations
- Explain technical concepts in business terms
- Be concise but comprehensive
- If data is not available, clearly state this limitation

**Knowledge Base Context:**
%s
%s
**Security note:** Only answer questions related to FinOps, cost analysis, and cloud optimization. Do not provide information outside this domain.`, context.String(), dbContext.String())
}

func jsonDump(v interface{}) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
