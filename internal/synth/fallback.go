package synth

import (
	"fmt"
	"strings"

	"github.com/cost-copilot/backend/internal/analyzer"
	"github.com/cost-copilot/backend/internal/knowledge"
)

const (
	fallbackConfidence = 0.3
	securityConfidence = 1.0
)

// fallback assembles a deterministic answer from whatever data the analysis
// produced. Fallback answers never consume tokens.
func (s *Synthesizer) fallback(retrieval []knowledge.Result, analysis *analyzer.Analysis) *Answer {
	if analysis.QueryClassification == analyzer.ClassSecurity {
		return securityReport(analysis)
	}

	var b strings.Builder
	b.WriteString("## Cloud Cost Analysis (Fallback Mode)\n\n")
	b.WriteString("The AI analysis service is currently unavailable, but I can provide information based on your database:\n")

	if analysis.DataAvailable {
		if len(analysis.MonthlyTotals) > 0 {
			b.WriteString("\n**Cost Summary:**\n")
			for month, data := range analysis.MonthlyTotals {
				fmt.Fprintf(&b, "- %s: $%.2f (%d resources)\n", month, data.TotalCost, data.ResourceCount)
			}
		}

		if len(analysis.ServiceBreakdown) > 0 {
			b.WriteString("\n**Service Breakdown:**\n")
			count := 0
			for service, data := range analysis.ServiceBreakdown {
				if count == 5 {
					break
				}
				fmt.Fprintf(&b, "- %s: $%.2f (%d resources)\n", service, data.Cost, data.Resources)
				count++
			}
		}

		if len(analysis.OptimizationOpportunities) > 0 {
			var savings float64
			for _, opp := range analysis.OptimizationOpportunities {
				savings += opp.PotentialSavings
			}
			b.WriteString("\n**Optimization Opportunities:**\n")
			fmt.Fprintf(&b, "- Potential monthly savings: $%.2f\n", savings)
			fmt.Fprintf(&b, "- %d underutilized resources identified\n", len(analysis.OptimizationOpportunities))
		}
	}

	if len(retrieval) > 0 {
		b.WriteString("\n**Related FinOps Guidelines:**\n")
		for i, r := range retrieval {
			if i == 2 {
				break
			}
			fmt.Fprintf(&b, "- **%s**: %s...\n", r.Topic, truncate(r.Content, 200))
		}
	}

	b.WriteString("\n**To get enhanced analysis:**\n")
	b.WriteString("- Ensure the AI service is properly configured\n")
	b.WriteString("- Check the system health at /api/health\n")
	b.WriteString("- Verify API credentials and service availability")

	sources := make([]string, 0, len(retrieval)+1)
	for _, r := range retrieval {
		sources = append(sources, r.Topic)
	}
	sources = append(sources, "Database analysis (fallback mode)")

	return &Answer{
		Answer:  b.String(),
		Sources: sources,
		Recommendations: []string{
			"Enable AI service for enhanced analysis and recommendations",
			"Review database results for immediate cost optimization opportunities",
			"Check system configuration and API credentials",
		},
		Confidence:          fallbackConfidence,
		DataAvailable:       analysis.DataAvailable,
		QueryClassification: analysis.QueryClassification,
		KeyMetrics:          analysis.MonthlyTotals,
		TokenUsage:          TokenUsage{},
	}
}

// securityReport answers token/security questions from tracked state alone.
// It is always authoritative, hence the fixed 1.0 confidence.
func securityReport(analysis *analyzer.Analysis) *Answer {
	info := analysis.SecurityInfo
	if info == nil {
		info = &analyzer.SecurityInfo{}
	}

	answer := fmt.Sprintf(`## AI Security & Token Usage Report

**Token Usage Statistics:**
- **Total Tokens Used**: %d tokens
- **Input Tokens**: %d tokens
- **Output Tokens**: %d tokens
- **Total API Requests**: %d requests
- **Estimated Cost**: $%.6f
- **Session Duration**: %.2f hours

**Security Measures:**
This system implements comprehensive prompt injection prevention:

1. **Input Validation**: All user inputs are validated against %d known malicious patterns
2. **Content Sanitization**: Removal of potentially harmful content including scripts, SQL injection attempts, and control characters
3. **Response Filtering**: AI responses are restricted to the FinOps domain
4. **Rate Limiting**: API calls are monitored and limited to prevent abuse
5. **Audit Logging**: All interactions are logged with request IDs for security monitoring

**How Prompt Injection Is Prevented:**
- Pattern detection for common injection techniques
- Input length limits (max 2,000 characters)
- Structured prompt engineering with clear boundaries
- Context isolation between user queries
- Conservative decoding settings on the AI model

The system blocked prompt injection attempts and maintained security integrity throughout this session.`,
		info.TotalTokensUsed,
		info.TotalInputTokens,
		info.TotalOutputTokens,
		info.TotalRequests,
		info.TotalCost,
		info.SessionDurationHours,
		info.SecurityPatternsMonitored,
	)

	return &Answer{
		Answer: answer,
		Sources: []string{
			"System security monitoring",
			"Token usage tracking",
			"Prompt injection prevention system",
		},
		Recommendations: []string{
			"Continue monitoring token usage to optimize AI costs",
			"Review security logs regularly for potential threats",
			"Consider implementing additional rate limiting for high-volume usage",
		},
		Confidence:          securityConfidence,
		DataAvailable:       true,
		QueryClassification: analyzer.ClassSecurity,
		KeyMetrics:          analysis.MonthlyTotals,
		TokenUsage:          TokenUsage{},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
