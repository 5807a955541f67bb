package query

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/analyzer"
	"github.com/cost-copilot/backend/internal/cache/redis"
	"github.com/cost-copilot/backend/internal/insights"
	"github.com/cost-copilot/backend/internal/knowledge"
	"github.com/cost-copilot/backend/internal/metrics"
	"github.com/cost-copilot/backend/internal/security"
	"github.com/cost-copilot/backend/internal/storage/models"
	"github.com/cost-copilot/backend/internal/storage/sqlite"
	"github.com/cost-copilot/backend/internal/synth"
	"github.com/cost-copilot/backend/pkg/logger"
	"github.com/cost-copilot/backend/pkg/utils"
)

// ClassSecurityBlocked marks answers produced by the security short-circuit,
// before any retrieval, analysis, or generative call happened.
const ClassSecurityBlocked = "security_blocked"

// Engine runs the full question pipeline: security gate, sanitization,
// knowledge retrieval plus database analysis, synthesis, and the executive
// summary. Every failure mode is absorbed; Ask always returns a well-formed
// answer.
type Engine struct {
	gate        *security.Gate
	retriever   *knowledge.Retriever
	analyzer    *analyzer.Analyzer
	synthesizer *synth.Synthesizer
	db          *sqlite.Client
	// nil disables answer caching.
	cache *redis.Client
	topK  int
}

func NewEngine(
	gate *security.Gate,
	retriever *knowledge.Retriever,
	dbAnalyzer *analyzer.Analyzer,
	synthesizer *synth.Synthesizer,
	db *sqlite.Client,
	cache *redis.Client,
	topK int,
) *Engine {
	if topK <= 0 {
		topK = 5
	}
	return &Engine{
		gate:        gate,
		retriever:   retriever,
		analyzer:    dbAnalyzer,
		synthesizer: synthesizer,
		db:          db,
		cache:       cache,
		topK:        topK,
	}
}

// Ask processes one question end to end.
func (e *Engine) Ask(ctx context.Context, question string) *synth.Answer {
	startTime := time.Now()
	queryID := uuid.New().String()

	logger.Info("Processing question",
		zap.String("query_id", queryID),
		zap.Int("length", len(question)),
	)

	if blocked, reason := e.gate.Check(question); blocked {
		logger.Warn("Question blocked by security gate",
			zap.String("query_id", queryID),
			zap.String("reason", reason),
		)
		metrics.SecurityBlocksTotal.Inc()
		metrics.QueryTotal.WithLabelValues("blocked").Inc()
		return blockedAnswer(reason)
	}

	clean := e.gate.Sanitize(question)

	if e.cache != nil {
		if answer, ok := e.lookupCache(ctx, clean); ok {
			metrics.CacheHits.Inc()
			metrics.QueryTotal.WithLabelValues("cached").Inc()
			return answer
		}
		metrics.CacheMisses.Inc()
	}

	retrieval := e.retriever.Retrieve(ctx, clean, e.topK)
	analysis := e.analyzer.Analyze(clean)

	answer := e.synthesizer.Synthesize(ctx, clean, retrieval, analysis)
	answer.InsightsSummary = insights.Summarize(analysis)

	latency := int(time.Since(startTime).Milliseconds())

	e.recordHistory(queryID, clean, answer, latency)

	if e.cache != nil {
		if err := e.cache.SetAnswer(ctx, utils.HashString(clean), answer); err != nil {
			logger.Warn("Failed to cache answer", zap.Error(err))
		}
	}

	metrics.QueryTotal.WithLabelValues("ok").Inc()
	metrics.ConfidenceScore.Observe(answer.Confidence)
	metrics.QueryDuration.WithLabelValues(answer.QueryClassification).Observe(time.Since(startTime).Seconds())

	logger.Info("Question processed",
		zap.String("query_id", queryID),
		zap.String("classification", answer.QueryClassification),
		zap.Float64("confidence", answer.Confidence),
		zap.Int("latency_ms", latency),
	)

	return answer
}

func (e *Engine) lookupCache(ctx context.Context, clean string) (*synth.Answer, bool) {
	answer, ok, err := e.cache.GetAnswer(ctx, utils.HashString(clean))
	if err != nil {
		logger.Warn("Answer cache lookup failed", zap.Error(err))
		return nil, false
	}
	return answer, ok
}

func (e *Engine) recordHistory(queryID, question string, answer *synth.Answer, latency int) {
	err := e.db.InsertQueryRecord(&models.QueryRecord{
		ID:             queryID,
		Question:       question,
		Classification: answer.QueryClassification,
		Confidence:     answer.Confidence,
		DataAvailable:  answer.DataAvailable,
		TotalTokens:    answer.TokenUsage.TotalTokens,
		LatencyMS:      latency,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		logger.Warn("Failed to record query history", zap.Error(err))
	}
}

// blockedAnswer is returned without touching the database, the knowledge
// corpus, or either backend. Zero token usage, zero confidence.
func blockedAnswer(reason string) *synth.Answer {
	return &synth.Answer{
		Answer: fmt.Sprintf("**Security Alert**: Your question was blocked due to potential security concerns: %s. Please rephrase your question focusing on cloud cost analysis and optimization.", reason),
		Sources: []string{"Security validation system"},
		Recommendations: []string{
			"Rephrase your question to focus on cloud costs and FinOps topics",
			"Avoid using system commands or special characters",
			"Ask specific questions about cloud spending, optimization, or cost trends",
		},
		Confidence:          0.0,
		DataAvailable:       false,
		QueryClassification: ClassSecurityBlocked,
		TokenUsage:          synth.TokenUsage{},
	}
}
