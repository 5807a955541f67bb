package knowledge

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/vector"
	"github.com/cost-copilot/backend/pkg/logger"
)

const (
	SourceVector  = "vector_search"
	SourceKeyword = "keyword_search"
)

// Embedder turns text into a fixed-width vector. Implemented by the LLM
// client; nil means keyword retrieval only.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Result is one retrieved article with its relevance score. Sequences of
// results are always ordered by non-increasing score.
type Result struct {
	Content        string  `json:"content"`
	Topic          string  `json:"topic"`
	RelevanceScore float64 `json:"relevance_score"`
	SourceType     string  `json:"source_type"`
}

// Retriever runs similarity search over the knowledge corpus. The corpus and
// its embedding index are built once and never mutated, so Retrieve is safe
// for concurrent use.
type Retriever struct {
	articles []Article
	embedder Embedder
	index    *vector.Index
}

// NewRetriever embeds the corpus up front when an embedder is available.
// Embedding failures are not fatal; the retriever degrades to keyword search.
func NewRetriever(ctx context.Context, articles []Article, embedder Embedder, dim int) *Retriever {
	r := &Retriever{articles: articles, embedder: embedder}

	if embedder == nil {
		logger.Warn("No embedding backend configured, keyword retrieval only")
		return r
	}

	index := vector.NewIndex(dim)
	for _, article := range articles {
		vec, err := embedder.Embed(ctx, article.Content)
		if err != nil {
			logger.Error("Failed to embed corpus, falling back to keyword retrieval", zap.Error(err))
			return r
		}
		if err := index.Add(vec); err != nil {
			logger.Error("Failed to index corpus embedding", zap.Error(err))
			return r
		}
	}

	r.index = index
	logger.Info("Knowledge corpus embedded", zap.Int("articles", index.Len()))
	return r
}

// Retrieve returns up to k relevant articles. It never fails: vector search
// errors degrade silently to keyword matching.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []Result {
	if r.index != nil && r.embedder != nil {
		results, err := r.retrieveVector(ctx, query, k)
		if err == nil {
			logger.Debug("Context retrieved via vector search", zap.Int("results", len(results)))
			return results
		}
		logger.Warn("Vector retrieval failed, using keyword fallback", zap.Error(err))
	}

	results := r.retrieveKeyword(query, k)
	logger.Debug("Context retrieved via keyword search", zap.Int("results", len(results)))
	return results
}

func (r *Retriever) retrieveVector(ctx context.Context, query string, k int) ([]Result, error) {
	embedding, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	matches, err := r.index.Search(embedding, k)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		article := r.articles[m.Index]
		results = append(results, Result{
			Content:        article.Content,
			Topic:          article.Topic,
			RelevanceScore: 1.0 / (1.0 + float64(m.Distance)),
			SourceType:     SourceVector,
		})
	}

	return results, nil
}

func (r *Retriever) retrieveKeyword(query string, k int) []Result {
	queryWords := strings.Fields(strings.ToLower(query))
	if len(queryWords) == 0 {
		return nil
	}

	var results []Result
	for _, article := range r.articles {
		contentLower := strings.ToLower(article.Content)
		topicLower := strings.ToLower(article.Topic)

		var contentMatches, topicMatches int
		for _, word := range queryWords {
			if strings.Contains(contentLower, word) {
				contentMatches++
			}
			if strings.Contains(topicLower, word) {
				topicMatches++
			}
		}

		// Topic hits count double.
		score := float64(contentMatches+2*topicMatches) / float64(len(queryWords))
		if score > 0 {
			results = append(results, Result{
				Content:        article.Content,
				Topic:          article.Topic,
				RelevanceScore: score,
				SourceType:     SourceKeyword,
			})
		}
	}

	// Stable sort keeps corpus order as the tie-break.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].RelevanceScore > results[b].RelevanceScore
	})

	if k < len(results) {
		results = results[:k]
	}

	return results
}
