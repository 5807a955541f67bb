package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testArticles = []Article{
	{Topic: "Cost Optimization", Content: "Right-size underutilized compute instances to reduce spend."},
	{Topic: "Tagging Governance", Content: "Every resource should carry owner and environment tags."},
	{Topic: "Budget Alerts", Content: "Configure spend thresholds to catch cost anomalies early."},
}

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if vec, ok := s.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0}, nil
}

func TestRetrieveKeywordScoresAndOrder(t *testing.T) {
	r := NewRetriever(context.Background(), testArticles, nil, 0)

	results := r.Retrieve(context.Background(), "cost optimization tips", 5)
	require.NotEmpty(t, results)

	// "cost" and "optimization" both hit the first article's topic and
	// content; it must rank first.
	assert.Equal(t, "Cost Optimization", results[0].Topic)
	assert.Equal(t, SourceKeyword, results[0].SourceType)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].RelevanceScore, results[i].RelevanceScore)
	}
}

func TestRetrieveKeywordTopicHitsCountDouble(t *testing.T) {
	articles := []Article{
		{Topic: "other", Content: "budget budget budget"},
		{Topic: "budget", Content: "nothing relevant here"},
	}
	r := NewRetriever(context.Background(), articles, nil, 0)

	results := r.Retrieve(context.Background(), "budget", 5)
	require.Len(t, results, 2)

	// One topic hit (weight 2) beats one content hit (weight 1); substring
	// matching counts each query word at most once per field.
	assert.Equal(t, "budget", results[0].Topic)
	assert.InDelta(t, 2.0, results[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 1.0, results[1].RelevanceScore, 1e-9)
}

func TestRetrieveKeywordCapsAtK(t *testing.T) {
	r := NewRetriever(context.Background(), testArticles, nil, 0)

	results := r.Retrieve(context.Background(), "cost resource spend", 1)
	assert.Len(t, results, 1)
}

func TestRetrieveKeywordEmptyQuery(t *testing.T) {
	r := NewRetriever(context.Background(), testArticles, nil, 0)

	assert.Empty(t, r.Retrieve(context.Background(), "   ", 5))
}

func TestRetrieveVectorUsesDistanceScore(t *testing.T) {
	articles := []Article{
		{Topic: "near", Content: "near content"},
		{Topic: "far", Content: "far content"},
	}
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"near content": {0, 1},
		"far content":  {10, 0},
		"my question":  {0, 0},
	}}

	r := NewRetriever(context.Background(), articles, embedder, 2)
	results := r.Retrieve(context.Background(), "my question", 2)
	require.Len(t, results, 2)

	assert.Equal(t, "near", results[0].Topic)
	assert.Equal(t, SourceVector, results[0].SourceType)
	// 1 / (1 + squared distance)
	assert.InDelta(t, 0.5, results[0].RelevanceScore, 1e-6)
	assert.InDelta(t, 1.0/101.0, results[1].RelevanceScore, 1e-6)
}

func TestRetrieverDegradesWhenEmbeddingFails(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("backend down")}

	r := NewRetriever(context.Background(), testArticles, embedder, 2)
	results := r.Retrieve(context.Background(), "cost optimization", 5)

	require.NotEmpty(t, results)
	assert.Equal(t, SourceKeyword, results[0].SourceType)
}
