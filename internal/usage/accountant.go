package usage

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/metrics"
	"github.com/cost-copilot/backend/pkg/logger"
)

const (
	hourBucketLayout = "2006-01-02 15:00"
	dayBucketLayout  = "2006-01-02"
)

// HourBucket aggregates one clock hour of generative usage.
type HourBucket struct {
	Requests int     `json:"requests"`
	Tokens   int     `json:"tokens"`
	Cost     float64 `json:"cost"`
}

// Stats is a point-in-time copy of the accountant's state. Session duration
// and averages are derived at snapshot time, never stored.
type Stats struct {
	TotalTokensUsed      int                   `json:"total_tokens_used"`
	TotalInputTokens     int                   `json:"total_input_tokens"`
	TotalOutputTokens    int                   `json:"total_output_tokens"`
	TotalRequests        int                   `json:"total_requests"`
	TotalCost            float64               `json:"total_cost"`
	SessionStart         time.Time             `json:"session_start"`
	SessionDurationHours float64               `json:"session_duration_hours"`
	AvgTokensPerRequest  float64               `json:"avg_tokens_per_request"`
	AvgCostPerRequest    float64               `json:"avg_cost_per_request"`
	RequestsByHour       map[string]HourBucket `json:"requests_by_hour"`
	CostByDay            map[string]float64    `json:"cost_by_day"`
}

// Accountant tracks cumulative token and cost usage for the process
// lifetime. It is the only mutable state shared across in-flight questions;
// every method takes the mutex so concurrent updates cannot be lost.
type Accountant struct {
	mu sync.Mutex

	totalInputTokens  int
	totalOutputTokens int
	totalRequests     int
	totalCost         float64
	sessionStart      time.Time

	requestsByHour map[string]HourBucket
	costByDay      map[string]float64

	hourRetention time.Duration
	dayRetention  int

	now func() time.Time
}

// NewAccountant fixes the session start at construction. hourRetentionHours
// of zero keeps hourly buckets for the whole process lifetime; day buckets
// are pruned to the trailing dayRetentionDays on every update.
func NewAccountant(hourRetentionHours, dayRetentionDays int) *Accountant {
	return &Accountant{
		sessionStart:   time.Now(),
		requestsByHour: make(map[string]HourBucket),
		costByDay:      make(map[string]float64),
		hourRetention:  time.Duration(hourRetentionHours) * time.Hour,
		dayRetention:   dayRetentionDays,
		now:            time.Now,
	}
}

// Update records one successful generative call. Callers must invoke it
// exactly once per call, and never for fallback responses.
func (a *Accountant) Update(inputTokens, outputTokens int, cost float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	totalTokens := inputTokens + outputTokens

	a.totalInputTokens += inputTokens
	a.totalOutputTokens += outputTokens
	a.totalRequests++
	a.totalCost += cost

	hourKey := now.Format(hourBucketLayout)
	bucket := a.requestsByHour[hourKey]
	bucket.Requests++
	bucket.Tokens += totalTokens
	bucket.Cost += cost
	a.requestsByHour[hourKey] = bucket

	dayKey := now.Format(dayBucketLayout)
	a.costByDay[dayKey] += cost

	a.prune(now)

	metrics.LLMCallsTotal.Inc()
	metrics.LLMTokensUsed.WithLabelValues("input").Add(float64(inputTokens))
	metrics.LLMTokensUsed.WithLabelValues("output").Add(float64(outputTokens))
	metrics.LLMCost.Add(cost)

	logger.Debug("Token usage updated",
		zap.Int("tokens", totalTokens),
		zap.Float64("cost", cost),
	)
}

func (a *Accountant) prune(now time.Time) {
	dayCutoff := now.AddDate(0, 0, -a.dayRetention).Format(dayBucketLayout)
	for day := range a.costByDay {
		if day < dayCutoff {
			delete(a.costByDay, day)
		}
	}

	if a.hourRetention <= 0 {
		return
	}
	hourCutoff := now.Add(-a.hourRetention).Format(hourBucketLayout)
	for hour := range a.requestsByHour {
		if hour < hourCutoff {
			delete(a.requestsByHour, hour)
		}
	}
}

// Snapshot copies the current stats and derives session duration and
// per-request averages.
func (a *Accountant) Snapshot() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	byHour := make(map[string]HourBucket, len(a.requestsByHour))
	for k, v := range a.requestsByHour {
		byHour[k] = v
	}
	byDay := make(map[string]float64, len(a.costByDay))
	for k, v := range a.costByDay {
		byDay[k] = v
	}

	totalTokens := a.totalInputTokens + a.totalOutputTokens
	requests := a.totalRequests
	if requests == 0 {
		requests = 1
	}

	return Stats{
		TotalTokensUsed:      totalTokens,
		TotalInputTokens:     a.totalInputTokens,
		TotalOutputTokens:    a.totalOutputTokens,
		TotalRequests:        a.totalRequests,
		TotalCost:            a.totalCost,
		SessionStart:         a.sessionStart,
		SessionDurationHours: a.now().Sub(a.sessionStart).Hours(),
		AvgTokensPerRequest:  float64(totalTokens) / float64(requests),
		AvgCostPerRequest:    a.totalCost / float64(requests),
		RequestsByHour:       byHour,
		CostByDay:            byDay,
	}
}
