package analyzer

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/storage/models"
	"github.com/cost-copilot/backend/internal/storage/sqlite"
	"github.com/cost-copilot/backend/internal/usage"
	"github.com/cost-copilot/backend/pkg/logger"
)

// Query classifications. The trigger groups run in a fixed order and each
// matching group overwrites the label, so the final classification is the
// last group that matched (the earlier groups' data still survives).
const (
	ClassGeneral      = "general"
	ClassCostInquiry  = "cost_inquiry"
	ClassTrend        = "trend_analysis"
	ClassOptimization = "optimization_analysis"
	ClassGovernance   = "governance_analysis"
	ClassSecurity     = "security_inquiry"
	ClassError        = "error"
)

type MonthStat struct {
	TotalCost     float64 `json:"total_cost"`
	ResourceCount int     `json:"resource_count"`
}

type CategoryStat struct {
	Cost      float64 `json:"cost"`
	Resources int     `json:"resources"`
}

type SecurityInfo struct {
	TotalTokensUsed           int     `json:"total_tokens_used"`
	TotalInputTokens          int     `json:"total_input_tokens"`
	TotalOutputTokens         int     `json:"total_output_tokens"`
	TotalRequests             int     `json:"total_requests"`
	TotalCost                 float64 `json:"total_cost"`
	SessionDurationHours      float64 `json:"session_duration_hours"`
	SecurityPatternsMonitored int     `json:"security_patterns_monitored"`
	PromptInjectionPrevention bool    `json:"prompt_injection_prevention"`
	InputSanitization         bool    `json:"input_sanitization"`
}

// Analysis is the result of running every matching trigger group against the
// billing store. DataAvailable is false only when no fired query returned a
// row (or nothing fired at all); every breakdown field is empty in that case.
type Analysis struct {
	DataAvailable             bool                      `json:"data_available"`
	QueryClassification       string                    `json:"query_classification"`
	MonthlyTotals             map[string]MonthStat      `json:"monthly_totals"`
	ServiceBreakdown          map[string]CategoryStat   `json:"service_breakdown"`
	ResourceGroupBreakdown    map[string]CategoryStat   `json:"resource_group_breakdown"`
	TrendData                 []models.TrendPoint       `json:"trend_data"`
	OptimizationOpportunities []models.IdleResource     `json:"optimization_opportunities"`
	UntaggedResources         []models.UntaggedResource `json:"untagged_resources"`
	SecurityInfo              *SecurityInfo             `json:"security_info,omitempty"`
	Error                     string                    `json:"error,omitempty"`
}

// Config carries the tunable analysis heuristics. DefaultYear backs month
// names mentioned without a year.
type Config struct {
	DefaultYear     string
	TrendMonths     int
	IdleUsageBelow  float64
	IdleCostAbove   float64
	UntaggedMinCost float64
}

// savingsFactor is the flat heuristic share of an idle resource's cost
// assumed recoverable.
const savingsFactor = 0.7

// Analyzer classifies a question against keyword trigger groups and runs the
// matching aggregate queries. Read-only against the store; safe for
// concurrent use.
type Analyzer struct {
	store      *sqlite.Client
	accountant *usage.Accountant
	cfg        Config
	// Forwarded into the security report.
	securityPatterns int
}

func New(store *sqlite.Client, accountant *usage.Accountant, securityPatterns int, cfg Config) *Analyzer {
	if cfg.TrendMonths <= 0 {
		cfg.TrendMonths = 6
	}
	return &Analyzer{
		store:            store,
		accountant:       accountant,
		cfg:              cfg,
		securityPatterns: securityPatterns,
	}
}

type triggerGroup struct {
	keywords []string
	run      func(a *Analyzer, query, month string, out *Analysis) error
}

// The groups run in this order; later matches overwrite the classification
// label while earlier matches keep their data. This override-not-merge
// behavior is deliberate and load-bearing for downstream consumers.
var triggerGroups = []triggerGroup{
	{[]string{"total", "spend", "cost", "money", "dollar"}, (*Analyzer).runCost},
	{[]string{"service", "breakdown", "split"}, (*Analyzer).runServiceBreakdown},
	{[]string{"resource group", "resource_group", "group"}, (*Analyzer).runGroupBreakdown},
	{[]string{"increase", "decrease", "change", "trend", "vs", "compared"}, (*Analyzer).runTrend},
	{[]string{"idle", "unused", "waste", "optimize", "save"}, (*Analyzer).runOptimization},
	{[]string{"tag", "owner", "missing", "untagged"}, (*Analyzer).runGovernance},
	{[]string{"token", "security", "prompt", "injection"}, (*Analyzer).runSecurity},
}

// Analyze runs every trigger group whose keywords appear in the query. Store
// failures never propagate: they collapse the result to an error
// classification with no data.
func (a *Analyzer) Analyze(query string) *Analysis {
	out := &Analysis{
		QueryClassification:    ClassGeneral,
		MonthlyTotals:          map[string]MonthStat{},
		ServiceBreakdown:       map[string]CategoryStat{},
		ResourceGroupBreakdown: map[string]CategoryStat{},
	}

	lowered := strings.ToLower(query)
	month := extractMonth(lowered, a.cfg.DefaultYear)

	for _, group := range triggerGroups {
		if !matchesAny(lowered, group.keywords) {
			continue
		}
		if err := group.run(a, lowered, month, out); err != nil {
			logger.Error("Database analysis failed", zap.Error(err))
			return &Analysis{
				QueryClassification:    ClassError,
				Error:                  err.Error(),
				MonthlyTotals:          map[string]MonthStat{},
				ServiceBreakdown:       map[string]CategoryStat{},
				ResourceGroupBreakdown: map[string]CategoryStat{},
			}
		}
	}

	logger.Info("Database analysis completed",
		zap.String("classification", out.QueryClassification),
		zap.Bool("data_available", out.DataAvailable),
	)

	return out
}

func matchesAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

func (a *Analyzer) runCost(query, month string, out *Analysis) error {
	out.QueryClassification = ClassCostInquiry

	if month != "" {
		total, err := a.store.MonthTotal(month)
		if err != nil {
			return err
		}
		out.MonthlyTotals[month] = MonthStat{
			TotalCost:     total.TotalCost,
			ResourceCount: total.ResourceCount,
		}
		out.DataAvailable = true
		return nil
	}

	totals, err := a.store.MonthlyTotals(a.cfg.TrendMonths)
	if err != nil {
		return err
	}
	for _, t := range totals {
		out.MonthlyTotals[t.Month] = MonthStat{
			TotalCost:     t.TotalCost,
			ResourceCount: t.ResourceCount,
		}
	}
	if len(totals) > 0 {
		out.DataAvailable = true
	}
	return nil
}

func (a *Analyzer) runServiceBreakdown(query, month string, out *Analysis) error {
	services, err := a.store.ServiceBreakdown(month)
	if err != nil {
		return err
	}
	for _, s := range services {
		out.ServiceBreakdown[s.Name] = CategoryStat{Cost: s.Cost, Resources: s.ResourceCount}
	}
	if len(services) > 0 {
		out.DataAvailable = true
	}
	return nil
}

func (a *Analyzer) runGroupBreakdown(query, month string, out *Analysis) error {
	groups, err := a.store.ResourceGroupBreakdown(month, 10)
	if err != nil {
		return err
	}
	for _, g := range groups {
		out.ResourceGroupBreakdown[g.Name] = CategoryStat{Cost: g.Cost, Resources: g.ResourceCount}
	}
	if len(groups) > 0 {
		out.DataAvailable = true
	}
	return nil
}

func (a *Analyzer) runTrend(query, month string, out *Analysis) error {
	out.QueryClassification = ClassTrend

	trend, err := a.store.MonthlyTrend(a.cfg.TrendMonths)
	if err != nil {
		return err
	}
	out.TrendData = trend
	if len(trend) > 0 {
		out.DataAvailable = true
	}
	return nil
}

func (a *Analyzer) runOptimization(query, month string, out *Analysis) error {
	out.QueryClassification = ClassOptimization

	idle, err := a.store.IdleResources(a.cfg.IdleUsageBelow, a.cfg.IdleCostAbove, 10)
	if err != nil {
		return err
	}
	for i := range idle {
		idle[i].PotentialSavings = idle[i].Cost * savingsFactor
	}
	out.OptimizationOpportunities = idle
	if len(idle) > 0 {
		out.DataAvailable = true
	}
	return nil
}

func (a *Analyzer) runGovernance(query, month string, out *Analysis) error {
	out.QueryClassification = ClassGovernance

	untagged, err := a.store.UntaggedResources(a.cfg.UntaggedMinCost, 15)
	if err != nil {
		return err
	}
	out.UntaggedResources = untagged
	if len(untagged) > 0 {
		out.DataAvailable = true
	}
	return nil
}

func (a *Analyzer) runSecurity(query, month string, out *Analysis) error {
	out.QueryClassification = ClassSecurity

	stats := a.accountant.Snapshot()
	out.SecurityInfo = &SecurityInfo{
		TotalTokensUsed:           stats.TotalTokensUsed,
		TotalInputTokens:          stats.TotalInputTokens,
		TotalOutputTokens:         stats.TotalOutputTokens,
		TotalRequests:             stats.TotalRequests,
		TotalCost:                 stats.TotalCost,
		SessionDurationHours:      stats.SessionDurationHours,
		SecurityPatternsMonitored: a.securityPatterns,
		PromptInjectionPrevention: true,
		InputSanitization:         true,
	}
	out.DataAvailable = true
	return nil
}
