package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cost-copilot/backend/internal/analyzer"
	"github.com/cost-copilot/backend/internal/knowledge"
	"github.com/cost-copilot/backend/internal/query"
	"github.com/cost-copilot/backend/internal/security"
	"github.com/cost-copilot/backend/internal/storage/models"
	"github.com/cost-copilot/backend/internal/storage/sqlite"
	"github.com/cost-copilot/backend/internal/synth"
	"github.com/cost-copilot/backend/internal/usage"
)

func newTestStore(t *testing.T) *sqlite.Client {
	t.Helper()
	store, err := sqlite.NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.InitSchema())
	return store
}

func seedBilling(t *testing.T, store *sqlite.Client, month, service, group, resourceID string, cost float64) {
	t.Helper()
	require.NoError(t, store.InsertBillingRecord(&models.BillingRecord{
		InvoiceMonth:  month,
		AccountID:     "acc-prod-001",
		Subscription:  "sub-main-prod",
		Service:       service,
		ResourceGroup: group,
		ResourceID:    resourceID,
		Region:        "East US",
		UsageQty:      10,
		UnitCost:      cost / 10,
		Cost:          cost,
	}))
}

func TestHandleKPIDefaultsToLatestMonth(t *testing.T) {
	store := newTestStore(t)
	seedBilling(t, store, "2024-06", "Compute", "prod-app-rg", "vm-1", 100)
	seedBilling(t, store, "2024-07", "Compute", "prod-app-rg", "vm-1", 300)
	seedBilling(t, store, "2024-07", "Storage", "dev-rg", "disk-1", 200)

	app := fiber.New()
	app.Get("/api/v1/kpi", NewKPIHandler(store, 6).HandleKPI)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/kpi", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		MonthlyTotal     float64            `json:"monthly_total"`
		MonthFilter      string             `json:"month_filter"`
		ServiceBreakdown map[string]float64 `json:"service_breakdown"`
		TrendData        []struct {
			Month string  `json:"month"`
			Cost  float64 `json:"cost"`
		} `json:"trend_data"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, "2024-07", payload.MonthFilter)
	assert.InDelta(t, 500, payload.MonthlyTotal, 1e-6)
	assert.InDelta(t, 300, payload.ServiceBreakdown["Compute"], 1e-6)
	require.Len(t, payload.TrendData, 2)
	assert.Equal(t, "2024-07", payload.TrendData[0].Month)
}

func TestHandleKPIRejectsBadMonthParam(t *testing.T) {
	app := fiber.New()
	app.Get("/api/v1/kpi", NewKPIHandler(newTestStore(t), 6).HandleKPI)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/kpi?month=july", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func newTestEngine(t *testing.T, store *sqlite.Client) *query.Engine {
	t.Helper()
	gate := security.NewGate()
	accountant := usage.NewAccountant(0, 7)
	retriever := knowledge.NewRetriever(context.Background(), knowledge.Corpus(), nil, 0)
	dbAnalyzer := analyzer.New(store, accountant, gate.PatternCount(), analyzer.Config{DefaultYear: "2024", TrendMonths: 6})
	synthesizer := synth.New(nil, accountant, synth.Pricing{})
	return query.NewEngine(gate, retriever, dbAnalyzer, synthesizer, store, nil, 5)
}

func TestHandleAskValidatesBody(t *testing.T) {
	store := newTestStore(t)
	app := fiber.New()
	app.Post("/api/v1/ask", NewAskHandler(newTestEngine(t, store)).HandleAsk)

	req := httptest.NewRequest("POST", "/api/v1/ask", strings.NewReader(`{"question":""}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleAskReturnsAnswer(t *testing.T) {
	store := newTestStore(t)
	seedBilling(t, store, "2024-07", "Compute", "prod-app-rg", "vm-1", 250)

	app := fiber.New()
	app.Post("/api/v1/ask", NewAskHandler(newTestEngine(t, store)).HandleAsk)

	req := httptest.NewRequest("POST", "/api/v1/ask", strings.NewReader(`{"question":"what was my total spend in july 2024"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var answer synth.Answer
	require.NoError(t, json.Unmarshal(body, &answer))
	assert.Equal(t, analyzer.ClassCostInquiry, answer.QueryClassification)
	assert.True(t, answer.DataAvailable)
	assert.NotEmpty(t, answer.Answer)
}
