package handlers

import (
	"regexp"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/storage/sqlite"
	"github.com/cost-copilot/backend/pkg/logger"
)

var monthParamPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type KPIHandler struct {
	db          *sqlite.Client
	trendMonths int
}

func NewKPIHandler(db *sqlite.Client, trendMonths int) *KPIHandler {
	if trendMonths <= 0 {
		trendMonths = 6
	}
	return &KPIHandler{db: db, trendMonths: trendMonths}
}

// HandleKPI serves the dashboard aggregates: monthly total, breakdowns,
// trend, and the most expensive resources.
func (h *KPIHandler) HandleKPI(c *fiber.Ctx) error {
	month := c.Query("month")
	if month != "" && !monthParamPattern.MatchString(month) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "month must be in YYYY-MM format",
		})
	}

	trend, err := h.db.MonthlyTrend(h.trendMonths)
	if err != nil {
		logger.Error("Failed to query trend", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Billing store unavailable",
		})
	}

	// Default to the most recent month with data.
	if month == "" && len(trend) > 0 {
		month = trend[0].Month
	}

	total, err := h.db.MonthTotal(month)
	if err != nil {
		logger.Error("Failed to query month total", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Billing store unavailable",
		})
	}

	services, err := h.db.ServiceBreakdown(month)
	if err != nil {
		logger.Error("Failed to query service breakdown", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Billing store unavailable",
		})
	}

	groups, err := h.db.ResourceGroupBreakdown(month, 10)
	if err != nil {
		logger.Error("Failed to query resource group breakdown", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Billing store unavailable",
		})
	}

	topResources, err := h.db.TopResources(month, 10)
	if err != nil {
		logger.Error("Failed to query top resources", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Billing store unavailable",
		})
	}

	serviceBreakdown := make(map[string]float64, len(services))
	for _, s := range services {
		serviceBreakdown[s.Name] = s.Cost
	}
	groupBreakdown := make(map[string]float64, len(groups))
	for _, g := range groups {
		groupBreakdown[g.Name] = g.Cost
	}

	top := make([]fiber.Map, 0, len(topResources))
	for _, r := range topResources {
		top = append(top, fiber.Map{"resource_id": r.Name, "cost": r.Cost})
	}

	return c.JSON(fiber.Map{
		"monthly_total":            total.TotalCost,
		"resource_count":           total.ResourceCount,
		"service_count":            len(services),
		"resource_group_count":     len(groups),
		"service_breakdown":        serviceBreakdown,
		"resource_group_breakdown": groupBreakdown,
		"trend_data":               trend,
		"top_resources":            top,
		"month_filter":             month,
		"generated_at":             time.Now().UTC().Format(time.RFC3339),
	})
}
