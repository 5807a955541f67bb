package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cost-copilot/backend/internal/usage"
)

type UsageHandler struct {
	accountant *usage.Accountant
}

func NewUsageHandler(accountant *usage.Accountant) *UsageHandler {
	return &UsageHandler{accountant: accountant}
}

func (h *UsageHandler) HandleUsage(c *fiber.Ctx) error {
	return c.JSON(h.accountant.Snapshot())
}
