package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/query"
	"github.com/cost-copilot/backend/pkg/logger"
)

type AskHandler struct {
	engine *query.Engine
}

func NewAskHandler(engine *query.Engine) *AskHandler {
	return &AskHandler{engine: engine}
}

func (h *AskHandler) HandleAsk(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	answer := h.engine.Ask(c.Context(), req.Question)

	return c.JSON(answer)
}
