package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/cost-copilot/backend/internal/query"
	"github.com/cost-copilot/backend/internal/synth"
	"github.com/cost-copilot/backend/pkg/logger"
)

// WebSocketHandler streams answers word by word over a socket so the
// dashboard can render them as they arrive.
type WebSocketHandler struct {
	engine *query.Engine
}

func NewWebSocketHandler(engine *query.Engine) *WebSocketHandler {
	return &WebSocketHandler{engine: engine}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type     string `json:"type"`
			Question string `json:"question"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "ask" || msg.Question == "" {
			continue
		}

		if err := h.streamAnswer(c, msg.Question); err != nil {
			logger.Error("Failed to stream answer", zap.Error(err))
			h.sendError(c, "Failed to process question")
		}
	}
}

func (h *WebSocketHandler) streamAnswer(c *websocket.Conn, question string) error {
	if err := h.send(c, "status", "Processing question..."); err != nil {
		return err
	}

	answer := h.engine.Ask(context.Background(), question)

	words := strings.Fields(answer.Answer)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.send(c, "chunk", chunk); err != nil {
			return err
		}
	}

	return h.sendComplete(c, answer)
}

func (h *WebSocketHandler) send(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(map[string]interface{}{
		"type":    msgType,
		"content": content,
	})
}

func (h *WebSocketHandler) sendComplete(c *websocket.Conn, answer *synth.Answer) error {
	return c.WriteJSON(map[string]interface{}{
		"type":             "complete",
		"sources":          answer.Sources,
		"recommendations":  answer.Recommendations,
		"confidence":       answer.Confidence,
		"classification":   answer.QueryClassification,
		"insights_summary": answer.InsightsSummary,
		"token_usage":      answer.TokenUsage,
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
