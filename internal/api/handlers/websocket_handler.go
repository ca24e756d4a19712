package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/smartcity-agent/backend/internal/query"
	"github.com/smartcity-agent/backend/pkg/logger"
)

// WebSocketHandler serves the chat widget: it answers query messages by
// streaming the generated response word by word, then a completion frame
// with the structured fields.
type WebSocketHandler struct {
	engine *query.Engine
}

func NewWebSocketHandler(engine *query.Engine) *WebSocketHandler {
	return &WebSocketHandler{
		engine: engine,
	}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type  string `json:"type"`
			Query string `json:"query"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read finished", zap.Error(err))
			break
		}

		if msg.Type != "query" {
			continue
		}

		logger.Info("Processing WebSocket query", zap.String("query", msg.Query))

		if err := h.streamResponse(c, msg.Query); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, "Failed to process query")
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, queryText string) error {
	result, err := h.engine.ProcessQuery(context.Background(), queryText)
	if err != nil {
		h.sendError(c, "Query is required")
		return nil
	}

	words := splitIntoWords(result.Response)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 && word != "\n" {
			chunk += " "
		}

		if err := h.sendFrame(c, map[string]interface{}{
			"type":    "chunk",
			"content": chunk,
		}); err != nil {
			return err
		}
	}

	return h.sendFrame(c, map[string]interface{}{
		"type":           "complete",
		"classification": result.Classification,
		"node_ids":       result.NodeIDs,
		"is_temporal":    result.IsTemporal,
		"time_period":    result.TimePeriod,
	})
}

func (h *WebSocketHandler) sendFrame(c *websocket.Conn, msg map[string]interface{}) error {
	return c.WriteJSON(msg)
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}

func splitIntoWords(text string) []string {
	words := []string{}
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		words = append(words, fields...)
		words = append(words, "\n")
	}
	if len(words) > 0 {
		return words[:len(words)-1]
	}
	return words
}
