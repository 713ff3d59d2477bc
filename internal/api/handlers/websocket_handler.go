package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/dijkstrabc/shittykbsystem/internal/genai"
	"github.com/dijkstrabc/shittykbsystem/pkg/logger"
)

// WebSocketHandler is the model test console: it forwards a message history
// to the generation endpoint in streaming mode and relays content deltas
// frame by frame.
type WebSocketHandler struct {
	genai *genai.Client
}

func NewWebSocketHandler(genaiClient *genai.Client) *WebSocketHandler {
	return &WebSocketHandler{genai: genaiClient}
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type     string          `json:"type"`
			Messages []genai.Message `json:"messages"`
		}

		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("WebSocket read ended", zap.Error(err))
			break
		}

		if msg.Type != "chat" || len(msg.Messages) == 0 {
			continue
		}

		if err := h.streamResponse(c, msg.Messages); err != nil {
			logger.Error("Failed to stream response", zap.Error(err))
			h.sendError(c, err.Error())
		}
	}
}

func (h *WebSocketHandler) streamResponse(c *websocket.Conn, messages []genai.Message) error {
	ctx := context.Background()

	err := h.genai.StreamChat(ctx, messages, func(delta string) error {
		return c.WriteJSON(map[string]interface{}{
			"type":    "chunk",
			"content": delta,
		})
	})
	if err != nil {
		return err
	}

	return c.WriteJSON(map[string]interface{}{
		"type": "complete",
	})
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, errorMsg string) {
	c.WriteJSON(map[string]interface{}{
		"type":  "error",
		"error": errorMsg,
	})
}
