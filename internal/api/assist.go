package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/SVPraveen1/health-ai-sub000/internal/assess"
	apperrors "github.com/SVPraveen1/health-ai-sub000/internal/errors"
)

const chatSystemPrompt = `You are a supportive health assistant. You can discuss the user's logged vitals, sleep, activity, medications and goals in general terms. You never diagnose, and you recommend seeing a doctor for anything concerning.`

func assistantStatus(err error) int {
	switch err {
	case apperrors.ErrRateLimited:
		return 429
	case apperrors.ErrCompletionUnavailable:
		return 503
	default:
		return 500
	}
}

func (s *Server) handleAssess(c *fiber.Ctx) error {
	if s.assessor == nil {
		return c.Status(503).JSON(fiber.Map{"error": apperrors.ErrCompletionUnavailable.Message})
	}

	var req assess.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if len(req.Symptoms) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "symptoms are required"})
	}

	if s.metrics != nil {
		s.metrics.CompletionCalls.Inc()
	}

	result, err := s.assessor.Assess(c.Context(), req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CompletionErrors.Inc()
		}
		s.logger.Error("Assessment failed", zap.Error(err))
		return c.Status(assistantStatus(err)).JSON(fiber.Map{"error": "assessment unavailable"})
	}

	return c.JSON(result)
}

func (s *Server) handleChat(c *fiber.Ctx) error {
	if s.completer == nil {
		return c.Status(503).JSON(fiber.Map{"error": apperrors.ErrCompletionUnavailable.Message})
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	if s.metrics != nil {
		s.metrics.CompletionCalls.Inc()
	}

	content, err := s.completer.Complete(c.Context(), chatSystemPrompt, req.Message)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CompletionErrors.Inc()
		}
		s.logger.Error("Chat failed", zap.Error(err))
		return c.Status(assistantStatus(err)).JSON(fiber.Map{"error": "chat unavailable"})
	}

	return c.JSON(fiber.Map{"content": content})
}

func (s *Server) handleChatStream(c *fiber.Ctx) error {
	if s.completer == nil {
		return c.Status(503).JSON(fiber.Map{"error": apperrors.ErrCompletionUnavailable.Message})
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
	}
	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	if s.metrics != nil {
		s.metrics.CompletionCalls.Inc()
	}

	var full strings.Builder
	err := s.completer.CompleteStream(c.Context(), chatSystemPrompt, req.Message, func(chunk string) {
		full.WriteString(chunk)
		data, _ := json.Marshal(fiber.Map{"chunk": chunk})
		fmt.Fprintf(c, "data: %s\n\n", data)
	})

	if err != nil {
		if s.metrics != nil {
			s.metrics.CompletionErrors.Inc()
		}
		data, _ := json.Marshal(fiber.Map{"error": err.Error()})
		fmt.Fprintf(c, "data: %s\n\n", data)
	}

	fmt.Fprint(c, "data: [DONE]\n\n")
	return nil
}

func (s *Server) handleWebSocket(c *websocket.Conn) {
	defer c.Close()

	for {
		mt, msg, err := c.ReadMessage()
		if err != nil {
			break
		}

		if mt != websocket.TextMessage {
			continue
		}

		var req struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(msg, &req); err != nil || req.Message == "" {
			c.WriteJSON(fiber.Map{"type": "error", "content": "invalid message format"})
			continue
		}

		if s.completer == nil {
			c.WriteJSON(fiber.Map{"type": "error", "content": apperrors.ErrCompletionUnavailable.Message})
			continue
		}

		err = s.completer.CompleteStream(context.Background(), chatSystemPrompt, req.Message, func(chunk string) {
			c.WriteJSON(fiber.Map{"type": "chunk", "content": chunk})
		})

		if err != nil {
			c.WriteJSON(fiber.Map{"type": "error", "content": err.Error()})
		} else {
			c.WriteJSON(fiber.Map{"type": "done"})
		}
	}
}
