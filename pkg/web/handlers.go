package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// handleStatus returns the current assistant state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleListTools returns the tools the assistant exposes.
func (s *Server) handleListTools(c *fiber.Ctx) error {
	return c.JSON(s.tools)
}

// TriggerToolRequest is the request body for triggering a tool.
type TriggerToolRequest struct {
	Args map[string]any `json:"args"`
}

// handleTriggerTool dispatches a tool manually from the dashboard.
func (s *Server) handleTriggerTool(c *fiber.Ctx) error {
	name := c.Params("name")

	var req TriggerToolRequest
	if err := c.BodyParser(&req); err != nil {
		req.Args = make(map[string]any)
	}

	if s.onToolTrigger == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "tool trigger not configured",
		})
	}

	result := s.onToolTrigger(name, req.Args)
	s.AddLog("tool", "Manual: "+name+" → "+result)

	return c.JSON(fiber.Map{
		"tool":   name,
		"result": result,
	})
}

// handleGetLogs returns recent log entries.
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleGetConversation returns the recent conversation.
func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	s.conversationMu.RLock()
	defer s.conversationMu.RUnlock()
	return c.JSON(s.conversation)
}

// handleLogsWS streams log entries to a websocket client, replaying
// the buffer first.
func (s *Server) handleLogsWS(c *websocket.Conn) {
	s.logsMu.RLock()
	for _, entry := range s.logs {
		c.WriteJSON(entry)
	}
	s.logsMu.RUnlock()

	s.pump(c, "logs")
}

// handleStatusWS streams state snapshots to a websocket client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.stateMu.RLock()
	c.WriteJSON(s.state)
	s.stateMu.RUnlock()

	s.pump(c, "status")
}

// pump forwards hub events to the socket until either side closes.
func (s *Server) pump(c *websocket.Conn, topic string) {
	client := s.hub.Subscribe(topic)
	defer s.hub.Unsubscribe(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload, ok := <-client.Recv():
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
