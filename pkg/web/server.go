// Package web provides the dashboard and OAuth consent surface for zephyr.
package web

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/zephyrlabs/zephyr/pkg/hub"
)

// State is the assistant snapshot shown on the dashboard.
type State struct {
	SessionConnected bool   `json:"session_connected"`
	Authenticated    bool   `json:"authenticated"`
	Identity         string `json:"identity"`
	LastUserMessage  string `json:"last_user_message"`
	LastReply        string `json:"last_reply"`
}

// LogEntry is one log line for the dashboard.
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, tool, auth, error
	Message string `json:"message"`
}

// ConversationEntry is one message in the conversation view.
type ConversationEntry struct {
	Time    string `json:"time"`
	Role    string `json:"role"` // user, assistant, tool
	Message string `json:"message"`
}

// ToolInfo describes one tool exposed on the dashboard.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Config wires the server to the rest of the application.
type Config struct {
	Port  string
	Tools []ToolInfo

	// OnToolTrigger dispatches a manually triggered tool by name.
	OnToolTrigger func(name string, args map[string]any) string

	// Auth handles the Google consent flow; nil disables /auth routes.
	Auth *AuthFlow
}

// Server is the web dashboard server.
type Server struct {
	app  *fiber.App
	port string

	state   State
	stateMu sync.RWMutex

	logs   []LogEntry
	logsMu sync.RWMutex

	conversation   []ConversationEntry
	conversationMu sync.RWMutex

	hub *hub.Hub

	tools         []ToolInfo
	onToolTrigger func(name string, args map[string]any) string
	auth          *AuthFlow
}

// NewServer creates a dashboard server. Call Start to serve.
func NewServer(cfg Config) *Server {
	s := &Server{
		port:          cfg.Port,
		logs:          make([]LogEntry, 0, 500),
		conversation:  make([]ConversationEntry, 0, 100),
		hub:           hub.New(),
		tools:         cfg.Tools,
		onToolTrigger: cfg.OnToolTrigger,
		auth:          cfg.Auth,
	}

	app := fiber.New(fiber.Config{
		AppName:               "Zephyr Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/tools", s.handleListTools)
	api.Post("/tools/:name", s.handleTriggerTool)
	api.Get("/logs", s.handleGetLogs)
	api.Get("/conversation", s.handleGetConversation)

	if s.auth != nil {
		app.Get("/auth/start", s.auth.handleStart)
		app.Get("/auth/callback", s.auth.handleCallback)
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	return s.app.Listen(":" + s.port)
}

// UpdateState applies a mutation to the state and broadcasts the result.
func (s *Server) UpdateState(update func(*State)) {
	s.stateMu.Lock()
	update(&s.state)
	state := s.state
	s.stateMu.Unlock()

	s.hub.Broadcast("status", hub.Event{Type: "status", Data: state})
}

// AddLog records a log entry and broadcasts it to live clients.
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > 500 {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.hub.Broadcast("logs", hub.Event{Type: logType, Data: entry})
}

// AddConversation records a conversation message.
func (s *Server) AddConversation(role, message string) {
	entry := ConversationEntry{
		Time:    time.Now().Format("15:04:05"),
		Role:    role,
		Message: message,
	}

	s.conversationMu.Lock()
	s.conversation = append(s.conversation, entry)
	if len(s.conversation) > 100 {
		s.conversation = s.conversation[1:]
	}
	s.conversationMu.Unlock()
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
