// Package realtime provides a client for OpenAI's Realtime API, the
// session orchestrator that turns conversational turns into tool calls.
package realtime

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zephyrlabs/zephyr/internal/log"
)

const (
	// RealtimeURL is the websocket endpoint for the Realtime API.
	RealtimeURL = "wss://api.openai.com/v1/realtime"

	// DefaultModel is the speech-to-speech model used for sessions.
	DefaultModel = "gpt-4o-realtime-preview-2024-12-17"
)

// Tool represents a function the assistant can invoke during conversation.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     func(args map[string]any) (string, error)
}

// Client manages one websocket session with the Realtime API.
type Client struct {
	apiKey string
	model  string

	ws   *websocket.Conn
	wsMu sync.Mutex

	tools    []Tool
	toolsMap map[string]Tool

	// Written by Connect/readLoop/Close and read from other goroutines.
	connected    atomic.Bool
	sessionReady atomic.Bool
	closed       atomic.Bool
	closeOnce    sync.Once

	// Callbacks
	OnTranscript     func(text string, isFinal bool)
	OnAudioDelta     func(audioBase64 string)
	OnAudioDone      func()
	OnToolResult     func(name, result string)
	OnError          func(err error)
	OnSessionCreated func()
	OnSpeechStarted  func()
	OnSpeechStopped  func()
}

// NewClient creates a new Realtime API client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		model:    DefaultModel,
		toolsMap: make(map[string]Tool),
	}
}

// RegisterTool adds a tool the assistant can use during conversation.
// Must be called before ConfigureSession.
func (c *Client) RegisterTool(tool Tool) {
	c.tools = append(c.tools, tool)
	c.toolsMap[tool.Name] = tool
}

// Connect establishes the websocket connection and starts the reader.
func (c *Client) Connect() error {
	url := fmt.Sprintf("%s?model=%s", RealtimeURL, c.model)

	header := map[string][]string{
		"Authorization": {"Bearer " + c.apiKey},
		"OpenAI-Beta":   {"realtime=v1"},
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	var err error
	c.ws, _, err = dialer.Dial(url, header)
	if err != nil {
		return fmt.Errorf("connecting to Realtime API: %w", err)
	}

	c.ws.SetPingHandler(func(appData string) error {
		c.wsMu.Lock()
		defer c.wsMu.Unlock()
		return c.ws.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})
	c.ws.SetReadDeadline(time.Now().Add(120 * time.Second))

	c.connected.Store(true)

	go c.readLoop()
	go c.keepAlive()

	return nil
}

// keepAlive sends periodic pings so idle sessions stay up.
func (c *Client) keepAlive() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		c.wsMu.Lock()
		if c.ws == nil || c.closed.Load() {
			c.wsMu.Unlock()
			return
		}
		err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
		c.wsMu.Unlock()
		if err != nil {
			return
		}
	}
}

// ConfigureSession sets the session instructions, voice and tool schemas.
func (c *Client) ConfigureSession(instructions, voice string) error {
	if voice == "" {
		voice = "alloy"
	}

	apiTools := make([]map[string]any, len(c.tools))
	for i, tool := range c.tools {
		apiTools[i] = map[string]any{
			"type":        "function",
			"name":        tool.Name,
			"description": tool.Description,
			"parameters": map[string]any{
				"type":       "object",
				"properties": tool.Parameters,
				"required":   []string{},
			},
		}
	}

	return c.send(map[string]any{
		"type": "session.update",
		"session": map[string]any{
			"modalities":          []string{"text", "audio"},
			"instructions":        instructions,
			"voice":               voice,
			"input_audio_format":  "pcm16",
			"output_audio_format": "pcm16",
			"input_audio_transcription": map[string]any{
				"model": "whisper-1",
			},
			"turn_detection": map[string]any{
				"type": "server_vad",
			},
			"tools":       apiTools,
			"tool_choice": "auto",
		},
	})
}

// SendAudio appends PCM16 audio to the session's input buffer.
func (c *Client) SendAudio(pcm16 []byte) error {
	if !c.connected.Load() {
		return fmt.Errorf("realtime: not connected")
	}
	return c.send(map[string]any{
		"type":  "input_audio_buffer.append",
		"audio": base64.StdEncoding.EncodeToString(pcm16),
	})
}

// SendText injects a user text message and requests a response. Useful
// for testing sessions without a microphone.
func (c *Client) SendText(text string) error {
	err := c.send(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type": "message",
			"role": "user",
			"content": []map[string]any{
				{"type": "input_text", "text": text},
			},
		},
	})
	if err != nil {
		return err
	}
	return c.send(map[string]any{"type": "response.create"})
}

// CancelResponse interrupts the current response (barge-in).
func (c *Client) CancelResponse() error {
	return c.send(map[string]any{"type": "response.cancel"})
}

// Close shuts down the websocket connection.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.ws != nil {
			c.ws.Close()
		}
	})
}

// IsConnected reports whether the client holds a live connection.
func (c *Client) IsConnected() bool {
	return c.connected.Load() && !c.closed.Load()
}

// IsReady reports whether the session is configured for conversation.
func (c *Client) IsReady() bool {
	return c.sessionReady.Load()
}

// readLoop processes incoming websocket events.
func (c *Client) readLoop() {
	for !c.closed.Load() {
		c.ws.SetReadDeadline(time.Now().Add(120 * time.Second))

		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if !c.closed.Load() && c.OnError != nil {
				c.OnError(err)
			}
			return
		}

		var msg map[string]any
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		msgType, _ := msg["type"].(string)
		switch msgType {
		case "session.created":
			c.sessionReady.Store(true)
			if c.OnSessionCreated != nil {
				c.OnSessionCreated()
			}

		case "input_audio_buffer.speech_started":
			if c.OnSpeechStarted != nil {
				c.OnSpeechStarted()
			}

		case "input_audio_buffer.speech_stopped":
			if c.OnSpeechStopped != nil {
				c.OnSpeechStopped()
			}

		case "conversation.item.input_audio_transcription.completed":
			if transcript, ok := msg["transcript"].(string); ok && c.OnTranscript != nil {
				c.OnTranscript(transcript, true)
			}

		case "response.audio.delta":
			if delta, ok := msg["delta"].(string); ok && c.OnAudioDelta != nil {
				c.OnAudioDelta(delta)
			}

		case "response.audio.done":
			if c.OnAudioDone != nil {
				c.OnAudioDone()
			}

		case "response.audio_transcript.delta":
			if delta, ok := msg["delta"].(string); ok && c.OnTranscript != nil {
				c.OnTranscript(delta, false)
			}

		case "response.function_call_arguments.done":
			c.handleFunctionCall(msg)

		case "error":
			if errData, ok := msg["error"].(map[string]any); ok {
				if errMsg, ok := errData["message"].(string); ok && c.OnError != nil {
					c.OnError(fmt.Errorf("realtime API error: %s", errMsg))
				}
			}
		}
	}
}

// handleFunctionCall runs a registered tool and returns its result to the
// session so the conversation continues. A tool that is missing or fails
// still produces a string; the session must never stall on a tool call.
func (c *Client) handleFunctionCall(msg map[string]any) {
	name, _ := msg["name"].(string)
	callID, _ := msg["call_id"].(string)
	argsStr, _ := msg["arguments"].(string)

	log.Info("tool invoked", "tool", name, "args", argsStr)

	var args map[string]any
	json.Unmarshal([]byte(argsStr), &args)

	var result string
	if tool, ok := c.toolsMap[name]; ok && tool.Handler != nil {
		var err error
		result, err = tool.Handler(args)
		if err != nil {
			log.Error("tool handler failed", "tool", name, "err", err)
			result = "An unexpected error occurred."
		}
	} else {
		log.Warn("tool not registered", "tool", name)
		result = fmt.Sprintf("I don't have a tool called %s.", name)
	}

	if c.OnToolResult != nil {
		c.OnToolResult(name, result)
	}

	c.send(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  result,
		},
	})
	c.send(map[string]any{"type": "response.create"})
}

// send writes one client event, tagging it with an event id.
func (c *Client) send(v map[string]any) error {
	c.wsMu.Lock()
	defer c.wsMu.Unlock()

	if c.ws == nil {
		return fmt.Errorf("realtime: not connected")
	}
	if _, ok := v["event_id"]; !ok {
		v["event_id"] = uuid.NewString()
	}
	return c.ws.WriteJSON(v)
}
