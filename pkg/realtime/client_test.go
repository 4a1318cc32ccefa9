package realtime

import (
	"errors"
	"testing"
)

func TestFunctionCallDispatch(t *testing.T) {
	c := NewClient("test-key")

	var gotArgs map[string]any
	c.RegisterTool(Tool{
		Name: "lookup_weather",
		Handler: func(args map[string]any) (string, error) {
			gotArgs = args
			return "sunny with a temperature of 70 degrees.", nil
		},
	})

	var gotName, gotResult string
	c.OnToolResult = func(name, result string) {
		gotName, gotResult = name, result
	}

	c.handleFunctionCall(map[string]any{
		"name":      "lookup_weather",
		"call_id":   "call_1",
		"arguments": `{"location":"Paris"}`,
	})

	if gotName != "lookup_weather" {
		t.Errorf("dispatched %q, want lookup_weather", gotName)
	}
	if gotResult != "sunny with a temperature of 70 degrees." {
		t.Errorf("result = %q", gotResult)
	}
	if gotArgs["location"] != "Paris" {
		t.Errorf("args = %v, want location Paris", gotArgs)
	}
}

func TestConnectionStateFlags(t *testing.T) {
	c := NewClient("test-key")

	if c.IsConnected() {
		t.Error("new client reports connected")
	}
	if c.IsReady() {
		t.Error("new client reports session ready")
	}

	// Concurrent closes and state reads must be safe even when the
	// client never dialed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			c.IsConnected()
			c.IsReady()
		}
	}()
	c.Close()
	c.Close()
	<-done

	if c.IsConnected() {
		t.Error("closed client reports connected")
	}
	if err := c.SendAudio([]byte{0, 0}); err == nil {
		t.Error("SendAudio on unconnected client did not fail")
	}
}

func TestFunctionCallUnknownTool(t *testing.T) {
	c := NewClient("test-key")

	var gotResult string
	c.OnToolResult = func(name, result string) { gotResult = result }

	c.handleFunctionCall(map[string]any{
		"name":      "no_such_tool",
		"call_id":   "call_2",
		"arguments": `{}`,
	})

	if gotResult != "I don't have a tool called no_such_tool." {
		t.Errorf("result = %q", gotResult)
	}
}

func TestFunctionCallHandlerFailure(t *testing.T) {
	c := NewClient("test-key")
	c.RegisterTool(Tool{
		Name: "broken",
		Handler: func(args map[string]any) (string, error) {
			return "", errors.New("boom")
		},
	})

	var gotResult string
	c.OnToolResult = func(name, result string) { gotResult = result }

	c.handleFunctionCall(map[string]any{
		"name":      "broken",
		"call_id":   "call_3",
		"arguments": `{}`,
	})

	if gotResult != "An unexpected error occurred." {
		t.Errorf("result = %q, internal failure must not leak", gotResult)
	}
}
