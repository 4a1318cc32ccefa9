// Package assistant implements zephyr's credential-gated tool dispatch.
//
// Every capability tool passes through the same gate: resolve the
// caller's stored Google credential, refuse with a fixed prompt when none
// resolves, and otherwise forward to the matching capability client. The
// result crossing back to the conversational runtime is always a single
// user-presentable string; no tool call raises past this boundary.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/zephyrlabs/zephyr/internal/log"
	"github.com/zephyrlabs/zephyr/pkg/credstore"
	"github.com/zephyrlabs/zephyr/pkg/gcal"
	"github.com/zephyrlabs/zephyr/pkg/googleauth"
)

// Instructions is the system prompt for the voice session.
const Instructions = `You are a helpful voice AI assistant called Zephyr.
Speak in French by default.
The user is interacting with you via voice, even if you perceive the conversation as text.
You eagerly assist users with their questions by providing information from your extensive knowledge.
Your responses are concise, to the point, and without complex formatting or punctuation including emojis, asterisks, or other symbols.
You are curious, friendly, and have a sense of humor.
Do not hesitate to use the appropriate tool to determine the current date.`

// User-facing result strings shared across tools.
const (
	// AuthPrompt is returned by every gated tool when no credential
	// resolves for the caller.
	AuthPrompt = "Please authenticate with Google first."

	// msgUnexpected hides internal failures from the user; the cause is
	// logged for operators instead.
	msgUnexpected = "An unexpected error occurred."
)

// Calendar is the capability surface for Google Calendar.
type Calendar interface {
	// ParseTime normalizes an event timestamp, applying the configured
	// zone to tz-naive values.
	ParseTime(s string) (time.Time, error)
	AddEvent(ctx context.Context, cred *googleauth.Credential, ev gcal.Event) (string, error)
	UpcomingEvents(ctx context.Context, cred *googleauth.Credential, count int64) (string, error)
}

// Mail is the capability surface for Gmail.
type Mail interface {
	Send(ctx context.Context, cred *googleauth.Credential, to, subject, body string) (string, error)
	Unread(ctx context.Context, cred *googleauth.Credential, n int64) (string, error)
}

// Tasks is the capability surface for Google Tasks.
type Tasks interface {
	TaskLists(ctx context.Context, cred *googleauth.Credential) (string, error)
	Tasks(ctx context.Context, cred *googleauth.Credential, listID string) (string, error)
	Create(ctx context.Context, cred *googleauth.Credential, listID, title, notes string) (string, error)
	Update(ctx context.Context, cred *googleauth.Credential, listID, taskID, title, notes string) (string, error)
	Delete(ctx context.Context, cred *googleauth.Credential, listID, taskID string) (string, error)
}

// Config holds the assistant's dependencies, injected at startup.
type Config struct {
	Store    credstore.Store
	Resolver *googleauth.Resolver
	Calendar Calendar
	Mail     Mail
	Tasks    Tasks

	// Now overrides the clock; defaults to time.Now.
	Now func() time.Time
}

// Assistant dispatches tool calls for the conversational runtime.
type Assistant struct {
	store    credstore.Store
	resolver *googleauth.Resolver
	calendar Calendar
	mail     Mail
	tasks    Tasks
	now      func() time.Time
}

// New creates an assistant from its dependencies.
func New(cfg Config) (*Assistant, error) {
	if cfg.Store == nil {
		return nil, errors.New("assistant: credential store is required")
	}
	if cfg.Resolver == nil {
		return nil, errors.New("assistant: credential resolver is required")
	}
	if cfg.Calendar == nil || cfg.Mail == nil || cfg.Tasks == nil {
		return nil, errors.New("assistant: calendar, mail and tasks clients are required")
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Assistant{
		store:    cfg.Store,
		resolver: cfg.Resolver,
		calendar: cfg.Calendar,
		mail:     cfg.Mail,
		tasks:    cfg.Tasks,
		now:      now,
	}, nil
}

// credentials is the authorization gate. It returns the resolved
// credential, or a user-facing message when the call must not proceed.
func (a *Assistant) credentials(ctx context.Context, identity string) (*googleauth.Credential, string) {
	cred, err := a.resolver.Resolve(ctx, identity)
	if err != nil {
		// Infrastructure trouble, not a missing login. Never report this
		// as "please authenticate": the user's record may be fine.
		log.Error("credential store unreachable", "identity", identity, "err", err)
		return nil, msgUnexpected
	}
	if cred == nil {
		return nil, AuthPrompt
	}
	return cred, ""
}

// collapse folds a capability client result into the single string the
// conversational runtime consumes. Upstream rejections keep their detail;
// anything else is logged and replaced with generic prose.
func collapse(tool, result string, err error) string {
	if err == nil {
		return result
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		log.Warn("upstream rejected tool call", "tool", tool, "code", gerr.Code)
		return fmt.Sprintf("An error occurred: %v", gerr)
	}
	log.Error("tool call failed", "tool", tool, "err", err)
	return msgUnexpected
}

// UpdateCredentials writes a credential blob for an identity. This is the
// only path that creates or refreshes a stored record, shared by the
// update_google_creds tool and the web consent flow. It is deliberately
// ungated.
func (a *Assistant) UpdateCredentials(ctx context.Context, identity string, blob []byte) error {
	log.Info("updating google credentials", "identity", identity)
	return a.store.Save(ctx, identity, blob)
}
