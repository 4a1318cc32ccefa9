// Package gmail wraps the Gmail API for zephyr's tools.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/zephyrlabs/zephyr/pkg/googleauth"
)

// userID addresses the authenticated mailbox.
const userID = "me"

// Client performs Gmail operations on behalf of one invocation.
type Client struct {
	// opts overrides the authenticated transport; used by tests.
	opts []option.ClientOption
}

// New creates a Gmail client.
func New() *Client {
	return &Client{}
}

func (c *Client) service(ctx context.Context, cred *googleauth.Credential) (*gmailv1.Service, error) {
	opts := c.opts
	if opts == nil {
		opts = []option.ClientOption{option.WithTokenSource(cred.TokenSource(ctx))}
	}
	return gmailv1.NewService(ctx, opts...)
}

// Send sends a plain-text email from the authenticated account.
func (c *Client) Send(ctx context.Context, cred *googleauth.Credential, to, subject, body string) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating gmail service: %w", err)
	}

	var raw strings.Builder
	fmt.Fprintf(&raw, "To: %s\r\n", to)
	fmt.Fprintf(&raw, "Subject: %s\r\n", subject)
	raw.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	raw.WriteString("\r\n")
	raw.WriteString(body)

	msg := &gmailv1.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(raw.String())),
	}
	if _, err := svc.Users.Messages.Send(userID, msg).Context(ctx).Do(); err != nil {
		return "", err
	}
	return fmt.Sprintf("Email sent to %s.", to), nil
}

// Unread summarizes the n most recent unread emails as
// From/Subject/Labels blocks separated by "---".
func (c *Client) Unread(ctx context.Context, cred *googleauth.Credential, n int64) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating gmail service: %w", err)
	}

	list, err := svc.Users.Messages.List(userID).Q("is:unread").MaxResults(n).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if len(list.Messages) == 0 {
		return "No unread emails found.", nil
	}

	var entries []string
	for _, m := range list.Messages {
		msg, err := svc.Users.Messages.Get(userID, m.Id).Context(ctx).Do()
		if err != nil {
			return "", err
		}

		var from, subject string
		if msg.Payload != nil {
			for _, h := range msg.Payload.Headers {
				switch h.Name {
				case "From":
					from = h.Value
				case "Subject":
					subject = h.Value
				}
			}
		}
		entries = append(entries, fmt.Sprintf("From: %s\nSubject: %s\nLabels: %s",
			from, subject, strings.Join(msg.LabelIds, ", ")))
	}
	return strings.Join(entries, "\n---\n"), nil
}
