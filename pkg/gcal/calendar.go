// Package gcal wraps the Google Calendar API for zephyr's tools.
//
// Every operation takes a resolved credential, makes a single best-effort
// API call, and returns a compact human-readable summary. There are no
// retries: transient failures come back as errors for the dispatcher to
// phrase, and the user decides whether to try again.
package gcal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/zephyrlabs/zephyr/pkg/googleauth"
)

// calendarID is the calendar every operation targets.
const calendarID = "primary"

// Event holds the typed arguments for scheduling a calendar event.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Client performs Google Calendar operations on behalf of one invocation.
type Client struct {
	tz *time.Location

	// opts overrides the authenticated transport; used by tests to point
	// the client at a stub server.
	opts []option.ClientOption
}

// New creates a calendar client. tz is the zone applied to timestamps
// that arrive without an explicit offset.
func New(tz *time.Location) *Client {
	if tz == nil {
		tz = time.UTC
	}
	return &Client{tz: tz}
}

func (c *Client) service(ctx context.Context, cred *googleauth.Credential) (*calendar.Service, error) {
	opts := c.opts
	if opts == nil {
		opts = []option.ClientOption{option.WithTokenSource(cred.TokenSource(ctx))}
	}
	return calendar.NewService(ctx, opts...)
}

// ParseTime parses an event timestamp. Values with an explicit offset are
// honored as-is; tz-naive 'YYYY-MM-DDTHH:MM:SS' values are interpreted in
// the client's configured zone.
func (c *Client) ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", s, c.tz)
}

// AddEvent creates an event on the primary calendar.
func (c *Client) AddEvent(ctx context.Context, cred *googleauth.Credential, ev Event) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating calendar service: %w", err)
	}

	tz := c.tz.String()
	body := &calendar.Event{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start: &calendar.EventDateTime{
			DateTime: ev.Start.Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: ev.End.Format(time.RFC3339),
			TimeZone: tz,
		},
	}

	created, err := svc.Events.Insert(calendarID, body).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Event created: %s starting %s", created.Summary, ev.Start.Format(time.RFC3339)), nil
}

// UpcomingEvents lists at most count events starting from now, in
// ascending start-time order (the query requests that ordering).
func (c *Client) UpcomingEvents(ctx context.Context, cred *googleauth.Credential, count int64) (string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return "", fmt.Errorf("creating calendar service: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := svc.Events.List(calendarID).
		TimeMin(now).
		MaxResults(count).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return "", err
	}

	if len(res.Items) == 0 {
		return "No upcoming events found.", nil
	}

	var b strings.Builder
	b.WriteString("Upcoming events:\n")
	for _, ev := range res.Items {
		start := ev.Start.DateTime
		if start == "" {
			start = ev.Start.Date // all-day events carry a date only
		}
		fmt.Fprintf(&b, "%s - %s\n", start, ev.Summary)
	}
	return b.String(), nil
}
