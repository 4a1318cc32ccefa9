package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func mustLoc(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%s): %v", name, err)
	}
	return loc
}

func stubClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(mustLoc(t, "Europe/Paris"))
	c.opts = []option.ClientOption{
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	}
	return c
}

func TestParseTime(t *testing.T) {
	paris := mustLoc(t, "Europe/Paris")
	c := New(paris)

	tests := []struct {
		name  string
		in    string
		want  time.Time
		isErr bool
	}{
		{
			name: "naive local time gets the configured zone",
			in:   "2026-09-01T14:30:00",
			want: time.Date(2026, 9, 1, 14, 30, 0, 0, paris),
		},
		{
			name: "explicit offset is honored",
			in:   "2026-09-01T14:30:00+02:00",
			want: time.Date(2026, 9, 1, 14, 30, 0, 0, time.FixedZone("", 2*3600)),
		},
		{
			name: "utc suffix is honored",
			in:   "2026-09-01T12:30:00Z",
			want: time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC),
		},
		{
			name:  "garbage",
			in:    "next tuesday-ish",
			isErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ParseTime(tt.in)
			if (err != nil) != tt.isErr {
				t.Fatalf("ParseTime(%q) error = %v, wantErr %v", tt.in, err, tt.isErr)
			}
			if err == nil && !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestUpcomingEventsFormatting(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("maxResults"); got != "2" {
			t.Errorf("maxResults = %q, want %q", got, "2")
		}
		if got := r.URL.Query().Get("orderBy"); got != "startTime" {
			t.Errorf("orderBy = %q, want %q", got, "startTime")
		}
		fmt.Fprint(w, `{
			"items": [
				{"summary": "Standup", "start": {"dateTime": "2026-09-01T09:00:00+02:00"}},
				{"summary": "Dentist", "start": {"dateTime": "2026-09-01T15:00:00+02:00"}}
			]
		}`)
	})

	got, err := c.UpcomingEvents(context.Background(), nil, 2)
	if err != nil {
		t.Fatalf("UpcomingEvents: %v", err)
	}

	want := "Upcoming events:\n" +
		"2026-09-01T09:00:00+02:00 - Standup\n" +
		"2026-09-01T15:00:00+02:00 - Dentist\n"
	if got != want {
		t.Errorf("UpcomingEvents = %q, want %q", got, want)
	}
}

func TestUpcomingEventsEmpty(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	})

	got, err := c.UpcomingEvents(context.Background(), nil, 2)
	if err != nil {
		t.Fatalf("UpcomingEvents: %v", err)
	}
	if got != "No upcoming events found." {
		t.Errorf("UpcomingEvents = %q, want no-events message", got)
	}
}

func TestUpcomingEventsUpstreamRejection(t *testing.T) {
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "message": "quota exceeded"}}`)
	})

	_, err := c.UpcomingEvents(context.Background(), nil, 2)
	if err == nil {
		t.Fatal("UpcomingEvents returned nil error on 403")
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %T, want *googleapi.Error", err)
	}
	if gerr.Code != http.StatusForbidden {
		t.Errorf("code = %d, want 403", gerr.Code)
	}
}

func TestAddEventBody(t *testing.T) {
	paris := mustLoc(t, "Europe/Paris")

	var gotPath string
	c := stubClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `{"summary": "Lunch"}`)
	})

	start := time.Date(2026, 9, 1, 12, 0, 0, 0, paris)
	result, err := c.AddEvent(context.Background(), nil, Event{
		Summary: "Lunch",
		Start:   start,
		End:     start.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("AddEvent: %v", err)
	}
	if !strings.Contains(result, "Event created: Lunch") {
		t.Errorf("AddEvent result = %q, want creation summary", result)
	}
	if !strings.Contains(gotPath, "calendars/primary/events") {
		t.Errorf("request path = %q, want primary calendar insert", gotPath)
	}
}
